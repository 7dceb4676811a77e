package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/mattermost-mcp/internal/network"
	"github.com/rusq/mattermost-mcp/internal/validate"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}

func TestLoad_defaults(t *testing.T) {
	t.Setenv(EnvEndpoint, "https://chat.example.com")
	t.Setenv(EnvToken, "secret")

	c, err := Load(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com", c.Endpoint)
	assert.Equal(t, "secret", c.Token)
	assert.Equal(t, 100, c.Limit)
	assert.Equal(t, TransportStdio, c.Transport)
	assert.Equal(t, "127.0.0.1:8201", c.Listen)
	assert.Equal(t, time.Hour, c.CacheTTL)
	assert.Equal(t, time.Hour, c.UserCacheTTL)
	assert.Equal(t, network.DefLimits, c.Limits)
}

func TestLoad_precedence(t *testing.T) {
	file := writeFile(t, `
endpoint = "https://file.example.com"
token = "file-token"
team = "file-team"
channels = ["town-square", "incidents"]
limit = 10
cache_ttl = "5m"
user_cache_ttl = "10m"

[limits]
per_second = 2.5
burst = 3
`)
	t.Setenv(EnvTeam, "env-team")
	t.Setenv(EnvLimit, "20")

	c, err := Load(newFlagSet(), []string{"-config", file, "-team", "flag-team", "-transport", "http", "-user-cache-ttl", "15m"})
	require.NoError(t, err)
	assert.Equal(t, "https://file.example.com", c.Endpoint) // file
	assert.Equal(t, "file-token", c.Token)                  // file
	assert.Equal(t, []string{"town-square", "incidents"}, c.Channels)
	assert.Equal(t, 20, c.Limit)            // env over file
	assert.Equal(t, "flag-team", c.Team)    // flag over env
	assert.Equal(t, TransportHTTP, c.Transport)
	assert.Equal(t, 5*time.Minute, c.CacheTTL)
	assert.Equal(t, 15*time.Minute, c.UserCacheTTL) // flag over file
	assert.Equal(t, network.Limits{PerSecond: 2.5, Burst: 3}, c.Limits)
}

func TestLoad_channelsFromEnvAndFlag(t *testing.T) {
	t.Setenv(EnvEndpoint, "https://chat.example.com")
	t.Setenv(EnvToken, "secret")
	t.Setenv(EnvChannels, " a, b ,,")

	c, err := Load(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.Channels)

	t.Setenv(EnvToken, "secret")
	c, err = Load(newFlagSet(), []string{"-channels", "x,y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, c.Channels)
}

func TestLoad_errors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		file := writeFile(t, "endpoint = \"https://x.example.com\"\ntokn = \"typo\"\n")
		_, err := Load(newFlagSet(), []string{"-config", file})
		assert.ErrorContains(t, err, "tokn")
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(newFlagSet(), []string{"-config", filepath.Join(t.TempDir(), "nope.toml")})
		assert.Error(t, err)
	})
	t.Run("bad env limit", func(t *testing.T) {
		t.Setenv(EnvLimit, "many")
		_, err := Load(newFlagSet(), nil)
		assert.ErrorContains(t, err, EnvLimit)
	})
	t.Run("bad flag", func(t *testing.T) {
		_, err := Load(newFlagSet(), []string{"-limit", "x"})
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Endpoint = "https://chat.example.com"
		c.Token = "secret"
		return c
	}
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no endpoint", func(c *Config) { c.Endpoint = "" }, true},
		{"endpoint not a url", func(c *Config) { c.Endpoint = "chat" }, true},
		{"no token", func(c *Config) { c.Token = "" }, true},
		{"zero limit", func(c *Config) { c.Limit = 0 }, true},
		{"bad transport", func(c *Config) { c.Transport = "carrier-pigeon" }, true},
		{"sse", func(c *Config) { c.Transport = TransportSSE }, false},
		{"bad listen", func(c *Config) { c.Listen = "localhost" }, true},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, true},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }, false},
		{"zero user cache ttl", func(c *Config) { c.UserCacheTTL = 0 }, true},
		{"empty channel", func(c *Config) { c.Channels = []string{"a", ""} }, true},
		{"negative rps", func(c *Config) { c.Limits.PerSecond = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			err := c.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalid)
			var vErr *validate.Error
			assert.ErrorAs(t, err, &vErr)
		})
	}
}

func TestConfig_String(t *testing.T) {
	c := Default()
	c.Token = "very-secret"
	assert.NotContains(t, c.String(), "very-secret")
	assert.Contains(t, c.String(), "token=***")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList("a, b,"))
}
