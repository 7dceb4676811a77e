// Package config holds the server configuration.  The values are layered,
// from lowest to highest precedence: built-in defaults, the TOML
// configuration file, the environment and the command line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rusq/osenv/v2"

	"github.com/rusq/mattermost-mcp/internal/network"
	"github.com/rusq/mattermost-mcp/internal/validate"
)

// Environment variables.
const (
	EnvEndpoint  = "MATTERMOST_ENDPOINT"
	EnvToken     = "MATTERMOST_TOKEN"
	EnvTeam      = "MATTERMOST_TEAM"
	EnvChannels  = "MATTERMOST_CHANNELS"
	EnvLimit     = "MATTERMOST_LIMIT"
	EnvTransport = "MCP_TRANSPORT"
	EnvListen    = "MCP_LISTEN"
	EnvConfig    = "MCP_CONFIG"
)

// Transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

// ErrInvalid is returned when the configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config is the server configuration.
type Config struct {
	// Endpoint is the Mattermost server URL, i.e. https://chat.example.com.
	Endpoint string `toml:"endpoint" validate:"required,http_url"`
	// Token is the personal access token or the bot token.
	Token string `toml:"token" validate:"required"`
	// Team is the team name, display name or id that scopes the searches
	// without channels.
	Team string `toml:"team"`
	// Channels restricts the operations without explicit channels to the
	// listed channels.
	Channels []string `toml:"channels" validate:"dive,required"`
	// Limit is the default number of messages per channel.
	Limit int `toml:"limit" validate:"gt=0"`

	Transport string `toml:"transport" validate:"oneof=stdio sse http"`
	Listen    string `toml:"listen" validate:"required,hostname_port"`

	CacheTTL       time.Duration  `toml:"cache_ttl" validate:"gte=0"`
	UserCacheTTL   time.Duration  `toml:"user_cache_ttl" validate:"gt=0"`
	RequestTimeout time.Duration  `toml:"request_timeout" validate:"gt=0"`
	IdleTimeout    time.Duration  `toml:"idle_timeout" validate:"gte=0"`
	Limits         network.Limits `toml:"limits"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Limit:          100,
		Transport:      TransportStdio,
		Listen:         "127.0.0.1:8201",
		CacheTTL:       time.Hour,
		UserCacheTTL:   time.Hour,
		RequestTimeout: 30 * time.Second,
		IdleTimeout:    30 * time.Minute,
		Limits:         network.DefLimits,
	}
}

// LoadFile reads the TOML file into c.  Keys that are not present in the
// file keep their current values.  Unknown keys are an error.
func (c *Config) LoadFile(name string) error {
	md, err := toml.DecodeFile(name, c)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return fmt.Errorf("config: %s: unknown keys: %s", name, strings.Join(keys, ", "))
	}
	return nil
}

// FromEnv overrides c with the values of the environment variables that are
// set.
func (c *Config) FromEnv() error {
	c.Endpoint = osenv.Value(EnvEndpoint, c.Endpoint)
	c.Token = osenv.Secret(EnvToken, c.Token)
	c.Team = osenv.Value(EnvTeam, c.Team)
	if v := osenv.Value(EnvChannels, ""); v != "" {
		c.Channels = SplitList(v)
	}
	if v := osenv.Value(EnvLimit, ""); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvLimit, err)
		}
		c.Limit = n
	}
	c.Transport = osenv.Value(EnvTransport, c.Transport)
	c.Listen = osenv.Value(EnvListen, c.Listen)
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Load builds the configuration from all sources.  It parses args with fs,
// the flags that were given on the command line take precedence over the
// file and the environment.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	var (
		fl   = Default()
		file = osenv.Value(EnvConfig, "")
	)
	if err := fl.FromEnv(); err != nil {
		return Config{}, err
	}
	fl.Bind(fs)
	fs.StringVar(&file, "config", file, "TOML configuration `file` (environment: "+EnvConfig+")")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	c := Default()
	if file != "" {
		if err := c.LoadFile(file); err != nil {
			return Config{}, err
		}
	}
	if err := c.FromEnv(); err != nil {
		return Config{}, err
	}
	if fl.Token != "" {
		// the secret is removed from the environment on the first read
		c.Token = fl.Token
	}
	fs.Visit(func(f *flag.Flag) {
		if set, ok := setters[f.Name]; ok {
			set(&c, &fl)
		}
	})
	return c, c.Validate()
}

// Bind registers the flags that override c.  The current values of c are
// the flag defaults.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Endpoint, "endpoint", c.Endpoint, "Mattermost server `URL` (environment: "+EnvEndpoint+")")
	fs.StringVar(&c.Team, "team", c.Team, "default `team` name or id (environment: "+EnvTeam+")")
	fs.Var((*listValue)(&c.Channels), "channels", "comma-separated `list` of default channels (environment: "+EnvChannels+")")
	fs.IntVar(&c.Limit, "limit", c.Limit, "default number of messages per channel (environment: "+EnvLimit+")")
	fs.StringVar(&c.Transport, "transport", c.Transport, "MCP transport: \"stdio\", \"sse\" or \"http\" (environment: "+EnvTransport+")")
	fs.StringVar(&c.Listen, "listen", c.Listen, "`address` to listen on for sse and http transports (environment: "+EnvListen+")")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "team and channel cache `duration`, 0 caches forever")
	fs.DurationVar(&c.UserCacheTTL, "user-cache-ttl", c.UserCacheTTL, "how long resolved user names are kept")
	fs.DurationVar(&c.RequestTimeout, "request-timeout", c.RequestTimeout, "time limit for a single request")
	fs.DurationVar(&c.IdleTimeout, "idle-timeout", c.IdleTimeout, "close http sessions idle for longer than this, 0 disables")
	fs.Float64Var(&c.Limits.PerSecond, "rps", c.Limits.PerSecond, "maximum Mattermost API requests per second, 0 disables throttling")
}

// setters copy the value of the named flag from src to dst.
var setters = map[string]func(dst, src *Config){
	"endpoint":        func(dst, src *Config) { dst.Endpoint = src.Endpoint },
	"team":            func(dst, src *Config) { dst.Team = src.Team },
	"channels":        func(dst, src *Config) { dst.Channels = src.Channels },
	"limit":           func(dst, src *Config) { dst.Limit = src.Limit },
	"transport":       func(dst, src *Config) { dst.Transport = src.Transport },
	"listen":          func(dst, src *Config) { dst.Listen = src.Listen },
	"cache-ttl":       func(dst, src *Config) { dst.CacheTTL = src.CacheTTL },
	"user-cache-ttl":  func(dst, src *Config) { dst.UserCacheTTL = src.UserCacheTTL },
	"request-timeout": func(dst, src *Config) { dst.RequestTimeout = src.RequestTimeout },
	"idle-timeout":    func(dst, src *Config) { dst.IdleTimeout = src.IdleTimeout },
	"rps":             func(dst, src *Config) { dst.Limits.PerSecond = src.Limits.PerSecond },
}

// String returns the configuration with the token masked.
func (c Config) String() string {
	tok := ""
	if c.Token != "" {
		tok = "***"
	}
	return fmt.Sprintf("endpoint=%s token=%s team=%q channels=%v limit=%d transport=%s listen=%s",
		c.Endpoint, tok, c.Team, c.Channels, c.Limit, c.Transport, c.Listen)
}

// SplitList splits the comma-separated list, dropping empty elements.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// listValue is the flag.Value for a comma-separated list.
type listValue []string

var _ flag.Value = new(listValue)

func (l *listValue) Set(s string) error {
	*l = SplitList(s)
	return nil
}

func (l *listValue) String() string {
	if l == nil {
		return ""
	}
	return strings.Join(*l, ",")
}
