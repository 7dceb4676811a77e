package mcp

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusq/mattermost-mcp/internal/fault"
)

func TestToolArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    Request
		wantErr bool
	}{
		{
			name: "defaults",
			args: nil,
			want: Request{Limit: 100},
		},
		{
			name: "typed channels and numeric limit",
			args: map[string]any{"channels": []any{"town-square", "off-topic"}, "limit": float64(20)},
			want: Request{Channels: []string{"town-square", "off-topic"}, Limit: 20},
		},
		{
			name: "comma-joined channels and string limit",
			args: map[string]any{"channels": "town-square, off-topic,", "limit": "20"},
			want: Request{Channels: []string{"town-square", "off-topic"}, Limit: 20},
		},
		{
			name: "json number limit",
			args: map[string]any{"limit": json.Number("7")},
			want: Request{Limit: 7},
		},
		{
			name: "search with dates",
			args: map[string]any{"query": " deploy ", "before": "2024-01-01", "after": "2023-01-01", "on": ""},
			want: Request{Query: "deploy", Limit: 100, Before: "2024-01-01", After: "2023-01-01"},
		},
		{
			name: "empty channel array is absent",
			args: map[string]any{"channels": []any{}},
			want: Request{Limit: 100},
		},
		{
			name: "null limit uses default",
			args: map[string]any{"limit": nil},
			want: Request{Limit: 100},
		},
		{name: "zero limit", args: map[string]any{"limit": float64(0)}, wantErr: true},
		{name: "negative limit", args: map[string]any{"limit": -5}, wantErr: true},
		{name: "fractional limit", args: map[string]any{"limit": 2.5}, wantErr: true},
		{name: "non-numeric limit", args: map[string]any{"limit": "ten"}, wantErr: true},
		{name: "bool limit", args: map[string]any{"limit": true}, wantErr: true},
		{name: "huge numeric limit", args: map[string]any{"limit": float64(3000000000)}, wantErr: true},
		{name: "huge string limit", args: map[string]any{"limit": "3000000000"}, wantErr: true},
		{name: "huge json number limit", args: map[string]any{"limit": json.Number("3000000000")}, wantErr: true},
		{name: "largest limit", args: map[string]any{"limit": "2147483647"}, want: Request{Limit: math.MaxInt32}},
		{name: "channel not a string", args: map[string]any{"channels": []any{"a", 1}}, wantErr: true},
		{name: "channels wrong type", args: map[string]any{"channels": 42}, wantErr: true},
		{name: "query wrong type", args: map[string]any{"query": []any{"x"}}, wantErr: true},
		{name: "bad date", args: map[string]any{"before": "01/02/2024"}, wantErr: true},
		{name: "impossible date", args: map[string]any{"on": "2024-02-31"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toolArgs("test", tt.args, 100)
			if tt.wantErr {
				assert.ErrorIs(t, err, fault.ErrInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]string
		want    Request
		wantErr bool
	}{
		{"empty", map[string]string{}, Request{Limit: 50}, false},
		{"all", map[string]string{"channels": "a,b", "limit": " 5 ", "query": "foo"}, Request{Channels: []string{"a", "b"}, Query: "foo", Limit: 5}, false},
		{"blank channels", map[string]string{"channels": " , "}, Request{Limit: 50}, false},
		{"bad limit", map[string]string{"limit": "-1"}, Request{}, true},
		{"non-numeric limit", map[string]string{"limit": "lots"}, Request{}, true},
		{"huge limit", map[string]string{"limit": "3000000000"}, Request{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := promptArgs("test", tt.args, 50)
			if tt.wantErr {
				assert.ErrorIs(t, err, fault.ErrInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArgs_equivalentEncodings(t *testing.T) {
	typed, err := toolArgs("test", map[string]any{
		"channels": []any{"town-square", "incidents"},
		"limit":    float64(30),
		"query":    "outage",
	}, 100)
	require.NoError(t, err)

	text, err := promptArgs("test", map[string]string{
		"channels": "town-square,incidents",
		"limit":    "30",
		"query":    "outage",
	}, 100)
	require.NoError(t, err)

	assert.Equal(t, typed, text)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" ,, "))
	assert.Equal(t, []string{"a", "b c"}, splitList(" a ,b c"))
}
