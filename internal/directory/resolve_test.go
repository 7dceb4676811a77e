package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rusq/mattermost-mcp/internal/directory/mock_directory"
	"github.com/rusq/mattermost-mcp/internal/fault"
)

func warmCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	ctrl := gomock.NewController(t)
	be := mock_directory.NewMockBackend(ctrl)
	be.EXPECT().GetTeams(gomock.Any(), gomock.Any(), gomock.Any()).Return(testTeams, nil).AnyTimes()
	be.EXPECT().GetChannels(gomock.Any(), gomock.Any(), gomock.Any()).Return(testChannels, nil).AnyTimes()
	return New(be, opts...)
}

func TestCache_ResolveChannel(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{"by name", "off-topic", "c2", nil},
		{"by display name", "Random", "c4", nil},
		{"name wins over display name", "town-square", "c1", nil},
		{"case sensitive", "Town-Square", "", fault.ErrNotFound},
		{"id is not a name", "c1", "", fault.ErrNotFound},
		{"unknown", "nope", "", fault.ErrNotFound},
	}
	c := warmCache(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := c.ResolveChannel(t.Context(), tt.ref)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, ch.ID)
		})
	}
}

func TestCache_ResolveChannelByID(t *testing.T) {
	c := warmCache(t)
	ch, err := c.ResolveChannelByID(t.Context(), "c3")
	require.NoError(t, err)
	assert.Equal(t, "incidents", ch.Name)

	_, err = c.ResolveChannelByID(t.Context(), "town-square")
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestCache_LookupChannel(t *testing.T) {
	c := warmCache(t)
	tests := []struct {
		ref    string
		wantID string
	}{
		{"town-square", "c1"},
		{"Off-Topic", "c2"},
		{"c4", "c4"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			ch, err := c.LookupChannel(t.Context(), tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, ch.ID)
		})
	}
	_, err := c.LookupChannel(t.Context(), "c9")
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestCache_ResolveTeam(t *testing.T) {
	c := warmCache(t)
	tm, err := c.ResolveTeam(t.Context(), "ops")
	require.NoError(t, err)
	assert.Equal(t, "t2", tm.ID)

	tm, err = c.ResolveTeam(t.Context(), "Engineering")
	require.NoError(t, err)
	assert.Equal(t, "t1", tm.ID)

	_, err = c.ResolveTeam(t.Context(), "t1")
	assert.ErrorIs(t, err, fault.ErrNotFound)

	tm, err = c.ResolveTeamByID(t.Context(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "eng", tm.Name)

	_, err = c.ResolveTeamByID(t.Context(), "eng")
	assert.ErrorIs(t, err, fault.ErrNotFound)
}

func TestCache_EffectiveChannels(t *testing.T) {
	tests := []struct {
		name       string
		explicit   []string
		restricted []string
		want       []string
	}{
		{
			"explicit verbatim",
			[]string{"random", "does-not-exist", "town-square"},
			[]string{"off-topic"},
			[]string{"random", "does-not-exist", "town-square"},
		},
		{
			"restriction verbatim",
			nil,
			[]string{"random", "town-square"},
			[]string{"random", "town-square"},
		},
		{
			"empty explicit falls through",
			[]string{},
			[]string{"incidents"},
			[]string{"incidents"},
		},
		{
			"all channels in directory order",
			nil,
			nil,
			[]string{"town-square", "off-topic", "incidents", "random"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := warmCache(t)
			got, err := c.EffectiveChannels(t.Context(), tt.explicit, tt.restricted)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCache_EffectiveChannels_noBackendCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	be := mock_directory.NewMockBackend(ctrl) // no calls expected
	c := New(be)

	got, err := c.EffectiveChannels(t.Context(), []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = c.EffectiveChannels(t.Context(), nil, []string{"c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got)
}

func TestCache_EffectiveChannels_emptyDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	be := mock_directory.NewMockBackend(ctrl)
	be.EXPECT().GetChannels(gomock.Any(), 0, DefPageSize).Return(nil, nil)
	c := New(be)

	got, err := c.EffectiveChannels(t.Context(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCache_Targets(t *testing.T) {
	c := warmCache(t, WithRestriction([]string{"random"}))
	got, err := c.Targets(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"random"}, got)

	got, err = c.Targets(t.Context(), []string{"off-topic"})
	require.NoError(t, err)
	assert.Equal(t, []string{"off-topic"}, got)
	assert.Equal(t, []string{"random"}, c.Restriction())
}
