// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mattermost

// In this file: records returned by the Mattermost REST API v4.  Only the
// fields used by the server are declared.

// Team is a Mattermost team.
type Team struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type,omitempty"`
	DeleteAt    int64  `json:"delete_at,omitempty"`
}

// Channel is a Mattermost channel.  The Team* fields are only populated by
// the system-wide channel listing.
type Channel struct {
	ID              string `json:"id"`
	CreateAt        int64  `json:"create_at"`
	UpdateAt        int64  `json:"update_at"`
	DeleteAt        int64  `json:"delete_at"`
	TeamID          string `json:"team_id"`
	Type            string `json:"type"`
	DisplayName     string `json:"display_name"`
	Name            string `json:"name"`
	Header          string `json:"header"`
	Purpose         string `json:"purpose"`
	LastPostAt      int64  `json:"last_post_at"`
	TotalMsgCount   int64  `json:"total_msg_count"`
	TeamDisplayName string `json:"team_display_name,omitempty"`
	TeamName        string `json:"team_name,omitempty"`
	TeamUpdateAt    int64  `json:"team_update_at,omitempty"`
}

// PostProps is the subset of post properties that affect how the author is
// displayed.
type PostProps struct {
	OverrideUsername string `json:"override_username,omitempty"`
	Username         string `json:"username,omitempty"`
	FromWebhook      string `json:"from_webhook,omitempty"`
}

// Post is a single message.
type Post struct {
	ID          string    `json:"id"`
	CreateAt    int64     `json:"create_at"`
	UpdateAt    int64     `json:"update_at"`
	DeleteAt    int64     `json:"delete_at"`
	UserID      string    `json:"user_id"`
	ChannelID   string    `json:"channel_id"`
	RootID      string    `json:"root_id"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	Props       PostProps `json:"props"`
	ReplyCount  int64     `json:"reply_count"`
	LastReplyAt int64     `json:"last_reply_at"`
}

// PostList is the response of post listing and search endpoints.  Order
// holds the post ids in the order the server returned them.
type PostList struct {
	Order []string         `json:"order"`
	Posts map[string]*Post `json:"posts"`
}

// Ordered returns the posts in the server order.  Ids in Order without a
// matching post are skipped.
func (pl *PostList) Ordered() []*Post {
	if pl == nil {
		return nil
	}
	pp := make([]*Post, 0, len(pl.Order))
	for _, id := range pl.Order {
		if p, ok := pl.Posts[id]; ok && p != nil {
			pp = append(pp, p)
		}
	}
	return pp
}

// User is a Mattermost user.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Nickname  string `json:"nickname"`
}

// SearchParams are the parameters of the post search call.
type SearchParams struct {
	Terms      string `json:"terms"`
	IsOrSearch bool   `json:"is_or_search"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
}
