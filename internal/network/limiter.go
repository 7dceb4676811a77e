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

package network

import (
	"time"

	"golang.org/x/time/rate"
)

// Limits defines the throttling applied to backend calls.
type Limits struct {
	// PerSecond is the sustained number of requests per second.
	PerSecond float64 `toml:"per_second" validate:"gte=0"`
	// Burst is the number of requests allowed to go through at once.
	Burst int `toml:"burst" validate:"gte=0"`
}

// DefLimits are the default limits.  Mattermost rate limiting defaults to 10
// requests per second per token with a burst of 100; staying below that
// leaves room for other clients using the same token.
var DefLimits = Limits{
	PerSecond: 10,
	Burst:     5,
}

// NoLimits disables throttling.
var NoLimits = Limits{}

// NewLimiter returns a limiter for the limits l.  Zero PerSecond returns an
// unlimited limiter.
func NewLimiter(l Limits) *rate.Limiter {
	if l.PerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := l.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(every(l.PerSecond)), burst)
}

func every(perSecond float64) time.Duration {
	return time.Duration(float64(time.Second) / perSecond)
}
