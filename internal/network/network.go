// Package network contains the throttling shared by all backend calls.
//
// There is no retry logic here: a failed backend call is surfaced to the
// caller immediately, and it is up to the caller to repeat the whole
// operation.
package network

import (
	"context"
	"fmt"
	"runtime/trace"

	"golang.org/x/time/rate"
)

// Wait blocks until the limiter allows one more event or ctx is done.  The
// wait is recorded as a trace region, so that throttling shows up in the
// execution trace.
func Wait(ctx context.Context, lim *rate.Limiter) error {
	if lim == nil {
		return nil
	}
	var err error
	trace.WithRegion(ctx, "network.Wait", func() {
		err = lim.Wait(ctx)
	})
	if err != nil {
		return fmt.Errorf("throttle: %w", err)
	}
	return nil
}
