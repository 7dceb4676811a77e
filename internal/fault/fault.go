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

// Package fault defines the error kinds that cross component boundaries:
// the dispatcher and the session layer turn them into structured failure
// responses for the caller that originated the request.
package fault

import (
	"errors"
	"fmt"
)

// Error kinds.  Use errors.Is to test for a kind.
var (
	// ErrInput is returned for malformed or missing arguments.  It is
	// always raised before any backend call is made.
	ErrInput = errors.New("invalid input")
	// ErrNotFound is returned when a channel or team reference can not be
	// resolved against the directory.
	ErrNotFound = errors.New("not found")
	// ErrBackendUnavailable is returned on any network or HTTP failure of
	// the backend.  The call is not retried.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrSession is returned for unknown or closed session ids.
	ErrSession = errors.New("session error")
	// ErrInternal marks unexpected faults.
	ErrInternal = errors.New("internal error")
)

// Error carries the kind of the failure, the operation that failed and the
// underlying cause.
type Error struct {
	Kind error  // one of the Err* kinds
	Op   string // operation, i.e. "resolve channel"
	Err  error  // cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.Error()
	case e.Op == "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// Input returns an ErrInput error with the formatted message.
func Input(op string, format string, a ...any) error {
	return &Error{Kind: ErrInput, Op: op, Err: fmt.Errorf(format, a...)}
}

// NotFound returns an ErrNotFound error for the reference ref.
func NotFound(op string, what string, ref string) error {
	return &Error{Kind: ErrNotFound, Op: op, Err: fmt.Errorf("%s %q", what, ref)}
}

// Backend wraps err as ErrBackendUnavailable.  If err already has a kind, it
// is returned as is.
func Backend(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != ErrInternal {
		return err
	}
	return &Error{Kind: ErrBackendUnavailable, Op: op, Err: err}
}

// Session returns an ErrSession error for the session id.
func Session(op string, id string) error {
	return &Error{Kind: ErrSession, Op: op, Err: fmt.Errorf("session %q", id)}
}

// Internal wraps err as ErrInternal.
func Internal(op string, err error) error {
	return &Error{Kind: ErrInternal, Op: op, Err: err}
}

var kinds = []error{ErrInput, ErrNotFound, ErrBackendUnavailable, ErrSession}

// KindOf returns the kind of err.  Errors without a known kind are
// considered internal.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}
