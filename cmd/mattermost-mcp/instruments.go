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

package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/rusq/tracer"
)

// initLog initialises the logging.  Messages go to STDERR, as STDOUT carries
// the protocol in stdio mode.  If the filename is not empty, the file will be
// opened, and the logger output will be switched to that file.  Returns the
// initialised logger, the stop function that closes the log file, and an
// error, if any.
func initLog(filename string, jsonHandler bool, verbose bool) (*slog.Logger, func(), error) {
	lg, stop, err := newLogger(os.Stderr, filename, jsonHandler, verbose)
	if err != nil {
		return slog.Default(), stop, err
	}
	slog.SetDefault(lg)
	return lg, stop, nil
}

func newLogger(stderr io.Writer, filename string, jsonHandler bool, verbose bool) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	var (
		w    = stderr
		stop = func() {}
	)
	if filename != "" {
		lf, err := os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o666)
		if err != nil {
			return nil, stop, fmt.Errorf("failed to create the log file: %w", err)
		}
		log.SetOutput(lf) // panics will be logged there
		w = lf
		stop = func() {
			if err := lf.Close(); err != nil {
				fmt.Fprintf(stderr, "failed to close the log file: %s\n", err)
			}
		}
	}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if jsonHandler {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h), stop, nil
}

// initTrace initialises the tracing.  If the filename is not empty, the file
// will be opened, trace will write to that file.  Returns the stop function
// that must be called in the deferred call.
func initTrace(filename string) (stop func()) {
	stop = func() {}
	if filename == "" {
		return
	}

	slog.Info("trace will be written to", "filename", filename)

	trc := tracer.New(filename)
	if err := trc.Start(); err != nil {
		slog.Warn("failed to start the trace", "filename", filename, "error", err)
		return
	}

	stop = func() {
		if err := trc.End(); err != nil {
			slog.Warn("failed to write the trace file", "filename", filename, "error", err)
		}
	}
	return
}
