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

package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// maxLineSize is the maximum size of one message on the stream.
const maxLineSize = 16 << 20

// ServeStream serves the single stream session: it reads newline-delimited
// JSON-RPC messages from r and writes the responses to w, one per line.  It
// returns when r is exhausted and all responses are written, or when ctx is
// cancelled.
func ServeStream(ctx context.Context, m *Manager, r io.Reader, w io.Writer) error {
	s, err := m.Open(KindStream)
	if err != nil {
		return err
	}
	defer s.Close()

	sw := &syncWriter{w: w}
	var pending sync.WaitGroup
	reply := func(msg json.RawMessage) ReplyFunc {
		pending.Add(1)
		return func(resp mcplib.JSONRPCMessage, err error) {
			defer pending.Done()
			if err != nil && resp == nil && isRequest(msg) {
				resp = rpcError(msg, err)
			}
			if resp == nil {
				return
			}
			if err := sw.writeJSON(resp); err != nil {
				m.lg.Warn("stream: write", "error", err)
			}
		}
	}

	// notifications
	go func() {
		for {
			select {
			case n := <-s.notify:
				if err := sw.writeJSON(n); err != nil {
					m.lg.Warn("stream: write notification", "error", err)
				}
			case <-s.Done():
				return
			}
		}
	}()

	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for sc.Scan() {
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}
			if !json.Valid(line) {
				if err := sw.writeJSON(parseError()); err != nil {
					m.lg.Warn("stream: write", "error", err)
				}
				continue
			}
			msg := json.RawMessage(bytes.Clone(line))
			rf := reply(msg)
			if err := s.Post(msg, rf); err != nil {
				rf(nil, err)
			}
		}
		readErr <- sc.Err()
	}()

	select {
	case err = <-readErr:
		// input is exhausted, let the worker drain
		pending.Wait()
		if err != nil {
			return fmt.Errorf("stream: read: %w", err)
		}
		m.lg.DebugContext(ctx, "stream: end of input")
		return nil
	case <-ctx.Done():
		s.Close()
		<-s.exited
		if err := context.Cause(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
}

// syncWriter serialises the writes of complete messages.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (sw *syncWriter) writeJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	sw.mu.Lock()
	defer sw.mu.Unlock()
	_, err = sw.w.Write(data)
	return err
}
