// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package eng

// dial.go is the connection establishment policy: a bounded retry
// count with a per-attempt timeout. The wire protocol itself is an
// external collaborator; the engine only hands back the connection.

import (
	"context"
	"fmt"
	"log/slog"
	"net"
)

// Dial connects to addr, retrying up to the configured attempt count
// with the configured per-attempt timeout. ctx cancellation aborts the
// whole sequence; closing the returned connection discards in-flight
// messages.
func (e *Engine) Dial(ctx context.Context, network, addr string) (net.Conn, error) {
	var lastErr error
	for attempt := 1; attempt <= e.cfg.retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.retryTimeout)
		var d net.Dialer
		conn, err := d.DialContext(attemptCtx, network, addr)
		cancel()
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, fmt.Errorf("dial %s: %w", addr, ctx.Err())
		}
		slog.Warn("connect attempt failed", "addr", addr, "attempt", attempt, "error", err)
	}
	return nil, fmt.Errorf("dial %s: %d attempts failed: %w", addr, e.cfg.retries, lastErr)
}
