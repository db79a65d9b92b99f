// Copyright © 2025-2026 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package eng

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestDialConnects(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no loopback networking: %v", err)
	}
	defer l.Close()
	go func() {
		conn, err := l.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	e := NewEngine()
	conn, err := e.Dial(context.Background(), "tcp", l.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()
}

func TestDialExhaustsRetries(t *testing.T) {
	// grab a port and close it so the dial is refused.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no loopback networking: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	e := NewEngine(Retry(2, 100*time.Millisecond))
	start := time.Now()
	if _, err := e.Dial(context.Background(), "tcp", addr); err == nil {
		t.Fatal("dial to a closed port should fail")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("retries took %v, bounded attempts expected", elapsed)
	}
}

func TestDialHonorsContextCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no loopback networking: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewEngine()
	if _, err := e.Dial(ctx, "tcp", addr); err == nil {
		t.Error("dial with a canceled context should fail")
	}
}
