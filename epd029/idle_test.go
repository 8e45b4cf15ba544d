// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

func newPoller(level gpio.Level, reads int, timeout time.Duration) (*idlePoller, *busyPin) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	busy := &busyPin{clock: clock, level: level, reads: reads}
	return &idlePoller{
		busy:      busy,
		busyLevel: level,
		timeout:   timeout,
		now:       clock.now,
		sleep:     clock.sleep,
		log:       zerolog.Nop(),
	}, busy
}

func TestIdleCeiling(t *testing.T) {
	p, _ := newPoller(gpio.High, -1, currentIdleTimeout)

	got := p.wait()

	if got < currentIdleTimeout || got >= currentIdleTimeout+pollInterval {
		t.Errorf("wait() = %s, want %s", got, currentIdleTimeout)
	}
}

func TestIdleReportsBusyTime(t *testing.T) {
	for _, tc := range []struct {
		name  string
		level gpio.Level
		reads int
		want  time.Duration
	}{
		{name: "already idle", level: gpio.High, reads: 0, want: 0},
		{name: "active high", level: gpio.High, reads: 3, want: 30 * time.Millisecond},
		{name: "active low", level: gpio.Low, reads: 51, want: 510 * time.Millisecond},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := newPoller(tc.level, tc.reads, 0)

			if got := p.wait(); got != tc.want {
				t.Errorf("wait() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestIdleWithoutCeilingOutlastsCurrentTimeout(t *testing.T) {
	p, _ := newPoller(gpio.Low, 1000, 0)

	if got := p.wait(); got != 10*time.Second {
		t.Errorf("wait() = %s, want 10s", got)
	}
}

func TestIdleEdges(t *testing.T) {
	p, busy := newPoller(gpio.High, 4, currentIdleTimeout)
	p.edges = true

	got := p.wait()

	if got != 40*time.Millisecond {
		t.Errorf("wait() = %s, want 40ms", got)
	}
	if busy.edges != 4 {
		t.Errorf("WaitForEdge() called %d times, want 4", busy.edges)
	}
}
