// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

const (
	pollInterval      = 10 * time.Millisecond
	resetPulse        = 10 * time.Millisecond
	settleDelay       = 10 * time.Millisecond
	presenceThreshold = 50 * time.Millisecond
)

// idlePoller waits for the busy line to leave its busy level.
type idlePoller struct {
	busy      gpio.PinIn
	busyLevel gpio.Level
	// timeout is the ceiling on a single wait; zero polls forever.
	timeout time.Duration
	// edges waits on busy line edges between reads instead of sleeping.
	edges bool

	now   func() time.Time
	sleep func(time.Duration)
	log   zerolog.Logger
}

// wait returns how long the line stayed busy. Hitting the ceiling is logged
// and otherwise treated as ready.
func (p *idlePoller) wait() time.Duration {
	start := p.now()
	for p.busy.Read() == p.busyLevel {
		elapsed := p.now().Sub(start)
		if p.timeout > 0 && elapsed >= p.timeout {
			p.log.Warn().Dur("busy", elapsed).Stringer("pin", p.busy).Msg("busy line did not clear, continuing")
			return elapsed
		}
		if p.edges {
			p.busy.WaitForEdge(pollInterval)
		} else {
			p.sleep(pollInterval)
		}
	}
	elapsed := p.now().Sub(start)
	p.log.Debug().Dur("busy", elapsed).Msg("idle")
	return elapsed
}
