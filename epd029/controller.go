// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"time"
)

type controller interface {
	reset(pulses int)
	sendCommand(cmd byte)
	sendData(data []byte)
	sendCommandData(cmd byte, data []byte)
	waitUntilIdle() time.Duration
	delay(d time.Duration)
}

type stepKind uint8

const (
	stepReset stepKind = iota
	stepWaitIdle
	stepCommand
	stepCommandData
	stepPowerOn
	stepDelay
)

// step is one entry of a controller sequence.
type step struct {
	kind   stepKind
	cmd    byte
	data   []byte
	pulses int
	d      time.Duration
}

func pulseReset(n int) step {
	return step{kind: stepReset, pulses: n}
}

func awaitIdle() step {
	return step{kind: stepWaitIdle}
}

// send issues cmd, then data in a separate chip select frame if any.
func send(cmd byte, data ...byte) step {
	return step{kind: stepCommand, cmd: cmd, data: data}
}

// sendFused issues cmd and data under a single chip select frame.
func sendFused(cmd byte, data ...byte) step {
	return step{kind: stepCommandData, cmd: cmd, data: data}
}

// powerOn issues cmd and fails the sequence when the controller reports
// ready sooner than a connected panel can.
func powerOn(cmd byte) step {
	return step{kind: stepPowerOn, cmd: cmd}
}

func pause(d time.Duration) step {
	return step{kind: stepDelay, d: d}
}

// runSequence executes steps in order. Only the presence check produces an
// error here; transport failures are collected by the controller.
func runSequence(ctrl controller, steps []step) error {
	for _, s := range steps {
		switch s.kind {
		case stepReset:
			ctrl.reset(s.pulses)
		case stepWaitIdle:
			ctrl.waitUntilIdle()
		case stepCommand:
			ctrl.sendCommand(s.cmd)
			if len(s.data) != 0 {
				ctrl.sendData(s.data)
			}
		case stepCommandData:
			ctrl.sendCommandData(s.cmd, s.data)
		case stepPowerOn:
			ctrl.sendCommand(s.cmd)
			if busy := ctrl.waitUntilIdle(); busy < presenceThreshold {
				return &PresenceError{Busy: busy}
			}
		case stepDelay:
			ctrl.delay(s.d)
		}
	}
	return nil
}

// writeFrame uploads both planes and refreshes the panel.
func writeFrame(ctrl controller, v *variant, a, b []byte) {
	ctrl.waitUntilIdle()
	if v.lut != nil {
		loadLegacyLUT(ctrl, v.lut)
	}
	ctrl.sendCommandData(v.planeA, a)
	ctrl.sendCommandData(v.planeB, b)
	// Refresh sequences carry no presence check.
	_ = runSequence(ctrl, v.refresh)
}
