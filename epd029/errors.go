// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConnected is matched by errors.Is on a *PresenceError.
	ErrNotConnected = errors.New("epd029: display not connected")
	// ErrNotReady is returned by Display and Sleep before Start succeeded.
	ErrNotReady = errors.New("epd029: controller not initialized")
)

// TransportError reports a failed line toggle or bus transfer. The sequence
// that hit it is abandoned; the controller must be started again.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("epd029: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PresenceError is returned by Start when the legacy controller reported
// ready sooner after power on than a connected panel can.
type PresenceError struct {
	Busy time.Duration
}

func (e *PresenceError) Error() string {
	return fmt.Sprintf("epd029: display not connected (power on busy for %s, want at least %s)", e.Busy, presenceThreshold)
}

// Is makes errors.Is(err, ErrNotConnected) hold.
func (e *PresenceError) Is(target error) bool {
	return target == ErrNotConnected
}

// FormatError is returned when a frame has the wrong length.
type FormatError struct {
	Got  int
	Want int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("epd029: frame is %d bytes, want %d", e.Got, e.Want)
}
