// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package plinth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// pcf8574 is the 8 line quasi-bidirectional expander of the prototype board.
//
// The chip has no registers: a one byte write sets the output latch and a one
// byte read returns the line levels. A latch bit at 1 is a weak pull-up, so a
// line must be written high before it can be read.
type pcf8574 struct {
	mu    sync.Mutex
	d     i2c.Dev
	latch byte
	log   zerolog.Logger
	pins  []gpio.PinIO
}

func newPCF8574(bus i2c.Bus, addr uint16, log zerolog.Logger) (*pcf8574, error) {
	e := &pcf8574{d: i2c.Dev{Bus: bus, Addr: addr}, latch: 0xFF, log: log}
	// Power on state, written once so a missing chip is found now.
	if err := e.d.Tx([]byte{e.latch}, nil); err != nil {
		return nil, fmt.Errorf("pcf8574: %w", err)
	}
	for n := 0; n < 8; n++ {
		e.pins = append(e.pins, &pcfPin{e: e, n: n, name: fmt.Sprintf("PCF8574_%x_P%d", addr, n)})
	}
	return e, nil
}

// write updates the latch bits in mask. Unchanged latches are not written.
func (e *pcf8574) write(mask byte, l gpio.Level) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.latch &^ mask
	if l {
		v |= mask
	}
	if v == e.latch {
		return nil
	}
	if err := e.d.Tx([]byte{v}, nil); err != nil {
		return fmt.Errorf("pcf8574: %w", err)
	}
	e.latch = v
	return nil
}

func (e *pcf8574) read(mask byte) (gpio.Level, error) {
	if err := e.write(mask, gpio.High); err != nil {
		return gpio.Low, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var r [1]byte
	if err := e.d.Tx(nil, r[:]); err != nil {
		return gpio.Low, fmt.Errorf("pcf8574: %w", err)
	}
	return r[0]&mask != 0, nil
}

var errNoEdges = errors.New("pcf8574: edge detection not supported")

type pcfPin struct {
	e    *pcf8574
	n    int
	name string
}

func (p *pcfPin) String() string {
	return p.name
}

func (p *pcfPin) Name() string {
	return p.name
}

func (p *pcfPin) Number() int {
	return p.n
}

func (p *pcfPin) Function() string {
	return "Out"
}

func (p *pcfPin) Halt() error {
	return nil
}

// In releases the line. The pull-up is always weak and there is no per line
// edge detection.
func (p *pcfPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if edge != gpio.NoEdge {
		return errNoEdges
	}
	return p.e.write(1<<p.n, gpio.High)
}

func (p *pcfPin) Read() gpio.Level {
	l, err := p.e.read(1 << p.n)
	if err != nil {
		p.e.log.Error().Err(err).Str("pin", p.name).Msg("read failed")
	}
	return l
}

func (p *pcfPin) WaitForEdge(timeout time.Duration) bool {
	return false
}

func (p *pcfPin) Pull() gpio.Pull {
	return gpio.PullUp
}

func (p *pcfPin) DefaultPull() gpio.Pull {
	return gpio.PullUp
}

func (p *pcfPin) Out(l gpio.Level) error {
	return p.e.write(1<<p.n, l)
}

func (p *pcfPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("pcf8574: PWM not supported")
}

var _ gpio.PinIO = &pcfPin{}
