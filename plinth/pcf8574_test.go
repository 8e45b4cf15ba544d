// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package plinth

import (
	"testing"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

func TestPCF8574(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x21, W: []byte{0xFF}},
			// Reset line of the second well low.
			{Addr: 0x21, W: []byte{0xEF}},
			// Busy already released, so only the read goes out.
			{Addr: 0x21, R: []byte{0xCF}},
			{Addr: 0x21, W: []byte{0xFF}},
		},
	}
	e, err := newPCF8574(bus, 0x21, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if got := e.pins[5].Name(); got != "PCF8574_21_P5" {
		t.Errorf("Name() = %q", got)
	}

	rst, busy := e.pins[4], e.pins[5]
	if err := rst.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	// Writing the same level again stays off the bus.
	if err := rst.Out(gpio.Low); err != nil {
		t.Fatal(err)
	}
	if err := busy.In(gpio.Float, gpio.NoEdge); err != nil {
		t.Fatal(err)
	}
	if busy.Read() != gpio.Low {
		t.Error("busy read high")
	}
	if err := rst.Out(gpio.High); err != nil {
		t.Fatal(err)
	}
	if err := busy.In(gpio.Float, gpio.BothEdges); err == nil {
		t.Error("In() accepted edge detection")
	}
	if err := bus.Close(); err != nil {
		t.Error(err)
	}
}

func TestOpenExpandersPrototype(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x20, W: []byte{0xFF}},
			{Addr: 0x21, W: []byte{0xFF}},
		},
	}
	pins, err := Prototype.openExpanders(bus, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(pins) != 2 || len(pins[0]) != 8 || len(pins[1]) != 8 {
		t.Fatalf("openExpanders() = %d expanders", len(pins))
	}
	wells, err := Prototype.resolve(pins, hostPins)
	if err != nil {
		t.Fatal(err)
	}
	if got := wells[2].CS.Name(); got != "PCF8574_21_P2" {
		t.Errorf("well 2 chip select = %s", got)
	}
}
