// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package plinth

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wyldcard/devices/epd029"
	"github.com/wyldcard/devices/m95320"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Well is one card slot with its lines resolved.
type Well struct {
	Reset gpio.PinOut
	Busy  gpio.PinIn
	CS    gpio.PinOut
	MemCS gpio.PinOut
	// Switches a, b and c.
	Switches [3]gpio.PinIn
}

// Opts holds the plinth configuration.
type Opts struct {
	// Panel selects the controller generation and color mode of the cards.
	Panel epd029.Opts
	// Logger receives debug traces. Nil disables logging.
	Logger *zerolog.Logger
}

// Dev is a plinth: a set of wells sharing one SPI bus and one data/command
// line.
type Dev struct {
	c     conn.Conn
	dc    gpio.PinOut
	wells []Well
	panel epd029.Opts
	log   zerolog.Logger

	// token is the bus owner token. Whoever holds it may drive the SPI bus,
	// the data/command line and the chip selects.
	token chan struct{}
}

// New opens the expanders of board on bus and connects to the cards over p.
func New(bus i2c.Bus, p spi.Port, board *Board, opts *Opts) (*Dev, error) {
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	expanders, err := board.openExpanders(bus, log)
	if err != nil {
		return nil, err
	}
	wells, err := board.resolve(expanders, gpioreg.ByName)
	if err != nil {
		return nil, err
	}
	dc := gpioreg.ByName(board.DC)
	if dc == nil {
		return nil, fmt.Errorf("plinth: no pin %s", board.DC)
	}
	return NewWells(c, dc, wells, opts)
}

// NewWells returns a Dev over already resolved lines.
func NewWells(c conn.Conn, dc gpio.PinOut, wells []Well, opts *Opts) (*Dev, error) {
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	d := &Dev{
		c:     c,
		dc:    dc,
		wells: wells,
		panel: opts.Panel,
		log:   log,
		token: make(chan struct{}, 1),
	}
	d.token <- struct{}{}

	// Park every chip select so cards ignore the shared bus.
	for i, w := range wells {
		if err := w.CS.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("plinth: well %d: %w", i, err)
		}
		if err := w.MemCS.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("plinth: well %d: %w", i, err)
		}
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("plinth{%s, %s, wells: %d}", d.c, d.dc, len(d.wells))
}

// Wells returns the number of wells.
func (d *Dev) Wells() int {
	return len(d.wells)
}

func (d *Dev) well(i int) (*Well, error) {
	if i < 0 || i >= len(d.wells) {
		return nil, fmt.Errorf("plinth: no well %d", i)
	}
	return &d.wells[i], nil
}

// acquire takes the bus owner token; release hands it back.
func (d *Dev) acquire() {
	<-d.token
}

func (d *Dev) release() {
	d.token <- struct{}{}
}

// Display shows frame on the card in well i: the controller is started, the
// frame drawn and the controller put back to sleep. An empty well reports
// epd029.ErrNotConnected.
func (d *Dev) Display(i int, frame []byte) error {
	w, err := d.well(i)
	if err != nil {
		return err
	}
	log := d.log.With().Int("well", i).Logger()
	opts := d.panel
	opts.Logger = &log

	d.acquire()
	defer d.release()

	epd, err := epd029.NewConn(d.c, d.dc, w.CS, w.Reset, w.Busy, &opts)
	if err != nil {
		return err
	}
	if err := epd.Start(); err != nil {
		log.Info().Err(err).Msg("card did not start")
		return err
	}
	if err := epd.Display(frame); err != nil {
		return err
	}
	return epd.Sleep()
}

// memory returns the EEPROM of well i. The caller must hold the token.
func (d *Dev) memory(i int) (*m95320.Dev, error) {
	w, err := d.well(i)
	if err != nil {
		return nil, err
	}
	return m95320.NewConn(d.c, w.MemCS)
}

// ReadMemory fills buf from the start of the card memory in well i.
func (d *Dev) ReadMemory(i int, buf []byte) error {
	d.acquire()
	defer d.release()

	mem, err := d.memory(i)
	if err != nil {
		return err
	}
	_, err = mem.ReadAt(buf, 0)
	return err
}

// WriteMemory writes buf at the start of the card memory in well i.
func (d *Dev) WriteMemory(i int, buf []byte) error {
	d.acquire()
	defer d.release()

	mem, err := d.memory(i)
	if err != nil {
		return err
	}
	_, err = mem.WriteAt(buf, 0)
	return err
}
