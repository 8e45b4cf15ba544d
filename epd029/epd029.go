// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/rs/zerolog"
	"github.com/wyldcard/devices/epd029/image2bit"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3/rpi"
)

// Generation is the controller family fitted to the panel.
type Generation uint8

const (
	// Legacy is the GDEW029T5D panel.
	Legacy Generation = iota
	// Current is the GDEY029T94 panel.
	Current
)

func (g Generation) String() string {
	if g == Current {
		return "current"
	}
	return "legacy"
}

// ColorMode selects between black and white and 4 level gray rendering.
type ColorMode uint8

const (
	// FourGray renders black, dark gray, light gray and white.
	FourGray ColorMode = iota
	// Monochrome renders black and white only.
	Monochrome
)

func (m ColorMode) String() string {
	if m == Monochrome {
		return "mono"
	}
	return "gray"
}

// State is the lifecycle position of the controller.
type State uint8

const (
	// Off is the state before Start, and after a failed operation.
	Off State = iota
	// Ready accepts Display and Sleep.
	Ready
	// Asleep needs Start before the next frame.
	Asleep
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Asleep:
		return "Asleep"
	default:
		return "Off"
	}
}

// Opts defines the structure of the display configuration.
type Opts struct {
	Generation Generation
	Mode       ColorMode
	// WaitForEdge sleeps on busy line edges instead of a fixed interval. The
	// busy pin must support edge detection.
	WaitForEdge bool
	// Logger receives debug traces. Nil disables logging.
	Logger *zerolog.Logger
}

// GDEW029T5D is the legacy panel in 4 level gray.
var GDEW029T5D = Opts{Generation: Legacy, Mode: FourGray}

// GDEW029T5DMono is the legacy panel in black and white, using the OTP
// waveform. Unlike GDEW029T5D, no waveform tables are written before each
// frame.
var GDEW029T5DMono = Opts{Generation: Legacy, Mode: Monochrome}

// GDEY029T94 is the current panel in black and white.
var GDEY029T94 = Opts{Generation: Current, Mode: Monochrome}

// GDEY029T94Gray is the current panel in 4 level gray.
var GDEY029T94Gray = Opts{Generation: Current, Mode: FourGray}

// variant holds everything that differs between controller generations and
// color modes.
type variant struct {
	name      string
	busyLevel gpio.Level
	timeout   time.Duration
	init      []step
	// lut is reloaded before every frame when set.
	lut     *LegacyLUT
	order   PlaneOrder
	planeA  byte
	planeB  byte
	refresh []step
	sleep   []step
}

func lookupVariant(g Generation, m ColorMode) (*variant, error) {
	switch {
	case g == Legacy && m == FourGray:
		return &legacyGray, nil
	case g == Legacy && m == Monochrome:
		return &legacyMono, nil
	case g == Current && m == FourGray:
		return &currentGray, nil
	case g == Current && m == Monochrome:
		return &currentMono, nil
	}
	return nil, fmt.Errorf("epd029: unsupported configuration %d/%d", g, m)
}

// Dev defines the handler which is used to access the display.
type Dev struct {
	c conn.Conn

	dc   gpio.PinOut
	cs   gpio.PinOut
	rst  gpio.PinOut
	busy gpio.PinIn

	v      *variant
	mode   ColorMode
	idle   idlePoller
	sleep  func(time.Duration)
	log    zerolog.Logger
	state  State
	buffer *image2bit.Image
}

// New creates new handler which is used to access the display.
func New(p spi.Port, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	c, err := p.Connect(10*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	return NewConn(c, dc, cs, rst, busy, opts)
}

// NewConn is like New on an already connected SPI port. Panels sharing one
// port each get their own Dev over the same conn.Conn.
func NewConn(c conn.Conn, dc, cs, rst gpio.PinOut, busy gpio.PinIn, opts *Opts) (*Dev, error) {
	v, err := lookupVariant(opts.Generation, opts.Mode)
	if err != nil {
		return nil, err
	}

	edge := gpio.NoEdge
	if opts.WaitForEdge {
		edge = gpio.BothEdges
	}
	if err := busy.In(gpio.Float, edge); err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("panel", v.name).Stringer("mode", opts.Mode).Logger()
	}

	d := &Dev{
		c:      c,
		dc:     dc,
		cs:     cs,
		rst:    rst,
		busy:   busy,
		v:      v,
		mode:   opts.Mode,
		sleep:  time.Sleep,
		log:    log,
		buffer: image2bit.New(image.Rect(0, 0, Width, Height)),
		idle: idlePoller{
			busy:      busy,
			busyLevel: v.busyLevel,
			timeout:   v.timeout,
			edges:     opts.WaitForEdge,
			now:       time.Now,
			sleep:     time.Sleep,
			log:       log,
		},
	}

	// Default color
	draw.Src.Draw(d.buffer, d.buffer.Bounds(), &image.Uniform{C: image2bit.White}, image.Point{})

	return d, nil
}

// NewHat creates new handler with the pins of a Waveshare style e-paper HAT.
func NewHat(p spi.Port, opts *Opts) (*Dev, error) {
	dc := rpi.P1_22
	cs := rpi.P1_24
	rst := rpi.P1_11
	busy := rpi.P1_18
	return New(p, dc, cs, rst, busy, opts)
}

// State returns the lifecycle state of the controller.
func (d *Dev) State() State {
	return d.state
}

// Start resets the controller and configures it for the selected mode. It
// must be called before the first frame and again after Sleep.
//
// On the legacy generation it returns a *PresenceError when no panel
// answers on the lines.
func (d *Dev) Start() error {
	d.log.Debug().Msg("starting controller")
	d.state = Off

	eh := errorHandler{d: d}
	eh.csOut(gpio.High)
	presence := runSequence(&eh, d.v.init)

	if eh.err != nil {
		return eh.err
	}
	if presence != nil {
		d.log.Debug().Err(presence).Msg("no panel")
		return presence
	}
	d.state = Ready
	return nil
}

// Display uploads a frame and refreshes the panel. frame holds 2 bits per
// pixel, row by row, as produced by image2bit.
func (d *Dev) Display(frame []byte) error {
	if d.state != Ready {
		return ErrNotReady
	}
	a, b, err := Encode(frame, d.v.order)
	if err != nil {
		return err
	}

	start := time.Now()
	eh := errorHandler{d: d}
	writeFrame(&eh, d.v, a, b)
	if eh.err != nil {
		d.state = Off
		return eh.err
	}
	d.log.Debug().Dur("took", time.Since(start)).Msg("frame displayed")
	return nil
}

// Sleep makes the controller enter deep sleep mode. It can be woken up by
// calling Start again.
func (d *Dev) Sleep() error {
	if d.state != Ready {
		return ErrNotReady
	}
	eh := errorHandler{d: d}
	_ = runSequence(&eh, d.v.sleep)
	if eh.err != nil {
		d.state = Off
		return eh.err
	}
	d.state = Asleep
	d.log.Debug().Msg("asleep")
	return nil
}

// Clear fills the display with a single color.
func (d *Dev) Clear(c color.Color) error {
	return d.Draw(d.buffer.Bounds(), &image.Uniform{C: c}, image.Point{})
}

// ColorModel returns image1bit.BitModel in monochrome mode and
// image2bit.GrayModel otherwise.
func (d *Dev) ColorModel() color.Model {
	if d.mode == Monochrome {
		return image1bit.BitModel
	}
	return image2bit.GrayModel
}

// Bounds returns the bounds of the panel.
func (d *Dev) Bounds() image.Rectangle {
	return d.buffer.Bounds()
}

// Draw draws the given image to the display. The whole panel is refreshed.
func (d *Dev) Draw(dstRect image.Rectangle, src image.Image, srcPts image.Point) error {
	r := dstRect.Intersect(d.buffer.Bounds())
	model := d.ColorModel()
	delta := srcPts.Sub(dstRect.Min)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			d.buffer.Set(x, y, model.Convert(src.At(x+delta.X, y+delta.Y)))
		}
	}
	return d.Display(d.buffer.Pix)
}

// Halt clears the display and puts the controller to sleep.
func (d *Dev) Halt() error {
	if err := d.Clear(image2bit.White); err != nil {
		return err
	}
	return d.Sleep()
}

// String returns a string containing configuration information.
func (d *Dev) String() string {
	return fmt.Sprintf("epd.Dev{%s, %s, %s %s, Width: %d, Height: %d}", d.c, d.dc, d.v.name, d.mode, Width, Height)
}

var _ display.Drawer = &Dev{}
