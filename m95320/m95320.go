// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package m95320 drives the ST M95320 32 Kbit SPI EEPROM fitted to every
// wyldcard.
//
// Chip select is driven as a plain GPIO so the chip can sit behind an I/O
// expander, sharing the SPI bus with the e-paper controller.
package m95320

import (
	"errors"
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Instructions
const (
	writeEnable byte = 0x06
	readStatus  byte = 0x05
	read        byte = 0x03
	write       byte = 0x02
)

const statusWIP byte = 0x01

const (
	// Size is the capacity in bytes.
	Size = 4096
	// PageSize is the largest span a single write cycle can program.
	PageSize = 32

	// readChunk keeps each transfer under the spidev default buffer size.
	readChunk = 256

	pollInterval = time.Millisecond
	// The datasheet gives 5ms per write cycle.
	maxPolls = 20
)

// ErrWriteTimeout is returned when a write cycle did not complete in time.
var ErrWriteTimeout = errors.New("m95320: write cycle did not complete")

// Dev is an open handle to the EEPROM.
type Dev struct {
	c     conn.Conn
	cs    gpio.PinOut
	sleep func(time.Duration)
}

// New connects to the EEPROM on p.
func New(p spi.Port, cs gpio.PinOut) (*Dev, error) {
	c, err := p.Connect(5*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, err
	}
	return NewConn(c, cs)
}

// NewConn returns a Dev over an already connected port.
func NewConn(c conn.Conn, cs gpio.PinOut) (*Dev, error) {
	if err := cs.Out(gpio.High); err != nil {
		return nil, err
	}
	return &Dev{c: c, cs: cs, sleep: time.Sleep}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("m95320{%s, %s}", d.c, d.cs)
}

// Size returns the capacity in bytes.
func (d *Dev) Size() int64 {
	return Size
}

// ReadAt implements io.ReaderAt.
func (d *Dev) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("m95320: negative offset")
	}
	if off >= Size {
		return 0, io.EOF
	}
	want := len(p)
	if rem := Size - off; int64(want) > rem {
		p = p[:rem]
	}

	n := 0
	for n < len(p) {
		chunk := len(p) - n
		if chunk > readChunk {
			chunk = readChunk
		}
		w := make([]byte, 3+chunk)
		r := make([]byte, 3+chunk)
		setCommand(w, read, off+int64(n))
		if err := d.tx(w, r); err != nil {
			return n, err
		}
		n += copy(p[n:], r[3:])
	}
	if n < want {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Writes are split on page boundaries and
// each page waits for its write cycle to finish.
func (d *Dev) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > Size {
		return 0, fmt.Errorf("m95320: write of %d bytes at %d exceeds %d bytes", len(p), off, Size)
	}

	n := 0
	for n < len(p) {
		addr := off + int64(n)
		chunk := PageSize - int(addr%PageSize)
		if chunk > len(p)-n {
			chunk = len(p) - n
		}
		if err := d.tx([]byte{writeEnable}, nil); err != nil {
			return n, err
		}
		w := make([]byte, 3+chunk)
		setCommand(w, write, addr)
		copy(w[3:], p[n:n+chunk])
		if err := d.tx(w, nil); err != nil {
			return n, err
		}
		if err := d.waitWrite(); err != nil {
			return n, err
		}
		n += chunk
	}
	return n, nil
}

// Status returns the status register.
func (d *Dev) Status() (byte, error) {
	var r [2]byte
	if err := d.tx([]byte{readStatus, 0}, r[:]); err != nil {
		return 0, err
	}
	return r[1], nil
}

func (d *Dev) waitWrite() error {
	for i := 0; i < maxPolls; i++ {
		s, err := d.Status()
		if err != nil {
			return err
		}
		if s&statusWIP == 0 {
			return nil
		}
		d.sleep(pollInterval)
	}
	return ErrWriteTimeout
}

// tx runs one chip select framed transfer.
func (d *Dev) tx(w, r []byte) error {
	if err := d.cs.Out(gpio.Low); err != nil {
		return err
	}
	err := d.c.Tx(w, r)
	if err2 := d.cs.Out(gpio.High); err == nil {
		err = err2
	}
	return err
}

func setCommand(w []byte, cmd byte, addr int64) {
	w[0] = cmd
	w[1] = byte(addr >> 8)
	w[2] = byte(addr)
}

var _ io.ReaderAt = &Dev{}
var _ io.WriterAt = &Dev{}
