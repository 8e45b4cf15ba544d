// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package m95320

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func newDev(t *testing.T, ops []conntest.IO) (*Dev, *conntest.Playback, *gpiotest.Pin) {
	pb := &conntest.Playback{Ops: ops}
	cs := &gpiotest.Pin{N: "CS"}
	d, err := NewConn(pb, cs)
	if err != nil {
		t.Fatal(err)
	}
	d.sleep = func(time.Duration) {}
	return d, pb, cs
}

func TestReadAt(t *testing.T) {
	d, pb, cs := newDev(t, []conntest.IO{
		{
			W: []byte{read, 0x01, 0x00, 0, 0, 0, 0},
			R: []byte{0, 0, 0, 'w', 'y', 'l', 'd'},
		},
	})

	got := make([]byte, 4)
	n, err := d.ReadAt(got, 0x100)
	if err != nil || n != 4 {
		t.Fatalf("ReadAt() = %d, %v", n, err)
	}
	if diff := cmp.Diff(got, []byte("wyld")); diff != "" {
		t.Errorf("ReadAt() difference (-got +want):\n%s", diff)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
	if cs.L != gpio.High {
		t.Error("chip select left asserted")
	}
}

func TestReadAtChunksAndEOF(t *testing.T) {
	w1 := append([]byte{read, 0x0E, 0x00}, make([]byte, readChunk)...)
	r1 := append([]byte{0, 0, 0}, bytes.Repeat([]byte{0xAB}, readChunk)...)
	w2 := append([]byte{read, 0x0F, 0x00}, make([]byte, readChunk)...)
	r2 := append([]byte{0, 0, 0}, bytes.Repeat([]byte{0xCD}, readChunk)...)
	d, pb, _ := newDev(t, []conntest.IO{{W: w1, R: r1}, {W: w2, R: r2}})

	got := make([]byte, 2*readChunk+10)
	n, err := d.ReadAt(got, Size-2*readChunk)
	if !errors.Is(err, io.EOF) || n != 2*readChunk {
		t.Fatalf("ReadAt() = %d, %v, want %d, EOF", n, err, 2*readChunk)
	}
	if got[0] != 0xAB || got[readChunk] != 0xCD {
		t.Errorf("ReadAt() chunks out of order: %#x %#x", got[0], got[readChunk])
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}

	if _, err := d.ReadAt(got, Size); !errors.Is(err, io.EOF) {
		t.Errorf("ReadAt(Size) = %v", err)
	}
}

func TestWriteAtSplitsPages(t *testing.T) {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}
	idle := conntest.IO{W: []byte{readStatus, 0}, R: []byte{0, 0}}
	busy := conntest.IO{W: []byte{readStatus, 0}, R: []byte{0, statusWIP}}
	d, pb, _ := newDev(t, []conntest.IO{
		{W: []byte{writeEnable}},
		{W: append([]byte{write, 0x00, 0x1E}, data[:2]...)},
		busy,
		idle,
		{W: []byte{writeEnable}},
		{W: append([]byte{write, 0x00, 0x20}, data[2:34]...)},
		idle,
		{W: []byte{writeEnable}},
		{W: append([]byte{write, 0x00, 0x40}, data[34:]...)},
		busy,
		busy,
		idle,
	})

	n, err := d.WriteAt(data, 30)
	if err != nil || n != len(data) {
		t.Fatalf("WriteAt() = %d, %v", n, err)
	}
	if err := pb.Close(); err != nil {
		t.Error(err)
	}
}

func TestWriteAtBounds(t *testing.T) {
	d, _, _ := newDev(t, nil)
	if _, err := d.WriteAt(make([]byte, 2), Size-1); err == nil {
		t.Error("WriteAt() past the end succeeded")
	}
	if _, err := d.WriteAt(nil, -1); err == nil {
		t.Error("WriteAt() at a negative offset succeeded")
	}
}

func TestWriteTimeout(t *testing.T) {
	ops := []conntest.IO{
		{W: []byte{writeEnable}},
		{W: []byte{write, 0x00, 0x00, 0x42}},
	}
	for i := 0; i < maxPolls; i++ {
		ops = append(ops, conntest.IO{W: []byte{readStatus, 0}, R: []byte{0, statusWIP}})
	}
	d, _, _ := newDev(t, ops)

	n, err := d.WriteAt([]byte{0x42}, 0)
	if !errors.Is(err, ErrWriteTimeout) || n != 0 {
		t.Errorf("WriteAt() = %d, %v, want ErrWriteTimeout", n, err)
	}
}

func TestString(t *testing.T) {
	d, _, _ := newDev(t, nil)
	if got := d.String(); got != "m95320{playback, CS(0)}" {
		t.Errorf("String() = %q", got)
	}
}
