// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package plinth

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

func expanderPins(prefix string, n int) []gpio.PinIO {
	pins := make([]gpio.PinIO, n)
	for i := range pins {
		pins[i] = &gpiotest.Pin{N: fmt.Sprintf("%s_%d", prefix, i), Num: i}
	}
	return pins
}

func hostPins(name string) gpio.PinIO {
	return &gpiotest.Pin{N: name}
}

func TestResolve(t *testing.T) {
	for _, tc := range []struct {
		board    *Board
		pins     [][]gpio.PinIO
		wantBusy []string
	}{
		{
			board:    &DevKitV1,
			pins:     [][]gpio.PinIO{expanderPins("E0", 16)},
			wantBusy: []string{"E0_1", "E0_5", "E0_9", "E0_13"},
		},
		{
			board:    &Prototype,
			pins:     [][]gpio.PinIO{expanderPins("E0", 8), expanderPins("E1", 8)},
			wantBusy: []string{"E0_1", "E0_5", "E1_1", "E1_5"},
		},
	} {
		t.Run(tc.board.Name, func(t *testing.T) {
			wells, err := tc.board.resolve(tc.pins, hostPins)
			if err != nil {
				t.Fatal(err)
			}
			if len(wells) != 4 {
				t.Fatalf("resolve() = %d wells", len(wells))
			}
			for i, w := range wells {
				if got := w.Busy.Name(); got != tc.wantBusy[i] {
					t.Errorf("well %d busy = %s, want %s", i, got, tc.wantBusy[i])
				}
			}
			if got := wells[3].Switches[C].Name(); got != "GPIO20" {
				t.Errorf("well 3 switch c = %s", got)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	if _, err := DevKitV1.resolve([][]gpio.PinIO{expanderPins("E0", 8)}, hostPins); err == nil {
		t.Error("resolve() accepted a short expander")
	}
	if _, err := Prototype.resolve([][]gpio.PinIO{expanderPins("E0", 8)}, hostPins); err == nil {
		t.Error("resolve() accepted a missing expander")
	}
	none := func(string) gpio.PinIO { return nil }
	if _, err := DevKitV1.resolve([][]gpio.PinIO{expanderPins("E0", 16)}, none); err == nil {
		t.Error("resolve() accepted a missing switch pin")
	}
}

func TestBoardByName(t *testing.T) {
	for _, name := range []string{"devkit", "prototype"} {
		b, err := BoardByName(name)
		if err != nil || b.Name != name {
			t.Errorf("BoardByName(%q) = %v, %v", name, b, err)
		}
	}
	if _, err := BoardByName("v2"); err == nil {
		t.Error("BoardByName() accepted an unknown board")
	}
}

func TestOpenExpandersUnsupported(t *testing.T) {
	b := Board{Expanders: []Expander{{Kind: "MCP23017", Addr: 0x20}}}
	if _, err := b.openExpanders(nil, zerolog.Nop()); err == nil {
		t.Error("openExpanders() accepted an unknown chip")
	}
}
