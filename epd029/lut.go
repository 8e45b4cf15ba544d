// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

// LegacyLUT is the register waveform set of the legacy controller. Each
// table is seven 6-byte phases; VCOM carries two trailing bytes.
type LegacyLUT struct {
	VCOM [44]byte
	WW   [42]byte // white to white
	BW   [42]byte // black to white
	WB   [42]byte // white to black
	BB   [42]byte // black to black
}

// CurrentLUT is the waveform written with writeLUTRegister on the current
// controller: 60 bytes of voltage selection, 84 bytes of phase timing and 9
// bytes of frame rate and gate/source levels.
type CurrentLUT [153]byte

// FourGrayLegacy drives the legacy controller through four gray levels.
var FourGrayLegacy = LegacyLUT{
	VCOM: [44]byte{
		0x00, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x60, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x00, 0x14, 0x00, 0x00, 0x00, 0x01,
		0x00, 0x13, 0x0A, 0x01, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00,
	},
	WW: [42]byte{
		0x40, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x90, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x10, 0x14, 0x0A, 0x00, 0x00, 0x01,
		0xA0, 0x13, 0x01, 0x00, 0x00, 0x01,
	},
	BW: [42]byte{
		0x40, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x90, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x00, 0x14, 0x0A, 0x00, 0x00, 0x01,
		0x99, 0x0C, 0x01, 0x03, 0x04, 0x01,
	},
	WB: [42]byte{
		0x40, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x90, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x00, 0x14, 0x0A, 0x00, 0x00, 0x01,
		0x99, 0x0B, 0x04, 0x04, 0x01, 0x01,
	},
	BB: [42]byte{
		0x80, 0x0A, 0x00, 0x00, 0x00, 0x01,
		0x90, 0x14, 0x14, 0x00, 0x00, 0x01,
		0x20, 0x14, 0x0A, 0x00, 0x00, 0x01,
		0x50, 0x13, 0x01, 0x00, 0x00, 0x01,
	},
}

// FourGrayCurrent drives the current controller through four gray levels.
var FourGrayCurrent = CurrentLUT{
	0x50, 0x90, 0xA0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x40, 0x90, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x80, 0x90, 0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xA0, 0x90, 0x50, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

	0x01, 0x09, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x02, 0x13, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x09, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,

	0x22, 0x22, 0x22, 0x22, 0x22, 0x22, 0x00, 0x00, 0x00,
}

// loadLegacyLUT writes the five legacy tables in register order.
func loadLegacyLUT(ctrl controller, lut *LegacyLUT) {
	ctrl.sendCommandData(lutVCOM, lut.VCOM[:])
	ctrl.sendCommandData(lutWW, lut.WW[:])
	ctrl.sendCommandData(lutBW, lut.BW[:])
	ctrl.sendCommandData(lutWB, lut.WB[:])
	ctrl.sendCommandData(lutBB, lut.BB[:])
}
