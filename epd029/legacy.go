// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"periph.io/x/conn/v3/gpio"
)

// Commands of the legacy (UC8151-class) controller.
const (
	panelSetting           byte = 0x00
	powerSetting           byte = 0x01
	powerOff               byte = 0x02
	powerOnCmd             byte = 0x04
	boosterSoftStart       byte = 0x06
	deepSleep              byte = 0x07
	dataStartTransmission1 byte = 0x10
	displayRefresh         byte = 0x12
	dataStartTransmission2 byte = 0x13
	lutVCOM                byte = 0x20
	lutWW                  byte = 0x21
	lutBW                  byte = 0x22
	lutWB                  byte = 0x23
	lutBB                  byte = 0x24
	vcomAndDataInterval    byte = 0x50
	vcomDCSetting          byte = 0x82
)

const (
	// 128x296, LUT from registers, black/white, scan up, shift right, booster
	// on, no soft reset.
	panelLUTFromRegister byte = 0xBF

	// Same, with the waveform taken from OTP.
	panelLUTFromOTP byte = 0x9F

	deepSleepCheck byte = 0xA5
)

func legacyInit(panel byte) []step {
	return []step{
		pulseReset(3),
		sendFused(boosterSoftStart, 0x17, 0x17, 0x17),
		// VDS/VDG internal, VCOM 16V, VDH/VDL 11V, VDHR 4.2V.
		sendFused(powerSetting, 0x03, 0x00, 0x2B, 0x2B, 0x13),
		powerOn(powerOnCmd),
		sendFused(panelSetting, panel),
		sendFused(vcomDCSetting, 0x12),
		sendFused(vcomAndDataInterval, 0x97),
	}
}

var legacySleep = []step{
	awaitIdle(),
	sendFused(vcomAndDataInterval, 0xF7),
	send(powerOff),
	awaitIdle(),
	sendFused(deepSleep, deepSleepCheck),
}

var legacyRefresh = []step{
	send(displayRefresh),
	pause(settleDelay),
	awaitIdle(),
}

var legacyGray = variant{
	name:      "GDEW029T5D",
	busyLevel: gpio.Low,
	init:      legacyInit(panelLUTFromRegister),
	lut:       &FourGrayLegacy,
	order:     HighFirst,
	planeA:    dataStartTransmission1,
	planeB:    dataStartTransmission2,
	refresh:   legacyRefresh,
	sleep:     legacySleep,
}

var legacyMono = variant{
	name:      "GDEW029T5D",
	busyLevel: gpio.Low,
	init:      legacyInit(panelLUTFromOTP),
	order:     HighFirst,
	planeA:    dataStartTransmission1,
	planeB:    dataStartTransmission2,
	refresh:   legacyRefresh,
	sleep:     legacySleep,
}
