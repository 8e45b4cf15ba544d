// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Commands of the current (SSD1680-class) controller.
const (
	driverOutputControl            byte = 0x01
	gateDrivingVoltageControl      byte = 0x03
	sourceDrivingVoltageControl    byte = 0x04
	deepSleepMode                  byte = 0x10
	dataEntryModeSetting           byte = 0x11
	swReset                        byte = 0x12
	tempSensorSelect               byte = 0x18
	masterActivation               byte = 0x20
	displayUpdateControl1          byte = 0x21
	displayUpdateControl2          byte = 0x22
	writeRAMBW                     byte = 0x24
	writeRAMRed                    byte = 0x26
	vcomRegisterWrite              byte = 0x2C
	writeLUTRegister               byte = 0x32
	borderWaveformControl          byte = 0x3C
	endOptionEOPT                  byte = 0x3F
	setRAMXAddressStartEndPosition byte = 0x44
	setRAMYAddressStartEndPosition byte = 0x45
	setRAMXAddressCounter          byte = 0x4E
	setRAMYAddressCounter          byte = 0x4F
	setAnalogBlockControl          byte = 0x74
	setDigitalBlockControl         byte = 0x7E
)

// Flags for the displayUpdateControl2 command
const (
	displayUpdateDisableClock byte = 1 << iota
	displayUpdateDisableAnalog
	displayUpdateDisplay
	displayUpdateMode2
	displayUpdateLoadLUTFromOTP
	displayUpdateLoadTemperature
	displayUpdateEnableClock
	displayUpdateEnableAnalog
)

const (
	// 0xF7: full update with the OTP waveform for the sensed temperature.
	updateMono = displayUpdateEnableClock | displayUpdateEnableAnalog |
		displayUpdateLoadTemperature | displayUpdateLoadLUTFromOTP |
		displayUpdateDisplay | displayUpdateDisableAnalog | displayUpdateDisableClock
	// 0xC7: full update with the waveform already in the LUT register.
	updateGray = displayUpdateEnableClock | displayUpdateEnableAnalog |
		displayUpdateDisplay | displayUpdateDisableAnalog | displayUpdateDisableClock

	currentIdleTimeout = 6 * time.Second
)

// The panel has 296 gate lines (0x0127 + 1) and 16 bytes of 8 source pixels.
var currentMono = variant{
	name:      "GDEY029T94",
	busyLevel: gpio.High,
	timeout:   currentIdleTimeout,
	init: []step{
		pulseReset(1),
		awaitIdle(),
		send(swReset),
		awaitIdle(),
		send(driverOutputControl, 0x27, 0x01, 0x00),
		sendFused(dataEntryModeSetting, 0x01),
		send(setRAMXAddressStartEndPosition, 0x00, 0x0F),
		send(setRAMYAddressStartEndPosition, 0x27, 0x01, 0x00, 0x00),
		sendFused(borderWaveformControl, 0x05),
		send(displayUpdateControl1, 0x00, 0x80),
		sendFused(tempSensorSelect, 0x80),
		send(setRAMXAddressCounter, 0x00),
		send(setRAMYAddressCounter, 0x27, 0x01),
		awaitIdle(),
	},
	order:  LowFirst,
	planeA: writeRAMBW,
	planeB: writeRAMRed,
	refresh: []step{
		sendFused(displayUpdateControl2, updateMono),
		send(masterActivation),
		awaitIdle(),
	},
	sleep: []step{
		awaitIdle(),
		sendFused(deepSleepMode, 0x01),
		pause(settleDelay),
	},
}

var currentGray = variant{
	name:      "GDEY029T94",
	busyLevel: gpio.High,
	timeout:   currentIdleTimeout,
	init: []step{
		pulseReset(1),
		awaitIdle(),
		send(swReset),
		awaitIdle(),
		send(setAnalogBlockControl, 0x54),
		send(setDigitalBlockControl, 0x3B),
		send(driverOutputControl, 0x27, 0x01, 0x00),
		sendFused(dataEntryModeSetting, 0x03),
		send(setRAMXAddressStartEndPosition, 0x00, 0x0F),
		send(setRAMYAddressStartEndPosition, 0x00, 0x00, 0x27, 0x01),
		sendFused(borderWaveformControl, 0x00),
		sendFused(vcomRegisterWrite, 0x30),
		sendFused(endOptionEOPT, 0x22),
		// VGH 19V; VSH1 15V, VSH2 5V, VSL -15V.
		sendFused(gateDrivingVoltageControl, 0x15),
		send(sourceDrivingVoltageControl, 0x41, 0xA8, 0x32),
		send(writeLUTRegister, FourGrayCurrent[:]...),
		send(displayUpdateControl1, 0x88, 0x80),
		sendFused(tempSensorSelect, 0x80),
		send(setRAMXAddressCounter, 0x00),
		send(setRAMYAddressCounter, 0x27, 0x01),
		awaitIdle(),
	},
	order:  LowFirst,
	planeA: writeRAMBW,
	planeB: writeRAMRed,
	refresh: []step{
		sendFused(displayUpdateControl2, updateGray),
		send(masterActivation),
		awaitIdle(),
	},
	sleep: currentMono.sleep,
}
