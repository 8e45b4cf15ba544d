// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package plinth drives a wyldcard plinth: a base holding several cards, each
// card carrying a 2.9" e-paper panel and a small EEPROM.
//
// Every well shares the SPI bus and the data/command line. Reset, busy and
// both chip selects of each well sit behind I²C I/O expanders, while the
// three switches beside each well are host GPIOs.
//
// All bus traffic goes through a single owner token, so Display and the
// memory calls may be used from several goroutines.
package plinth
