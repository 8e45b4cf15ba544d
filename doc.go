// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices holds the drivers of the wyldcard plinth.
//
// epd029 drives the 2.9" e-paper panels of both controller generations,
// m95320 the card memory and plinth the base holding the cards. screen2d
// previews frames in a terminal, and cmd/plinthd ties them together.
package devices
