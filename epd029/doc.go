// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epd029 controls the 2.9" 128x296 e-paper panels used as wyldcard
// cards.
//
// Two controller generations are supported, selected at construction time:
//
//   - Legacy: Good Display GDEW029T5D (UC8151-class register map), fitted to
//     the plinth DevKit and Prototype boards. Busy is active low.
//   - Current: Good Display GDEY029T94 (SSD1680-class register map). Busy is
//     active high.
//
// Both generations accept the same frame layout: 128 pixels per row, 296
// rows, 2 bits per pixel, most significant bits first, 0 being black and 3
// being white. Use the image2bit package to build such a frame.
//
// Register values and waveform tables follow the Good Display reference
// code for both panels.
package epd029
