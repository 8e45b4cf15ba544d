// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package plinth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wyldcard/devices/m95320"
)

// ErrNoData is returned by LoadData on a blank card memory.
var ErrNoData = errors.New("plinth: no data on card")

// StoreData writes v as JSON to the card memory in well i. The text is padded
// with spaces to the full memory size so stale bytes never trail the record.
func (d *Dev) StoreData(i int, v any) error {
	text, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if len(text) > m95320.Size {
		return fmt.Errorf("plinth: record of %d bytes exceeds the %d bytes of card memory", len(text), m95320.Size)
	}
	buf := bytes.Repeat([]byte{' '}, m95320.Size)
	copy(buf, text)
	return d.WriteMemory(i, buf)
}

// LoadData reads the JSON record of the card in well i into v.
func (d *Dev) LoadData(i int, v any) error {
	buf := make([]byte, m95320.Size)
	if err := d.ReadMemory(i, buf); err != nil {
		return err
	}
	// Erased cells read as 0xFF.
	text := bytes.Trim(buf, " \t\r\n\x00\xff")
	if len(text) == 0 {
		return ErrNoData
	}
	if err := json.Unmarshal(text, v); err != nil {
		return fmt.Errorf("plinth: well %d: %w", i, err)
	}
	return nil
}
