// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wyldcard/devices/epd029"
	"github.com/wyldcard/devices/plinth"
)

// cards is the part of a plinth the daemon drives.
type cards interface {
	Wells() int
	Display(well int, frame []byte) error
	LoadData(well int, v any) error
	StoreData(well int, v any) error
}

// record is kept as JSON in the memory of each card.
type record struct {
	Displays  int    `json:"displays"`
	LastImage string `json:"last_image,omitempty"`
}

type app struct {
	cfg   *Config
	mode  epd029.ColorMode
	cards cards
	log   zerolog.Logger

	// mu serializes read-modify-write of card records between the switch
	// loop and scheduled refreshes.
	mu sync.Mutex
}

func (a *app) record(well int) record {
	var r record
	if err := a.cards.LoadData(well, &r); err != nil && !errors.Is(err, plinth.ErrNoData) {
		a.log.Warn().Err(err).Int("well", well).Msg("unreadable card record, starting over")
		return record{}
	}
	return r
}

// display draws img on the card and counts it in the card record.
func (a *app) display(well int, img image.Image, r record) error {
	frame := quantize(img, a.mode)
	if err := a.cards.Display(well, frame.Pix); err != nil {
		return err
	}
	r.Displays++
	if err := a.cards.StoreData(well, &r); err != nil {
		return fmt.Errorf("well %d: storing record: %w", well, err)
	}
	a.log.Info().Int("well", well).Int("displays", r.Displays).Str("image", r.LastImage).Msg("card updated")
	return nil
}

// showPicture displays the picture at path, or a random one from the
// collection when path is empty.
func (a *app) showPicture(well int, path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := a.record(well)
	if path == "" {
		var err error
		if path, err = pickImage(a.cfg.CollectionDir(), r.LastImage); err != nil {
			return err
		}
	}
	img, err := loadPicture(path)
	if err != nil {
		return err
	}
	if a.cfg.Caption {
		if img, err = stamp(img, fmt.Sprintf("#%d", r.Displays+1)); err != nil {
			return err
		}
	}
	r.LastImage = filepath.Base(path)
	return a.display(well, img, r)
}

// showText displays text, or the card counter when text is empty.
func (a *app) showText(well int, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := a.record(well)
	if text == "" {
		text = fmt.Sprintf("well %d\n%d displays", well, r.Displays)
	}
	img, err := textCard(text)
	if err != nil {
		return err
	}
	return a.display(well, img, r)
}

// handleChord maps a chord to a card action: a and c together show the card
// counter, all three blank the card, anything else draws a new picture.
func (a *app) handleChord(c plinth.Chord) {
	log := a.log.With().Int("well", c.Well).Stringer("chord", chordString(c.Buttons)).Logger()
	log.Debug().Msg("chord")

	var err error
	switch {
	case len(c.Buttons) == 3:
		err = a.showText(c.Well, " ")
	case len(c.Buttons) == 2 && slices.Contains(c.Buttons, plinth.A) && slices.Contains(c.Buttons, plinth.C):
		err = a.showText(c.Well, "")
	default:
		err = a.showPicture(c.Well, "")
	}
	a.report(log, err)
}

// refreshAll draws a new picture on every card.
func (a *app) refreshAll() {
	for well := 0; well < a.cards.Wells(); well++ {
		a.report(a.log.With().Int("well", well).Logger(), a.showPicture(well, ""))
	}
}

func (a *app) report(log zerolog.Logger, err error) {
	switch {
	case err == nil:
	case errors.Is(err, epd029.ErrNotConnected):
		log.Debug().Msg("empty well")
	default:
		log.Error().Err(err).Msg("card update failed")
	}
}

type chordString []plinth.Button

func (c chordString) String() string {
	s := ""
	for _, b := range c {
		s += b.String()
	}
	return s
}
