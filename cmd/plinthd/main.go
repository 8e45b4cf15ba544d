// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// plinthd shows pictures on the cards of a wyldcard plinth.
//
// Pressing any switch beside a card draws a new picture from the configured
// collection. Pressing a and c together shows how many times the card was
// drawn, and all three switches blank it. The count lives in the card memory,
// so it follows the card from well to well.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/wyldcard/devices/epd029"
	"github.com/wyldcard/devices/plinth"
	"github.com/wyldcard/devices/screen2d"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// cronLogger forwards scheduler messages to zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

func mainImpl() error {
	configPath := flag.String("config", "/etc/plinthd/config.yaml", "path to the config file")
	once := flag.Bool("once", false, "update the cards once and exit")
	well := flag.Int("well", -1, "with -once, only update this well")
	imagePath := flag.String("image", "", "with -once, show this picture instead of a random one")
	text := flag.String("text", "", "with -once, show this text instead of a picture")
	previewFlag := flag.Bool("preview", false, "draw to the terminal instead of the plinth; implies -once")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	cfg, err := Load(*configPath)
	if err != nil {
		return err
	}
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	panel, err := cfg.PanelOpts()
	if err != nil {
		return err
	}
	a := &app{cfg: cfg, mode: panel.Mode, log: log}

	if *previewFlag {
		screen := screen2d.New(&screen2d.Opts{
			X:    epd029.Width,
			Y:    epd029.Height,
			Step: 2,
			W:    colorable.NewColorableStdout(),
		})
		defer screen.Halt()
		a.cards = newPreview(screen, 1)
		return runOnce(a, 0, *imagePath, *text)
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	board, err := plinth.BoardByName(cfg.Board)
	if err != nil {
		return err
	}
	bus, err := i2creg.Open("")
	if err != nil {
		return err
	}
	defer bus.Close()
	port, err := spireg.Open("")
	if err != nil {
		return err
	}
	defer port.Close()

	panelLog := log.With().Str("board", board.Name).Logger()
	p, err := plinth.New(bus, port, board, &plinth.Opts{Panel: panel, Logger: &panelLog})
	if err != nil {
		return err
	}
	log.Info().Stringer("plinth", p).Msg("ready")
	a.cards = p

	if *once {
		return runOnce(a, *well, *imagePath, *text)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Refresh != "" {
		c := cron.New(cron.WithLogger(cronLogger{log: log}))
		if _, err := c.AddFunc(cfg.Refresh, a.refreshAll); err != nil {
			return fmt.Errorf("refresh schedule %q: %w", cfg.Refresh, err)
		}
		c.Start()
		defer c.Stop()
	}

	events, err := p.Events(ctx)
	if err != nil {
		return err
	}
	a.refreshAll()
	for chord := range plinth.Chords(ctx, events, plinth.ChordWindow) {
		a.handleChord(chord)
	}
	log.Info().Msg("shutting down")
	return nil
}

// runOnce updates one well, or every well when well is negative.
func runOnce(a *app, well int, imagePath, text string) error {
	first, last := 0, a.cards.Wells()-1
	if well >= 0 {
		first, last = well, well
	}
	var errs []error
	for i := first; i <= last; i++ {
		var err error
		if text != "" {
			err = a.showText(i, text)
		} else {
			err = a.showPicture(i, imagePath)
		}
		if errors.Is(err, epd029.ErrNotConnected) && well < 0 {
			a.log.Debug().Int("well", i).Msg("empty well")
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("well %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "plinthd: %s.\n", err)
		os.Exit(1)
	}
}
