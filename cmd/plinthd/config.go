// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/wyldcard/devices/epd029"
	"gopkg.in/yaml.v3"
)

// Config is the daemon configuration file.
type Config struct {
	// Board is "devkit" or "prototype".
	Board string `yaml:"board"`
	// Panel is the controller fitted to the cards: "GDEW029T5D" or
	// "GDEY029T94".
	Panel string `yaml:"panel"`
	// Mode is "gray" or "mono".
	Mode string `yaml:"mode"`
	// WaitForEdge sleeps on busy line edges. Only host GPIO busy lines
	// support it.
	WaitForEdge bool `yaml:"wait_for_edge"`

	// ImageDir holds one directory per collection.
	ImageDir   string `yaml:"image_dir"`
	Collection string `yaml:"collection"`

	// Refresh is a cron schedule redrawing every card. Empty disables it.
	Refresh string `yaml:"refresh"`
	// Caption stamps the display count on each picture.
	Caption bool `yaml:"caption"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Board:      "devkit",
		Panel:      "GDEW029T5D",
		Mode:       "gray",
		ImageDir:   "/home/pi/Pictures/wyldcard",
		Collection: "collectionB",
		Refresh:    "",
		Caption:    false,
		LogLevel:   "info",
	}
}

// Normalize fills in empty values.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Board == "" {
		c.Board = d.Board
	}
	if c.Panel == "" {
		c.Panel = d.Panel
	}
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.ImageDir == "" {
		c.ImageDir = d.ImageDir
	}
	if c.Collection == "" {
		c.Collection = d.Collection
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// PanelOpts returns the driver options of the configured panel.
func (c *Config) PanelOpts() (epd029.Opts, error) {
	var o epd029.Opts
	switch c.Panel {
	case "GDEW029T5D":
		o.Generation = epd029.Legacy
	case "GDEY029T94":
		o.Generation = epd029.Current
	default:
		return o, fmt.Errorf("unknown panel %q", c.Panel)
	}
	switch c.Mode {
	case "gray":
		o.Mode = epd029.FourGray
	case "mono":
		o.Mode = epd029.Monochrome
	default:
		return o, fmt.Errorf("unknown mode %q", c.Mode)
	}
	o.WaitForEdge = c.WaitForEdge
	return o, nil
}

// CollectionDir is the directory pictures are drawn from.
func (c *Config) CollectionDir() string {
	return filepath.Join(c.ImageDir, c.Collection)
}

// Load reads the YAML file at path. A missing file is created with the
// defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			return cfg, Save(path, cfg)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path through a temporary file in the same directory.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".plinthd-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
