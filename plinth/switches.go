// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package plinth

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Button is one of the three switches beside a well, top to bottom.
type Button uint8

const (
	A Button = iota
	B
	C
)

func (b Button) String() string {
	switch b {
	case A:
		return "a"
	case B:
		return "b"
	case C:
		return "c"
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// ChordWindow is the longest gap between presses still read as one chord.
const ChordWindow = 35 * time.Millisecond

// edgePoll bounds each edge wait so cancellation is noticed.
const edgePoll = 100 * time.Millisecond

// Event is one switch press.
type Event struct {
	Well   int
	Button Button
	Time   time.Time
}

// Chord is the set of switches of one well pressed together, in first press
// order.
type Chord struct {
	Well    int
	Buttons []Button
}

// Events watches every switch of every well for rising edges. The channel is
// closed once ctx is done and all watchers have returned. If a switch cannot
// be armed, the ones already armed are returned to NoEdge.
func (d *Dev) Events(ctx context.Context) (<-chan Event, error) {
	var armed []gpio.PinIn
	for i, w := range d.wells {
		for j, p := range w.Switches {
			if err := p.In(gpio.PullUp, gpio.RisingEdge); err != nil {
				for _, a := range armed {
					_ = a.In(gpio.PullUp, gpio.NoEdge)
				}
				return nil, fmt.Errorf("plinth: well %d: switch %s: %w", i, Button(j), err)
			}
			armed = append(armed, p)
		}
	}

	out := make(chan Event)
	var wg sync.WaitGroup
	for i, w := range d.wells {
		for j, p := range w.Switches {
			wg.Add(1)
			go func(well int, b Button, p gpio.PinIn) {
				defer wg.Done()
				watch(ctx, well, b, p, out)
			}(i, Button(j), p)
		}
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

func watch(ctx context.Context, well int, b Button, p gpio.PinIn, out chan<- Event) {
	for ctx.Err() == nil {
		if !p.WaitForEdge(edgePoll) {
			continue
		}
		select {
		case out <- Event{Well: well, Button: b, Time: time.Now()}:
		case <-ctx.Done():
			return
		}
	}
}

// pending is the press buffer of one well.
type pending struct {
	buttons []Button
	times   []time.Time
	last    time.Time
	gen     int
	timer   *time.Timer
}

func (p *pending) add(e Event) {
	p.last = e.Time
	for k, b := range p.buttons {
		if b == e.Button {
			p.times[k] = e.Time
			return
		}
	}
	p.buttons = append(p.buttons, e.Button)
	p.times = append(p.times, e.Time)
}

// chord returns the buttons pressed within window of the last press.
func (p *pending) chord(window time.Duration) []Button {
	var out []Button
	for k, b := range p.buttons {
		if p.times[k].After(p.last.Add(-window)) {
			out = append(out, b)
		}
	}
	return out
}

type expiry struct {
	well int
	gen  int
}

// Chords groups presses into chords. Every press restarts the window of its
// well; when the window expires, the buttons pressed within window of the
// last press form a chord. Pending chords are flushed in well order when in
// is closed, and the returned channel is closed afterwards.
func Chords(ctx context.Context, in <-chan Event, window time.Duration) <-chan Chord {
	out := make(chan Chord)
	go func() {
		defer close(out)
		done := make(chan struct{})
		defer close(done)

		wells := map[int]*pending{}
		seq := 0
		expired := make(chan expiry)
		emit := func(well int) bool {
			p := wells[well]
			delete(wells, well)
			p.timer.Stop()
			select {
			case out <- Chord{Well: well, Buttons: p.chord(window)}:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for {
			select {
			case e, ok := <-in:
				if !ok {
					keys := make([]int, 0, len(wells))
					for well := range wells {
						keys = append(keys, well)
					}
					sort.Ints(keys)
					for _, well := range keys {
						if !emit(well) {
							return
						}
					}
					return
				}
				p := wells[e.Well]
				if p == nil {
					p = &pending{}
					wells[e.Well] = p
				} else {
					p.timer.Stop()
				}
				p.add(e)
				seq++
				p.gen = seq
				x := expiry{well: e.Well, gen: p.gen}
				p.timer = time.AfterFunc(window, func() {
					select {
					case expired <- x:
					case <-done:
					}
				})
			case x := <-expired:
				// Expiries of a window restarted since are stale.
				if p := wells[x.well]; p != nil && p.gen == x.gen {
					if !emit(x.well) {
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
