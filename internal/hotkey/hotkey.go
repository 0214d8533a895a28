// Package hotkey provides a global hotkey listener using gohook.
// It supports "hold" mode (press to start, release to stop) and
// "toggle" mode (press to start, press again to stop).
package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// EventType indicates whether dictation should start or stop.
type EventType int

const (
	// EventStart signals that the hotkey was activated (start recording).
	EventStart EventType = iota
	// EventStop signals that the hotkey was deactivated (stop recording).
	EventStop
)

// Event is emitted on the channel returned by Events.
type Event struct {
	Type EventType
}

// Listener manages a global hotkey and emits start/stop events.
type Listener struct {
	keys []string
	mode string // "hold" or "toggle"
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// NewListener creates a Listener for the given key combo and mode.
// keys should be lowercase key names (e.g., ["ctrl", "shift", "r"]).
// mode must be "hold" or "toggle".
func NewListener(keys []string, mode string) *Listener {
	return &Listener{
		keys: keys,
		mode: mode,
		ch:   make(chan Event, 16),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives hotkey events.
// The channel is closed when Stop is called.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Start registers the hook and blocks until Stop is called.
// Run it in a goroutine.
func (l *Listener) Start() {
	if l.mode == "toggle" {
		l.registerToggle()
	} else {
		l.registerHold()
	}

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// registerHold wires hold-to-talk mode:
// KeyDown -> EventStart, KeyUp -> EventStop.
func (l *Listener) registerHold() {
	hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
		l.emit(EventStart)
	})
	hook.Register(hook.KeyUp, l.keys, func(e hook.Event) {
		l.emit(EventStop)
	})
}

// registerToggle wires toggle mode: each press flips between
// EventStart and EventStop.
func (l *Listener) registerToggle() {
	var mu sync.Mutex
	recording := false

	hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
		mu.Lock()
		defer mu.Unlock()
		if recording {
			l.emit(EventStop)
		} else {
			l.emit(EventStart)
		}
		recording = !recording
	})
}

// emit sends without blocking; events are dropped if the channel is full.
func (l *Listener) emit(t EventType) {
	select {
	case l.ch <- Event{Type: t}:
	default:
	}
}

// Stop terminates the hotkey listener.
// It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}
