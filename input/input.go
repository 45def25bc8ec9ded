// Package input tracks held controls and edge-triggered action bindings.
//
// Key and button codes match raylib's so the game loop can forward raw
// events without translation.
package input

import (
	"fmt"
	"sync"
)

// Key is a keyboard key code.
type Key int32

// Key codes.
const (
	KeySpace       Key = 32
	KeyA           Key = 65
	KeyC           Key = 67
	KeyD           Key = 68
	KeyE           Key = 69
	KeyF           Key = 70
	KeyQ           Key = 81
	KeyR           Key = 82
	KeyS           Key = 83
	KeyW           Key = 87
	KeyRight       Key = 262
	KeyLeft        Key = 263
	KeyDown        Key = 264
	KeyUp          Key = 265
	KeyLeftShift   Key = 340
	KeyLeftControl Key = 341
)

var keyNames = map[string]Key{
	"Space":       KeySpace,
	"KeyA":        KeyA,
	"KeyC":        KeyC,
	"KeyD":        KeyD,
	"KeyE":        KeyE,
	"KeyF":        KeyF,
	"KeyQ":        KeyQ,
	"KeyR":        KeyR,
	"KeyS":        KeyS,
	"KeyW":        KeyW,
	"ArrowRight":  KeyRight,
	"ArrowLeft":   KeyLeft,
	"ArrowDown":   KeyDown,
	"ArrowUp":     KeyUp,
	"ShiftLeft":   KeyLeftShift,
	"ControlLeft": KeyLeftControl,
}

// ParseKey resolves a key name such as "KeyC" or "ControlLeft".
func ParseKey(name string) (Key, error) {
	k, ok := keyNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

// Button is a mouse button code.
type Button int32

// Mouse button codes.
const (
	ButtonLeft   Button = 0
	ButtonRight  Button = 1
	ButtonMiddle Button = 2
)

// Control is a logical movement control.
type Control uint8

const (
	Forward Control = iota
	Backward
	Left
	Right
	Jump
	Crouch
	numControls
)

// KeyMap binds keys to controls. Several keys may drive one control.
type KeyMap map[Key]Control

// DefaultKeyMap returns WASD plus arrows, Space for jump, and crouch on
// the given key and left control.
func DefaultKeyMap(crouch Key) KeyMap {
	return KeyMap{
		KeyW:           Forward,
		KeyUp:          Forward,
		KeyS:           Backward,
		KeyDown:        Backward,
		KeyA:           Left,
		KeyLeft:        Left,
		KeyD:           Right,
		KeyRight:       Right,
		KeySpace:       Jump,
		crouch:         Crouch,
		KeyLeftControl: Crouch,
	}
}

// Level is a snapshot of held controls.
type Level struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Jump     bool
	Crouch   bool
}

// Trigger identifies what fires an action: a key, or a mouse button when
// Mouse is set.
type Trigger struct {
	Key    Key
	Button Button
	Mouse  bool
}

// OnKey returns a key trigger.
func OnKey(k Key) Trigger { return Trigger{Key: k} }

// OnButton returns a mouse button trigger.
func OnButton(b Button) Trigger { return Trigger{Button: b, Mouse: true} }

// Binding fires Func once per press of Trigger.
type Binding struct {
	Trigger Trigger
	Func    func()
}

// State accumulates key and mouse events into held controls and fires
// bound actions on press edges. Safe for concurrent use.
type State struct {
	mu       sync.Mutex
	keys     KeyMap
	held     map[Trigger]bool
	counts   [numControls]int
	bindings map[int]Binding
	nextID   int
	closed   bool
}

// NewState creates a State using keys to map key codes to controls.
func NewState(keys KeyMap) *State {
	if keys == nil {
		keys = DefaultKeyMap(KeyC)
	}
	return &State{
		keys:     keys,
		held:     make(map[Trigger]bool),
		bindings: make(map[int]Binding),
	}
}

// HandleKey records a key transition.
func (s *State) HandleKey(k Key, down bool) {
	s.handle(OnKey(k), down)
}

// HandleMouse records a mouse button transition.
func (s *State) HandleMouse(b Button, down bool) {
	s.handle(OnButton(b), down)
}

func (s *State) handle(t Trigger, down bool) {
	s.mu.Lock()
	if s.closed || s.held[t] == down {
		s.mu.Unlock()
		return
	}

	if down {
		s.held[t] = true
	} else {
		delete(s.held, t)
	}
	if !t.Mouse {
		if c, ok := s.keys[t.Key]; ok {
			if down {
				s.counts[c]++
			} else {
				s.counts[c]--
			}
		}
	}

	var fire []func()
	if down {
		for _, b := range s.bindings {
			if b.Trigger == t {
				fire = append(fire, b.Func)
			}
		}
	}
	s.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
}

// Level returns the current held controls.
func (s *State) Level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Level{
		Forward:  s.counts[Forward] > 0,
		Backward: s.counts[Backward] > 0,
		Left:     s.counts[Left] > 0,
		Right:    s.counts[Right] > 0,
		Jump:     s.counts[Jump] > 0,
		Crouch:   s.counts[Crouch] > 0,
	}
}

// Bind registers an action and returns a function that removes it.
func (s *State) Bind(b Binding) (unbind func()) {
	if b.Func == nil {
		panic("input: Bind called with nil Func")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.bindings[id] = b
	return func() {
		s.mu.Lock()
		delete(s.bindings, id)
		s.mu.Unlock()
	}
}

// Close drops all bindings and held state. Later events are ignored.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.held = make(map[Trigger]bool)
	s.counts = [numControls]int{}
	s.bindings = make(map[int]Binding)
}
