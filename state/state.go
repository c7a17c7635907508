package state

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Mode is the UI mode of the kiosk.
type Mode string

const (
	Walking         Mode = "walking"
	SettingsOpen    Mode = "settings_open"
	ExhibitInfoOpen Mode = "exhibit_info_open"
)

// EventType names an input event fed to the machine.
type EventType string

const (
	EventEscape            EventType = "escape"
	EventF1                EventType = "f1"
	EventTarget            EventType = "target"
	EventClick             EventType = "click"
	EventDialogClosed      EventType = "dialog_closed"
	EventSettingsSaved     EventType = "settings_saved"
	EventSettingsCancelled EventType = "settings_cancelled"
)

// Cursor icons.
const (
	CursorNormal = "normal"
	CursorHand   = "hand"
)

// ErrUnknownEvent is returned by Dispatch for unrecognized event types.
var ErrUnknownEvent = errors.New("unknown ui event")

// Event is one input to the machine. NodeID is the scene node under the
// camera ray for EventTarget; 0 means nothing is targeted.
type Event struct {
	Type   EventType `json:"type"`
	NodeID int       `json:"node_id,omitempty"`
}

// Transition is the outcome of one dispatched event: the new mode plus the
// side effects the renderer must carry out.
type Transition struct {
	Seq           uint64    `json:"seq"`
	At            time.Time `json:"at"`
	Event         Event     `json:"event"`
	Handled       bool      `json:"handled"`
	From          Mode      `json:"from"`
	To            Mode      `json:"to"`
	CursorVisible bool      `json:"cursor_visible"`
	CursorIcon    string    `json:"cursor_icon"`
	StopMovement  bool      `json:"stop_movement,omitempty"`
	Quit          bool      `json:"quit,omitempty"`
	OpenExhibit   int       `json:"open_exhibit,omitempty"`
	ApplyKeyMap   bool      `json:"apply_key_map,omitempty"`
	Recenter      bool      `json:"recenter,omitempty"`
}

// Snapshot is the current machine state.
type Snapshot struct {
	Mode          Mode   `json:"mode"`
	Target        int    `json:"target"`
	CursorVisible bool   `json:"cursor_visible"`
	CursorIcon    string `json:"cursor_icon"`
	OpenExhibit   int    `json:"open_exhibit,omitempty"`
	QuitRequested bool   `json:"quit_requested"`
	Seq           uint64 `json:"seq"`
}

// Machine is the UI state machine. Dispatch is its only entry point for input.
type Machine struct {
	mode          Mode
	target        int
	cursorVisible bool
	cursorIcon    string
	openExhibit   int
	quit          bool
	seq           uint64

	subscribers map[string]chan Transition
	sync.RWMutex
}

// NewMachine starts in Walking with a hidden cursor.
func NewMachine() *Machine {
	return &Machine{
		mode:        Walking,
		cursorIcon:  CursorNormal,
		subscribers: make(map[string]chan Transition),
	}
}

// Dispatch applies ev and notifies subscribers. Events that do not apply in
// the current mode come back with Handled false and change nothing.
func (m *Machine) Dispatch(ev Event) (Transition, error) {
	m.Lock()
	defer m.Unlock()

	tr, err := m.apply(ev)
	if err != nil {
		return Transition{}, err
	}
	tr.At = time.Now()
	if !tr.Handled {
		tr.Seq = m.seq
		return tr, nil
	}

	m.seq++
	tr.Seq = m.seq
	// A full subscriber buffer drops the transition.
	for _, ch := range m.subscribers {
		select {
		case ch <- tr:
		default:
		}
	}
	return tr, nil
}

func (m *Machine) apply(ev Event) (Transition, error) {
	tr := Transition{Event: ev, From: m.mode}

	switch ev.Type {
	case EventEscape:
		if m.mode != SettingsOpen {
			m.quit = true
			tr.Quit = true
			tr.Handled = true
		}

	case EventF1:
		if m.mode == Walking {
			m.mode = SettingsOpen
			m.showCursor(CursorNormal)
			tr.StopMovement = true
			tr.Handled = true
		}

	case EventTarget:
		if m.mode == Walking {
			if ev.NodeID > 0 {
				m.target = ev.NodeID
				m.showCursor(CursorHand)
			} else {
				m.target = 0
				m.cursorVisible = false
			}
			tr.Handled = true
		}

	case EventClick:
		if m.mode == Walking && m.target > 0 {
			m.mode = ExhibitInfoOpen
			m.openExhibit = m.target
			m.showCursor(CursorNormal)
			tr.OpenExhibit = m.target
			tr.StopMovement = true
			tr.Handled = true
		}

	case EventDialogClosed:
		if m.mode == ExhibitInfoOpen {
			m.mode = Walking
			m.openExhibit = 0
			m.cursorVisible = false
			tr.Recenter = true
			tr.Handled = true
		}

	case EventSettingsSaved, EventSettingsCancelled:
		if m.mode == SettingsOpen {
			m.mode = Walking
			m.cursorVisible = false
			tr.ApplyKeyMap = true
			tr.Recenter = true
			tr.Handled = true
		}

	default:
		return Transition{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	tr.To = m.mode
	tr.CursorVisible = m.cursorVisible
	tr.CursorIcon = m.cursorIcon
	return tr, nil
}

func (m *Machine) showCursor(icon string) {
	m.cursorVisible = true
	m.cursorIcon = icon
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.RLock()
	defer m.RUnlock()
	return Snapshot{
		Mode:          m.mode,
		Target:        m.target,
		CursorVisible: m.cursorVisible,
		CursorIcon:    m.cursorIcon,
		OpenExhibit:   m.openExhibit,
		QuitRequested: m.quit,
		Seq:           m.seq,
	}
}

// Mode returns the current mode.
func (m *Machine) Mode() Mode {
	m.RLock()
	defer m.RUnlock()
	return m.mode
}

// QuitRequested reports whether an escape was accepted.
func (m *Machine) QuitRequested() bool {
	m.RLock()
	defer m.RUnlock()
	return m.quit
}

// Subscribe registers a buffered channel that receives handled transitions.
// Subscribing again with the same id replaces the previous channel.
func (m *Machine) Subscribe(id string, buffer int) <-chan Transition {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Transition, buffer)

	m.Lock()
	defer m.Unlock()
	if old, exists := m.subscribers[id]; exists {
		close(old)
	}
	m.subscribers[id] = ch
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (m *Machine) Unsubscribe(id string) bool {
	m.Lock()
	defer m.Unlock()
	ch, exists := m.subscribers[id]
	if !exists {
		return false
	}
	delete(m.subscribers, id)
	close(ch)
	return true
}

// SubscriberCount returns the number of active subscribers.
func (m *Machine) SubscriberCount() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.subscribers)
}
