package settings

import (
	"errors"
	"fmt"
)

// KeyCode is a virtual key code as understood by the rendering engine.
type KeyCode uint8

const (
	KeyLeft  KeyCode = 0x25
	KeyUp    KeyCode = 0x26
	KeyRight KeyCode = 0x27
	KeyDown  KeyCode = 0x28
	Key0     KeyCode = 0x30
	KeyA     KeyCode = 0x41
)

// Arrow keys are stored in the settings file as single punctuation characters.
const (
	CharUp    = '^'
	CharDown  = ','
	CharLeft  = '<'
	CharRight = '>'
)

// ErrUnknownKey is returned for characters outside the bindable key set.
var ErrUnknownKey = errors.New("unknown key character")

// KeyAlphabet is every bindable character in the order the settings dialog lists them.
const KeyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz^,<>"

// KeyCodeFor maps a binding character to its key code. ASCII letters are
// case-insensitive.
func KeyCodeFor(c rune) (KeyCode, error) {
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	switch {
	case c >= '0' && c <= '9':
		return Key0 + KeyCode(c-'0'), nil
	case c >= 'a' && c <= 'z':
		return KeyA + KeyCode(c-'a'), nil
	case c == CharUp:
		return KeyUp, nil
	case c == CharDown:
		return KeyDown, nil
	case c == CharLeft:
		return KeyLeft, nil
	case c == CharRight:
		return KeyRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKey, c)
}

// CharFor is the inverse of KeyCodeFor. Letters come back lower-case.
func CharFor(code KeyCode) (rune, error) {
	switch {
	case code >= Key0 && code <= Key0+9:
		return '0' + rune(code-Key0), nil
	case code >= KeyA && code <= KeyA+25:
		return 'a' + rune(code-KeyA), nil
	case code == KeyUp:
		return CharUp, nil
	case code == KeyDown:
		return CharDown, nil
	case code == KeyLeft:
		return CharLeft, nil
	case code == KeyRight:
		return CharRight, nil
	}
	return 0, fmt.Errorf("%w: code 0x%02x", ErrUnknownKey, uint8(code))
}

// Action is a camera movement bound to a key.
type Action int

const (
	Forward Action = iota
	Backward
	StrafeLeft
	StrafeRight
)

// Actions lists every bindable action in settings-file order.
var Actions = []Action{Forward, Backward, StrafeLeft, StrafeRight}

var actionNames = map[Action]string{
	Forward:     "forward",
	Backward:    "backward",
	StrafeLeft:  "strafe_l",
	StrafeRight: "strafe_r",
}

// String returns the name used for the action in the settings file.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// MarshalText encodes the action by name.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name as accepted by ParseAction.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, ok := ParseAction(string(text))
	if !ok {
		return fmt.Errorf("%w: action %q", ErrInvalidValue, text)
	}
	*a = parsed
	return nil
}

// ParseAction accepts the settings-file names plus the console aliases left/right.
func ParseAction(name string) (Action, bool) {
	for a, n := range actionNames {
		if equalFold(name, n) {
			return a, true
		}
	}
	switch {
	case equalFold(name, "left"):
		return StrafeLeft, true
	case equalFold(name, "right"):
		return StrafeRight, true
	}
	return 0, false
}

// KeyBinding pairs an action with the key code that triggers it.
type KeyBinding struct {
	Action  Action  `json:"action"`
	KeyCode KeyCode `json:"key_code"`
}
