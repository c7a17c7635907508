// Package settings loads, holds and persists the per-user video and control
// settings of the kiosk.
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Driver selects the rendering backend.
type Driver int

const (
	DriverNull Driver = iota
	DriverSoftware
	DriverBurnings
	DriverDirectX8
	DriverDirectX9
	DriverOpenGL
)

var driverNames = []string{"Null", "Software", "Burnings", "DirectX8", "DirectX9", "OpenGL"}

func (d Driver) String() string {
	if d < 0 || int(d) >= len(driverNames) {
		return fmt.Sprintf("Driver(%d)", int(d))
	}
	return driverNames[d]
}

// ParseDriver matches a driver name case-insensitively.
func ParseDriver(name string) (Driver, error) {
	for i, n := range driverNames {
		if equalFold(name, n) {
			return Driver(i), nil
		}
	}
	return 0, fmt.Errorf("%w: driver %q", ErrInvalidValue, name)
}

// AntialiasingFactors are the supported multisampling factors.
var AntialiasingFactors = []uint8{0, 2, 4, 8, 16}

// ValidAntialiasing reports whether f is one of AntialiasingFactors.
func ValidAntialiasing(f uint8) bool {
	for _, v := range AntialiasingFactors {
		if v == f {
			return true
		}
	}
	return false
}

// Resolution is a window or screen size in pixels.
type Resolution struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseResolution parses the "WxH" form used in the settings file.
func ParseResolution(s string) (Resolution, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Resolution{}, fmt.Errorf("%w: resolution %q", ErrInvalidValue, s)
	}
	width, err := strconv.ParseUint(strings.TrimSpace(w), 10, 32)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: resolution %q", ErrInvalidValue, s)
	}
	height, err := strconv.ParseUint(strings.TrimSpace(h), 10, 32)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: resolution %q", ErrInvalidValue, s)
	}
	if width == 0 || height == 0 {
		return Resolution{}, fmt.Errorf("%w: resolution %q", ErrInvalidValue, s)
	}
	return Resolution{Width: uint32(width), Height: uint32(height)}, nil
}

// Resolutions are the sizes offered by the settings dialog.
var Resolutions = []Resolution{
	{640, 480},
	{800, 600},
	{1024, 768},
	{1280, 800},
	{1280, 1024},
}

var (
	// ErrConfigIO wraps any failure reading or writing the settings directory or file.
	ErrConfigIO = errors.New("settings i/o error")
	// ErrInvalidValue is returned for values outside a setting's domain.
	ErrInvalidValue = errors.New("invalid setting value")
)

// Settings is the full set of user-configurable values.
type Settings struct {
	Resolution   Resolution
	Fullscreen   bool
	VSync        bool
	Antialiasing uint8
	Driver       Driver
	Keys         map[Action]KeyCode
}

// Defaults returns the built-in settings: 800x600 windowed, no antialiasing,
// vsync on, OpenGL, WASD movement.
func Defaults() Settings {
	return Settings{
		Resolution:   Resolution{Width: 800, Height: 600},
		Fullscreen:   false,
		VSync:        true,
		Antialiasing: 0,
		Driver:       DriverOpenGL,
		Keys: map[Action]KeyCode{
			Forward:     KeyA + ('w' - 'a'),
			Backward:    KeyA + ('s' - 'a'),
			StrafeLeft:  KeyA,
			StrafeRight: KeyA + ('d' - 'a'),
		},
	}
}

// Clone returns a copy that shares no map with s.
func (s Settings) Clone() Settings {
	c := s
	c.Keys = make(map[Action]KeyCode, len(s.Keys))
	for a, k := range s.Keys {
		c.Keys[a] = k
	}
	return c
}

// Validate checks every field against its closed domain.
func (s Settings) Validate() error {
	if s.Resolution.Width == 0 || s.Resolution.Height == 0 {
		return fmt.Errorf("%w: resolution %s", ErrInvalidValue, s.Resolution)
	}
	if !ValidAntialiasing(s.Antialiasing) {
		return fmt.Errorf("%w: antialiasing %d", ErrInvalidValue, s.Antialiasing)
	}
	if s.Driver < DriverNull || s.Driver > DriverOpenGL {
		return fmt.Errorf("%w: driver %d", ErrInvalidValue, int(s.Driver))
	}
	for _, a := range Actions {
		code, ok := s.Keys[a]
		if !ok {
			return fmt.Errorf("%w: no key bound to %s", ErrInvalidValue, a)
		}
		if _, err := CharFor(code); err != nil {
			return fmt.Errorf("%s: %w", a, err)
		}
	}
	return nil
}

// KeyMap returns the bindings in Actions order, as handed to the camera.
func (s Settings) KeyMap() []KeyBinding {
	out := make([]KeyBinding, 0, len(Actions))
	for _, a := range Actions {
		out = append(out, KeyBinding{Action: a, KeyCode: s.Keys[a]})
	}
	return out
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
