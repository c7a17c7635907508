package settings

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/creachadair/atomicfile"
	"github.com/mitchellh/go-homedir"
)

const (
	// DirName is the per-user settings directory created under the home directory.
	DirName = ".mdcvis"
	// FileName is the settings document inside DirName.
	FileName = "settings.xml"
)

// Store owns the process settings. It starts unloaded; Load populates it and
// never fails, falling back to Defaults with persistence disabled.
// Setters mark the store changed until the next successful Save or Load.
type Store struct {
	mu         sync.RWMutex
	dir        string
	current    Settings
	loaded     bool
	changed    bool
	canPersist bool
	loadErr    error
}

// NewStore creates a store rooted at dir. An empty dir means ~/.mdcvis;
// a leading ~ is expanded.
func NewStore(dir string) *Store {
	return &Store{dir: dir, current: Defaults()}
}

// Load resolves the settings directory, creates it and a default settings
// file when missing, and parses the file.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.loadLocked()
	if err != nil {
		log.Printf("Settings unavailable, using defaults: %v", err)
		s.current = Defaults()
		s.canPersist = false
		s.loadErr = err
	} else {
		s.current = loaded
		s.canPersist = true
		s.loadErr = nil
	}
	s.loaded = true
	s.changed = false
	return s.current.Clone()
}

func (s *Store) loadLocked() (Settings, error) {
	dir, err := resolveDir(s.dir)
	if err != nil {
		return Settings{}, err
	}
	s.dir = dir

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Settings{}, fmt.Errorf("%w: create %s: %v", ErrConfigIO, dir, err)
	}

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := Encode(Defaults())
		if err != nil {
			return Settings{}, err
		}
		if err := atomicfile.WriteData(path, data, 0o644); err != nil {
			return Settings{}, fmt.Errorf("%w: create %s: %v", ErrConfigIO, path, err)
		}
		log.Printf("Created default settings file %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: read %s: %v", ErrConfigIO, path, err)
	}
	loaded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

func resolveDir(dir string) (string, error) {
	if dir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("%w: home directory: %v", ErrConfigIO, err)
		}
		return filepath.Join(home, DirName), nil
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("%w: expand %s: %v", ErrConfigIO, dir, err)
	}
	return expanded, nil
}

// Save writes the current settings over the settings file. It returns false
// without writing when persistence was disabled during Load.
func (s *Store) Save() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canPersist {
		return false
	}
	data, err := Encode(s.current)
	if err != nil {
		log.Printf("Settings not saved: %v", err)
		return false
	}
	if err := atomicfile.WriteData(s.pathLocked(), data, 0o644); err != nil {
		log.Printf("Settings not saved: %v", fmt.Errorf("%w: %v", ErrConfigIO, err))
		return false
	}
	s.changed = false
	return true
}

// Current returns a copy of the held settings.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Apply replaces every field at once, as the settings dialog does on save.
func (s *Store) Apply(next Settings) error {
	if err := next.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = next.Clone()
	s.changed = true
	return nil
}

// Changed reports whether a setter ran since the last Load or successful Save.
func (s *Store) Changed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}

// CanPersist reports whether Save will write to disk.
func (s *Store) CanPersist() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canPersist
}

// Loaded reports whether Load has run.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LoadError returns the reason the last Load fell back to defaults, if any.
func (s *Store) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Path returns the settings file path; empty until the directory is resolved.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pathLocked()
}

func (s *Store) pathLocked() string {
	if s.dir == "" {
		return ""
	}
	return filepath.Join(s.dir, FileName)
}

func (s *Store) ScreenWidth() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Resolution.Width
}

func (s *Store) ScreenHeight() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Resolution.Height
}

func (s *Store) Resolution() Resolution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Resolution
}

func (s *Store) Fullscreen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Fullscreen
}

func (s *Store) VSync() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.VSync
}

func (s *Store) Antialiasing() uint8 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Antialiasing
}

func (s *Store) Driver() Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Driver
}

// Key returns the key code bound to a.
func (s *Store) Key(a Action) KeyCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Keys[a]
}

// KeyMap returns the camera key bindings.
func (s *Store) KeyMap() []KeyBinding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.KeyMap()
}

func (s *Store) SetResolution(r Resolution) error {
	if r.Width == 0 || r.Height == 0 {
		return fmt.Errorf("%w: resolution %s", ErrInvalidValue, r)
	}
	s.mutate(func(c *Settings) { c.Resolution = r })
	return nil
}

func (s *Store) SetFullscreen(on bool) {
	s.mutate(func(c *Settings) { c.Fullscreen = on })
}

func (s *Store) SetVSync(on bool) {
	s.mutate(func(c *Settings) { c.VSync = on })
}

func (s *Store) SetAntialiasing(f uint8) error {
	if !ValidAntialiasing(f) {
		return fmt.Errorf("%w: antialiasing %d", ErrInvalidValue, f)
	}
	s.mutate(func(c *Settings) { c.Antialiasing = f })
	return nil
}

func (s *Store) SetDriver(d Driver) error {
	if d < DriverNull || d > DriverOpenGL {
		return fmt.Errorf("%w: driver %d", ErrInvalidValue, int(d))
	}
	s.mutate(func(c *Settings) { c.Driver = d })
	return nil
}

// SetKey binds the character c to action a.
func (s *Store) SetKey(a Action, c rune) error {
	code, err := KeyCodeFor(c)
	if err != nil {
		return err
	}
	s.mutate(func(cur *Settings) { cur.Keys[a] = code })
	return nil
}

func (s *Store) mutate(fn func(*Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.current)
	s.changed = true
}
