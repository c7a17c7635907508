// Package kiosk wires the settings store, the scene descriptor, the exhibit
// store and the UI state machine into one running exhibit hall.
package kiosk

import (
	"errors"
	"fmt"
	"kiosk/config"
	"kiosk/core"
	"kiosk/models"
	"kiosk/scene"
	"kiosk/service"
	"kiosk/settings"
	"kiosk/state"
	"log"
	"sync"
)

// ErrSceneNotLoaded is returned by scene accessors before LoadScene succeeds.
var ErrSceneNotLoaded = errors.New("scene not loaded")

// App owns every kiosk component for the lifetime of the process.
type App struct {
	Settings *settings.Store
	Exhibits *service.ExhibitStore
	UI       *state.Machine
	Diag     *core.Diagnostics

	cfg     *config.Config
	texts   Texts
	builder Builder

	mu          sync.RWMutex
	desc        *scene.Descriptor
	sceneOrigin string
	graph       *Graph
	loading     LoadingScreen
	caption     string
	lastFPS     int

	quit      chan struct{}
	quitOnce  sync.Once
	closeOnce sync.Once
}

// New builds an App around the given services. Nothing is loaded yet.
func New(cfg *config.Config, svc *service.Services, diag *core.Diagnostics) *App {
	if cfg == nil {
		cfg = config.Settings
	}
	if diag == nil {
		diag = core.Diag
	}
	return &App{
		Settings: settings.NewStore(cfg.SettingsDir),
		Exhibits: svc.Exhibits,
		UI:       state.NewMachine(),
		Diag:     diag,
		cfg:      cfg,
		texts:    TextsFor(cfg.Language),
		builder:  Builder{AssetRoot: cfg.AssetRoot},
		lastFPS:  -1,
		quit:     make(chan struct{}),
	}
}

// Start loads the settings, chooses the loading screen and loads the scene.
// Only a scene that cannot be read or parsed is an error; a missing exhibit
// database leaves the hall empty.
func (a *App) Start() error {
	s := a.Settings.Load()
	if err := a.Settings.LoadError(); err != nil {
		a.Diag.Record("WARN", "settings.load", "using default settings", err.Error(),
			map[string]interface{}{"path": a.Settings.Path()})
	}

	a.mu.Lock()
	a.loading = LoadingImage(s.Resolution)
	a.caption = Caption(s.Driver, -1, s.Fullscreen)
	a.mu.Unlock()

	if a.loading.Stretch {
		a.Diag.Record("WARN", "kiosk.loading", "no loading image for resolution", s.Resolution.String(), nil)
	}
	return a.LoadScene()
}

// LoadScene parses the scene descriptor, opens the exhibit database and
// rebuilds the scene graph.
func (a *App) LoadScene() error {
	desc, origin, err := scene.Load(a.cfg.SceneArchive, a.cfg.SceneFile)
	if err != nil {
		a.Diag.Record("ERROR", "scene.load", "scene could not be loaded", err.Error(),
			map[string]interface{}{"archive": a.cfg.SceneArchive, "file": a.cfg.SceneFile})
		return fmt.Errorf("load scene: %w", err)
	}

	graph := a.builder.BuildScene(desc, a.Settings.KeyMap())

	if !a.Exhibits.Open(a.cfg.ExhibitDBPath) {
		log.Printf("The exhibits database could not be opened: %s", a.cfg.ExhibitDBPath)
	}
	placed, skipped := a.builder.AddExhibits(graph, a.Exhibits)
	log.Printf("Scene loaded from %s: %d models, %d exhibits placed, %d without model",
		origin, len(desc.Models), placed, skipped)

	a.mu.Lock()
	a.desc = desc
	a.sceneOrigin = origin
	a.graph = graph
	a.mu.Unlock()
	return nil
}

// Scene returns the parsed descriptor and where it was read from.
func (a *App) Scene() (*scene.Descriptor, string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.desc == nil {
		return nil, "", ErrSceneNotLoaded
	}
	return a.desc, a.sceneOrigin, nil
}

// Graph returns a copy of the scene graph.
func (a *App) Graph() (*Graph, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.graph == nil {
		return nil, ErrSceneNotLoaded
	}
	g := *a.graph
	g.Nodes = append([]Node(nil), a.graph.Nodes...)
	g.Camera.KeyMap = append([]settings.KeyBinding(nil), a.graph.Camera.KeyMap...)
	return &g, nil
}

// Loading returns the loading screen chosen at Start.
func (a *App) Loading() LoadingScreen {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loading
}

// Texts returns the strings of the configured language.
func (a *App) Texts() Texts {
	return a.texts
}

// Caption returns the current window caption.
func (a *App) Caption() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.caption
}

// ReportFPS updates the caption when the frame rate changed and the window
// is not fullscreen.
func (a *App) ReportFPS(fps int) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.Settings.Fullscreen() && fps != a.lastFPS {
		a.caption = Caption(a.Settings.Driver(), fps, false)
		a.lastFPS = fps
	}
	return a.caption
}

// ExhibitInfo returns the dialog content and transforms of one exhibit.
func (a *App) ExhibitInfo(id int) models.ExhibitRead {
	info := ExhibitInfo(a.Exhibits, id, a.texts)
	if model, ok := a.Exhibits.ModelPathOf(id); ok {
		info.ModelPath = model
	}
	info.Translation = a.Exhibits.TranslationOf(id)
	info.Rotation = a.Exhibits.RotationOf(id)
	info.Scaling = a.Exhibits.ScalingOf(id)
	info.Amount = a.Exhibits.RotationAmountOf(id)
	info.Applied = AppliedRotation(info.Rotation, info.Amount)
	return info
}

// HandleEvent is the single entry point for renderer input. It runs the
// state machine and carries out the side effects owned by the kiosk.
func (a *App) HandleEvent(ev state.Event) (state.Transition, error) {
	tr, err := a.UI.Dispatch(ev)
	if err != nil {
		return tr, err
	}
	if !tr.Handled {
		return tr, nil
	}

	if tr.ApplyKeyMap {
		a.applyKeyMap()
	}
	if tr.OpenExhibit > 0 {
		if _, ok := a.Exhibits.TitleOf(tr.OpenExhibit); !ok {
			a.Diag.Record("WARN", "kiosk.exhibit_dialog", "exhibit has no title", "",
				map[string]interface{}{"id": tr.OpenExhibit})
		}
	}
	if tr.Quit {
		a.RequestQuit()
	}
	return tr, nil
}

func (a *App) applyKeyMap() {
	keys := a.Settings.KeyMap()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.graph != nil {
		a.graph.Camera.KeyMap = keys
	}
}

// SaveSettings applies the values chosen in the settings dialog, persists
// them and closes the dialog. persisted is false when the settings file
// cannot be written; the values still apply for this run.
func (a *App) SaveSettings(next settings.Settings) (persisted bool, tr state.Transition, err error) {
	if err := a.Settings.Apply(next); err != nil {
		return false, state.Transition{}, err
	}
	persisted = a.Settings.Save()

	tr, err = a.HandleEvent(state.Event{Type: state.EventSettingsSaved})
	if err != nil {
		return persisted, tr, err
	}
	if !tr.Handled {
		a.applyKeyMap()
	}
	return persisted, tr, nil
}

// CancelSettings closes the settings dialog without applying anything.
func (a *App) CancelSettings() (state.Transition, error) {
	return a.HandleEvent(state.Event{Type: state.EventSettingsCancelled})
}

// DialogOptions returns the settings dialog choices.
func (a *App) DialogOptions() DialogOptions {
	return SettingsDialogOptions(a.texts)
}

// RequestQuit asks the process to shut down. Safe to call more than once.
func (a *App) RequestQuit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

// Done is closed once a quit was requested.
func (a *App) Done() <-chan struct{} {
	return a.quit
}

// Shutdown persists changed settings and closes the exhibit store.
func (a *App) Shutdown() {
	a.closeOnce.Do(func() {
		if a.Settings.Changed() {
			if a.Settings.Save() {
				log.Println("Settings saved on shutdown")
			} else {
				log.Println("Settings changed but could not be saved")
			}
		}
		a.Exhibits.Close()
	})
}
