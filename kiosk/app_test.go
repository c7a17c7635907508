package kiosk

import (
	"errors"
	"kiosk/config"
	"kiosk/core"
	"kiosk/models"
	"kiosk/scene"
	"kiosk/service"
	"kiosk/settings"
	"kiosk/state"
	"os"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const appSceneXML = `<?xml version="1.0"?>
<mdc>
  <scene>
    <model name="hall.3ds" solid="1" visible="1"/>
  </scene>
  <skybox>
    <side name="top" texture="t.jpg"/><side name="bottom" texture="b.jpg"/>
    <side name="left" texture="l.jpg"/><side name="right" texture="r.jpg"/>
    <side name="front" texture="f.jpg"/><side name="back" texture="k.jpg"/>
  </skybox>
  <camera>
    <vector name="start" x="0" y="110" z="1649"/>
    <vector name="look_at" x="0" y="110" z="0"/>
  </camera>
</mdc>`

func ptr[T any](v T) *T { return &v }

func writeExhibitDB(t *testing.T, path string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Exhibit{}))
	require.NoError(t, db.Create(&[]models.Exhibit{
		{ID: 1, Title: ptr("Trilobite"), Description: ptr("Cambrian arthropod."), ModelPath: ptr("trilobite.x"),
			RotationY: ptr(90.0), RotationAmount: ptr(2.0)},
		{ID: 2, Title: ptr("Label only")},
	}).Error)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func newTestApp(t *testing.T, withDB bool) *App {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.xml"), []byte(appSceneXML), 0o644))
	dbPath := filepath.Join(dir, "mdc.db")
	if withDB {
		writeExhibitDB(t, dbPath)
	}

	cfg := &config.Config{
		ExhibitDBPath:       dbPath,
		AssetRoot:           "exhibits",
		SceneArchive:        filepath.Join(dir, "mdc.zip"),
		SceneFile:           filepath.Join(dir, "scene.xml"),
		SettingsDir:         filepath.Join(dir, "settings"),
		Language:            "en",
		SQLiteMaxOpenConns:  1,
		SQLiteMaxIdleConns:  1,
		SQLiteBusyTimeoutMS: 1000,
	}
	diag := core.NewDiagnostics(50)
	app := New(cfg, service.NewServices(cfg, diag), diag)
	t.Cleanup(app.Shutdown)
	return app
}

func TestApp_StartBuildsHall(t *testing.T) {
	app := newTestApp(t, true)
	require.NoError(t, app.Start())

	assert.Equal(t, LoadingScreen{Image: "gfx/loading800x600.png"}, app.Loading())
	assert.True(t, app.Settings.CanPersist())

	g, err := app.Graph()
	require.NoError(t, err)
	assert.Equal(t, 1, g.ExhibitCount())
	n, ok := g.Node(1)
	require.True(t, ok)
	assert.Equal(t, "exhibits/trilobite.x", n.Mesh)
	assert.Equal(t, models.Vec3{Y: 180}, n.Rotation)

	info := app.ExhibitInfo(2)
	assert.Equal(t, "Label only", info.Title)
	assert.Equal(t, "Description not available.", info.Description)
	assert.True(t, info.Translation.IsBad())
}

func TestApp_StartWithoutDatabase(t *testing.T) {
	app := newTestApp(t, false)
	require.NoError(t, app.Start())

	assert.False(t, app.Exhibits.Usable())
	g, err := app.Graph()
	require.NoError(t, err)
	assert.Zero(t, g.ExhibitCount())
	assert.NotZero(t, app.Diag.Len())

	info := app.ExhibitInfo(1)
	assert.Equal(t, "Invalid exhibition", info.Title)
}

func TestApp_StartFailsOnMalformedScene(t *testing.T) {
	app := newTestApp(t, true)
	require.NoError(t, os.WriteFile(app.cfg.SceneFile, []byte(`<mdc><camera/></mdc>`), 0o644))

	err := app.Start()
	var malformed *scene.MalformedSceneError
	assert.True(t, errors.As(err, &malformed))
	_, err = app.Graph()
	assert.ErrorIs(t, err, ErrSceneNotLoaded)
}

func TestApp_SettingsDialogAppliesKeyMap(t *testing.T) {
	app := newTestApp(t, true)
	require.NoError(t, app.Start())

	_, err := app.HandleEvent(state.Event{Type: state.EventF1})
	require.NoError(t, err)

	next := app.Settings.Current()
	next.Keys[settings.Forward] = settings.KeyUp
	persisted, tr, err := app.SaveSettings(next)
	require.NoError(t, err)
	assert.True(t, persisted)
	assert.Equal(t, state.Walking, tr.To)
	assert.False(t, app.Settings.Changed())

	g, err := app.Graph()
	require.NoError(t, err)
	assert.Equal(t, settings.KeyUp, g.Camera.KeyMap[0].KeyCode)

	fresh := settings.NewStore(app.cfg.SettingsDir)
	assert.Equal(t, settings.KeyUp, fresh.Load().Keys[settings.Forward])
}

func TestApp_EscapeRequestsQuit(t *testing.T) {
	app := newTestApp(t, true)
	require.NoError(t, app.Start())

	_, err := app.HandleEvent(state.Event{Type: state.EventEscape})
	require.NoError(t, err)

	select {
	case <-app.Done():
	default:
		t.Fatal("expected quit to be requested")
	}
}

func TestApp_ShutdownSavesChangedSettings(t *testing.T) {
	app := newTestApp(t, true)
	require.NoError(t, app.Start())

	app.Settings.SetVSync(false)
	app.Shutdown()
	app.Shutdown()

	assert.False(t, app.Exhibits.Usable())
	fresh := settings.NewStore(app.cfg.SettingsDir)
	assert.False(t, fresh.Load().VSync)
}

func TestApp_ReportFPS(t *testing.T) {
	app := newTestApp(t, true)
	require.NoError(t, app.Start())

	assert.Equal(t, "Museo de Ciencias :: [OpenGL] FPS:59", app.ReportFPS(59))
	assert.Equal(t, "Museo de Ciencias :: [OpenGL] FPS:59", app.Caption())
}
