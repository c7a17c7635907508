package kiosk

import (
	"kiosk/settings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExhibitInfo_LocalizedDefaults(t *testing.T) {
	src := &fakeExhibits{rows: map[int]fakeRow{
		4: {title: "Trilobite", desc: "Cambrian arthropod.", photo: "photos/t.jpg"},
		5: {title: "Quartz"},
	}}

	info := ExhibitInfo(src, 4, TextsFor("es"))
	assert.Equal(t, "Trilobite", info.Title)
	assert.True(t, info.HasTitle)
	assert.Equal(t, "photos/t.jpg", info.PhotoPath)

	info = ExhibitInfo(src, 5, TextsFor("en"))
	assert.Equal(t, "Description not available.", info.Description)
	assert.Empty(t, info.PhotoPath)

	info = ExhibitInfo(src, 99, TextsFor("es"))
	assert.False(t, info.HasTitle)
	assert.Equal(t, "Exhibición no válida", info.Title)
	assert.Equal(t, "Descripción no disponible.", info.Description)
}

func TestTextsFor_FallsBackToSpanish(t *testing.T) {
	assert.Equal(t, TextsFor("es"), TextsFor("fr"))
	assert.Equal(t, "Invalid exhibition", TextsFor(" EN ").InvalidExhibit)
}

func TestLoadingImage(t *testing.T) {
	assert.Equal(t, LoadingScreen{Image: "gfx/loading1024x768.png"}, LoadingImage(settings.Resolution{Width: 1024, Height: 768}))
	assert.Equal(t, LoadingScreen{Image: "gfx/loading800x600.png", Stretch: true}, LoadingImage(settings.Resolution{Width: 1920, Height: 1080}))
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "Museo de Ciencias :: [OpenGL] FPS:60", Caption(settings.DriverOpenGL, 60, false))
	assert.Equal(t, "Museo de Ciencias :: ", Caption(settings.DriverOpenGL, 60, true))
}

func TestSettingsDialogOptions(t *testing.T) {
	opts := SettingsDialogOptions(TextsFor("en"))
	assert.Equal(t, []uint8{0, 2, 4, 8, 16}, opts.Antialiasing)
	assert.Len(t, opts.Resolutions, 5)
	assert.Len(t, opts.Drivers, 6)
	assert.Len(t, opts.Keys, 40)
	assert.Equal(t, KeyOption{Char: "0", Label: "0"}, opts.Keys[0])
	assert.Equal(t, KeyOption{Char: "^", Label: "Up arrow"}, opts.Keys[36])
	assert.Equal(t, KeyOption{Char: ">", Label: "Right arrow"}, opts.Keys[39])
}
