package kiosk

import (
	"fmt"
	"kiosk/models"
	"kiosk/settings"
)

// ExhibitTexts is the read side used to fill the exhibit dialog.
type ExhibitTexts interface {
	TitleOf(id int) (string, bool)
	DescriptionOf(id int) (string, bool)
	PhotoPathOf(id int) (string, bool)
}

// ExhibitInfo builds the exhibit dialog content for id. Missing texts are
// replaced by the localized defaults; HasTitle tells whether the row had one.
func ExhibitInfo(src ExhibitTexts, id int, t Texts) models.ExhibitRead {
	info := models.ExhibitRead{ID: id}

	if title, ok := src.TitleOf(id); ok {
		info.Title = title
		info.HasTitle = true
	} else {
		info.Title = t.InvalidExhibit
	}
	if desc, ok := src.DescriptionOf(id); ok {
		info.Description = desc
	} else {
		info.Description = t.DescriptionMissing
	}
	if photo, ok := src.PhotoPathOf(id); ok {
		info.PhotoPath = photo
	}
	return info
}

// LoadingScreen is the image shown while the scene loads.
type LoadingScreen struct {
	Image   string `json:"image"`
	Stretch bool   `json:"stretch"`
}

const fallbackLoadingImage = "gfx/loading800x600.png"

// LoadingImage picks the loading image drawn for res. Resolutions without a
// dedicated image get the 800x600 one stretched over the window.
func LoadingImage(res settings.Resolution) LoadingScreen {
	for _, known := range settings.Resolutions {
		if known == res {
			return LoadingScreen{Image: fmt.Sprintf("gfx/loading%s.png", res)}
		}
	}
	return LoadingScreen{Image: fallbackLoadingImage, Stretch: true}
}

const captionPrefix = "Museo de Ciencias :: "

// Caption is the window title. The FPS counter is only shown windowed.
func Caption(driver settings.Driver, fps int, fullscreen bool) string {
	if fullscreen || fps < 0 {
		return captionPrefix
	}
	return fmt.Sprintf("%s[%s] FPS:%d", captionPrefix, driver, fps)
}

// KeyOption is one entry of the key binding list of the settings dialog.
type KeyOption struct {
	Char  string `json:"char"`
	Label string `json:"label"`
}

// DialogOptions are the choices offered by the settings dialog.
type DialogOptions struct {
	Antialiasing []uint8               `json:"antialiasing"`
	Resolutions  []settings.Resolution `json:"resolutions"`
	Drivers      []string              `json:"drivers"`
	Keys         []KeyOption           `json:"keys"`
	Texts        Texts                 `json:"texts"`
}

// SettingsDialogOptions lists the dialog choices with labels in t's language.
func SettingsDialogOptions(t Texts) DialogOptions {
	opts := DialogOptions{
		Antialiasing: settings.AntialiasingFactors,
		Resolutions:  settings.Resolutions,
		Texts:        t,
	}
	for d := settings.DriverNull; d <= settings.DriverOpenGL; d++ {
		opts.Drivers = append(opts.Drivers, d.String())
	}
	for _, c := range settings.KeyAlphabet {
		label := string(c)
		if arrow, ok := t.Arrows[label]; ok {
			label = arrow
		}
		opts.Keys = append(opts.Keys, KeyOption{Char: string(c), Label: label})
	}
	return opts
}
