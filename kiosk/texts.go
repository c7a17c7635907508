package kiosk

import "strings"

// Texts are the user-facing strings of one language.
type Texts struct {
	InvalidExhibit     string            `json:"invalid_exhibit"`
	DescriptionMissing string            `json:"description_missing"`
	SettingsTitle      string            `json:"settings_title"`
	VideoSection       string            `json:"video_section"`
	Fullscreen         string            `json:"fullscreen"`
	VSync              string            `json:"vsync"`
	Antialiasing       string            `json:"antialiasing"`
	Resolution         string            `json:"resolution"`
	ControlsSection    string            `json:"controls_section"`
	Actions            map[string]string `json:"actions"`
	Arrows             map[string]string `json:"arrows"`
	Save               string            `json:"save"`
	Cancel             string            `json:"cancel"`
	VideoNeedsRestart  string            `json:"video_needs_restart"`
}

var texts = map[string]Texts{
	"es": {
		InvalidExhibit:     "Exhibición no válida",
		DescriptionMissing: "Descripción no disponible.",
		SettingsTitle:      "Configuración",
		VideoSection:       "Configuración del video",
		Fullscreen:         "Pantalla completa",
		VSync:              "Sincronización vertical",
		Antialiasing:       "Factor de antialiasing",
		Resolution:         "Resolución de pantalla",
		ControlsSection:    "Configuración de los controles",
		Actions: map[string]string{
			"forward":  "Avanzar",
			"backward": "Retroceder",
			"strafe_l": "Moverse a la izquierda",
			"strafe_r": "Moverse a la derecha",
		},
		Arrows: map[string]string{
			"^": "Flecha arriba",
			",": "Flecha abajo",
			"<": "Flecha izquierda",
			">": "Flecha derecha",
		},
		Save:              "Guardar",
		Cancel:            "Cancelar",
		VideoNeedsRestart: "NOTA: Cambios al video necesitan reinicio",
	},
	"en": {
		InvalidExhibit:     "Invalid exhibition",
		DescriptionMissing: "Description not available.",
		SettingsTitle:      "Settings",
		VideoSection:       "Video configuration",
		Fullscreen:         "Fullscreen",
		VSync:              "Vertical sync",
		Antialiasing:       "Antialiasing factor",
		Resolution:         "Screen resolution",
		ControlsSection:    "Control configuration",
		Actions: map[string]string{
			"forward":  "Forward",
			"backward": "Backward",
			"strafe_l": "Strafe left",
			"strafe_r": "Strafe right",
		},
		Arrows: map[string]string{
			"^": "Up arrow",
			",": "Down arrow",
			"<": "Left arrow",
			">": "Right arrow",
		},
		Save:              "Save",
		Cancel:            "Cancel",
		VideoNeedsRestart: "NOTE: Changes to video need restart",
	},
}

// DefaultLanguage is used for unknown language codes.
const DefaultLanguage = "es"

// TextsFor returns the strings for lang, falling back to Spanish.
func TextsFor(lang string) Texts {
	if t, ok := texts[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return t
	}
	return texts[DefaultLanguage]
}
