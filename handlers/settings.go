package handlers

import (
	"fmt"
	"kiosk/models"
	"kiosk/settings"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

// GetSettings returns the current user settings.
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, settingsRead(h.app.Settings))
}

// UpdateSettings applies a settings dialog submission, persists it and
// closes the dialog.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req models.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	next, err := mergeSettings(h.app.Settings.Current(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	persisted, tr, err := h.app.SaveSettings(next)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"persisted":  persisted,
		"settings":   settingsRead(h.app.Settings),
		"transition": tr,
	})
}

// CancelSettings closes the settings dialog without applying anything.
func (h *Handlers) CancelSettings(c *gin.Context) {
	tr, err := h.app.CancelSettings()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transition": tr})
}

// GetSettingsOptions returns the choices offered by the settings dialog.
func (h *Handlers) GetSettingsOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.app.DialogOptions())
}

func settingsRead(store *settings.Store) models.SettingsRead {
	cur := store.Current()
	out := models.SettingsRead{
		Resolution:   cur.Resolution.String(),
		Fullscreen:   cur.Fullscreen,
		VSync:        cur.VSync,
		Antialiasing: cur.Antialiasing,
		Driver:       cur.Driver.String(),
		Keys:         make(map[string]string, len(settings.Actions)),
		Changed:      store.Changed(),
		CanPersist:   store.CanPersist(),
		Path:         store.Path(),
	}
	for _, a := range settings.Actions {
		if ch, err := settings.CharFor(cur.Keys[a]); err == nil {
			out.Keys[a.String()] = string(ch)
		}
	}
	if err := store.LoadError(); err != nil {
		out.LoadError = err.Error()
	}
	return out
}

// mergeSettings overlays the non-nil fields of req onto cur.
func mergeSettings(cur settings.Settings, req models.SettingsUpdate) (settings.Settings, error) {
	next := cur.Clone()

	if req.Resolution != nil {
		res, err := settings.ParseResolution(*req.Resolution)
		if err != nil {
			return next, err
		}
		next.Resolution = res
	}
	if req.Fullscreen != nil {
		next.Fullscreen = *req.Fullscreen
	}
	if req.VSync != nil {
		next.VSync = *req.VSync
	}
	if req.Antialiasing != nil {
		next.Antialiasing = *req.Antialiasing
	}
	if req.Driver != nil {
		d, err := settings.ParseDriver(*req.Driver)
		if err != nil {
			return next, err
		}
		next.Driver = d
	}
	for name, char := range req.Keys {
		action, ok := settings.ParseAction(name)
		if !ok {
			return next, fmt.Errorf("%w: action %q", settings.ErrInvalidValue, name)
		}
		if utf8.RuneCountInString(char) != 1 {
			return next, fmt.Errorf("%w: key for %s must be a single character", settings.ErrInvalidValue, name)
		}
		r, _ := utf8.DecodeRuneInString(char)
		code, err := settings.KeyCodeFor(r)
		if err != nil {
			return next, err
		}
		next.Keys[action] = code
	}
	return next, next.Validate()
}
