package handlers

import (
	"errors"
	"kiosk/core"
	"kiosk/kiosk"
	"kiosk/service"
	"kiosk/settings"
	"kiosk/state"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handlers serves the kiosk HTTP API for the renderer front end and operators.
type Handlers struct {
	app      *kiosk.App
	svc      *service.Services
	shutdown *ShutdownManager
	upgrader websocket.Upgrader
}

// New creates the API handlers around a started or starting App.
func New(app *kiosk.App, svc *service.Services) *Handlers {
	return &Handlers{
		app:      app,
		svc:      svc,
		shutdown: &ShutdownManager{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts every route under /api.
func (h *Handlers) Register(r gin.IRouter) {
	api := r.Group("/api")
	{
		// Exhibit routes
		api.GET("/exhibits", h.ListExhibits)
		api.GET("/exhibits/range", h.ExhibitRange)
		api.GET("/exhibits/:id", h.GetExhibit)

		// Settings routes
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
		api.POST("/settings/cancel", h.CancelSettings)
		api.GET("/settings/options", h.GetSettingsOptions)

		// Scene routes
		api.GET("/scene", h.GetScene)
		api.GET("/scene/graph", h.GetSceneGraph)

		// UI routes
		api.GET("/ui", h.GetUI)
		api.POST("/ui/events", h.PostUIEvent)
		api.POST("/ui/fps", h.PostFPS)
		api.GET("/ui/stream", h.StreamUI)

		// Diagnostics routes
		api.GET("/diagnostics", h.ListDiagnostics)
		api.GET("/diagnostics/:id", h.GetDiagnostic)
		api.DELETE("/diagnostics", h.ClearDiagnostics)

		// System shutdown routes
		api.POST("/shutdown/generate-code", h.GenerateShutdownCode)
		api.POST("/shutdown/verify", h.VerifyAndShutdown)

		// Health and metrics routes
		api.GET("/health", h.HealthCheck)
		api.GET("/metrics", h.GetMetrics)
		api.GET("/metrics/prometheus", h.GetPrometheusMetrics)
	}
}

// respondError maps domain errors onto status codes with a {"detail": ...} body.
func respondError(c *gin.Context, err error) {
	kerr := asKioskError(err)
	c.JSON(kerr.Code, gin.H{"detail": kerr.Message})
}

func asKioskError(err error) *core.KioskError {
	var kerr *core.KioskError
	switch {
	case errors.As(err, &kerr):
		return kerr
	case errors.Is(err, service.ErrStoreUnavailable), errors.Is(err, kiosk.ErrSceneNotLoaded):
		return core.NewUnavailableError(err.Error())
	case errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, settings.ErrInvalidValue),
		errors.Is(err, settings.ErrUnknownKey),
		errors.Is(err, state.ErrUnknownEvent):
		return core.NewInvalidRequestError(err.Error())
	}
	return &core.KioskError{Message: err.Error(), Code: http.StatusInternalServerError, Err: err}
}

func parseIDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondError(c, core.NewInvalidRequestError("Invalid "+name))
		return 0, false
	}
	return id, true
}
