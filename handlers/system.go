package handlers

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"kiosk/database"
	"kiosk/models"
	"kiosk/version"
	"math/big"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownCodeTTL = 5 * time.Minute

var (
	errNoShutdownCode      = errors.New("No shutdown code generated. Please generate one first.")
	errShutdownCodeExpired = errors.New("Shutdown code expired. Please generate a new one.")
	errShutdownCodeInvalid = errors.New("Invalid shutdown code")
)

// ShutdownManager manages shutdown confirmation codes
type ShutdownManager struct {
	code      string
	expiresAt time.Time
	mu        sync.RWMutex
}

// Generate issues a new 6-digit code, replacing any previous one.
func (m *ShutdownManager) Generate() (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", time.Time{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.code = fmt.Sprintf("%06d", n.Int64())
	m.expiresAt = time.Now().Add(shutdownCodeTTL)
	return m.code, m.expiresAt, nil
}

// Verify consumes the code when it matches and has not expired.
func (m *ShutdownManager) Verify(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.code == "" {
		return errNoShutdownCode
	}
	if time.Now().After(m.expiresAt) {
		m.code = ""
		return errShutdownCodeExpired
	}
	if code != m.code {
		return errShutdownCodeInvalid
	}
	m.code = ""
	return nil
}

// GenerateShutdownCode creates a shutdown confirmation code
func (h *Handlers) GenerateShutdownCode(c *gin.Context) {
	code, expiresAt, err := h.shutdown.Generate()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":       code,
		"expires_at": expiresAt.Unix(),
	})
}

// VerifyAndShutdown validates the confirmation code and quits the kiosk
func (h *Handlers) VerifyAndShutdown(c *gin.Context) {
	var req models.ShutdownVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	if err := h.shutdown.Verify(req.Code); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Shutdown initiated"})

	go func() {
		time.Sleep(500 * time.Millisecond) // let the response reach the client
		h.app.Diag.Record("WARN", "system", "Shutdown requested via API", "operator confirmed with shutdown code", nil)
		h.app.RequestQuit()
	}()
}

// ListDiagnostics returns recent diagnostics, newest first. ?level= filters.
func (h *Handlers) ListDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Diagnostics.List(c.Query("level")))
}

// GetDiagnostic returns one diagnostic by id.
func (h *Handlers) GetDiagnostic(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	d := h.svc.Diagnostics.Get(id)
	if d == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Diagnostic not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

// ClearDiagnostics wipes the diagnostics ring
func (h *Handlers) ClearDiagnostics(c *gin.Context) {
	h.svc.Diagnostics.Clear()
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Diagnostics cleared"})
}

// HealthCheck health endpoint
func (h *Handlers) HealthCheck(c *gin.Context) {
	exhibitsUp := h.svc.Exhibits.Usable() && database.Up(c.Request.Context(), h.svc.Exhibits.DB())
	_, _, sceneErr := h.app.Scene()

	health := gin.H{
		"status":         "healthy",
		"timestamp":      time.Now().Unix(),
		"mode":           h.app.UI.Mode(),
		"scene_loaded":   sceneErr == nil,
		"exhibits_up":    exhibitsUp,
		"settings_saved": h.app.Settings.CanPersist(),
	}

	if !exhibitsUp || sceneErr != nil {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

type metricsSnapshot struct {
	timestamp       int64
	exhibitCount    int
	exhibitNodes    int
	sceneNodes      int
	diagnostics     int
	subscribers     int
	uiSeq           uint64
	settingsChanged bool
	mem             runtime.MemStats
}

func (h *Handlers) collectMetricsSnapshot() metricsSnapshot {
	s := metricsSnapshot{
		timestamp:       time.Now().Unix(),
		exhibitCount:    h.svc.Exhibits.Count(),
		diagnostics:     h.app.Diag.Len(),
		subscribers:     h.app.UI.SubscriberCount(),
		uiSeq:           h.app.UI.Snapshot().Seq,
		settingsChanged: h.app.Settings.Changed(),
	}
	if g, err := h.app.Graph(); err == nil {
		s.sceneNodes = len(g.Nodes)
		s.exhibitNodes = g.ExhibitCount()
	}
	runtime.ReadMemStats(&s.mem)
	return s
}

// GetMetrics gathers system metrics
func (h *Handlers) GetMetrics(c *gin.Context) {
	s := h.collectMetricsSnapshot()

	metrics := gin.H{
		"timestamp": s.timestamp,
		"exhibits": gin.H{
			"usable": h.svc.Exhibits.Usable(),
			"count":  s.exhibitCount,
			"placed": s.exhibitNodes,
		},
		"sqlite": gin.H{
			"busy_errors":   database.SQLiteBusyErrorsTotal(),
			"locked_errors": database.SQLiteLockedErrorsTotal(),
			"query_errors":  database.SQLiteQueryErrorsTotal(),
		},
		"scene": gin.H{
			"nodes":   s.sceneNodes,
			"caption": h.app.Caption(),
		},
		"ui": gin.H{
			"mode":        h.app.UI.Mode(),
			"transitions": s.uiSeq,
			"subscribers": s.subscribers,
		},
		"settings": gin.H{
			"changed":     s.settingsChanged,
			"can_persist": h.app.Settings.CanPersist(),
		},
		"diagnostics": gin.H{
			"total": s.diagnostics,
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": s.mem.Alloc,
			"memory_total": s.mem.TotalAlloc,
			"memory_sys":   s.mem.Sys,
			"gc_runs":      s.mem.NumGC,
		},
	}

	c.JSON(http.StatusOK, metrics)
}

func promLabelEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func writeProm(buf *bytes.Buffer, name, kind, help string, value interface{}) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s %s\n", name, kind)
	fmt.Fprintf(buf, "%s %v\n", name, value)
}

func boolGauge(b bool) int {
	if b {
		return 1
	}
	return 0
}

// GetPrometheusMetrics writes the metrics snapshot in the Prometheus text exposition format.
func (h *Handlers) GetPrometheusMetrics(c *gin.Context) {
	s := h.collectMetricsSnapshot()

	var buf bytes.Buffer

	buf.WriteString("# HELP kiosk_build_info Build information.\n")
	buf.WriteString("# TYPE kiosk_build_info gauge\n")
	fmt.Fprintf(
		&buf,
		"kiosk_build_info{version=\"%s\",commit=\"%s\",build_time=\"%s\"} 1\n",
		promLabelEscape(version.Version),
		promLabelEscape(version.CommitHash),
		promLabelEscape(version.BuildTime),
	)

	up := h.svc.Exhibits.Usable() && database.Up(c.Request.Context(), h.svc.Exhibits.DB())
	writeProm(&buf, "kiosk_sqlite_up", "gauge", "Exhibit database connectivity (1=up, 0=down).", boolGauge(up))
	writeProm(&buf, "kiosk_sqlite_busy_errors_total", "counter", "Total SQLite busy errors observed.", database.SQLiteBusyErrorsTotal())
	writeProm(&buf, "kiosk_sqlite_locked_errors_total", "counter", "Total SQLite locked errors observed.", database.SQLiteLockedErrorsTotal())
	writeProm(&buf, "kiosk_sqlite_query_errors_total", "counter", "Total failed exhibit queries.", database.SQLiteQueryErrorsTotal())
	writeProm(&buf, "kiosk_exhibits_total", "gauge", "Exhibit rows in the database (-1 when unavailable).", s.exhibitCount)
	writeProm(&buf, "kiosk_exhibits_placed", "gauge", "Exhibit nodes placed in the scene.", s.exhibitNodes)
	writeProm(&buf, "kiosk_scene_nodes", "gauge", "Nodes in the scene graph.", s.sceneNodes)
	writeProm(&buf, "kiosk_ui_transitions_total", "counter", "Handled UI state transitions.", s.uiSeq)
	writeProm(&buf, "kiosk_ui_subscribers", "gauge", "Connected UI stream clients.", s.subscribers)
	writeProm(&buf, "kiosk_settings_changed", "gauge", "Unsaved settings changes (1=yes).", boolGauge(s.settingsChanged))
	writeProm(&buf, "kiosk_diagnostics_total", "gauge", "Diagnostics kept in memory.", s.diagnostics)
	writeProm(&buf, "kiosk_go_goroutines", "gauge", "Number of goroutines.", runtime.NumGoroutine())
	writeProm(&buf, "kiosk_memory_alloc_bytes", "gauge", "Bytes of allocated heap objects.", s.mem.Alloc)
	writeProm(&buf, "kiosk_memory_sys_bytes", "gauge", "Bytes obtained from the OS.", s.mem.Sys)
	writeProm(&buf, "kiosk_gc_runs_total", "counter", "Number of completed GC cycles.", s.mem.NumGC)

	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}
