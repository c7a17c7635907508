package service

import (
	"kiosk/core"
	"kiosk/models"
	"strings"
)

// DiagnosticsService exposes the diagnostics ring to the API.
type DiagnosticsService struct {
	diag *core.Diagnostics
}

// NewDiagnosticsService constructs a diagnostics service
func NewDiagnosticsService(diag *core.Diagnostics) *DiagnosticsService {
	return &DiagnosticsService{diag: diag}
}

// List returns entries newest first, optionally filtered by level.
func (s *DiagnosticsService) List(level string) []*models.Diagnostic {
	all := s.diag.List()
	if level == "" {
		return all
	}
	filtered := make([]*models.Diagnostic, 0, len(all))
	for _, d := range all {
		if strings.EqualFold(d.Level, level) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// Get retrieves a single entry by ID
func (s *DiagnosticsService) Get(id int) *models.Diagnostic {
	return s.diag.Get(id)
}

// Clear removes all entries
func (s *DiagnosticsService) Clear() {
	s.diag.Clear()
}
