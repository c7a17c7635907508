package core

import (
	"encoding/json"
	"kiosk/models"
	"log"
	"sync"
	"time"
)

// Diagnostics keeps the most recent warnings and errors raised while the kiosk
// degrades around missing data. Oldest entries are evicted first.
type Diagnostics struct {
	mu        sync.RWMutex
	entries   []*models.Diagnostic
	byID      map[int]*models.Diagnostic
	capacity  int
	idCounter int
}

// Diag is the process-wide ring used by components that have no owner to report to.
var Diag = NewDiagnostics(100)

// NewDiagnostics creates a ring holding at most capacity entries.
func NewDiagnostics(capacity int) *Diagnostics {
	if capacity < 1 {
		capacity = 1
	}
	return &Diagnostics{
		entries:  make([]*models.Diagnostic, 0, capacity),
		byID:     make(map[int]*models.Diagnostic),
		capacity: capacity,
	}
}

// Record stores an entry and mirrors it to the process log.
func (d *Diagnostics) Record(level, source, message, detail string, contextData map[string]interface{}) *models.Diagnostic {
	contextJSON := ""
	if contextData != nil {
		if data, err := json.Marshal(contextData); err == nil {
			contextJSON = string(data)
		}
	}

	if detail != "" {
		log.Printf("[%s] %s: %s (%s)", level, source, message, detail)
	} else {
		log.Printf("[%s] %s: %s", level, source, message)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.entries) >= d.capacity {
		oldest := d.entries[0]
		delete(d.byID, oldest.ID)
		d.entries = d.entries[1:]
	}

	d.idCounter++
	entry := &models.Diagnostic{
		ID:        d.idCounter,
		Timestamp: time.Now(),
		Level:     level,
		Source:    source,
		Message:   message,
		Detail:    detail,
		Context:   contextJSON,
	}
	d.entries = append(d.entries, entry)
	d.byID[entry.ID] = entry
	return entry
}

// List returns entries newest first.
func (d *Diagnostics) List() []*models.Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()

	total := len(d.entries)
	result := make([]*models.Diagnostic, total)
	for i := 0; i < total; i++ {
		result[i] = d.entries[total-1-i]
	}
	return result
}

// Get returns a single entry by ID, or nil.
func (d *Diagnostics) Get(id int) *models.Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.byID[id]
}

// Len returns the number of buffered entries.
func (d *Diagnostics) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Clear removes every entry and resets IDs.
func (d *Diagnostics) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries = make([]*models.Diagnostic, 0, d.capacity)
	d.byID = make(map[int]*models.Diagnostic)
	d.idCounter = 0
}

// Warn records a WARN entry on the shared ring.
func Warn(source, message, detail string) {
	Diag.Record("WARN", source, message, detail, nil)
}

// Error records an ERROR entry on the shared ring.
func Error(source, message, detail string) {
	Diag.Record("ERROR", source, message, detail, nil)
}

// ErrorWithContext records an ERROR entry with JSON-encoded context.
func ErrorWithContext(source, message, detail string, context map[string]interface{}) {
	Diag.Record("ERROR", source, message, detail, context)
}
