package service

import (
	"database/sql"
	"errors"
	"fmt"
	"kiosk/config"
	"kiosk/core"
	"kiosk/database"
	"kiosk/models"
	"sync"

	"gorm.io/gorm"
)

const exhibitsTable = "exhibits"

var (
	// ErrStoreUnavailable is returned by sequence lookups while no usable database is open.
	ErrStoreUnavailable = errors.New("exhibit store unavailable")
	// ErrInvalidRange is returned for non-positive counts or positions.
	ErrInvalidRange = errors.New("invalid exhibit range")
)

// ExhibitStore is a read-only view over the exhibits table.
//
// Every lookup degrades instead of failing: text lookups report absence,
// numeric lookups return models.BadValue, and the reason is logged and kept
// in the diagnostics ring. The store is safe for concurrent use.
type ExhibitStore struct {
	mu       sync.RWMutex
	db       *gorm.DB
	path     string
	usable   bool
	settings *config.Config
	diag     *core.Diagnostics
}

// NewExhibitStore creates a closed store. diag may be nil to use the shared ring.
func NewExhibitStore(settings *config.Config, diag *core.Diagnostics) *ExhibitStore {
	if settings == nil {
		settings = config.Settings
	}
	if diag == nil {
		diag = core.Diag
	}
	return &ExhibitStore{settings: settings, diag: diag}
}

// Open opens path read-only, closing any previously opened database first.
// It reports whether the store is usable: the file must exist, be a SQLite
// database and contain the exhibits table.
func (s *ExhibitStore) Open(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closeLocked()
	s.path = path

	db, err := database.OpenReadOnly(path, s.settings)
	if err != nil {
		s.report("ERROR", "open", "cannot open exhibit database", err, map[string]interface{}{"path": path})
		return false
	}
	if !db.Migrator().HasTable(exhibitsTable) {
		s.report("ERROR", "open", "exhibit database has no exhibits table", nil, map[string]interface{}{"path": path})
		database.Close(db)
		return false
	}

	s.db = db
	s.usable = true
	return true
}

// Usable reports whether the last Open succeeded and Close has not been called since.
func (s *ExhibitStore) Usable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usable
}

// Path returns the path given to the last Open.
func (s *ExhibitStore) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// DB exposes the underlying handle for health checks; nil while unusable.
func (s *ExhibitStore) DB() *gorm.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Close releases the database. Calling it on a closed store is a no-op.
func (s *ExhibitStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *ExhibitStore) closeLocked() {
	if s.db == nil {
		s.usable = false
		return
	}
	if err := database.Close(s.db); err != nil {
		s.report("WARN", "close", "error closing exhibit database", err, nil)
	}
	s.db = nil
	s.usable = false
}

// Count returns the number of exhibit rows, or models.BadValue on failure.
func (s *ExhibitStore) Count() int {
	db, ok := s.handle("count")
	if !ok {
		return models.BadValue
	}

	var total int64
	if err := db.Table(exhibitsTable).Count(&total).Error; err != nil {
		s.report("ERROR", "count", "failed to count exhibits", err, nil)
		return models.BadValue
	}
	return int(total)
}

// FirstN returns the ids of the first n exhibits ordered by id.
func (s *ExhibitStore) FirstN(n int) ([]int, error) {
	if n <= 0 {
		s.report("WARN", "first_n", "requested a non-positive number of exhibits", nil, map[string]interface{}{"n": n})
		return nil, fmt.Errorf("%w: n=%d", ErrInvalidRange, n)
	}
	return s.ids("first_n", 0, n)
}

// IDsInRange returns the ids at 1-based positions a through b (inclusive) of
// the same ordering FirstN uses. a and b are swapped when a > b; both must be positive.
func (s *ExhibitStore) IDsInRange(a, b int) ([]int, error) {
	if a <= 0 || b <= 0 {
		s.report("WARN", "ids_in_range", "range bounds must be positive", nil, map[string]interface{}{"from": a, "to": b})
		return nil, fmt.Errorf("%w: from=%d to=%d", ErrInvalidRange, a, b)
	}
	if a > b {
		a, b = b, a
	}
	return s.ids("ids_in_range", a-1, b-a+1)
}

func (s *ExhibitStore) ids(op string, offset, limit int) ([]int, error) {
	db, ok := s.handle(op)
	if !ok {
		return nil, ErrStoreUnavailable
	}

	var ids []int
	err := db.Table(exhibitsTable).Order("id").Offset(offset).Limit(limit).Pluck("id", &ids).Error
	if err != nil {
		s.report("ERROR", op, "failed to list exhibit ids", err, map[string]interface{}{"offset": offset, "limit": limit})
		return nil, fmt.Errorf("failed to list exhibit ids: %w", err)
	}
	return ids, nil
}

// TitleOf returns the exhibit title; ok is false when the row is missing or the title is empty.
func (s *ExhibitStore) TitleOf(id int) (string, bool) {
	return s.text(id, "title")
}

// DescriptionOf returns the exhibit description.
func (s *ExhibitStore) DescriptionOf(id int) (string, bool) {
	return s.text(id, "description")
}

// ModelPathOf returns the model asset path relative to the asset root.
func (s *ExhibitStore) ModelPathOf(id int) (string, bool) {
	return s.text(id, "model_path")
}

// PhotoPathOf returns the photo asset path. Many exhibits have none.
func (s *ExhibitStore) PhotoPathOf(id int) (string, bool) {
	return s.text(id, "photo_path")
}

func (s *ExhibitStore) text(id int, column string) (string, bool) {
	op := column + "_of"
	db, ok := s.handle(op)
	if !ok {
		return "", false
	}

	var value sql.NullString
	err := db.Table(exhibitsTable).Select(column).Where("id = ?", id).Limit(1).Row().Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.report("WARN", op, "exhibit not found", nil, map[string]interface{}{"id": id})
		return "", false
	case err != nil:
		s.report("ERROR", op, "failed to read exhibit text", err, map[string]interface{}{"id": id, "column": column})
		return "", false
	case !value.Valid || value.String == "":
		return "", false
	}
	return value.String, true
}

// TranslationOf returns the exhibit position, models.BadVec3 on failure.
func (s *ExhibitStore) TranslationOf(id int) models.Vec3 {
	return s.vector(id, "translation")
}

// RotationOf returns the stored rotation in degrees, models.BadVec3 on failure.
func (s *ExhibitStore) RotationOf(id int) models.Vec3 {
	return s.vector(id, "rotation")
}

// ScalingOf returns the exhibit scale, models.BadVec3 on failure.
func (s *ExhibitStore) ScalingOf(id int) models.Vec3 {
	return s.vector(id, "scaling")
}

// RotationAmountOf returns the turntable multiplier, models.BadValue on failure.
func (s *ExhibitStore) RotationAmountOf(id int) float32 {
	db, ok := s.handle("rotation_amount_of")
	if !ok {
		return models.BadValue
	}

	var value sql.NullFloat64
	err := db.Table(exhibitsTable).Select("rotation_amout").Where("id = ?", id).Limit(1).Row().Scan(&value)
	if err != nil {
		s.reportLookup("rotation_amount_of", id, err)
		return models.BadValue
	}
	if !value.Valid {
		return models.BadValue
	}
	return float32(value.Float64)
}

func (s *ExhibitStore) vector(id int, prefix string) models.Vec3 {
	op := prefix + "_of"
	db, ok := s.handle(op)
	if !ok {
		return models.BadVec3
	}

	var x, y, z sql.NullFloat64
	err := db.Table(exhibitsTable).
		Select(prefix+"_x", prefix+"_y", prefix+"_z").
		Where("id = ?", id).
		Limit(1).
		Row().
		Scan(&x, &y, &z)
	if err != nil {
		s.reportLookup(op, id, err)
		return models.BadVec3
	}
	return models.Vec3{X: component(x), Y: component(y), Z: component(z)}
}

func component(v sql.NullFloat64) float32 {
	if !v.Valid {
		return models.BadValue
	}
	return float32(v.Float64)
}

// Exhibit returns the whole row for id.
func (s *ExhibitStore) Exhibit(id int) (*models.Exhibit, error) {
	db, ok := s.handle("exhibit")
	if !ok {
		return nil, ErrStoreUnavailable
	}

	var exhibit models.Exhibit
	if err := db.Where("id = ?", id).First(&exhibit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, core.NewNotFoundError(fmt.Sprintf("exhibit %d not found", id))
		}
		s.report("ERROR", "exhibit", "failed to read exhibit", err, map[string]interface{}{"id": id})
		return nil, fmt.Errorf("failed to read exhibit %d: %w", id, err)
	}
	return &exhibit, nil
}

// handle returns the open database, or reports why it cannot be used.
func (s *ExhibitStore) handle(op string) (*gorm.DB, bool) {
	s.mu.RLock()
	db, usable := s.db, s.usable
	s.mu.RUnlock()

	if !usable || db == nil {
		s.report("WARN", op, "exhibit store is not usable", ErrStoreUnavailable, nil)
		return nil, false
	}
	return db, true
}

func (s *ExhibitStore) reportLookup(op string, id int, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		s.report("WARN", op, "exhibit not found", nil, map[string]interface{}{"id": id})
		return
	}
	s.report("ERROR", op, "failed to read exhibit values", err, map[string]interface{}{"id": id})
}

func (s *ExhibitStore) report(level, op, message string, err error, ctx map[string]interface{}) {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	s.diag.Record(level, "exhibits."+op, message, detail, ctx)
}
