package service

import (
	"errors"
	"kiosk/config"
	"kiosk/core"
	"kiosk/models"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func strPtr(s string) *string { return &s }

func numPtr(f float64) *float64 { return &f }

func testSettings() *config.Config {
	return &config.Config{SQLiteBusyTimeoutMS: 1000, SQLiteMaxOpenConns: 1, SQLiteMaxIdleConns: 1}
}

// seedExhibits writes a writable fixture database and returns its path.
func seedExhibits(t *testing.T, rows []models.Exhibit) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdc.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	if err := db.AutoMigrate(&models.Exhibit{}); err != nil {
		t.Fatalf("migrate fixture: %v", err)
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}
	sqlDB, _ := db.DB()
	sqlDB.Close()
	return path
}

func openStore(t *testing.T, rows []models.Exhibit) (*ExhibitStore, *core.Diagnostics) {
	t.Helper()
	diag := core.NewDiagnostics(50)
	store := NewExhibitStore(testSettings(), diag)
	if !store.Open(seedExhibits(t, rows)) {
		t.Fatalf("expected store to open")
	}
	t.Cleanup(store.Close)
	return store, diag
}

func sampleRows() []models.Exhibit {
	return []models.Exhibit{
		{
			ID: 3, Title: strPtr("Trilobite"), Description: strPtr("Cambrian arthropod."),
			ModelPath: strPtr("fossils/trilobite.x"), PhotoPath: strPtr("photos/trilobite.jpg"),
			TranslationX: numPtr(10), TranslationY: numPtr(0), TranslationZ: numPtr(-25.5),
			RotationX: numPtr(15), RotationY: numPtr(90), RotationZ: numPtr(30), RotationAmount: numPtr(2),
			ScalingX: numPtr(1), ScalingY: numPtr(1.5), ScalingZ: numPtr(1),
		},
		{ID: 1, Title: strPtr("Ammonite"), ModelPath: strPtr("fossils/ammonite.x"), Description: strPtr("")},
		{ID: 7, Title: strPtr("Quartz")},
		{ID: 5, Title: strPtr("Meteorite"), TranslationX: numPtr(1), TranslationZ: numPtr(3)},
	}
}

func TestExhibitStore_OpenMissingFile(t *testing.T) {
	diag := core.NewDiagnostics(10)
	store := NewExhibitStore(testSettings(), diag)
	path := filepath.Join(t.TempDir(), "nope.db")

	if store.Open(path) {
		t.Fatalf("expected open of missing file to fail")
	}
	if store.Usable() {
		t.Fatalf("expected store to be unusable")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected missing file to stay missing, got %v", err)
	}
	if diag.Len() == 0 {
		t.Fatalf("expected a diagnostic to be recorded")
	}
}

func TestExhibitStore_OpenMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(path, []byte("this is not a sqlite database, just some text padding it out"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewExhibitStore(testSettings(), core.NewDiagnostics(10))
	if store.Open(path) {
		t.Fatalf("expected open of malformed file to fail")
	}
}

func TestExhibitStore_OpenWithoutExhibitsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.Exec("CREATE TABLE other (id INTEGER PRIMARY KEY)")
	sqlDB, _ := db.DB()
	sqlDB.Close()

	store := NewExhibitStore(testSettings(), core.NewDiagnostics(10))
	if store.Open(path) {
		t.Fatalf("expected open without exhibits table to fail")
	}
}

func TestExhibitStore_UnusableDegrades(t *testing.T) {
	store := NewExhibitStore(testSettings(), core.NewDiagnostics(50))

	if got := store.Count(); got != models.BadValue {
		t.Fatalf("expected count %d, got %d", models.BadValue, got)
	}
	if _, err := store.FirstN(3); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if _, ok := store.TitleOf(1); ok {
		t.Fatalf("expected absent title")
	}
	if got := store.TranslationOf(1); !got.IsBad() {
		t.Fatalf("expected sentinel translation, got %+v", got)
	}
	if got := store.RotationAmountOf(1); got != models.BadValue {
		t.Fatalf("expected sentinel amount, got %v", got)
	}

	store.Close()
	store.Close()
}

func TestExhibitStore_Count(t *testing.T) {
	store, _ := openStore(t, sampleRows())
	if got := store.Count(); got != 4 {
		t.Fatalf("expected 4 exhibits, got %d", got)
	}
}

func TestExhibitStore_FirstNOrderedByID(t *testing.T) {
	store, _ := openStore(t, sampleRows())

	ids, err := store.FirstN(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{1, 3, 5}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}

	ids, err = store.FirstN(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{1, 3, 5, 7}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestExhibitStore_FirstNRejectsNonPositive(t *testing.T) {
	store, _ := openStore(t, sampleRows())
	for _, n := range []int{0, -4} {
		if _, err := store.FirstN(n); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange for n=%d, got %v", n, err)
		}
	}
}

func TestExhibitStore_IDsInRangeMatchesFirstN(t *testing.T) {
	store, _ := openStore(t, sampleRows())

	for n := 1; n <= 4; n++ {
		first, err := store.FirstN(n)
		if err != nil {
			t.Fatalf("FirstN(%d): %v", n, err)
		}
		ranged, err := store.IDsInRange(1, n)
		if err != nil {
			t.Fatalf("IDsInRange(1, %d): %v", n, err)
		}
		if !reflect.DeepEqual(first, ranged) {
			t.Fatalf("expected FirstN(%d)=%v to equal IDsInRange(1,%d)=%v", n, first, n, ranged)
		}
	}
}

func TestExhibitStore_IDsInRangeSwapsBounds(t *testing.T) {
	store, _ := openStore(t, sampleRows())

	forward, err := store.IDsInRange(2, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	backward, err := store.IDsInRange(3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{3, 5}; !reflect.DeepEqual(forward, want) {
		t.Fatalf("expected %v, got %v", want, forward)
	}
	if !reflect.DeepEqual(forward, backward) {
		t.Fatalf("expected swap invariance, got %v and %v", forward, backward)
	}

	if _, err := store.IDsInRange(0, 2); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestExhibitStore_HugeBoundsReturnEveryRow(t *testing.T) {
	store, _ := openStore(t, sampleRows())
	want := []int{1, 3, 5, 7}

	ids, err := store.FirstN(math.MaxInt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}

	ids, err = store.IDsInRange(math.MaxInt, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}

	ids, err = store.IDsInRange(3, 1<<33)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []int{5, 7}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestExhibitStore_TextLookups(t *testing.T) {
	store, _ := openStore(t, sampleRows())

	if title, ok := store.TitleOf(3); !ok || title != "Trilobite" {
		t.Fatalf("expected Trilobite, got %q (ok=%v)", title, ok)
	}
	if photo, ok := store.PhotoPathOf(3); !ok || photo != "photos/trilobite.jpg" {
		t.Fatalf("unexpected photo path %q (ok=%v)", photo, ok)
	}
	if model, ok := store.ModelPathOf(1); !ok || model != "fossils/ammonite.x" {
		t.Fatalf("unexpected model path %q (ok=%v)", model, ok)
	}
	if _, ok := store.DescriptionOf(1); ok {
		t.Fatalf("expected empty description to be absent")
	}
	if _, ok := store.PhotoPathOf(7); ok {
		t.Fatalf("expected null photo path to be absent")
	}
}

func TestExhibitStore_MissingIDIsAbsent(t *testing.T) {
	store, diag := openStore(t, sampleRows())

	if _, ok := store.TitleOf(42); ok {
		t.Fatalf("expected absent title")
	}
	if _, ok := store.DescriptionOf(42); ok {
		t.Fatalf("expected absent description")
	}
	for name, got := range map[string]models.Vec3{
		"translation": store.TranslationOf(42),
		"rotation":    store.RotationOf(42),
		"scaling":     store.ScalingOf(42),
	} {
		if !got.IsBad() {
			t.Fatalf("expected sentinel %s, got %+v", name, got)
		}
	}
	if got := store.RotationAmountOf(42); got != models.BadValue {
		t.Fatalf("expected sentinel amount, got %v", got)
	}
	if diag.Len() == 0 {
		t.Fatalf("expected missing rows to be reported")
	}
	if _, err := store.Exhibit(42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExhibitStore_NumericLookups(t *testing.T) {
	store, _ := openStore(t, sampleRows())

	if got, want := store.TranslationOf(3), (models.Vec3{X: 10, Y: 0, Z: -25.5}); got != want {
		t.Fatalf("expected translation %+v, got %+v", want, got)
	}
	if got, want := store.ScalingOf(3), (models.Vec3{X: 1, Y: 1.5, Z: 1}); got != want {
		t.Fatalf("expected scaling %+v, got %+v", want, got)
	}

	rot := store.RotationOf(3)
	amount := store.RotationAmountOf(3)
	applied := models.TurntableRotation(rot, amount)
	if want := (models.Vec3{X: 0, Y: 180, Z: 0}); applied != want {
		t.Fatalf("expected applied rotation %+v, got %+v", want, applied)
	}

	// null components come back as the sentinel individually
	if got, want := store.TranslationOf(5), (models.Vec3{X: 1, Y: models.BadValue, Z: 3}); got != want {
		t.Fatalf("expected translation %+v, got %+v", want, got)
	}
}

func TestExhibitStore_ReopenAfterClose(t *testing.T) {
	store, _ := openStore(t, sampleRows())
	path := store.Path()

	store.Close()
	if store.Usable() {
		t.Fatalf("expected closed store to be unusable")
	}
	if !store.Open(path) {
		t.Fatalf("expected reopen to succeed")
	}
	if got := store.Count(); got != 4 {
		t.Fatalf("expected 4 exhibits after reopen, got %d", got)
	}
}
