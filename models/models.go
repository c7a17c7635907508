package models

import "time"

// BadValue marks a number that could not be read from the exhibit store.
// Callers treat it as "use the engine default", never as a coordinate.
const BadValue = -1

// Vec3 is a position, rotation (degrees) or scale triple.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// BadVec3 is the sentinel vector returned by failed numeric lookups.
var BadVec3 = Vec3{X: BadValue, Y: BadValue, Z: BadValue}

// IsBad reports whether v is the lookup-failure sentinel.
func (v Vec3) IsBad() bool {
	return v == BadVec3
}

// Or replaces every sentinel component of v with the matching component of def.
func (v Vec3) Or(def Vec3) Vec3 {
	if v.X == BadValue {
		v.X = def.X
	}
	if v.Y == BadValue {
		v.Y = def.Y
	}
	if v.Z == BadValue {
		v.Z = def.Z
	}
	return v
}

// TurntableRotation converts a stored rotation into the rotation applied to an
// exhibit node: x and z are always zeroed and y is scaled by amount.
func TurntableRotation(rot Vec3, amount float32) Vec3 {
	return Vec3{X: 0, Y: rot.Y * amount, Z: 0}
}

// Exhibit is one row of the exhibits table. Rows are authored by curatorial
// tooling; the kiosk only reads them.
type Exhibit struct {
	ID             int      `gorm:"column:id;primaryKey" json:"id"`
	Title          *string  `gorm:"column:title" json:"title"`
	Description    *string  `gorm:"column:description" json:"description"`
	ModelPath      *string  `gorm:"column:model_path" json:"model_path"`
	PhotoPath      *string  `gorm:"column:photo_path" json:"photo_path"`
	TranslationX   *float64 `gorm:"column:translation_x" json:"translation_x"`
	TranslationY   *float64 `gorm:"column:translation_y" json:"translation_y"`
	TranslationZ   *float64 `gorm:"column:translation_z" json:"translation_z"`
	RotationX      *float64 `gorm:"column:rotation_x" json:"rotation_x"`
	RotationY      *float64 `gorm:"column:rotation_y" json:"rotation_y"`
	RotationZ      *float64 `gorm:"column:rotation_z" json:"rotation_z"`
	RotationAmount *float64 `gorm:"column:rotation_amout" json:"rotation_amount"` // column name is misspelled in deployed databases
	ScalingX       *float64 `gorm:"column:scaling_x" json:"scaling_x"`
	ScalingY       *float64 `gorm:"column:scaling_y" json:"scaling_y"`
	ScalingZ       *float64 `gorm:"column:scaling_z" json:"scaling_z"`
}

// TableName pins the table name used by deployed exhibit databases.
func (Exhibit) TableName() string {
	return "exhibits"
}

// ExhibitRead is the API view of one exhibit: dialog texts plus the transforms
// as they are applied to the scene.
type ExhibitRead struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	HasTitle    bool    `json:"has_title"`
	PhotoPath   string  `json:"photo_path,omitempty"`
	ModelPath   string  `json:"model_path,omitempty"`
	Translation Vec3    `json:"translation"`
	Rotation    Vec3    `json:"rotation"`
	Amount      float32 `json:"rotation_amount"`
	Scaling     Vec3    `json:"scaling"`
	Applied     Vec3    `json:"applied_rotation"`
}

// Diagnostic is one entry of the in-memory diagnostics ring.
type Diagnostic struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`  // ERROR, WARN
	Source    string    `json:"source"` // component name
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	Context   string    `json:"context,omitempty"` // JSON
}

// SettingsRead is the API view of the user settings.
type SettingsRead struct {
	Resolution   string            `json:"resolution"`
	Fullscreen   bool              `json:"fullscreen"`
	VSync        bool              `json:"vsync"`
	Antialiasing uint8             `json:"antialiasing"`
	Driver       string            `json:"driver"`
	Keys         map[string]string `json:"keys"` // action name -> key character
	Changed      bool              `json:"changed"`
	CanPersist   bool              `json:"can_persist"`
	Path         string            `json:"path"`
	LoadError    string            `json:"load_error,omitempty"`
}

// SettingsUpdate is the settings dialog submission. Nil fields keep their
// current value; Keys may hold any subset of the actions.
type SettingsUpdate struct {
	Resolution   *string           `json:"resolution"`
	Fullscreen   *bool             `json:"fullscreen"`
	VSync        *bool             `json:"vsync"`
	Antialiasing *uint8            `json:"antialiasing"`
	Driver       *string           `json:"driver"`
	Keys         map[string]string `json:"keys"`
}

// FPSReport is sent by the renderer whenever its frame counter changes.
type FPSReport struct {
	FPS int `json:"fps"`
}

// ShutdownVerifyRequest carries the code returned by generate-code.
type ShutdownVerifyRequest struct {
	Code string `json:"code" binding:"required"`
}
