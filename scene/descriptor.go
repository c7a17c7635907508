// Package scene parses the XML scene descriptor: static model placements, a
// skybox and the camera start pose.
package scene

import (
	"fmt"
	"kiosk/models"
	"strings"
)

// Face names one side of the skybox cube.
type Face string

const (
	FaceTop    Face = "top"
	FaceBottom Face = "bottom"
	FaceLeft   Face = "left"
	FaceRight  Face = "right"
	FaceFront  Face = "front"
	FaceBack   Face = "back"
)

// Faces lists the skybox faces in the order the engine expects them.
var Faces = []Face{FaceTop, FaceBottom, FaceLeft, FaceRight, FaceFront, FaceBack}

func parseFace(name string) (Face, bool) {
	for _, f := range Faces {
		if strings.EqualFold(name, string(f)) {
			return f, true
		}
	}
	return "", false
}

// Placement is one static model of the scene.
type Placement struct {
	Asset   string `json:"asset"`
	Solid   bool   `json:"solid"`
	Visible bool   `json:"visible"`
	Alpha   bool   `json:"alpha"`
}

// Skybox maps each face to its texture asset.
type Skybox map[Face]string

// Missing returns the faces without a texture, in Faces order.
func (s Skybox) Missing() []string {
	var missing []string
	for _, f := range Faces {
		if s[f] == "" {
			missing = append(missing, string(f))
		}
	}
	return missing
}

// Camera is the start pose of the walking camera.
type Camera struct {
	Start  models.Vec3 `json:"start"`
	LookAt models.Vec3 `json:"look_at"`
}

// Descriptor is a parsed scene. It is not modified after parsing.
type Descriptor struct {
	Models []Placement `json:"models"`
	Skybox Skybox      `json:"skybox"`
	Camera Camera      `json:"camera"`
}

// MalformedSceneError reports a scene document that cannot produce a scene.
type MalformedSceneError struct {
	Reason  string
	Missing []string
	Err     error
}

func (e *MalformedSceneError) Error() string {
	msg := "malformed scene: " + e.Reason
	if len(e.Missing) > 0 {
		msg += " (missing " + strings.Join(e.Missing, ", ") + ")"
	}
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *MalformedSceneError) Unwrap() error {
	return e.Err
}
