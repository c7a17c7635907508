package scene

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"kiosk/models"
	"os"
	"strconv"
	"strings"
)

const (
	sectionScene  = "scene"
	sectionSkybox = "skybox"
	sectionCamera = "camera"

	tagModel  = "model"
	tagSide   = "side"
	tagVector = "vector"

	vectorStart  = "start"
	vectorLookAt = "look_at"
)

// Parse reads a scene document in a single streaming pass.
//
// Sections are entered at their opening tag and left at their own closing
// tag; tags that do not belong to the current section are ignored. Models
// without a name are skipped. All six skybox faces and both camera vectors
// are required.
func Parse(r io.Reader) (*Descriptor, error) {
	d := xml.NewDecoder(r)
	d.Strict = false
	d.AutoClose = []string{tagModel, tagSide, tagVector}

	desc := &Descriptor{Skybox: make(Skybox, len(Faces))}
	var start, lookAt *models.Vec3
	section := ""

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedSceneError{Reason: "invalid xml", Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			if section == "" {
				if name == sectionScene || name == sectionSkybox || name == sectionCamera {
					section = name
				}
				continue
			}

			switch {
			case section == sectionScene && name == tagModel:
				asset := attr(t, "name")
				if asset == "" {
					continue
				}
				desc.Models = append(desc.Models, Placement{
					Asset:   asset,
					Solid:   attr(t, "solid") == "1",
					Visible: attr(t, "visible") == "1",
					Alpha:   attr(t, "alpha") == "1",
				})
			case section == sectionSkybox && name == tagSide:
				if face, ok := parseFace(attr(t, "name")); ok {
					desc.Skybox[face] = attr(t, "texture")
				}
			case section == sectionCamera && name == tagVector:
				which := strings.ToLower(attr(t, "name"))
				if which != vectorStart && which != vectorLookAt {
					continue
				}
				v, err := vector(t)
				if err != nil {
					return nil, &MalformedSceneError{Reason: "invalid camera vector " + which, Err: err}
				}
				if which == vectorStart {
					start = &v
				} else {
					lookAt = &v
				}
			}
		case xml.EndElement:
			if strings.EqualFold(t.Name.Local, section) {
				section = ""
			}
		}
	}

	if missing := desc.Skybox.Missing(); len(missing) > 0 {
		return nil, &MalformedSceneError{Reason: "incomplete skybox", Missing: missing}
	}

	var missing []string
	if start == nil {
		missing = append(missing, vectorStart)
	}
	if lookAt == nil {
		missing = append(missing, vectorLookAt)
	}
	if len(missing) > 0 {
		return nil, &MalformedSceneError{Reason: "incomplete camera", Missing: missing}
	}
	desc.Camera = Camera{Start: *start, LookAt: *lookAt}

	return desc, nil
}

// ParseFile parses the scene document at path.
func ParseFile(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func vector(t xml.StartElement) (models.Vec3, error) {
	var out [3]float32
	for i, axis := range []string{"x", "y", "z"} {
		raw := attr(t, axis)
		if raw == "" {
			return models.Vec3{}, fmt.Errorf("missing %s", axis)
		}
		f, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return models.Vec3{}, fmt.Errorf("%s=%q: %w", axis, raw, err)
		}
		out[i] = float32(f)
	}
	return models.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}
