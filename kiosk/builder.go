package kiosk

import (
	"kiosk/models"
	"kiosk/scene"
	"kiosk/settings"
	"path"
	"strings"
)

// ExhibitSource is the read side of the exhibit store used to place exhibits.
type ExhibitSource interface {
	Count() int
	FirstN(n int) ([]int, error)
	ModelPathOf(id int) (string, bool)
	TranslationOf(id int) models.Vec3
	RotationOf(id int) models.Vec3
	ScalingOf(id int) models.Vec3
	RotationAmountOf(id int) float32
}

var (
	defaultPosition = models.Vec3{}
	defaultScale    = models.Vec3{X: 1, Y: 1, Z: 1}
	defaultRotation = models.Vec3{}
)

// Builder turns a scene descriptor and the exhibit rows into a Graph.
type Builder struct {
	AssetRoot string
}

// BuildScene creates the static scene: one octree node per descriptor model,
// the skybox and the camera.
func (b Builder) BuildScene(desc *scene.Descriptor, keys []settings.KeyBinding) *Graph {
	g := &Graph{
		Nodes:  make([]Node, 0, len(desc.Models)),
		Skybox: make(map[string]string, len(scene.Faces)),
		Camera: NewCameraRig(desc.Camera, keys),
	}

	for _, m := range desc.Models {
		n := Node{
			ID:               noNodeID,
			Kind:             KindSceneModel,
			Mesh:             m.Asset,
			Scale:            defaultScale,
			Visible:          m.Visible,
			NormalizeNormals: true,
			Material:         MaterialSolid,
			BackFaceCulling:  true,
			Collidable:       m.Solid,
			TriangleLimit:    octreeTriangleLimit,
		}
		if m.Alpha {
			n.Material = MaterialTransparentAlpha
			n.BackFaceCulling = false
		}
		if m.Solid {
			n.SelectorPolygons = selectorMinPolygons
		}
		g.Nodes = append(g.Nodes, n)
	}

	for _, f := range scene.Faces {
		g.Skybox[string(f)] = desc.Skybox[f]
	}
	return g
}

// AddExhibits places every exhibit of src into g. Rows without a model are
// skipped. Unreadable transforms fall back to the engine defaults.
func (b Builder) AddExhibits(g *Graph, src ExhibitSource) (placed, skipped int) {
	total := src.Count()
	if total <= 0 {
		return 0, 0
	}
	ids, err := src.FirstN(total)
	if err != nil {
		return 0, 0
	}

	for _, id := range ids {
		model, ok := src.ModelPathOf(id)
		if !ok {
			skipped++
			continue
		}
		g.Nodes = append(g.Nodes, Node{
			ID:               id,
			Kind:             KindExhibit,
			Mesh:             b.assetPath(model),
			Position:         src.TranslationOf(id).Or(defaultPosition),
			Rotation:         AppliedRotation(src.RotationOf(id), src.RotationAmountOf(id)),
			Scale:            src.ScalingOf(id).Or(defaultScale),
			Visible:          true,
			NormalizeNormals: true,
			Material:         MaterialSolid,
			BackFaceCulling:  true,
			Collidable:       true,
			TriangleLimit:    octreeTriangleLimit,
			SelectorPolygons: selectorMinPolygons,
		})
		placed++
	}
	return placed, skipped
}

// AppliedRotation is the turntable rotation of an exhibit, with sentinel
// rotation components replaced by 0 and a sentinel amount by 1.
func AppliedRotation(rot models.Vec3, amount float32) models.Vec3 {
	rot = rot.Or(defaultRotation)
	if amount == models.BadValue {
		amount = 1
	}
	return models.TurntableRotation(rot, amount)
}

func (b Builder) assetPath(model string) string {
	model = strings.ReplaceAll(model, "\\", "/")
	if b.AssetRoot == "" {
		return model
	}
	return path.Join(b.AssetRoot, model)
}
