package kiosk

import (
	"kiosk/models"
	"kiosk/scene"
	"kiosk/settings"
)

// Node kinds.
const (
	KindSceneModel = "scene_model"
	KindExhibit    = "exhibit"
)

// Materials.
const (
	MaterialSolid            = "solid"
	MaterialTransparentAlpha = "transparent_alpha_channel"
)

const (
	// octree nodes split into leaves of at most this many triangles
	octreeTriangleLimit = 1024
	// minimum polygons per collision selector node
	selectorMinPolygons = 128
	// engine id for nodes that are not exhibits
	noNodeID = -1
)

// Node is one mesh node of the scene graph. Exhibits carry their exhibit id
// so a camera-ray hit can be mapped back to the row.
type Node struct {
	ID               int         `json:"id"`
	Kind             string      `json:"kind"`
	Mesh             string      `json:"mesh"`
	Position         models.Vec3 `json:"position"`
	Rotation         models.Vec3 `json:"rotation"`
	Scale            models.Vec3 `json:"scale"`
	Visible          bool        `json:"visible"`
	Lighting         bool        `json:"lighting"`
	NormalizeNormals bool        `json:"normalize_normals"`
	Material         string      `json:"material"`
	BackFaceCulling  bool        `json:"back_face_culling"`
	Collidable       bool        `json:"collidable"`
	TriangleLimit    int         `json:"triangle_limit"`
	SelectorPolygons int         `json:"selector_polygons,omitempty"`
}

// CameraRig is the first-person camera with its collision response.
type CameraRig struct {
	Position             models.Vec3           `json:"position"`
	Target               models.Vec3           `json:"target"`
	RotateSpeed          float32               `json:"rotate_speed"`
	MoveSpeed            float32               `json:"move_speed"`
	FarValue             float32               `json:"far_value"`
	VerticalMovement     bool                  `json:"vertical_movement"`
	KeyMap               []settings.KeyBinding `json:"key_map"`
	Ellipsoid            models.Vec3           `json:"ellipsoid"`
	Gravity              models.Vec3           `json:"gravity"`
	EllipsoidTranslation models.Vec3           `json:"ellipsoid_translation"`
	SlidingSpeed         float32               `json:"sliding_speed"`
	PickDistance         float32               `json:"pick_distance"`
}

// NewCameraRig places the camera at the scene's start pose with the kiosk's
// fixed movement and collision parameters.
func NewCameraRig(cam scene.Camera, keys []settings.KeyBinding) CameraRig {
	return CameraRig{
		Position:             cam.Start,
		Target:               cam.LookAt,
		RotateSpeed:          100,
		MoveSpeed:            0.5,
		FarValue:             50000,
		VerticalMovement:     false,
		KeyMap:               keys,
		Ellipsoid:            models.Vec3{X: 25, Y: 50, Z: 25},
		Gravity:              models.Vec3{X: 0, Y: -20, Z: 0},
		EllipsoidTranslation: models.Vec3{X: 0, Y: 60, Z: 0},
		SlidingSpeed:         0.05,
		PickDistance:         300,
	}
}

// Graph is the renderer-facing scene: what the engine is asked to build.
type Graph struct {
	Nodes  []Node            `json:"nodes"`
	Skybox map[string]string `json:"skybox"`
	Camera CameraRig         `json:"camera"`
}

// Node returns the exhibit node with the given id.
func (g *Graph) Node(id int) (Node, bool) {
	if id <= 0 {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Colliders returns the nodes that take part in camera collision.
func (g *Graph) Colliders() []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Collidable {
			out = append(out, n)
		}
	}
	return out
}

// ExhibitCount returns the number of exhibit nodes.
func (g *Graph) ExhibitCount() int {
	n := 0
	for _, node := range g.Nodes {
		if node.Kind == KindExhibit {
			n++
		}
	}
	return n
}
