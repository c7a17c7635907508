package kiosk

import (
	"errors"
	"kiosk/models"
	"kiosk/scene"
	"kiosk/settings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	title, desc, model, photo string
	t, r, s                   models.Vec3
	amount                    float32
}

// fakeExhibits mimics the degrade-to-sentinel behaviour of the exhibit store.
type fakeExhibits struct {
	order []int
	rows  map[int]fakeRow
	err   error
}

func (f *fakeExhibits) Count() int {
	if f.err != nil {
		return models.BadValue
	}
	return len(f.order)
}

func (f *fakeExhibits) FirstN(n int) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	if n > len(f.order) {
		n = len(f.order)
	}
	return f.order[:n], nil
}

func (f *fakeExhibits) text(id int, pick func(fakeRow) string) (string, bool) {
	row, ok := f.rows[id]
	if !ok || pick(row) == "" {
		return "", false
	}
	return pick(row), true
}

func (f *fakeExhibits) TitleOf(id int) (string, bool) {
	return f.text(id, func(r fakeRow) string { return r.title })
}

func (f *fakeExhibits) DescriptionOf(id int) (string, bool) {
	return f.text(id, func(r fakeRow) string { return r.desc })
}

func (f *fakeExhibits) PhotoPathOf(id int) (string, bool) {
	return f.text(id, func(r fakeRow) string { return r.photo })
}

func (f *fakeExhibits) ModelPathOf(id int) (string, bool) {
	return f.text(id, func(r fakeRow) string { return r.model })
}

func (f *fakeExhibits) vec(id int, pick func(fakeRow) models.Vec3) models.Vec3 {
	row, ok := f.rows[id]
	if !ok {
		return models.BadVec3
	}
	return pick(row)
}

func (f *fakeExhibits) TranslationOf(id int) models.Vec3 {
	return f.vec(id, func(r fakeRow) models.Vec3 { return r.t })
}

func (f *fakeExhibits) RotationOf(id int) models.Vec3 {
	return f.vec(id, func(r fakeRow) models.Vec3 { return r.r })
}

func (f *fakeExhibits) ScalingOf(id int) models.Vec3 {
	return f.vec(id, func(r fakeRow) models.Vec3 { return r.s })
}

func (f *fakeExhibits) RotationAmountOf(id int) float32 {
	row, ok := f.rows[id]
	if !ok {
		return models.BadValue
	}
	return row.amount
}

func testDescriptor() *scene.Descriptor {
	sky := scene.Skybox{}
	for _, f := range scene.Faces {
		sky[f] = "sky/" + string(f) + ".jpg"
	}
	return &scene.Descriptor{
		Models: []scene.Placement{
			{Asset: "hall.3ds", Solid: true, Visible: true},
			{Asset: "glass.3ds", Visible: true, Alpha: true},
			{Asset: "collision.3ds", Solid: true},
		},
		Skybox: sky,
		Camera: scene.Camera{Start: models.Vec3{X: -0.9, Y: 110, Z: 1649}, LookAt: models.Vec3{Y: 110}},
	}
}

func TestBuildScene_SceneModels(t *testing.T) {
	keys := settings.Defaults().KeyMap()
	g := Builder{AssetRoot: "exhibits"}.BuildScene(testDescriptor(), keys)

	require.Len(t, g.Nodes, 3)

	hall := g.Nodes[0]
	assert.Equal(t, "hall.3ds", hall.Mesh, "scene models are not prefixed with the asset root")
	assert.Equal(t, MaterialSolid, hall.Material)
	assert.True(t, hall.BackFaceCulling)
	assert.True(t, hall.Collidable)
	assert.False(t, hall.Lighting)
	assert.Equal(t, noNodeID, hall.ID)

	glass := g.Nodes[1]
	assert.Equal(t, MaterialTransparentAlpha, glass.Material)
	assert.False(t, glass.BackFaceCulling)
	assert.False(t, glass.Collidable)

	assert.False(t, g.Nodes[2].Visible)
	assert.True(t, g.Nodes[2].Collidable)
	assert.Len(t, g.Colliders(), 2)

	assert.Equal(t, "sky/back.jpg", g.Skybox["back"])
	assert.Equal(t, models.Vec3{X: -0.9, Y: 110, Z: 1649}, g.Camera.Position)
	assert.Equal(t, float32(50000), g.Camera.FarValue)
	assert.Equal(t, models.Vec3{X: 25, Y: 50, Z: 25}, g.Camera.Ellipsoid)
	assert.Equal(t, models.Vec3{Y: -20}, g.Camera.Gravity)
	assert.Equal(t, models.Vec3{Y: 60}, g.Camera.EllipsoidTranslation)
	assert.False(t, g.Camera.VerticalMovement)
	assert.Equal(t, keys, g.Camera.KeyMap)
}

func TestAddExhibits_PlacesAndDefaults(t *testing.T) {
	src := &fakeExhibits{
		order: []int{1, 2, 3, 4},
		rows: map[int]fakeRow{
			1: {model: "fossils/trilobite.x", t: models.Vec3{X: 10, Z: -5}, r: models.Vec3{X: 15, Y: 90, Z: 30}, s: models.Vec3{X: 2, Y: 2, Z: 2}, amount: 2},
			2: {title: "No model"},
			3: {model: `minerals\quartz.x`, t: models.BadVec3, r: models.BadVec3, s: models.BadVec3, amount: models.BadValue},
			4: {model: "meteorites/allende.x", t: models.Vec3{X: 1, Y: models.BadValue, Z: 3}, r: models.Vec3{X: 5, Y: models.BadValue, Z: 5}, s: models.Vec3{X: 2, Y: models.BadValue, Z: 2}, amount: 3},
		},
	}
	g := Builder{AssetRoot: "exhibits"}.BuildScene(testDescriptor(), nil)

	placed, skipped := Builder{AssetRoot: "exhibits"}.AddExhibits(g, src)
	assert.Equal(t, 3, placed)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 3, g.ExhibitCount())

	n, ok := g.Node(1)
	require.True(t, ok)
	assert.Equal(t, "exhibits/fossils/trilobite.x", n.Mesh)
	assert.Equal(t, models.Vec3{Y: 180}, n.Rotation)
	assert.Equal(t, models.Vec3{X: 10, Z: -5}, n.Position)
	assert.Equal(t, models.Vec3{X: 2, Y: 2, Z: 2}, n.Scale)
	assert.True(t, n.Collidable)

	n, ok = g.Node(3)
	require.True(t, ok)
	assert.Equal(t, "exhibits/minerals/quartz.x", n.Mesh)
	assert.Equal(t, models.Vec3{}, n.Position)
	assert.Equal(t, models.Vec3{}, n.Rotation)
	assert.Equal(t, models.Vec3{X: 1, Y: 1, Z: 1}, n.Scale)

	n, ok = g.Node(4)
	require.True(t, ok)
	assert.Equal(t, models.Vec3{X: 1, Z: 3}, n.Position)
	assert.Equal(t, models.Vec3{}, n.Rotation)
	assert.Equal(t, models.Vec3{X: 2, Y: 1, Z: 2}, n.Scale)

	_, ok = g.Node(2)
	assert.False(t, ok)
}

func TestAddExhibits_UnusableStore(t *testing.T) {
	g := Builder{}.BuildScene(testDescriptor(), nil)
	placed, skipped := Builder{}.AddExhibits(g, &fakeExhibits{err: errors.New("closed")})
	assert.Zero(t, placed)
	assert.Zero(t, skipped)
	assert.Len(t, g.Nodes, 3)
}

func TestAppliedRotation(t *testing.T) {
	assert.Equal(t, models.Vec3{Y: 180}, AppliedRotation(models.Vec3{X: 45, Y: 90, Z: 10}, 2))
	assert.Equal(t, models.Vec3{Y: 90}, AppliedRotation(models.Vec3{Y: 90}, models.BadValue))
	assert.Equal(t, models.Vec3{}, AppliedRotation(models.BadVec3, 3))
	assert.Equal(t, models.Vec3{}, AppliedRotation(models.Vec3{X: 10, Y: models.BadValue, Z: 10}, 2))
}
