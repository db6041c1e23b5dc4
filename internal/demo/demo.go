// Package demo builds the showcase scene shared by the viewer and the offline renderer:
// a floor lit by a dim sun, a ring of spinning props and a handful of coloured
// point lights bright enough to drive the bloom pass.
package demo

import (
	"math"

	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// Props is the number of objects placed on the ring.
const Props = 8

// ringRadius is the distance of each prop from the origin.
const ringRadius = 4.0

var lampColors = [][3]float32{
	{8, 2, 1},
	{1, 6, 2},
	{1, 2, 9},
	{7, 6, 1},
}

// NewScene builds the showcase scene.
//
// Parameters:
//   - cfg: supplies the light and batch limits
//   - aspect: initial camera aspect ratio (width / height)
//   - logger: passed to the scene
//
// Returns:
//   - scene.Scene: the populated scene
func NewScene(cfg *config.Config, aspect float32, logger zerolog.Logger) scene.Scene {
	cam := camera.NewCamera(
		camera.WithPosition(0, 4, 10),
		camera.WithTarget(0, 0.5, 0),
		camera.WithUp(0, 1, 0),
		camera.WithFov(mgl32.DegToRad(50)),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(0.1, 60),
	)

	sc := scene.NewScene("showcase", cam,
		scene.WithMaxLights(cfg.Performance.MaxLights),
		scene.WithMaxBatchSize(cfg.Performance.MaxBatchSize),
		scene.WithLogger(logger),
	)

	floor := material.NewMaterial(
		material.WithName("floor"),
		material.WithDiffuseFactor(mgl32.Vec4{0.55, 0.55, 0.6, 1}),
		material.WithSpecular(mgl32.Vec3{0.2, 0.2, 0.2}, 16),
	)
	sc.Add(game_object.NewGameObject(
		game_object.WithModel(model.NewPlane("floor", 24, 6)),
		game_object.WithMaterial(floor),
	))

	// cubes and spheres alternate so each model forms its own instanced batch
	cube := model.NewCube("cube", 1)
	sphere := model.NewSphere("sphere", 0.6, 24, 16)
	glossy := material.NewMaterial(
		material.WithName("glossy"),
		material.WithDiffuseFactor(mgl32.Vec4{0.8, 0.8, 0.8, 1}),
		material.WithSpecular(mgl32.Vec3{1, 1, 1}, 64),
	)
	for i := range Props {
		a := float64(i) * 2 * math.Pi / Props
		x := float32(ringRadius * math.Cos(a))
		z := float32(ringRadius * math.Sin(a))
		m := cube
		if i%2 == 1 {
			m = sphere
		}
		sc.Add(game_object.NewGameObject(
			game_object.WithModel(m),
			game_object.WithMaterial(glossy),
			game_object.WithPosition(x, 0.6, z),
			game_object.WithSpin(0, 0.5+float32(i)*0.1, 0),
		))
	}

	// a tilted slab behind the ring catches the spot light's falloff
	sc.Add(game_object.NewGameObject(
		game_object.WithModel(cube),
		game_object.WithMaterial(floor),
		game_object.WithPosition(0, 1.5, -7),
		game_object.WithScale(8, 3, 0.3),
		game_object.WithRotation(mgl32.DegToRad(-10), 0, 0),
	))

	sc.AddLight(light.NewLight(light.LightTypeDirectional,
		light.WithDirection(-0.3, -1, -0.2),
		light.WithColor(0.25, 0.25, 0.3),
		light.WithAmbient(0.02, 0.02, 0.03),
	))
	for i, c := range lampColors {
		a := float64(i)*2*math.Pi/float64(len(lampColors)) + math.Pi/4
		sc.AddLight(light.NewLight(light.LightTypePoint,
			light.WithPosition(float32(2.5*math.Cos(a)), 1.5, float32(2.5*math.Sin(a))),
			light.WithColor(c[0], c[1], c[2]),
			light.WithRange(7, cfg.Graphics.AttenuationCutoff),
		))
	}
	sc.AddLight(light.NewLight(light.LightTypeSpot,
		light.WithPosition(0, 6, 0),
		light.WithDirection(0, -1, 0),
		light.WithColor(20, 20, 18),
		light.WithRange(10, cfg.Graphics.AttenuationCutoff),
		light.WithSpotCone(20, 8),
	))
	return sc
}
