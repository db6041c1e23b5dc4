package gbuffer

import (
	"context"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

// GeometryPass rasterizes instanced draw batches into a GBuffer.
type GeometryPass interface {
	// Draw renders every instance of every batch into gb with a depth test of less.
	// The pass never clears gb; pixels nothing covers keep their previous contents.
	//
	// Parameters:
	//   - ctx: cancels the pass between work-groups
	//   - gb: the target buffer
	//   - cam: supplies the view-projection matrix
	//   - batches: the draws, usually scene.Scene.Batches()
	//
	// Returns:
	//   - error: if ctx is cancelled
	Draw(ctx context.Context, gb *GBuffer, cam camera.Camera, batches []scene.DrawBatch) error
}

type geometryPass struct {
	dispatcher    dispatch.Dispatcher
	cullBackFaces bool
	logger        zerolog.Logger
}

var _ GeometryPass = &geometryPass{}

// NewGeometryPass creates a geometry pass. Back faces are culled by default,
// matching the GPU pipeline.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - GeometryPass: the pass
func NewGeometryPass(options ...GeometryPassBuilderOption) GeometryPass {
	p := &geometryPass{
		cullBackFaces: true,
		logger:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	if p.dispatcher == nil {
		p.dispatcher = dispatch.NewDispatcher(0)
	}
	return p
}

type clipVertex struct {
	clip   mgl32.Vec4
	world  mgl32.Vec3
	normal mgl32.Vec3
	uv     mgl32.Vec2
}

// subpixelSteps is the snapping grid of screen positions per pixel. Snapped
// coordinates make edge functions exact in float64, so a shared edge is
// owned by exactly one of its triangles.
const subpixelSteps = 256

// screenVertex carries attributes pre-divided by w for perspective-correct interpolation.
type screenVertex struct {
	x, y    float64
	z, invW float32
	world         mgl32.Vec3
	normal        mgl32.Vec3
	uv            mgl32.Vec2
}

type triangle struct {
	v                      [3]screenVertex
	area                   float64
	mat                    material.Material
	minX, maxX, minY, maxY int
}

type instanceJob struct {
	batch    *scene.DrawBatch
	instance int
}

func (p *geometryPass) Draw(ctx context.Context, gb *GBuffer, cam camera.Camera, batches []scene.DrawBatch) error {
	if gb.Width() == 0 || gb.Height() == 0 {
		return ctx.Err()
	}
	viewProj := cam.ViewProjectionMatrix()

	var jobs []instanceJob
	for b := range batches {
		if batches[b].Model == nil || batches[b].Material == nil {
			continue
		}
		for i := range batches[b].Instances {
			jobs = append(jobs, instanceJob{batch: &batches[b], instance: i})
		}
	}

	perInstance := make([][]triangle, len(jobs))
	err := p.dispatcher.Dispatch(ctx, len(jobs), 1, func(i, _ int) {
		perInstance[i] = p.setup(jobs[i], viewProj, gb.Width(), gb.Height())
	})
	if err != nil {
		return fmt.Errorf("geometry setup: %w", err)
	}

	// Concatenating in submission order keeps equal-depth results deterministic.
	var tris []triangle
	for _, t := range perInstance {
		tris = append(tris, t...)
	}

	bands := (gb.Height() + dispatch.GroupSize - 1) / dispatch.GroupSize
	err = p.dispatcher.Dispatch(ctx, 1, bands, func(_, band int) {
		y0 := band * dispatch.GroupSize
		y1 := min(y0+dispatch.GroupSize, gb.Height())
		for i := range tris {
			rasterize(gb, &tris[i], y0, y1)
		}
	})
	if err != nil {
		return fmt.Errorf("geometry raster: %w", err)
	}

	p.logger.Debug().Int("instances", len(jobs)).Int("triangles", len(tris)).Msg("geometry pass")
	return nil
}

func (p *geometryPass) setup(job instanceJob, viewProj mgl32.Mat4, width, height int) []triangle {
	inst := job.batch.Instances[job.instance]
	vertices := job.batch.Model.Vertices()
	indices := job.batch.Model.Indices()
	normalMatrix := inst.Normal.Mat3()

	transformed := make([]clipVertex, len(vertices))
	for i, v := range vertices {
		world := inst.Model.Mul4x1(v.Position.Vec4(1)).Vec3()
		transformed[i] = clipVertex{
			clip:   viewProj.Mul4x1(world.Vec4(1)),
			world:  world,
			normal: normalMatrix.Mul3x1(v.Normal),
			uv:     v.TexCoord,
		}
	}

	var out []triangle
	poly := make([]clipVertex, 0, 4)
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		if int(max(i0, i1, i2)) >= len(transformed) {
			continue
		}
		poly = clipNear([3]clipVertex{transformed[i0], transformed[i1], transformed[i2]}, poly)
		for k := 1; k+1 < len(poly); k++ {
			tri, ok := p.project(poly[0], poly[k], poly[k+1], width, height)
			if ok {
				tri.mat = job.batch.Material
				out = append(out, tri)
			}
		}
	}
	return out
}

// clipNear clips a triangle against the z >= 0 plane of WebGPU clip space.
// The result is a polygon of 0, 3 or 4 vertices.
func clipNear(in [3]clipVertex, out []clipVertex) []clipVertex {
	out = out[:0]
	for i := range 3 {
		a, b := in[i], in[(i+1)%3]
		da, db := a.clip[2], b.clip[2]
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, clipVertex{
				clip:   a.clip.Add(b.clip.Sub(a.clip).Mul(t)),
				world:  a.world.Add(b.world.Sub(a.world).Mul(t)),
				normal: a.normal.Add(b.normal.Sub(a.normal).Mul(t)),
				uv:     a.uv.Add(b.uv.Sub(a.uv).Mul(t)),
			})
		}
	}
	return out
}

func toScreen(v clipVertex, width, height int) screenVertex {
	invW := 1 / v.clip[3]
	return screenVertex{
		x:      snap((v.clip[0]*invW*0.5 + 0.5) * float32(width)),
		y:      snap((0.5 - v.clip[1]*invW*0.5) * float32(height)),
		z:      v.clip[2] * invW,
		invW:   invW,
		world:  v.world.Mul(invW),
		normal: v.normal.Mul(invW),
		uv:     v.uv.Mul(invW),
	}
}

func snap(v float32) float64 {
	return math.Round(float64(v)*subpixelSteps) / subpixelSteps
}

func (p *geometryPass) project(a, b, c clipVertex, width, height int) (triangle, bool) {
	if a.clip[3] <= 0 || b.clip[3] <= 0 || c.clip[3] <= 0 {
		return triangle{}, false
	}
	v := [3]screenVertex{toScreen(a, width, height), toScreen(b, width, height), toScreen(c, width, height)}

	// Counter-clockwise in NDC is a negative area once y points down.
	area := edge(v[0], v[1], v[2].x, v[2].y)
	switch {
	case area == 0 || math.IsNaN(area):
		return triangle{}, false
	case area > 0 && p.cullBackFaces:
		return triangle{}, false
	case area < 0:
		v[1], v[2] = v[2], v[1]
		area = -area
	}

	minX := min(v[0].x, v[1].x, v[2].x)
	maxX := max(v[0].x, v[1].x, v[2].x)
	minY := min(v[0].y, v[1].y, v[2].y)
	maxY := max(v[0].y, v[1].y, v[2].y)
	if math.IsInf(minX, 0) || math.IsInf(maxX, 0) || math.IsInf(minY, 0) || math.IsInf(maxY, 0) {
		return triangle{}, false
	}
	t := triangle{
		v:    v,
		area: area,
		minX: max(0, int(math.Floor(max(minX, -1)))),
		maxX: min(width-1, int(math.Ceil(min(maxX, float64(width))))),
		minY: max(0, int(math.Floor(max(minY, -1)))),
		maxY: min(height-1, int(math.Ceil(min(maxY, float64(height))))),
	}
	if t.minX > t.maxX || t.minY > t.maxY {
		return triangle{}, false
	}
	return t, true
}

func edge(a, b screenVertex, px, py float64) float64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// topLeft reports whether pixels exactly on edge a->b belong to the triangle.
func topLeft(a, b screenVertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func covers(w float64, a, b screenVertex) bool {
	return w > 0 || (w == 0 && topLeft(a, b))
}

func rasterize(gb *GBuffer, t *triangle, y0, y1 int) {
	ys, ye := max(t.minY, y0), min(t.maxY, y1-1)
	if ys > ye {
		return
	}
	v0, v1, v2 := t.v[0], t.v[1], t.v[2]
	invArea := 1 / t.area
	width := gb.Width()

	for py := ys; py <= ye; py++ {
		cy := float64(py) + 0.5
		for px := t.minX; px <= t.maxX; px++ {
			cx := float64(px) + 0.5
			w0 := edge(v1, v2, cx, cy)
			w1 := edge(v2, v0, cx, cy)
			w2 := edge(v0, v1, cx, cy)
			if !covers(w0, v1, v2) || !covers(w1, v2, v0) || !covers(w2, v0, v1) {
				continue
			}
			l0, l1, l2 := float32(w0*invArea), float32(w1*invArea), float32(w2*invArea)

			z := l0*v0.z + l1*v1.z + l2*v2.z
			idx := py*width + px
			if z < 0 || z >= gb.Depth[idx] {
				continue
			}

			invW := l0*v0.invW + l1*v1.invW + l2*v2.invW
			if invW <= 0 {
				continue
			}
			wInv := 1 / invW
			world := v0.world.Mul(l0).Add(v1.world.Mul(l1)).Add(v2.world.Mul(l2)).Mul(wInv)
			normal := v0.normal.Mul(l0).Add(v1.normal.Mul(l1)).Add(v2.normal.Mul(l2)).Mul(wInv)
			uv := v0.uv.Mul(l0).Add(v1.uv.Mul(l1)).Add(v2.uv.Mul(l2)).Mul(wInv)
			if n := normal.Len(); n > 0 {
				normal = normal.Mul(1 / n)
			}

			gb.Depth[idx] = z
			gb.Position.Pix[idx] = world.Vec4(1)
			gb.Normal.Pix[idx] = normal.Vec4(0)
			gb.Diffuse.Pix[idx] = t.mat.Diffuse(uv)
			gb.SpecShininess.Pix[idx] = t.mat.SpecShininess(uv)
		}
	}
}
