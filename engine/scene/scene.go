package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-hdr/engine/camera"
	"github.com/Carmen-Shannon/oxy-hdr/engine/game_object"
	"github.com/Carmen-Shannon/oxy-hdr/engine/light"
	"github.com/Carmen-Shannon/oxy-hdr/engine/model"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer/material"
	"github.com/rs/zerolog"
)

// DrawBatch is one instanced draw: every visible object sharing a model and material.
type DrawBatch struct {
	Model     model.Model
	Material  material.Material
	Instances []model.GPUInstance
}

// Scene is the collection of objects, lights and the camera that one frame renders.
type Scene interface {
	// Name returns the scene identifier.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Camera returns the active camera.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// SetCamera replaces the active camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Add registers an object and assigns it an ID.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the assigned ID
	Add(obj game_object.GameObject) uint64

	// Get returns the object with the given ID, or nil.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove unregisters an object.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Count returns the number of registered objects.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// AddLight registers a light. Lights past the configured limit are kept but not packed.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// RemoveLight unregisters a light.
	//
	// Parameters:
	//   - l: the light to remove
	RemoveLight(l light.Light)

	// Lights returns a copy of the registered lights in insertion order.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// SetMaxLights changes how many slots LightBlock may fill.
	//
	// Parameters:
	//   - n: slot budget, clamped to [1, light.MaxLights]
	SetMaxLights(n int)

	// LightBlock packs the enabled lights into the fixed-capacity block and mask.
	//
	// Returns:
	//   - light.Block: the packed block
	LightBlock() light.Block

	// Update advances every object by dt seconds.
	//
	// Parameters:
	//   - dt: elapsed seconds
	Update(dt float32)

	// Batches groups the visible, enabled objects into instanced draws.
	// Objects outside the camera frustum are skipped unless culling is disabled.
	// Each batch holds at most the configured batch size of instances.
	//
	// Returns:
	//   - []DrawBatch: batches in first-seen order
	Batches() []DrawBatch
}

type batchKey struct {
	mdl model.Model
	mat material.Material
}

type scene struct {
	mu sync.RWMutex

	name            string
	cam             camera.Camera
	objects         map[uint64]game_object.GameObject
	order           []uint64
	nextID          uint64
	lights          []light.Light
	maxLights       int
	maxBatchSize    int
	cullingDisabled bool
	logger          zerolog.Logger
	warnedDropped   int
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera and options.
//
// Parameters:
//   - name: the scene identifier
//   - cam: the active camera
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:         name,
		cam:          cam,
		objects:      make(map[uint64]game_object.GameObject),
		nextID:       1,
		maxLights:    light.MaxLights,
		maxBatchSize: 1000,
		logger:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(obj)
}

func (s *scene) addLocked(obj game_object.GameObject) uint64 {
	id := s.nextID
	s.nextID++
	obj.SetID(id)
	s.objects[id] = obj
	s.order = append(s.order, id)
	return id
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objects[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id]; !ok {
		return
	}
	delete(s.objects, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.lights {
		if existing == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) SetMaxLights(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxLights = max(1, min(n, light.MaxLights))
}

func (s *scene) LightBlock() light.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	block, dropped := light.Pack(s.lights, s.maxLights)
	if dropped > 0 && dropped != s.warnedDropped {
		s.logger.Warn().
			Int("dropped", dropped).
			Int("max_lights", s.maxLights).
			Msg("scene has more enabled lights than slots, extra lights are ignored")
	}
	s.warnedDropped = dropped
	return block
}

func (s *scene) Update(dt float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		s.objects[id].Update(dt)
	}
}

func (s *scene) Batches() []DrawBatch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cullTest func(obj game_object.GameObject) bool
	if s.cam != nil && !s.cullingDisabled {
		frustum := s.cam.Frustum()
		cullTest = func(obj game_object.GameObject) bool {
			center, radius := obj.WorldBounds()
			return frustum.ContainsSphere(center, radius)
		}
	}

	index := make(map[batchKey]int)
	var batches []DrawBatch
	for _, id := range s.order {
		obj := s.objects[id]
		if !obj.Enabled() || obj.Model() == nil || obj.Material() == nil {
			continue
		}
		if cullTest != nil && !cullTest(obj) {
			continue
		}
		key := batchKey{mdl: obj.Model(), mat: obj.Material()}
		i, ok := index[key]
		if !ok || len(batches[i].Instances) >= s.maxBatchSize {
			batches = append(batches, DrawBatch{Model: key.mdl, Material: key.mat})
			i = len(batches) - 1
			index[key] = i
		}
		batches[i].Instances = append(batches[i].Instances, model.NewGPUInstance(obj.ModelMatrix()))
	}
	return batches
}
