// Package engine drives frames: it ticks the scene at a fixed rate, renders and
// presents as fast as the present mode allows, and applies configuration reloads.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hdr/engine/scene"
	"github.com/Carmen-Shannon/oxy-hdr/engine/window"
	"github.com/rs/zerolog"
)

// ErrNoRenderer is returned by Run when the engine was built without a renderer.
var ErrNoRenderer = errors.New("engine has no renderer")

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	mu sync.Mutex

	tickRateChannel chan time.Duration

	running bool
	wg      sync.WaitGroup

	quitChannel  chan struct{}
	quitOnce     sync.Once
	shutdownOnce sync.Once

	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene
	logger   zerolog.Logger

	configPath string
	watcher    config.Watcher

	profiler         *profiler.Profiler
	profilingEnabled bool
	profileInterval  time.Duration

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	renderErr        error
}

// Engine is the frame driver. It owns the window loop and is the only submitter of
// GPU work: each render iteration records and presents exactly one frame.
type Engine interface {
	// Window returns the presentation window, nil when headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer frames are submitted to.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Scene returns the scene rendered each frame.
	//
	// Returns:
	//   - scene.Scene: the scene, or nil
	Scene() scene.Scene

	// SetScene replaces the rendered scene. The camera aspect is matched to the frame.
	//
	// Parameters:
	//   - s: the scene
	SetScene(s scene.Scene)

	// ApplyConfig takes over the graphics and light budget of a reloaded configuration.
	//
	// Parameters:
	//   - cfg: the validated configuration
	ApplyConfig(cfg *config.Config)

	// EnableProfiler enables the periodic frame stats report.
	EnableProfiler()

	// DisableProfiler disables the periodic frame stats report.
	DisableProfiler()

	// SetTickRate sets the scene update rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each tick after the scene update.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: receives the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the tick and render loops and blocks until the window closes or
	// Quit is called. GPU resources are released before it returns.
	//
	// Returns:
	//   - error: a config watcher failure, or the error that stopped the render loop
	Run() error

	// Quit signals every loop to stop. Safe to call more than once.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		logger:          zerolog.Nop(),
		engineTickRate:  time.Second / 60,
		profileInterval: time.Second,
	}

	for _, opt := range options {
		opt(e)
	}

	e.profiler = profiler.NewProfiler(
		profiler.WithLogger(e.logger),
		profiler.WithInterval(e.profileInterval),
		profiler.WithLuminanceSource(e.adaptedLuminance),
	)

	if e.window != nil {
		e.window.SetResizeCallback(e.resize)
		e.window.SetUpdateCallback(e.pollQuit)
	}
	if e.scene != nil {
		e.matchAspect(e.scene)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *engine) SetScene(s scene.Scene) {
	e.matchAspect(s)
	e.mu.Lock()
	e.scene = s
	e.mu.Unlock()
}

func (e *engine) matchAspect(s scene.Scene) {
	if s == nil || e.renderer == nil {
		return
	}
	if c := s.Camera(); c != nil {
		w, h := e.renderer.Size()
		if h > 0 {
			c.SetAspect(float32(w) / float32(h))
		}
	}
}

func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		// minimized; keep the old targets
		return
	}
	if e.renderer != nil {
		if err := e.renderer.Resize(width, height); err != nil {
			e.logger.Error().Err(err).Msg("resize failed")
			return
		}
	}
	if s := e.Scene(); s != nil {
		e.matchAspect(s)
	}
}

func (e *engine) ApplyConfig(cfg *config.Config) {
	if e.renderer != nil {
		e.renderer.ApplyGraphics(cfg.Graphics)
	}
	if s := e.Scene(); s != nil {
		s.SetMaxLights(cfg.Performance.MaxLights)
	}
	e.logger.Info().Msg("configuration applied")
}

func (e *engine) adaptedLuminance() (float32, error) {
	if e.renderer == nil {
		return 0, ErrNoRenderer
	}
	return e.renderer.AdaptedLuminance()
}

func (e *engine) Run() error {
	if e.renderer == nil {
		return ErrNoRenderer
	}
	if e.configPath != "" {
		w, err := config.Watch(e.configPath, e.logger, e.ApplyConfig)
		if err != nil {
			return err
		}
		e.watcher = w
		e.ApplyConfig(w.Current())
	}

	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	e.handle()

	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	} else {
		<-e.quitChannel
	}
	e.shutdown()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderErr
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		close(e.quitChannel)
	})
}

// pollQuit runs on the window thread; a quit from another goroutine closes the window there.
func (e *engine) pollQuit() {
	select {
	case <-e.quitChannel:
		e.shutdown()
	default:
	}
}

// shutdown waits for the loops, then releases the GPU before the surface's window goes away.
func (e *engine) shutdown() {
	e.shutdownOnce.Do(func() {
		e.wg.Wait()
		if e.watcher != nil {
			e.watcher.Close()
		}
		e.renderer.Release()
		if e.window != nil && e.window.IsRunning() {
			if err := e.window.Close(); err != nil {
				e.logger.Warn().Err(err).Msg("window close failed")
			}
		}
		e.logger.Info().Msg("engine stopped")
	})
}

// handle launches the tick and render goroutines.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine advances the scene at the configured tick rate until quit.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if s := e.Scene(); s != nil {
				s.Update(dt)
			}
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender renders one frame per iteration. A frame the surface could not
// provide is skipped, any other render error stops the engine.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("render goroutine recovered from panic")
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(lastRender).Seconds())
		lastRender = now

		if s := e.Scene(); s != nil {
			err := e.renderer.Render(s, dt)
			switch {
			case errors.Is(err, renderer.ErrSurfaceUnavailable):
				e.logger.Debug().Err(err).Msg("frame skipped")
			case err != nil:
				e.logger.Error().Err(err).Msg("render failed")
				e.mu.Lock()
				e.renderErr = err
				e.mu.Unlock()
				e.signalQuit()
				return
			}
		}

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}
		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the tick rate. If the engine is running the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	e.mu.Lock()
	running := e.running
	e.mu.Unlock()
	if !running {
		e.engineTickRate = newRate
		return
	}
	// replace any update the loop has not picked up yet
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
