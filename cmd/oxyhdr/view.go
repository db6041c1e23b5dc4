package main

import (
	"time"

	"github.com/Carmen-Shannon/oxy-hdr/engine"
	"github.com/Carmen-Shannon/oxy-hdr/engine/logger"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hdr/engine/window"
	"github.com/Carmen-Shannon/oxy-hdr/internal/demo"
	"github.com/spf13/cobra"
)

func newViewCommand() *cobra.Command {
	var (
		profile  bool
		orbit    float32
		fpsLimit float64
	)
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a window and render the showcase scene",
		Long: `Open a window and render the showcase scene on the GPU.

When --config names a file it is watched; saving it applies the exposure,
bloom and light settings without restarting.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			win, err := window.NewWindow(
				window.WithTitle(cfg.Window.Title),
				window.WithSize(cfg.Window.Width, cfg.Window.Height),
				window.WithMinSize(640, 360),
			)
			if err != nil {
				return err
			}

			mode := renderer.PresentModeUncapped
			if cfg.Window.VSync {
				mode = renderer.PresentModeVSync
			}
			r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win,
				renderer.WithPresentMode(mode),
				renderer.WithGraphics(cfg.Graphics),
				renderer.WithLogger(logger.Component(log, "renderer")),
			)
			if err != nil {
				_ = win.Close()
				return err
			}

			sc := demo.NewScene(cfg, float32(win.Width())/float32(win.Height()), logger.Component(log, "scene"))

			options := []engine.EngineBuilderOption{
				engine.WithWindow(win),
				engine.WithRenderer(r),
				engine.WithScene(sc),
				engine.WithLogger(logger.Component(log, "engine")),
				engine.WithTickRate(1000 / float64(cfg.Performance.UpdateInterval)),
				engine.WithRenderFrameLimit(fpsLimit),
				engine.WithProfiling(profile),
				engine.WithProfileInterval(2 * time.Second),
			}
			if configPath != "" {
				options = append(options, engine.WithConfigFile(configPath))
			}
			eng := engine.NewEngine(options...)
			if orbit != 0 {
				eng.SetTickCallback(func(dt float32) {
					sc.Camera().Orbit(orbit * dt)
				})
			}
			return eng.Run()
		},
	}
	cmd.Flags().BoolVar(&profile, "profile", true, "log frame stats and adapted luminance")
	cmd.Flags().Float32Var(&orbit, "orbit", 0.2, "camera orbit speed in radians per second")
	cmd.Flags().Float64Var(&fpsLimit, "fps", 0, "render frame cap, 0 for none")
	return cmd
}
