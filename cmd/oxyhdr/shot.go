package main

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/Carmen-Shannon/oxy-hdr/engine/hdr"
	"github.com/Carmen-Shannon/oxy-hdr/engine/logger"
	"github.com/Carmen-Shannon/oxy-hdr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-hdr/internal/demo"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type shotOptions struct {
	out    string
	width  int
	height int
	frames int
	dt     float32
	gpu    bool
	soft   bool
}

func newShotCommand() *cobra.Command {
	opts := shotOptions{}
	cmd := &cobra.Command{
		Use:   "shot",
		Short: "Render the showcase scene offline and write a PNG",
		Long: `Render the showcase scene without a window and write the tone-mapped frame.

Eye adaptation runs for --frames frames of --dt seconds each before the image is
written, so longer runs converge closer to the scene's average luminance.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if opts.width <= 0 {
				opts.width = cfg.Window.Width
			}
			if opts.height <= 0 {
				opts.height = cfg.Window.Height
			}
			if opts.frames < 1 {
				opts.frames = 1
			}
			if opts.gpu {
				return shotGPU(cfg, log, opts)
			}
			return shotCPU(cmd.Context(), cfg, log, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "frame.png", "output PNG path")
	cmd.Flags().IntVar(&opts.width, "width", 0, "frame width, 0 takes the config window width")
	cmd.Flags().IntVar(&opts.height, "height", 0, "frame height, 0 takes the config window height")
	cmd.Flags().IntVar(&opts.frames, "frames", 60, "frames rendered before the image is written")
	cmd.Flags().Float32Var(&opts.dt, "dt", 1.0/60, "simulated seconds per frame")
	cmd.Flags().BoolVar(&opts.gpu, "gpu", false, "render on the GPU instead of the CPU reference path")
	cmd.Flags().BoolVar(&opts.soft, "software", false, "with --gpu, request the fallback (software) adapter")
	return cmd
}

func shotCPU(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts shotOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	p := hdr.NewPipeline(
		hdr.WithConfig(cfg),
		hdr.WithSize(opts.width, opts.height),
		hdr.WithLogger(logger.Component(log, "hdr")),
	)
	sc := demo.NewScene(cfg, float32(opts.width)/float32(opts.height), logger.Component(log, "scene"))

	var frame *hdr.Frame
	for i := range opts.frames {
		sc.Update(opts.dt)
		f, err := p.Render(ctx, sc, opts.dt)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		frame = f
	}
	if err := frame.SavePNG(opts.out, 0, 0); err != nil {
		return err
	}
	log.Info().
		Str("out", opts.out).
		Int("frames", opts.frames).
		Int("lights", frame.Lights).
		Float32("measured_luminance", frame.Exposure.Measured).
		Float32("adapted_luminance", frame.Exposure.Adapted).
		Msg("frame written")
	return nil
}

func shotGPU(cfg *config.Config, log zerolog.Logger, opts shotOptions) error {
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, nil,
		renderer.WithSize(opts.width, opts.height),
		renderer.WithForceSoftwareRenderer(opts.soft),
		renderer.WithGraphics(cfg.Graphics),
		renderer.WithLogger(logger.Component(log, "renderer")),
	)
	if err != nil {
		return err
	}
	defer r.Release()

	sc := demo.NewScene(cfg, float32(opts.width)/float32(opts.height), logger.Component(log, "scene"))
	for i := range opts.frames {
		sc.Update(opts.dt)
		if err := r.Render(sc, opts.dt); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}

	img, err := r.Capture()
	if err != nil {
		return err
	}
	if err := imgio.Save(opts.out, img, imgio.PNGEncoder()); err != nil {
		return fmt.Errorf("failed to save frame to %s: %w", opts.out, err)
	}
	adapted, err := r.AdaptedLuminance()
	if err != nil {
		return err
	}
	log.Info().
		Str("out", opts.out).
		Int("frames", opts.frames).
		Float32("adapted_luminance", adapted).
		Msg("frame written")
	return nil
}
