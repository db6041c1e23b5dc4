package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-hdr/engine/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShotCPUWritesPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	opts := shotOptions{out: out, width: 48, height: 27, frames: 3, dt: 1.0 / 30}

	require.NoError(t, shotCPU(context.Background(), config.Default(), zerolog.Nop(), opts))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 48, img.Bounds().Dx())
	assert.Equal(t, 27, img.Bounds().Dy())
}

func TestShotCommandFlags(t *testing.T) {
	cmd := newShotCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--width", "320", "-o", "x.png", "--gpu"}))

	w, err := cmd.Flags().GetInt("width")
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	out, err := cmd.Flags().GetString("out")
	require.NoError(t, err)
	assert.Equal(t, "x.png", out)
	gpu, err := cmd.Flags().GetBool("gpu")
	require.NoError(t, err)
	assert.True(t, gpu)
}
