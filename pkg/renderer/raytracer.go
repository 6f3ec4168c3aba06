package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// ErrInvalidSamplingConfig is returned for image or sampling settings that cannot be rendered
var ErrInvalidSamplingConfig = errors.New("invalid sampling configuration")

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width in pixels
	Height          int // Image height in pixels
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth (0 renders black)
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate reports the first setting that cannot be rendered
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidSamplingConfig, c.Width, c.Height)
	case c.SamplesPerPixel < 1:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidSamplingConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidSamplingConfig, c.MaxDepth)
	}
	return nil
}

// Scene interface to avoid circular imports
type Scene interface {
	integrator.Scene
	GetCamera() *Camera
	GetSamplingConfig() SamplingConfig
}

// Raytracer renders a whole image on the calling goroutine
type Raytracer struct {
	tileRenderer *TileRenderer
	config       SamplingConfig
	sampler      core.Sampler
}

// NewRaytracer creates a single-threaded raytracer. All random draws come from sampler.
func NewRaytracer(scene Scene, sampler core.Sampler) (*Raytracer, error) {
	config := scene.GetSamplingConfig()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Raytracer{
		tileRenderer: NewTileRenderer(scene, integrator.NewPathTracingIntegrator()),
		config:       config,
		sampler:      sampler,
	}, nil
}

// RenderPass renders every pixel with the configured samples, top row first, and returns an image
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	pixelStats := NewPixelStatsGrid(rt.config.Width, rt.config.Height)
	bounds := image.Rect(0, 0, rt.config.Width, rt.config.Height)

	stats := rt.tileRenderer.RenderTileBounds(bounds, pixelStats, rt.sampler, rt.config.SamplesPerPixel)
	return assembleImage(pixelStats), stats
}

// assembleImage converts accumulated pixel statistics into an 8-bit image
func assembleImage(pixelStats [][]PixelStats) *image.RGBA {
	height := len(pixelStats)
	width := 0
	if height > 0 {
		width = len(pixelStats[0])
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, vec3ToColor(pixelStats[y][x].GetColor()))
		}
	}
	return img
}

// vec3ToColor converts a linear color to RGBA with gamma 2 correction and clamping to [0, 0.999]
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	return color.RGBA{
		R: quantize(colorVec.X),
		G: quantize(colorVec.Y),
		B: quantize(colorVec.Z),
		A: 255,
	}
}

// quantize maps one linear channel to 8 bits. Non-finite values become 0.
func quantize(x float64) uint8 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return 0
	}
	return uint8(256 * core.Clamp(math.Sqrt(x), 0.0, 0.999))
}
