package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sauerbraten/jsonfile"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/imageio"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// ErrInvalidConfig is returned for a render configuration that cannot be used
var ErrInvalidConfig = errors.New("invalid render config")

// CameraConfig overrides individual camera settings. Nil fields keep the scene's value.
type CameraConfig struct {
	LookFrom      *[3]float64 `json:"look_from"`
	LookAt        *[3]float64 `json:"look_at"`
	Up            *[3]float64 `json:"up"`
	VFov          *float64    `json:"vfov"`
	Aperture      *float64    `json:"aperture"`
	FocusDistance *float64    `json:"focus_distance"`
}

// RenderConfig describes one render. Zero image and sampling fields keep the scene's defaults.
// Files may contain lines commented out with //.
type RenderConfig struct {
	Scene           string        `json:"scene"`
	Seed            int64         `json:"seed"`
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	SamplesPerPixel int           `json:"samples_per_pixel"`
	MaxDepth        *int          `json:"max_depth"`
	Camera          *CameraConfig `json:"camera"`
	Workers         int           `json:"workers"` // 0 = CPU count
	TileSize        int           `json:"tile_size"`
	Passes          int           `json:"passes"`
	Output          string        `json:"output"` // Empty = output/<scene>/render_<timestamp>.png
}

// Default returns the configuration used when no file is given
func Default() RenderConfig {
	progressive := renderer.DefaultProgressiveConfig()
	return RenderConfig{
		Scene:    "default",
		Seed:     progressive.Seed,
		TileSize: progressive.TileSize,
		Passes:   progressive.MaxPasses,
	}
}

// Load reads a render config file over the defaults and validates it
func Load(fileName string) (RenderConfig, error) {
	conf := Default()

	// jsonfile does not report a missing file itself
	if _, err := os.Stat(fileName); err != nil {
		return conf, fmt.Errorf("read config: %w", err)
	}
	if err := jsonfile.ParseFile(fileName, &conf); err != nil {
		return conf, fmt.Errorf("parse config %s: %w", fileName, err)
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("config %s: %w", fileName, err)
	}
	return conf, nil
}

// Validate reports the first unusable setting
func (c RenderConfig) Validate() error {
	switch {
	case c.Scene == "":
		return fmt.Errorf("%w: scene is required", ErrInvalidConfig)
	case c.Width < 0 || c.Height < 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.SamplesPerPixel < 0:
		return fmt.Errorf("%w: samples per pixel %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth != nil && *c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d", ErrInvalidConfig, *c.MaxDepth)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidConfig, c.Workers)
	case c.TileSize < 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidConfig, c.TileSize)
	case c.Passes < 0:
		return fmt.Errorf("%w: passes %d", ErrInvalidConfig, c.Passes)
	}
	if c.Output != "" {
		if _, err := imageio.FormatFromPath(c.Output); err != nil {
			return fmt.Errorf("%w: output: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// BuildScene creates the configured scene and applies the image, sampling and camera overrides
func (c RenderConfig) BuildScene() (*scene.Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s, err := scene.New(c.Scene, c.Seed)
	if err != nil {
		return nil, err
	}

	if c.Camera != nil {
		if err := s.SetCameraConfig(c.Camera.apply(s.CameraConfig)); err != nil {
			return nil, err
		}
	}

	width, height := c.imageSize(s.SamplingConfig)
	if err := s.Resize(width, height); err != nil {
		return nil, err
	}

	if c.SamplesPerPixel > 0 {
		s.SamplingConfig.SamplesPerPixel = c.SamplesPerPixel
	}
	if c.MaxDepth != nil {
		s.SamplingConfig.MaxDepth = *c.MaxDepth
	}
	return s, nil
}

// imageSize fills in a missing dimension from the scene's aspect ratio
func (c RenderConfig) imageSize(sampling renderer.SamplingConfig) (int, int) {
	aspect := float64(sampling.Width) / float64(sampling.Height)
	switch {
	case c.Width > 0 && c.Height > 0:
		return c.Width, c.Height
	case c.Width > 0:
		return c.Width, max(1, int(float64(c.Width)/aspect))
	case c.Height > 0:
		return max(1, int(float64(c.Height)*aspect)), c.Height
	}
	return sampling.Width, sampling.Height
}

// ProgressiveConfig returns the progressive renderer settings
func (c RenderConfig) ProgressiveConfig() renderer.ProgressiveConfig {
	progressive := renderer.DefaultProgressiveConfig()
	progressive.Seed = c.Seed
	progressive.NumWorkers = c.Workers
	if c.TileSize > 0 {
		progressive.TileSize = c.TileSize
	}
	if c.Passes > 0 {
		progressive.MaxPasses = c.Passes
	}
	return progressive
}

// apply returns base with the set fields replaced
func (cc *CameraConfig) apply(base renderer.CameraConfig) renderer.CameraConfig {
	result := base
	if cc.LookFrom != nil {
		result.LookFrom = toVec3(*cc.LookFrom)
	}
	if cc.LookAt != nil {
		result.LookAt = toVec3(*cc.LookAt)
	}
	if cc.Up != nil {
		result.Up = toVec3(*cc.Up)
	}
	if cc.VFov != nil {
		result.VFov = *cc.VFov
	}
	if cc.Aperture != nil {
		result.Aperture = *cc.Aperture
	}
	if cc.FocusDistance != nil {
		result.FocusDistance = *cc.FocusDistance
	}
	return result
}

func toVec3(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
