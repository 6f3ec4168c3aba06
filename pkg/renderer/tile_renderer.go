package renderer

import (
	"image"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene      Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(scene Scene, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      scene,
		integrator: integratorInst,
	}
}

// RenderTileBounds samples every pixel within bounds until it holds targetSamples samples.
// Pixels are visited row by row from the top of the image, and each pixel takes its
// samples consecutively, so the result depends only on the sampler's sequence.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	config := tr.scene.GetSamplingConfig()
	camera := tr.scene.GetCamera()

	stats := newRenderStats(bounds.Dx()*bounds.Dy(), targetSamples)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ps := &pixelStats[y][x]
			initialSampleCount := ps.SampleCount
			for ps.SampleCount < targetSamples {
				ps.AddSample(tr.samplePixel(camera, config, x, y, sampler))
			}
			stats.update(ps.SampleCount - initialSampleCount)
		}
	}

	stats.finalize()
	return stats
}

// samplePixel traces one jittered camera ray through image pixel (x, y), where y = 0 is the top row
func (tr *TileRenderer) samplePixel(camera *Camera, config SamplingConfig, x, y int, sampler core.Sampler) core.Vec3 {
	// Vertical screen coordinate grows upwards
	j := config.Height - 1 - y
	jitter := sampler.Get2D()
	s := (float64(x) + jitter.X) / pixelSpan(config.Width)
	t := (float64(j) + jitter.Y) / pixelSpan(config.Height)

	ray := camera.GetRay(s, t, sampler)
	return tr.integrator.RayColor(ray, tr.scene, config.MaxDepth, sampler)
}

// PixelToScreen returns the un-jittered screen coordinates of image pixel (x, y)
func PixelToScreen(config SamplingConfig, x, y int) (s, t float64) {
	j := config.Height - 1 - y
	return float64(x) / pixelSpan(config.Width), float64(j) / pixelSpan(config.Height)
}

// pixelSpan is the divisor mapping pixel indices onto [0, 1]; a single pixel maps to 0
func pixelSpan(n int) float64 {
	if n <= 1 {
		return 1
	}
	return float64(n - 1)
}
