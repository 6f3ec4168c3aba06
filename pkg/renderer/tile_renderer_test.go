package renderer

import (
	"image"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

func TestTileRenderer_RendersOnlyItsBounds(t *testing.T) {
	config := SamplingConfig{Width: 10, Height: 8, SamplesPerPixel: 4, MaxDepth: 3}
	sc := newSingleSphereTestScene(t, config, true)
	tr := NewTileRenderer(sc, integrator.NewPathTracingIntegrator())

	pixelStats := NewPixelStatsGrid(config.Width, config.Height)
	bounds := image.Rect(2, 3, 6, 5)

	stats := tr.RenderTileBounds(bounds, pixelStats, core.NewSeededSampler(42), 4)

	if stats.TotalPixels != 8 || stats.TotalSamples != 32 {
		t.Errorf("Expected 8 pixels with 32 samples, got %+v", stats)
	}

	for y := 0; y < config.Height; y++ {
		for x := 0; x < config.Width; x++ {
			inside := image.Pt(x, y).In(bounds)
			count := pixelStats[y][x].SampleCount
			if inside && count != 4 {
				t.Errorf("Pixel (%d,%d) inside tile has %d samples, expected 4", x, y, count)
			}
			if !inside && count != 0 {
				t.Errorf("Pixel (%d,%d) outside tile has %d samples, expected 0", x, y, count)
			}
		}
	}
}

func TestTileRenderer_ResumesToTarget(t *testing.T) {
	config := SamplingConfig{Width: 4, Height: 4, SamplesPerPixel: 10, MaxDepth: 3}
	sc := newSingleSphereTestScene(t, config, true)
	tr := NewTileRenderer(sc, integrator.NewPathTracingIntegrator())

	pixelStats := NewPixelStatsGrid(config.Width, config.Height)
	bounds := image.Rect(0, 0, 4, 4)
	sampler := core.NewSeededSampler(42)

	tr.RenderTileBounds(bounds, pixelStats, sampler, 3)
	stats := tr.RenderTileBounds(bounds, pixelStats, sampler, 10)

	if stats.TotalSamples != 16*7 {
		t.Errorf("Expected second call to add 7 samples per pixel, got %d total", stats.TotalSamples)
	}
	if pixelStats[2][2].SampleCount != 10 {
		t.Errorf("Expected 10 samples, got %d", pixelStats[2][2].SampleCount)
	}

	// Already at target: nothing more to do
	stats = tr.RenderTileBounds(bounds, pixelStats, sampler, 10)
	if stats.TotalSamples != 0 || stats.MinSamples != 0 {
		t.Errorf("Expected no new samples, got %+v", stats)
	}
}

func TestTileRenderer_ZeroDepthIsBlack(t *testing.T) {
	config := SamplingConfig{Width: 3, Height: 3, SamplesPerPixel: 2, MaxDepth: 0}
	sc := newSingleSphereTestScene(t, config, true)
	tr := NewTileRenderer(sc, integrator.NewPathTracingIntegrator())

	pixelStats := NewPixelStatsGrid(config.Width, config.Height)
	tr.RenderTileBounds(image.Rect(0, 0, 3, 3), pixelStats, core.NewSeededSampler(1), 2)

	img := assembleImage(pixelStats)
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 || img.Pix[i+3] != 255 {
			t.Fatalf("Expected opaque black pixels, got %v at byte %d", img.Pix[i:i+4], i)
		}
	}
}
