package renderer

import (
	"image"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int     // Total number of pixels rendered
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel
	MaxSamples     int     // Target samples per pixel
	MinSamples     int     // Minimum samples taken per pixel
	MaxSamplesUsed int     // Maximum samples actually used by any pixel
}

// PixelStats accumulates samples for a single pixel in the order they are taken
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics.
// Non-finite components count as black so they cannot poison the rest of the pixel.
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color.ZeroNonFinite())
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// NewPixelStatsGrid allocates a height x width grid indexed [y][x] in image coordinates
func NewPixelStatsGrid(width, height int) [][]PixelStats {
	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}
	return pixelStats
}

// newRenderStats starts statistics for pixelCount pixels with a per-pixel target
func newRenderStats(pixelCount, targetSamples int) RenderStats {
	return RenderStats{
		TotalPixels: pixelCount,
		MaxSamples:  targetSamples,
		MinSamples:  targetSamples, // Start high, will be reduced
	}
}

// update records the samples used by one pixel
func (s *RenderStats) update(samplesUsed int) {
	s.TotalSamples += samplesUsed
	s.MinSamples = min(s.MinSamples, samplesUsed)
	s.MaxSamplesUsed = max(s.MaxSamplesUsed, samplesUsed)
}

// finalize calculates the averages once all pixels are recorded
func (s *RenderStats) finalize() {
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
}

// CalculateAverageLuminance returns the mean perceptual luminance of an 8-bit image in [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixelCount := bounds.Dx() * bounds.Dy()
	if pixelCount == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += core.NewVec3(float64(c.R), float64(c.G), float64(c.B)).Multiply(1.0 / 255.0).Luminance()
		}
	}
	return total / float64(pixelCount)
}
