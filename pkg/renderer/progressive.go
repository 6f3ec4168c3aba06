package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering.
// The total samples per pixel come from the scene's SamplingConfig.
type ProgressiveConfig struct {
	TileSize       int   // Size of each tile (64x64 recommended)
	InitialSamples int   // Samples for first pass (1 recommended)
	MaxPasses      int   // Maximum number of passes
	NumWorkers     int   // Number of parallel workers (0 = use CPU count)
	Seed           int64 // Base seed for the per-tile generators
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		TileSize:       64,
		InitialSamples: 1,
		MaxPasses:      7,
		NumWorkers:     0, // Auto-detect CPU count
		Seed:           42,
	}
}

// Validate reports the first setting that cannot drive a progressive render
func (c ProgressiveConfig) Validate() error {
	switch {
	case c.TileSize <= 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidSamplingConfig, c.TileSize)
	case c.InitialSamples < 1:
		return fmt.Errorf("%w: initial samples %d", ErrInvalidSamplingConfig, c.InitialSamples)
	case c.MaxPasses < 1:
		return fmt.Errorf("%w: max passes %d", ErrInvalidSamplingConfig, c.MaxPasses)
	case c.NumWorkers < 0:
		return fmt.Errorf("%w: workers %d", ErrInvalidSamplingConfig, c.NumWorkers)
	}
	return nil
}

// ProgressiveRaytracer manages progressive rendering with multiple passes.
// The image after the final pass is identical for any worker count.
type ProgressiveRaytracer struct {
	width, height   int
	maxSamples      int
	config          ProgressiveConfig
	tiles           []*Tile        // Tile management
	pixelStats      [][]PixelStats // Shared pixel statistics array (global image coordinates)
	workerPool      *WorkerPool    // Worker pool for parallel processing
	logger          core.Logger    // Logger for rendering output
	completedPasses int
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(scene Scene, config ProgressiveConfig, logger core.Logger) (*ProgressiveRaytracer, error) {
	sampling := scene.GetSamplingConfig()
	if err := sampling.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	// Every pass after the first must add at least one sample
	if config.InitialSamples >= sampling.SamplesPerPixel {
		config.InitialSamples = sampling.SamplesPerPixel
		config.MaxPasses = 1
	} else {
		config.MaxPasses = min(config.MaxPasses, sampling.SamplesPerPixel-config.InitialSamples+1)
	}

	tileRenderer := NewTileRenderer(scene, integrator.NewPathTracingIntegrator())

	return &ProgressiveRaytracer{
		width:      sampling.Width,
		height:     sampling.Height,
		maxSamples: sampling.SamplesPerPixel,
		config:     config,
		tiles:      NewTileGrid(sampling.Width, sampling.Height, config.TileSize, config.Seed),
		pixelStats: NewPixelStatsGrid(sampling.Width, sampling.Height),
		workerPool: NewWorkerPool(tileRenderer, config.NumWorkers),
		logger:     logger,
	}, nil
}

// MaxPasses returns the number of passes the render will take
func (pr *ProgressiveRaytracer) MaxPasses() int {
	return pr.config.MaxPasses
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.maxSamples
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// For the final pass, use all remaining samples
	if passNumber >= pr.config.MaxPasses {
		return pr.maxSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.maxSamples - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	return pr.config.InitialSamples + (passNumber-1)*samplesPerPass
}

// RenderPass renders a single progressive pass using parallel processing
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int, tileCallback func(TileCompletionResult)) (*image.RGBA, RenderStats, error) {
	targetSamples := pr.getSamplesForPass(passNumber)

	pr.logger.Printf("Pass %d: Target %d samples per pixel (using %d workers)...\n",
		passNumber, targetSamples, pr.workerPool.GetNumWorkers())

	tasks := make([]TileTask, len(pr.tiles))
	for i, tile := range pr.tiles {
		tasks[i] = TileTask{
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        i,
			PixelStats:    pr.pixelStats,
		}
	}

	completed := 0
	var onDone func(TileResult)
	if tileCallback != nil {
		onDone = func(result TileResult) {
			completed++
			tileCallback(TileCompletionResult{
				TileX:       result.Tile.Bounds.Min.X / pr.config.TileSize,
				TileY:       result.Tile.Bounds.Min.Y / pr.config.TileSize,
				TileImage:   pr.extractTileImage(result.Tile),
				PassNumber:  passNumber,
				TileNumber:  completed,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.config.MaxPasses,
			})
		}
	}

	if _, err := pr.workerPool.RenderTiles(ctx, tasks, onDone); err != nil {
		return nil, RenderStats{}, fmt.Errorf("pass %d: %w", passNumber, err)
	}

	for _, tile := range pr.tiles {
		tile.PassesCompleted++
	}
	pr.completedPasses = passNumber

	img, stats := pr.assembleCurrentImage(targetSamples)
	return img, stats, nil
}

// extractTileImage extracts a tile image from the shared pixel stats array
func (pr *ProgressiveRaytracer) extractTileImage(tile *Tile) *image.RGBA {
	bounds := tile.Bounds
	tileImage := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			tileImage.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, vec3ToColor(pr.pixelStats[y][x].GetColor()))
		}
	}

	return tileImage
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	Duration   time.Duration
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	TileImage  *image.RGBA // Image data for just this tile
	PassNumber int         // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Tiles finished so far in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// Render runs every pass to completion and returns the final image
func (pr *ProgressiveRaytracer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	var (
		img   *image.RGBA
		stats RenderStats
	)
	for pass := pr.completedPasses + 1; pass <= pr.config.MaxPasses; pass++ {
		startTime := time.Now()
		var err error
		img, stats, err = pr.RenderPass(ctx, pass, nil)
		if err != nil {
			return nil, RenderStats{}, err
		}
		pr.logger.Printf("Pass %d completed in %v (%.1f samples/pixel)\n", pass, time.Since(startTime), stats.AverageSamples)
	}
	if img == nil {
		img, stats = pr.assembleCurrentImage(pr.maxSamples)
	}
	return img, stats, nil
}

// RenderProgressive renders with channel-based communication.
// Returns channels for events. The caller should read from these channels in separate goroutines.
// If options.TileUpdates is false, the tile channel will be closed immediately and no tile events will be generated.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100) // Buffer for tiles
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)

		pr.logger.Printf("Starting progressive rendering with %d passes...\n", pr.config.MaxPasses)

		for pass := pr.completedPasses + 1; pass <= pr.config.MaxPasses; pass++ {
			if ctx.Err() != nil {
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			}

			startTime := time.Now()

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Tile events are previews; drop them when the reader falls behind
					}
				}
			}

			img, stats, err := pr.RenderPass(ctx, pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			passTime := time.Since(startTime)
			pr.logger.Printf("Pass %d completed in %v (%.1f samples/pixel)\n", pass, passTime, stats.AverageSamples)

			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				Duration:   passTime,
				IsLast:     pass == pr.config.MaxPasses,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, tileChan, errChan
}

// assembleCurrentImage creates an image from the current state of the shared pixel stats
// and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*image.RGBA, RenderStats) {
	img := assembleImage(pr.pixelStats)

	stats := newRenderStats(pr.width*pr.height, targetSamples)
	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			stats.update(pr.pixelStats[y][x].SampleCount)
		}
	}
	stats.finalize()

	return img, stats
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int             // Unique tile identifier
	Bounds          image.Rectangle // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int             // Number of passes completed for this tile
	Sampler         core.Sampler    // Tile-specific sampler, continued across passes
}

// NewTile creates a new tile with the specified bounds and a sampler derived from (seed, id)
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(tileSeed(seed, id)),
	}
}

// tileSeed mixes the render seed with the tile id; +42 avoids seed 0
func tileSeed(seed int64, id int) int64 {
	return seed*1_000_003 + int64(id) + 42
}

// NewTileGrid creates a grid of tiles covering the entire image, row by row from the top
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}
