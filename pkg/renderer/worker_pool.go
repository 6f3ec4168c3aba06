package renderer

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// TileTask represents a tile rendering task for the worker pool
type TileTask struct {
	Tile          *Tile
	PassNumber    int
	TargetSamples int
	TaskID        int            // For deterministic ordering
	PixelStats    [][]PixelStats // Shared pixel stats array to write to
}

// TileResult contains the result from rendering a tile
type TileResult struct {
	TaskID int
	Tile   *Tile
	Stats  RenderStats
}

// WorkerPool renders tiles in parallel with a bounded number of goroutines
type WorkerPool struct {
	tileRenderer *TileRenderer
	numWorkers   int
}

// NewWorkerPool creates a worker pool with the specified number of workers (0 = CPU count)
func NewWorkerPool(tileRenderer *TileRenderer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		tileRenderer: tileRenderer,
		numWorkers:   numWorkers,
	}
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// RenderTiles renders every task and returns the results indexed by TaskID.
// Tiles must not overlap: each writes only its own region of the shared pixel stats.
// onDone, if set, is called once per finished tile, never concurrently.
// Cancelling ctx stops tiles that have not started yet.
func (wp *WorkerPool) RenderTiles(ctx context.Context, tasks []TileTask, onDone func(TileResult)) ([]TileResult, error) {
	results := make([]TileResult, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	var callbackMu sync.Mutex

	for i, task := range tasks {
		i, task := i, task
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			stats := wp.tileRenderer.RenderTileBounds(task.Tile.Bounds, task.PixelStats, task.Tile.Sampler, task.TargetSamples)
			result := TileResult{TaskID: task.TaskID, Tile: task.Tile, Stats: stats}
			results[i] = result

			if onDone != nil {
				callbackMu.Lock()
				onDone(result)
				callbackMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped early without any goroutine seeing the cancellation
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
