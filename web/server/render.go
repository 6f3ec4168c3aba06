package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"`  // Current tile number in this pass (1-based)
	TotalTiles  int    `json:"totalTiles"`  // Total number of tiles in the image
	TotalPasses int    `json:"totalPasses"` // Total number of passes planned
}

// PassUpdate is sent via SSE when a pass finishes
type PassUpdate struct {
	PassNumber       int     `json:"passNumber"`
	TotalPasses      int     `json:"totalPasses"`
	ImageData        string  `json:"imageData"` // Base64 encoded PNG of the whole image
	IsComplete       bool    `json:"isComplete"`
	ElapsedMs        int64   `json:"elapsedMs"`
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	AverageSamples   float64 `json:"averageSamples"`
	AverageLuminance float64 `json:"averageLuminance"` // Mean luminance of the quantized pass image in [0, 1]
	MinSamples       int     `json:"minSamples"`
	MaxSamplesUsed   int     `json:"maxSamplesUsed"`
	PrimitiveCount   int     `json:"primitiveCount"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "passComplete", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderingPipeline contains the configured scene and raytracer
type RenderingPipeline struct {
	Scene     *scene.Scene
	Raytracer *renderer.ProgressiveRaytracer
}

// handleRender handles progressive rendering with real-time pass and tile streaming via SSE.
// The render stops when the client disconnects.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx := r.Context()

	// All writes to w happen on the writer goroutine
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(ctx, w, sseEventChan)
		close(writerDone)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	consoleCtx, stopConsole := context.WithCancel(ctx)
	consoleDone := make(chan struct{})
	go func() {
		s.streamConsoleMessages(consoleCtx, consoleChan, sseEventChan)
		close(consoleDone)
	}()
	stopConsoleStream := func() {
		stopConsole()
		<-consoleDone
	}
	defer stopConsoleStream()

	pipeline, err := s.setupRenderingPipeline(req, webLogger)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	startTime := time.Now()
	passChan, tileChan, errChan := pipeline.Raytracer.RenderProgressive(ctx, renderer.RenderOptions{TileUpdates: true})

	if !s.handleRenderingEvents(ctx, sseEventChan, passChan, tileChan, errChan, pipeline, startTime) {
		return
	}

	// Pending console output goes out before the completion event
	stopConsoleStream()
	select {
	case sseEventChan <- SSEEvent{Type: "complete", Data: "Rendering completed"}:
	case <-ctx.Done():
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	return consoleChan, NewWebLogger(renderID, consoleChan)
}

// writeSSEEvents writes events until the channel is closed or the client disconnects
func (s *Server) writeSSEEvents(ctx context.Context, w http.ResponseWriter, sseEventChan <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}

		case <-ctx.Done():
			return
		}
	}
}

// streamConsoleMessages forwards logger output to the SSE stream, dropping messages when it is full.
// Messages already queued when ctx is cancelled are still forwarded.
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for {
		select {
		case consoleMsg := <-consoleChan:
			s.forwardConsoleMessage(consoleMsg, sseEventChan)

		case <-ctx.Done():
			for {
				select {
				case consoleMsg := <-consoleChan:
					s.forwardConsoleMessage(consoleMsg, sseEventChan)
				default:
					return
				}
			}
		}
	}
}

func (s *Server) forwardConsoleMessage(consoleMsg ConsoleMessage, sseEventChan chan<- SSEEvent) {
	data, err := json.Marshal(consoleMsg)
	if err != nil {
		log.Printf("Error marshaling console message: %v", err)
		return
	}
	select {
	case sseEventChan <- SSEEvent{Type: "console", Data: string(data)}:
	default:
	}
}

// setupRenderingPipeline creates and configures the scene and raytracer
func (s *Server) setupRenderingPipeline(req *RenderRequest, logger core.Logger) (*RenderingPipeline, error) {
	conf, err := s.renderConfig(req)
	if err != nil {
		return nil, err
	}

	sceneObj, err := conf.BuildScene()
	if err != nil {
		return nil, err
	}

	raytracer, err := renderer.NewProgressiveRaytracer(sceneObj, conf.ProgressiveConfig(), logger)
	if err != nil {
		return nil, err
	}

	return &RenderingPipeline{Scene: sceneObj, Raytracer: raytracer}, nil
}

// handleRenderingEvents forwards render events to the SSE stream until every channel is closed.
// It reports whether the render finished.
func (s *Server) handleRenderingEvents(ctx context.Context, sseEventChan chan<- SSEEvent,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	pipeline *RenderingPipeline, startTime time.Time) bool {

	for passChan != nil || tileChan != nil || errChan != nil {
		select {
		case passResult, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.handlePassComplete(ctx, sseEventChan, passResult, pipeline, startTime)

		case tileResult, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, sseEventChan, tileResult)

		case err, ok := <-errChan:
			if !ok {
				errChan = nil
				continue
			}
			s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
			return false

		case <-ctx.Done():
			return false
		}
	}
	return ctx.Err() == nil
}

// handlePassComplete sends the pass image and statistics
func (s *Server) handlePassComplete(ctx context.Context, sseEventChan chan<- SSEEvent, passResult renderer.PassResult, pipeline *RenderingPipeline, startTime time.Time) {
	if ctx.Err() != nil {
		return
	}

	imageData, err := s.imageToBase64PNG(passResult.Image)
	if err != nil {
		log.Printf("Error encoding pass %d image: %v", passResult.PassNumber, err)
		return
	}

	update := PassUpdate{
		PassNumber:       passResult.PassNumber,
		TotalPasses:      pipeline.Raytracer.MaxPasses(),
		ImageData:        imageData,
		IsComplete:       passResult.IsLast,
		ElapsedMs:        time.Since(startTime).Milliseconds(),
		TotalPixels:      passResult.Stats.TotalPixels,
		TotalSamples:     passResult.Stats.TotalSamples,
		AverageSamples:   passResult.Stats.AverageSamples,
		AverageLuminance: renderer.CalculateAverageLuminance(passResult.Image),
		MinSamples:       passResult.Stats.MinSamples,
		MaxSamplesUsed:   passResult.Stats.MaxSamplesUsed,
		PrimitiveCount:   pipeline.Scene.GetPrimitiveCount(),
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling pass update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "passComplete", Data: string(data)}:
	case <-ctx.Done():
	}
}

// handleTileUpdate processes and sends tile update events
func (s *Server) handleTileUpdate(ctx context.Context, sseEventChan chan<- SSEEvent, tileResult renderer.TileCompletionResult) {
	if ctx.Err() != nil {
		return
	}

	tileData, err := s.imageToBase64PNG(tileResult.TileImage)
	if err != nil {
		log.Printf("Error encoding tile image (%d, %d): %v", tileResult.TileX, tileResult.TileY, err)
		return
	}

	update := TileUpdate{
		TileX:       tileResult.TileX,
		TileY:       tileResult.TileY,
		ImageData:   tileData,
		PassNumber:  tileResult.PassNumber,
		TileNumber:  tileResult.TileNumber,
		TotalTiles:  tileResult.TotalTiles,
		TotalPasses: tileResult.TotalPasses,
	}

	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling tile update: %v", err)
		return
	}

	select {
	case sseEventChan <- SSEEvent{Type: "tile", Data: string(data)}:
	case <-ctx.Done():
	}
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		return nil, err
	}

	query := r.URL.Query()
	var err error
	if req.MaxSamples, err = parseIntParam(query, "maxSamples", 0, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", -1, 0, MaxDepthLimit); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(query, "maxPasses", 0, 1, MaxPasses); err != nil {
		return nil, err
	}

	if req.Width*req.Height > 800*600 && req.MaxSamples > 100 {
		log.Printf("Render warning: Large image with high samples may render slowly")
	}

	return req, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
	}
}
