package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/config"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// Parameter limits shared by the render and inspect endpoints
const (
	MinImageSize  = 1
	MaxImageSize  = 2000
	MaxSamples    = 10000
	MaxDepthLimit = 1000
	MaxPasses     = 100
)

// Server handles web requests for the path tracer
type Server struct {
	port      int
	configDir string
	staticDir string
}

// NewServer creates a new web server. Render config files in configDir are offered as extra scenes.
func NewServer(port int, configDir string) *Server {
	return &Server{port: port, configDir: configDir, staticDir: "static"}
}

// RenderRequest represents a render or inspect request from the client.
// Zero image and sampling fields keep the scene's defaults.
type RenderRequest struct {
	Scene      string `json:"scene"`      // Built-in scene name or "config:<file>"
	Seed       int64  `json:"seed"`       // Seed for random scenes and the tile generators
	Width      int    `json:"width"`      // Image width
	Height     int    `json:"height"`     // Image height
	MaxSamples int    `json:"maxSamples"` // Samples per pixel
	MaxDepth   int    `json:"maxDepth"`   // Maximum bounce depth, -1 = scene default
	MaxPasses  int    `json:"maxPasses"`  // Maximum number of passes
}

// Handler returns the HTTP handler serving the API and static files
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes and the config file scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.configDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default settings of a scene and the parameter limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = config.Default().Scene
	}

	sceneObj, err := s.createScene(&RenderRequest{Scene: sceneName, Seed: config.Default().Seed, MaxDepth: -1})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sampling := sceneObj.GetSamplingConfig()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           sampling.Width,
			"height":          sampling.Height,
			"samplesPerPixel": sampling.SamplesPerPixel,
			"maxDepth":        sampling.MaxDepth,
			"primitiveCount":  sceneObj.GetPrimitiveCount(),
		},
		"limits": map[string]interface{}{
			"width":      map[string]int{"min": MinImageSize, "max": MaxImageSize},
			"height":     map[string]int{"min": MinImageSize, "max": MaxImageSize},
			"maxSamples": map[string]int{"min": 1, "max": MaxSamples},
			"maxDepth":   map[string]int{"min": 0, "max": MaxDepthLimit},
			"maxPasses":  map[string]int{"min": 1, "max": MaxPasses},
		},
	})
}

// parseCommonSceneParams parses the scene selection and image size shared by render and inspect
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = config.Default().Scene
	}

	req.Seed = config.Default().Seed
	if value := query.Get("seed"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s", value)
		}
		req.Seed = seed
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, MinImageSize, MaxImageSize); err != nil {
		return err
	}
	if req.Height, err = parseIntParam(query, "height", 0, MinImageSize, MaxImageSize); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// renderConfig resolves the request to a render config: a config file scene loads its file,
// a built-in scene starts from the defaults. Request values override both.
func (s *Server) renderConfig(req *RenderRequest) (config.RenderConfig, error) {
	conf := config.Default()

	if fileID, ok := strings.CutPrefix(req.Scene, "config:"); ok {
		scenes, err := scene.ListConfigScenes(s.configDir)
		if err != nil {
			return conf, err
		}
		found := false
		for _, info := range scenes {
			if info.ID == req.Scene {
				if conf, err = config.Load(info.FilePath); err != nil {
					return conf, err
				}
				found = true
				break
			}
		}
		if !found {
			return conf, fmt.Errorf("%w: config file %q", scene.ErrUnknownScene, fileID)
		}
		// A request without a seed keeps the file's
		if req.Seed != config.Default().Seed {
			conf.Seed = req.Seed
		}
	} else {
		conf.Scene = req.Scene
		conf.Seed = req.Seed
	}

	if req.Width > 0 {
		conf.Width = req.Width
	}
	if req.Height > 0 {
		conf.Height = req.Height
	}
	if req.MaxSamples > 0 {
		conf.SamplesPerPixel = req.MaxSamples
	}
	if req.MaxDepth >= 0 {
		depth := req.MaxDepth
		conf.MaxDepth = &depth
	}
	if req.MaxPasses > 0 {
		conf.Passes = req.MaxPasses
	}
	// The browser receives images over the stream, never a file
	conf.Output = ""
	return conf, conf.Validate()
}

// createScene builds the requested scene with the request overrides applied
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	conf, err := s.renderConfig(req)
	if err != nil {
		return nil, err
	}
	return conf.BuildScene()
}

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
