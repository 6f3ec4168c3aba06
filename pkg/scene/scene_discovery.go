package scene

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownScene is returned when a scene name is not registered
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Unique identifier
	DisplayName string `json:"displayName"`        // UI display name
	Description string `json:"description"`        // Optional description
	Group       string `json:"group"`              // Grouping category
	Type        string `json:"type"`               // "builtin" or "config"
	Scene       string `json:"scene,omitempty"`    // Built-in scene a config file renders
	FilePath    string `json:"filePath,omitempty"` // Path to the config file (config type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// builder creates a scene from a seed; scenes without randomness ignore it
type builder func(seed int64) (*Scene, error)

var builtInScenes = []struct {
	info  SceneInfo
	build builder
}{
	{
		info: SceneInfo{
			ID:          "default",
			DisplayName: "Default Scene",
			Description: "Hollow glass, diffuse and metal spheres on a ground sphere",
		},
		build: func(int64) (*Scene, error) { return NewDefaultScene() },
	},
	{
		info: SceneInfo{
			ID:          "random",
			DisplayName: "Random Spheres",
			Description: "Grid of randomly chosen small spheres around three large ones",
		},
		build: func(seed int64) (*Scene, error) { return NewRandomScene(seed) },
	},
	{
		info: SceneInfo{
			ID:          "single-sphere",
			DisplayName: "Single Sphere",
			Description: "One gray diffuse sphere under the sky",
		},
		build: func(int64) (*Scene, error) { return NewSingleSphereScene() },
	},
}

// Names returns the registered scene names in registration order
func Names() []string {
	names := make([]string, len(builtInScenes))
	for i, entry := range builtInScenes {
		names[i] = entry.info.ID
	}
	return names
}

// New creates the named built-in scene
func New(name string, seed int64) (*Scene, error) {
	for _, entry := range builtInScenes {
		if entry.info.ID == name {
			return entry.build(seed)
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}

// ListConfigScenes scans dir for render config files and returns their metadata
func ListConfigScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		// No config directory, nothing to list
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan config directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseConfigMetadata(filePath)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseConfigMetadata extracts metadata from the leading // comments of a render config file:
//
//	// Name: Wide random scene
//	// Description: The showcase at 1200x800
//	// Scene: random
func ParseConfigMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	sceneInfo := SceneInfo{
		ID:          "config:" + nameWithoutExt,
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Config Files",
		Type:        "config",
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return sceneInfo, fmt.Errorf("open %s: %w", filePath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "//") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "//"))
		key, value, found := strings.Cut(content, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Name":
			sceneInfo.DisplayName = value
		case "Description":
			sceneInfo.Description = value
		case "Scene":
			sceneInfo.Scene = value
		case "Group":
			sceneInfo.Group = value
		}
	}

	return sceneInfo, scanner.Err()
}

// ListAllScenes returns built-in scenes and the config files in configDir, grouped by category
func ListAllScenes(configDir string) (ScenesResponse, error) {
	var response ScenesResponse

	builtIn := make([]SceneInfo, len(builtInScenes))
	for i, entry := range builtInScenes {
		info := entry.info
		info.Group = "Built-in Scenes"
		info.Type = "builtin"
		builtIn[i] = info
	}
	response.Groups = append(response.Groups, SceneGroup{Name: "Built-in Scenes", Scenes: builtIn})

	configScenes, err := ListConfigScenes(configDir)
	if err != nil {
		return response, fmt.Errorf("failed to list config scenes: %w", err)
	}

	// Group config scenes by their Group field, in first-seen order
	groupIndex := make(map[string]int)
	for _, sc := range configScenes {
		idx, ok := groupIndex[sc.Group]
		if !ok {
			idx = len(response.Groups)
			groupIndex[sc.Group] = idx
			response.Groups = append(response.Groups, SceneGroup{Name: sc.Group})
		}
		response.Groups[idx].Scenes = append(response.Groups[idx].Scenes, sc)
	}

	return response, nil
}

// titleCase turns "wide-random_scene" into "Wide Random Scene"
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
