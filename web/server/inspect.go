package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *material.HitRecord
	Shape     geometry.Shape // Top-level world shape that produced the hit
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	channel := func(x float64) int { return int(core.Clamp(x, 0, 1) * 255) }
	return fmt.Sprintf("#%02x%02x%02x", channel(c.X), channel(c.Y), channel(c.Z))
}

// extractMaterialInfo extracts detailed material information with type assertions
func (s *Server) extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzzness"] = m.Fuzzness
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff"
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo describes the shape that was hit
func (s *Server) extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.HittableList:
		properties["shapeCount"] = geom.Len()
		return "list", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts the un-jittered center ray through pixel (x, y) and returns the nearest hit
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) InspectResult {
	u, v := renderer.PixelToScreen(sceneObj.GetSamplingConfig(), pixelX, pixelY)
	ray := sceneObj.GetCamera().GetCenterRay(u, v)

	tMin, tMax := integrator.ShadowAcneEpsilon, math.Inf(1)
	hit, isHit := sceneObj.World.Hit(ray, tMin, tMax)
	if !isHit {
		return InspectResult{Hit: false}
	}

	// The world does not say which shape it hit
	for _, shape := range sceneObj.World.Shapes() {
		if shapeHit, ok := shape.Hit(ray, tMin, tMax); ok && shapeHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Shape: shape}
		}
	}
	return InspectResult{Hit: true, HitRecord: hit}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}
	req.MaxDepth = -1

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sampling := sceneObj.GetSamplingConfig()
	if pixelX < 0 || pixelX >= sampling.Width || pixelY < 0 || pixelY >= sampling.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sceneObj, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := s.extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := s.extractGeometryInfo(result.Shape)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecArray(result.HitRecord.Point),
		Normal:       vecArray(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
