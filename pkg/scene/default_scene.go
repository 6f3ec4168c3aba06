package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewDefaultScene creates a row of three spheres on a large ground sphere:
// hollow glass on the left, diffuse in the center and polished metal on the right.
func NewDefaultScene() (*Scene, error) {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          30.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.0,
		FocusDistance: 0.0, // Auto-calculate focus distance
	}

	samplingConfig := renderer.SamplingConfig{
		Width:           400,
		Height:          225, // 16:9 aspect ratio
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}

	s, err := newScene(defaultCameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	// Create materials
	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	materialCenter := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	materialGlass := material.NewDielectric(1.5)
	// Air bubble inside the glass: the inverted index makes it a hollow shell
	materialBubble := material.NewDielectric(1.0 / 1.5)
	materialRight := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	spheres := []struct {
		center core.Vec3
		radius float64
		mat    material.Material
	}{
		{core.NewVec3(0, -100.5, -1), 100, materialGround},
		{core.NewVec3(0, 0, -1), 0.5, materialCenter},
		{core.NewVec3(-1, 0, -1), 0.5, materialGlass},
		{core.NewVec3(-1, 0, -1), 0.4, materialBubble},
		{core.NewVec3(1, 0, -1), 0.5, materialRight},
	}
	for _, sp := range spheres {
		if err := s.AddSphere(sp.center, sp.radius, sp.mat); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// NewSingleSphereScene creates one gray diffuse sphere in front of a camera looking down -z
func NewSingleSphereScene() (*Scene, error) {
	cameraConfig := renderer.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 16.0 / 9.0,
	}

	samplingConfig := renderer.SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}

	s, err := newScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	if err := s.AddSphere(core.NewVec3(0, 0, -1), 0.5, gray); err != nil {
		return nil, err
	}
	return s, nil
}
