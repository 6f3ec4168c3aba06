package scene

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering.
// It must be fully built before rendering starts and is read-only afterwards.
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	World          *geometry.HittableList // Objects in the scene
	SamplingConfig renderer.SamplingConfig
	TopColor       core.Vec3 // Sky color straight up
	BottomColor    core.Vec3 // Sky color straight down
}

// newScene builds a scene with an empty world and the standard sky
func newScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) (*Scene, error) {
	s := &Scene{
		World:          geometry.NewHittableList(),
		SamplingConfig: samplingConfig,
		TopColor:       core.NewVec3(0.5, 0.7, 1.0), // Sky blue
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0), // White
	}
	if err := s.SetCameraConfig(cameraConfig); err != nil {
		return nil, err
	}
	return s, nil
}

// GetWorld returns the scene aggregate
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetSamplingConfig returns the image and sampling settings
func (s *Scene) GetSamplingConfig() renderer.SamplingConfig {
	return s.SamplingConfig
}

// GetBackgroundColors returns the sky gradient colors
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// SetCameraConfig rebuilds the camera. The scene is unchanged on error.
func (s *Scene) SetCameraConfig(config renderer.CameraConfig) error {
	camera, err := renderer.NewCamera(config)
	if err != nil {
		return err
	}
	s.Camera = camera
	s.CameraConfig = config
	return nil
}

// Resize changes the image size and matches the camera aspect ratio to it
func (s *Scene) Resize(width, height int) error {
	sampling := s.SamplingConfig
	sampling.Width, sampling.Height = width, height
	if err := sampling.Validate(); err != nil {
		return err
	}

	cameraConfig := s.CameraConfig
	cameraConfig.AspectRatio = float64(width) / float64(height)
	if err := s.SetCameraConfig(cameraConfig); err != nil {
		return err
	}
	s.SamplingConfig = sampling
	return nil
}

// AddSphere adds a sphere to the world
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) error {
	sphere, err := geometry.NewSphere(center, radius, mat)
	if err != nil {
		return fmt.Errorf("add sphere at %v: %w", center, err)
	}
	s.World.Add(sphere)
	return nil
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
