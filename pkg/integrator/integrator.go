package integrator

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// Scene is the read-only view of a scene that light transport needs
type Scene interface {
	GetWorld() geometry.Shape
	GetBackgroundColors() (topColor, bottomColor core.Vec3)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor returns the radiance carried back along ray, following at most depth bounces
	RayColor(ray core.Ray, scene Scene, depth int, sampler core.Sampler) core.Vec3
}
