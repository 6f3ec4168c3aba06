package integrator

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ShadowAcneEpsilon is the lower bound of every scene query. Scattered rays start on
// the surface they left, so hits closer than this are ignored.
const ShadowAcneEpsilon = 0.001

// PathTracingIntegrator implements unidirectional path tracing without light sampling.
// It holds no state and is safe for concurrent use.
type PathTracingIntegrator struct{}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{}
}

// RayColor computes the color for a single ray using unidirectional path tracing
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene Scene, depth int, sampler core.Sampler) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := scene.GetWorld().Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return pt.backgroundGradient(ray, scene)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		// Material absorbed the ray
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(pt.RayColor(scatter.Scattered, scene, depth-1, sampler))
}

// backgroundGradient blends from the bottom color at y = -1 to the top color at y = +1
func (pt *PathTracingIntegrator) backgroundGradient(ray core.Ray, scene Scene) core.Vec3 {
	topColor, bottomColor := scene.GetBackgroundColors()

	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Lerp(topColor, t)
}
