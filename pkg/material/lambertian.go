package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Fraction of light reflected per color channel
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements the Material interface for lambertian scattering.
// It always scatters; the attenuation is the albedo.
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Offsetting the normal by a random unit vector gives a cosine-weighted direction
	scatterDirection := hit.Normal.Add(core.RandomUnitVector(sampler))

	// The random vector can cancel the normal, leaving a degenerate direction
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: l.Albedo,
	}, true
}
