package material

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter implements the Material interface for dielectric scattering.
// The ray is reflected under total internal reflection or when a uniform draw falls
// below the Schlick reflectance, and refracted otherwise.
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Clear glass absorbs nothing
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	var refractionRatio float64
	if hit.FrontFace {
		refractionRatio = 1.0 / d.RefractiveIndex // entering the material
	} else {
		refractionRatio = d.RefractiveIndex // exiting the material
	}

	unitDirection := rayIn.Direction.Normalize()
	cosTheta := math.Min(unitDirection.Negate().Dot(hit.Normal), 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))

	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		direction = core.Reflect(unitDirection, hit.Normal)
	} else {
		direction = core.Refract(unitDirection, hit.Normal, refractionRatio)
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}, true
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	// R0 is the reflectance at normal incidence. It is unchanged by ratio -> 1/ratio,
	// so passing the ratio gives the same value as passing the index of refraction.
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
