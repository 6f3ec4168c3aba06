package core

import (
	"math/rand"
)

// maxRejectionAttempts bounds the rejection samplers
const maxRejectionAttempts = 64

// insideRadius is where an exhausted rejection sampler places its last candidate
const insideRadius = 0.999999

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; give every worker its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// RandomInRange returns a vector with each component uniform in [min, max)
func RandomInRange(sampler Sampler, min, max float64) Vec3 {
	u := sampler.Get3D()
	span := max - min
	return NewVec3(min+span*u.X, min+span*u.Y, min+span*u.Z)
}

// RandomInUnitSphere returns a point strictly inside the unit ball using rejection sampling
func RandomInUnitSphere(sampler Sampler) Vec3 {
	var p Vec3
	for i := 0; i < maxRejectionAttempts; i++ {
		p = RandomInRange(sampler, -1, 1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
	return pullInside(p)
}

// RandomUnitVector returns a random direction on the unit sphere
func RandomUnitVector(sampler Sampler) Vec3 {
	return RandomInUnitSphere(sampler).Normalize()
}

// RandomInUnitDisk returns a point strictly inside the unit disk in the z=0 plane (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	var p Vec3
	for i := 0; i < maxRejectionAttempts; i++ {
		// Generate random point in [-1,1] x [-1,1] square
		u := sampler.Get2D()
		p = NewVec3(2*u.X-1, 2*u.Y-1, 0)
		if p.LengthSquared() < 1 {
			return p
		}
	}
	return pullInside(p)
}

// pullInside scales a rejected candidate back inside the unit ball or disk
func pullInside(p Vec3) Vec3 {
	length := p.Length()
	if length == 0 {
		return p
	}
	return p.Multiply(insideRadius / length)
}
