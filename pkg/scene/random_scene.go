package scene

import (
	"math/rand"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// randomGridHalfWidth bounds the grid of small spheres to [-11, 11) in x and z
const randomGridHalfWidth = 11

// NewRandomScene creates the many-spheres showcase: a grid of small randomly
// chosen spheres around three large ones. The layout depends only on seed.
func NewRandomScene(seed int64) (*Scene, error) {
	cameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   3.0 / 2.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	samplingConfig := renderer.SamplingConfig{
		Width:           600,
		Height:          400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}

	s, err := newScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))

	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	if err := s.AddSphere(core.NewVec3(0, -1000, 0), 1000, ground); err != nil {
		return nil, err
	}

	// Small spheres share one glass material
	glass := material.NewDielectric(1.5)
	clearing := core.NewVec3(4, 0.2, 0)

	for a := -randomGridHalfWidth; a < randomGridHalfWidth; a++ {
		for b := -randomGridHalfWidth; b < randomGridHalfWidth; b++ {
			chooseMaterial := sampler.Get1D()
			offset := sampler.Get2D()
			center := core.NewVec3(float64(a)+0.9*offset.X, 0.2, float64(b)+0.9*offset.Y)

			// Keep the area around the large metal sphere clear
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch {
			case chooseMaterial < 0.8:
				albedo := sampler.Get3D().MultiplyVec(sampler.Get3D())
				mat = material.NewLambertian(albedo)
			case chooseMaterial < 0.95:
				albedo := core.RandomInRange(sampler, 0.5, 1)
				fuzz := 0.5 * sampler.Get1D()
				mat = material.NewMetal(albedo, fuzz)
			default:
				mat = glass
			}

			if err := s.AddSphere(center, 0.2, mat); err != nil {
				return nil, err
			}
		}
	}

	large := []struct {
		center core.Vec3
		mat    material.Material
	}{
		{core.NewVec3(0, 1, 0), glass},
		{core.NewVec3(-4, 1, 0), material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))},
		{core.NewVec3(4, 1, 0), material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)},
	}
	for _, sp := range large {
		if err := s.AddSphere(sp.center, 1.0, sp.mat); err != nil {
			return nil, err
		}
	}

	return s, nil
}
