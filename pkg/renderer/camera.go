package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ErrInvalidCamera is returned when a camera configuration cannot produce a view
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction, must not be parallel to the view direction
	VFov          float64   // Vertical field of view in degrees, in (0, 180)
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter (0 = pinhole)
	FocusDistance float64   // Distance to the plane of perfect focus (0 = |LookFrom - LookAt|)
}

// Validate reports the first problem with the configuration
func (c CameraConfig) Validate() error {
	for _, v := range []core.Vec3{c.LookFrom, c.LookAt, c.Up} {
		if !v.IsFinite() {
			return fmt.Errorf("%w: non-finite vector %v", ErrInvalidCamera, v)
		}
	}
	view := c.LookFrom.Subtract(c.LookAt)
	if view.NearZero() {
		return fmt.Errorf("%w: look-from and look-at coincide", ErrInvalidCamera)
	}
	if c.Up.Cross(view.Normalize()).NearZero() {
		return fmt.Errorf("%w: up vector is parallel to the view direction", ErrInvalidCamera)
	}
	if !(c.VFov > 0 && c.VFov < 180) {
		return fmt.Errorf("%w: vertical fov %v outside (0, 180)", ErrInvalidCamera, c.VFov)
	}
	if !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 1) {
		return fmt.Errorf("%w: aspect ratio %v", ErrInvalidCamera, c.AspectRatio)
	}
	if !(c.Aperture >= 0) || math.IsInf(c.Aperture, 1) {
		return fmt.Errorf("%w: aperture %v", ErrInvalidCamera, c.Aperture)
	}
	if !(c.FocusDistance >= 0) || math.IsInf(c.FocusDistance, 1) {
		return fmt.Errorf("%w: focus distance %v", ErrInvalidCamera, c.FocusDistance)
	}
	return nil
}

// Camera generates rays through a thin lens. It is immutable after construction.
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v            core.Vec3 // Lens plane basis
	lensRadius      float64
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	focusDistance := config.FocusDistance
	if focusDistance == 0 {
		focusDistance = config.LookFrom.Subtract(config.LookAt).Length()
	}

	theta := core.DegreesToRadians(config.VFov)
	viewportHeight := 2.0 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.LookFrom
	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	config.FocusDistance = focusDistance
	return &Camera{
		config:          config,
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		lensRadius:      config.Aperture / 2,
	}, nil
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1 and t = 0 is the bottom edge
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	offset := core.Vec3{}
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		offset = c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	}

	origin := c.origin.Add(offset)
	target := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t))

	return core.NewRay(origin, target.Subtract(origin))
}

// GetCenterRay returns the un-jittered ray through (s, t) from the lens center
func (c *Camera) GetCenterRay(s, t float64) core.Ray {
	target := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t))
	return core.NewRay(c.origin, target.Subtract(c.origin))
}

// Origin returns the lens center
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// Config returns the configuration with the resolved focus distance
func (c *Camera) Config() CameraConfig {
	return c.config
}
