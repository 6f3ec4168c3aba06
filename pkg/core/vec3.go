package core

import (
	"math"
)

// nearZeroEpsilon is the per-component threshold below which a vector counts as zero
const nearZeroEpsilon = 1e-8

// Vec3 represents a 3D vector. It is used for points, directions and RGB colors alike.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Divide returns the vector divided by a scalar
func (v Vec3) Divide(scalar float64) Vec3 {
	return v.Multiply(1.0 / scalar)
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{
		X: v.X * other.X,
		Y: v.Y * other.Y,
		Z: v.Z * other.Z,
	}
}

// DivideVec returns component-wise division of two vectors
func (v Vec3) DivideVec(other Vec3) Vec3 {
	return Vec3{
		X: v.X / other.X,
		Y: v.Y / other.Y,
		Z: v.Z / other.Z,
	}
}

// Negate returns the negative of the vector
func (v Vec3) Negate() Vec3 {
	return Vec3{
		X: -v.X,
		Y: -v.Y,
		Z: -v.Z,
	}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Normalize returns a unit vector in the same direction.
// A zero-length vector has no direction; it is returned unchanged as the zero vector.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{0, 0, 0}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

// NearZero reports whether every component is below 1e-8 in magnitude
func (v Vec3) NearZero() bool {
	return math.Abs(v.X) < nearZeroEpsilon &&
		math.Abs(v.Y) < nearZeroEpsilon &&
		math.Abs(v.Z) < nearZeroEpsilon
}

// Equals reports exact component equality
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// IsFinite reports whether no component is NaN or infinite
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ZeroNonFinite returns v with every NaN or infinite component replaced by 0
func (v Vec3) ZeroNonFinite() Vec3 {
	return Vec3{X: finiteOrZero(v.X), Y: finiteOrZero(v.Y), Z: finiteOrZero(v.Z)}
}

func finiteOrZero(f float64) float64 {
	if !isFinite(f) {
		return 0
	}
	return f
}

// Clamp returns a vector with components clamped to [min, max]
func (v Vec3) Clamp(minVal, maxVal float64) Vec3 {
	return Vec3{
		X: Clamp(v.X, minVal, maxVal),
		Y: Clamp(v.Y, minVal, maxVal),
		Z: Clamp(v.Z, minVal, maxVal),
	}
}

// Sqrt returns the component-wise square root (gamma 2 correction for colors)
func (v Vec3) Sqrt() Vec3 {
	return Vec3{
		X: math.Sqrt(v.X),
		Y: math.Sqrt(v.Y),
		Z: math.Sqrt(v.Z),
	}
}

// Lerp linearly interpolates from v (t=0) to other (t=1)
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Multiply(1.0 - t).Add(other.Multiply(t))
}

// Luminance returns the perceptual luminance of an RGB color
// Uses standard luminance weights: 0.299*R + 0.587*G + 0.114*B
func (v Vec3) Luminance() float64 {
	return 0.299*v.X + 0.587*v.Y + 0.114*v.Z
}

// Reflect mirrors v about the surface normal n: v - 2*dot(v,n)*n
func Reflect(v, n Vec3) Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// Refract bends the unit vector uv through a surface with normal n using Snell's law.
// etaiOverEtat is the ratio of refractive indices on the incoming and outgoing sides.
func Refract(uv, n Vec3, etaiOverEtat float64) Vec3 {
	cosTheta := math.Min(uv.Negate().Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	// abs absorbs round-off that can push the radicand slightly below zero
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}
