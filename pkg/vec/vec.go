// Package vec provides the vector and plane math used by the light compiler.
package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D point, direction or RGB color in world units.
type Vec3 = mgl64.Vec3

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Plane is a plane in normal/distance form. Points p with
// Normal·p - Dist > 0 are on the front side.
type Plane struct {
	Normal Vec3
	Dist   float64
}

// DistanceTo returns the signed distance from p to the plane.
func (pl Plane) DistanceTo(p Vec3) float64 {
	return pl.Normal.Dot(p) - pl.Dist
}

// Flipped returns the plane facing the opposite way.
func (pl Plane) Flipped() Plane {
	return Plane{Normal: pl.Normal.Mul(-1), Dist: -pl.Dist}
}

// FromMangle converts editor "mangle" angles (yaw, pitch, roll in degrees)
// to a unit direction vector. Roll is ignored.
func FromMangle(m Vec3) Vec3 {
	yaw := mgl64.DegToRad(m[0])
	pitch := mgl64.DegToRad(m[1])
	return Vec3{
		math.Cos(yaw) * math.Cos(pitch),
		math.Sin(yaw) * math.Cos(pitch),
		math.Sin(pitch),
	}
}

// MulComponents multiplies two vectors componentwise.
func MulComponents(a, b Vec3) Vec3 {
	return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// MaxComponents returns the componentwise maximum of two vectors.
func MaxComponents(a, b Vec3) Vec3 {
	return Vec3{math.Max(a[0], b[0]), math.Max(a[1], b[1]), math.Max(a[2], b[2])}
}

// NormalizeColorFormat detects colors authored with components in 0-1
// and scales them to the 0-255 range the compiler works in.
func NormalizeColorFormat(c Vec3) Vec3 {
	for i := 0; i < 3; i++ {
		if c[i] < 0 || c[i] > 1 {
			return c
		}
	}
	return c.Mul(255)
}
