package light

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/bsplight/pkg/vec"
)

// ErrBadFOV rejects projection fields of view outside (1, 179) degrees.
var ErrBadFOV = errors.New("bad projection fov")

// calcFov derives the field of view of the minor texture axis from the
// major axis fov and the aspect ratio.
func calcFov(fovMajor, major, minor float64) (float64, error) {
	if fovMajor < 1 || fovMajor > 179 {
		return 0, fmt.Errorf("%w: %v", ErrBadFOV, fovMajor)
	}
	x := major / math.Tan(fovMajor/360*math.Pi)
	return math.Atan(minor/x) * 360 / math.Pi, nil
}

// projectionMatrix builds the combined modelview-projection matrix that
// maps world space into the projected texture's clip space.
func projectionMatrix(viewangles, vieworg vec.Vec3, fovX, fovY float64) mgl64.Mat4 {
	return projectionInf(fovX, fovY, 4).Mul4(modelViewMatrix(viewangles, vieworg))
}

// projectionInf is a perspective projection with the far plane at
// infinity, so no projected light ever falls outside clip depth.
func projectionInf(fovX, fovY, neard float64) mgl64.Mat4 {
	ymax := neard * math.Tan(fovY*math.Pi/360)
	ymin := -ymax
	xmax := ymax
	xmin := ymin
	if fovX != fovY {
		xmax = neard * math.Tan(fovX*math.Pi/360)
		xmin = -xmax
	}

	var p mgl64.Mat4
	p[0] = (2 * neard) / (xmax - xmin)
	p[5] = (2 * neard) / (ymax - ymin)
	p[8] = (xmax + xmin) / (xmax - xmin)
	p[9] = (ymax + ymin) / (ymax - ymin)
	p[10] = -1 * (float64(1<<21) / float64(1<<22))
	p[11] = -1
	p[14] = -2 * neard
	return p
}

// modelViewMatrix maps world space into view space for a camera at
// vieworg with quake-convention angles (pitch, yaw, roll in degrees).
func modelViewMatrix(viewangles, vieworg vec.Vec3) mgl64.Mat4 {
	// Base change from quake coordinates (x forward, z up) to GL view
	// coordinates (z toward the viewer).
	var base mgl64.Mat4
	base[2] = -1
	base[4] = -1
	base[9] = 1
	base[15] = 1

	m := base.
		Mul4(mgl64.HomogRotate3D(mgl64.DegToRad(-viewangles[2]), vec.V(1, 0, 0))). // roll
		Mul4(mgl64.HomogRotate3D(mgl64.DegToRad(viewangles[1]), vec.V(0, 1, 0))).  // pitch
		Mul4(mgl64.HomogRotate3D(mgl64.DegToRad(-viewangles[0]), vec.V(0, 0, 1))). // yaw
		Mul4(mgl64.Translate3D(-vieworg[0], -vieworg[1], -vieworg[2]))
	return m
}
