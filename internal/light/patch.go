package light

import (
	"github.com/Faultbox/bsplight/pkg/vec"
	"github.com/Faultbox/bsplight/pkg/winding"
)

// SampleFunc queries the direct-light sampler: per-light-style color
// arriving at a surface point with the given normal. Implementations
// must be safe for concurrent calls.
type SampleFunc func(point, normal vec.Vec3) map[int]vec.Vec3

// BoundsFunc estimates a conservative visible-bounds volume around a
// point, for culling bounce lights that cannot reach a sample.
type BoundsFunc func(point vec.Vec3) vec.Vec3

// patch is one subdivision fragment of a face, with the direct light
// sampled at its lifted centroid.
type patch struct {
	w            winding.Winding
	samplePoint  vec.Vec3
	lightByStyle map[int]vec.Vec3
}

// makePatch caches the fragment centroid lifted one unit off the face
// and samples direct light there.
func makePatch(w winding.Winding, plane vec.Plane, sample SampleFunc) patch {
	p := patch{w: w}
	p.samplePoint = w.Center().Add(plane.Normal)
	p.lightByStyle = sample(p.samplePoint, plane.Normal)
	return p
}
