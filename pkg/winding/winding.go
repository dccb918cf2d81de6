// Package winding represents convex polygons in 3-space and supports the
// recursive grid subdivision ("dicing") used by the light compiler.
package winding

import (
	"errors"
	"math"

	"github.com/Faultbox/bsplight/pkg/vec"
)

// Subdivision limits. A winding picks up at most one extra vertex per cut,
// so anything past maxDiceVerts indicates broken input geometry.
const (
	maxDiceVerts = 60

	// A cut is only worthwhile if it leaves at least this much polygon on
	// either side.
	cutSlack = 8.0

	// Points within this distance of a cut plane land on both halves.
	onEpsilon = 0.1
)

// ErrTooManyVerts reports vertex-count overflow during subdivision.
var ErrTooManyVerts = errors.New("too many vertices in winding subdivision")

// Winding is an ordered ring of vertices forming a convex planar polygon.
// A zero-area winding is valid but useless; it is never an error.
type Winding struct {
	Points []vec.Vec3
}

// FromPoints builds a winding from a copy of the given vertex ring.
func FromPoints(points []vec.Vec3) Winding {
	w := Winding{Points: make([]vec.Vec3, len(points))}
	copy(w.Points, points)
	return w
}

// Copy returns an independent copy of the winding.
func (w Winding) Copy() Winding {
	return FromPoints(w.Points)
}

// Area returns the unsigned area of the polygon.
func (w Winding) Area() float64 {
	total := 0.0
	for i := 2; i < len(w.Points); i++ {
		d1 := w.Points[i-1].Sub(w.Points[0])
		d2 := w.Points[i].Sub(w.Points[0])
		total += 0.5 * d1.Cross(d2).Len()
	}
	return total
}

// Center returns the vertex centroid.
func (w Winding) Center() vec.Vec3 {
	var c vec.Vec3
	for _, p := range w.Points {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(w.Points)))
}

// Plane returns the plane the winding lies in, derived from the first
// three vertices. The normal faces the front side of the ring.
func (w Winding) Plane() vec.Plane {
	v1 := w.Points[1].Sub(w.Points[0])
	v2 := w.Points[2].Sub(w.Points[0])
	normal := v2.Cross(v1).Normalize()
	return vec.Plane{Normal: normal, Dist: normal.Dot(w.Points[0])}
}

// Bounds returns the axis-aligned bounding box of the vertex ring.
func (w Winding) Bounds() (mins, maxs vec.Vec3) {
	mins = vec.V(math.MaxFloat64, math.MaxFloat64, math.MaxFloat64)
	maxs = mins.Mul(-1)
	for _, p := range w.Points {
		for i := 0; i < 3; i++ {
			mins[i] = math.Min(mins[i], p[i])
			maxs[i] = math.Max(maxs[i], p[i])
		}
	}
	return mins, maxs
}

// Dice cuts the winding into fragments no larger than size along each axis
// and calls fn once per terminal fragment. Cuts run along axial planes
// snapped to multiples of size, so fragments from adjacent windings line
// up. Uses an explicit work stack; input polygon size does not grow the
// call stack.
func (w Winding) Dice(size float64, fn func(Winding)) error {
	stack := []Winding{w.Copy()}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(cur.Points) > maxDiceVerts {
			return ErrTooManyVerts
		}

		mins, maxs := cur.Bounds()

		axis := -1
		cut := 0.0
		for i := 0; i < 3; i++ {
			m := (mins[i] + maxs[i]) * 0.5
			m = size * math.Floor(m/size+0.5)
			if maxs[i]-m < cutSlack {
				continue
			}
			if m-mins[i] < cutSlack {
				continue
			}
			axis, cut = i, m
			break
		}

		if axis < 0 {
			fn(cur)
			continue
		}

		front, back := cur.clipAxis(axis, cut)
		stack = append(stack, back, front)
	}

	return nil
}

// clipAxis splits the winding along the plane points[axis] == dist.
// Vertices within onEpsilon of the plane are kept on both sides;
// sign-changing edges are split by linear interpolation.
func (w Winding) clipAxis(axis int, dist float64) (front, back Winding) {
	n := len(w.Points)
	dists := make([]float64, n+1)
	for i, p := range w.Points {
		dists[i] = p[axis] - dist
	}
	dists[n] = dists[0]

	for i := 0; i < n; i++ {
		p := w.Points[i]
		d := dists[i]

		switch {
		case d > onEpsilon:
			front.Points = append(front.Points, p)
		case d < -onEpsilon:
			back.Points = append(back.Points, p)
		default:
			front.Points = append(front.Points, p)
			back.Points = append(back.Points, p)
			continue
		}

		next := dists[i+1]
		if (d > onEpsilon && next < -onEpsilon) || (d < -onEpsilon && next > onEpsilon) {
			q := w.Points[(i+1)%n]
			frac := d / (d - next)
			mid := p.Add(q.Sub(p).Mul(frac))
			front.Points = append(front.Points, mid)
			back.Points = append(back.Points, mid)
		}
	}

	return front, back
}
