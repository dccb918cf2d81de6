package light

import (
	"sort"
	"sync"

	"github.com/Faultbox/bsplight/pkg/vec"
)

// BounceLight is one aggregate area source approximating the light a
// face reflects back into the level. Immutable once accumulated.
type BounceLight struct {
	FaceNum int

	// Poly and EdgePlanes let later passes test whether a point lies
	// over the emitting face.
	Poly       []vec.Vec3
	EdgePlanes []vec.Plane

	// Pos is the face midpoint lifted one unit along the normal.
	Pos vec.Vec3

	ColorByStyle map[int]vec.Vec3
	MaxColor     vec.Vec3
	SurfNormal   vec.Vec3
	Area         float64

	// Bounds is the estimated visible-bounds volume, zero when the
	// approximation is disabled.
	Bounds vec.Vec3
}

// Accumulator collects bounce lights from parallel workers. A single
// mutex guards both the list and the face reverse map so the two can
// never disagree. After the parallel phase it is read-only.
type Accumulator struct {
	mu     sync.Mutex
	lights []BounceLight
	byFace map[int][]int
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{byFace: make(map[int][]int)}
}

// Add appends a light and indexes it under its face number.
func (a *Accumulator) Add(l BounceLight) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lights = append(a.lights, l)
	a.byFace[l.FaceNum] = append(a.byFace[l.FaceNum], len(a.lights)-1)
}

// Lights returns the accumulated list. Entry order depends on worker
// scheduling unless SortByFace ran; use ForFace for lookup.
func (a *Accumulator) Lights() []BounceLight {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lights
}

// ForFace returns the list indices of the bounce lights emitted by a
// face, or nil for a face that produced none.
func (a *Accumulator) ForFace(facenum int) []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.byFace[facenum]
}

// Len returns the number of accumulated lights.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.lights)
}

// SortByFace reorders the list by face number and rebuilds the reverse
// map, giving runs a scheduling-independent result. Call only after the
// parallel phase.
func (a *Accumulator) SortByFace() {
	a.mu.Lock()
	defer a.mu.Unlock()
	sort.SliceStable(a.lights, func(i, j int) bool {
		return a.lights[i].FaceNum < a.lights[j].FaceNum
	})
	a.byFace = make(map[int][]int, len(a.byFace))
	for i := range a.lights {
		n := a.lights[i].FaceNum
		a.byFace[n] = append(a.byFace[n], i)
	}
}
