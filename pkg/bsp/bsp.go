// Package bsp provides a read-only in-memory view of a compiled level:
// the binary-partitioned solid geometry, its faces and textures, and the
// entity text lump. The light compiler consumes it as a query service.
package bsp

import "github.com/Faultbox/bsplight/pkg/vec"

// Contents classifies what fills a leaf of the spatial tree.
type Contents int

// Leaf contents values.
const (
	ContentsEmpty Contents = -1
	ContentsSolid Contents = -2
	ContentsWater Contents = -3
	ContentsSlime Contents = -4
	ContentsLava  Contents = -5
	ContentsSky   Contents = -6
)

// IsLiquid returns true for water, slime and lava contents.
func (c Contents) IsLiquid() bool {
	return c == ContentsWater || c == ContentsSlime || c == ContentsLava
}

// PlaneType marks axis-aligned planes for fast distance tests.
type PlaneType int

// Plane type values. Axial planes have a single nonzero normal component.
const (
	PlaneX PlaneType = iota
	PlaneY
	PlaneZ
	PlaneNonAxial
)

// Plane is a splitting plane of the spatial tree.
type Plane struct {
	Normal vec.Vec3
	Dist   float64
	Type   PlaneType
}

// NewPlane builds a plane, classifying it as axial when possible.
func NewPlane(normal vec.Vec3, dist float64) Plane {
	t := PlaneNonAxial
	switch {
	case normal == vec.V(1, 0, 0):
		t = PlaneX
	case normal == vec.V(0, 1, 0):
		t = PlaneY
	case normal == vec.V(0, 0, 1):
		t = PlaneZ
	}
	return Plane{Normal: normal, Dist: dist, Type: t}
}

// DistanceTo returns the signed distance from p to the plane, using the
// single-component fast path for axial planes.
func (pl Plane) DistanceTo(p vec.Vec3) float64 {
	switch pl.Type {
	case PlaneX:
		return p[0] - pl.Dist
	case PlaneY:
		return p[1] - pl.Dist
	case PlaneZ:
		return p[2] - pl.Dist
	default:
		return pl.Normal.Dot(p) - pl.Dist
	}
}

// Node is an internal node of the spatial tree. Children are node indices
// when non-negative; a negative child c refers to leaf -1-c.
type Node struct {
	PlaneNum int32
	Children [2]int32
}

// Leaf is a terminal region of the spatial tree.
type Leaf struct {
	Contents Contents

	// MarkSurfaces lists the faces visible from inside this leaf.
	MarkSurfaces []int32
}

// Face is one polygonal surface of the level.
type Face struct {
	PlaneNum  int32
	Side      bool // true if the face looks down the back of its plane
	FirstEdge int32
	NumEdges  int32
	TexInfo   int32
}

// TexFlags carries per-texinfo surface flags.
type TexFlags uint32

// Texinfo flag bits.
const (
	// TexSpecial marks sky and liquid surfaces, which carry no lightmap.
	TexSpecial TexFlags = 1 << iota
)

// TexInfo maps a face to its texture.
type TexInfo struct {
	Miptex int32
	Flags  TexFlags

	// NoBounce is the per-texinfo override that excludes surfaces from
	// bounce lighting.
	NoBounce bool
}

// Texture is a named texture with optional RGBA pixel data.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []byte // RGBA, 4 bytes per texel; may be nil
}

// Model is one rigid brush model. Model 0 is the world.
type Model struct {
	HeadNode   int32
	Mins, Maxs vec.Vec3
	FirstFace  int32
	NumFaces   int32
}

// Level is the complete read-only geometry database.
type Level struct {
	Planes       []Plane
	Nodes        []Node
	Leafs        []Leaf
	Vertexes     []vec.Vec3
	Edges        [][2]int32
	SurfEdges    []int32
	Faces        []Face
	TexInfos     []TexInfo
	Textures     []Texture
	Models       []Model
	EntitiesText string
}
