package bsp

import (
	"math"
	"testing"

	"github.com/Faultbox/bsplight/pkg/vec"
)

// floorLevel builds a level that is solid below z=32, with a single
// 64x64 textured quad face lying on the dividing plane.
func floorLevel() *Level {
	return &Level{
		Planes: []Plane{NewPlane(vec.V(0, 0, 1), 32)},
		Nodes: []Node{
			{PlaneNum: 0, Children: [2]int32{-1, -2}},
		},
		Leafs: []Leaf{
			{Contents: ContentsEmpty, MarkSurfaces: []int32{0}},
			{Contents: ContentsSolid},
		},
		Vertexes: []vec.Vec3{
			{0, 0, 32}, {0, 64, 32}, {64, 64, 32}, {64, 0, 32},
		},
		Edges:     [][2]int32{{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		SurfEdges: []int32{0, 1, 2, 3},
		Faces: []Face{
			{PlaneNum: 0, FirstEdge: 0, NumEdges: 4, TexInfo: 0},
		},
		TexInfos: []TexInfo{{Miptex: 0}},
		Textures: []Texture{{Name: "wall", Width: 1, Height: 2, Pixels: []byte{
			200, 100, 0, 255, // opaque
			0, 0, 0, 0, // transparent, skipped
		}}},
		Models: []Model{{
			HeadNode: 0,
			Mins:     vec.V(-1024, -1024, -1024),
			Maxs:     vec.V(1024, 1024, 1024),
		}},
	}
}

func TestPointInSolid(t *testing.T) {
	l := floorLevel()

	if l.PointInSolid(vec.V(32, 32, 100)) {
		t.Error("point above the floor should not be solid")
	}
	if !l.PointInSolid(vec.V(32, 32, 0)) {
		t.Error("point below the floor should be solid")
	}
	// Exactly on the plane: both sides checked, solid wins.
	if !l.PointInSolid(vec.V(32, 32, 32)) {
		t.Error("point on the boundary should classify as solid")
	}
	// Outside the model bounds: fast reject.
	if l.PointInSolid(vec.V(0, 0, -5000)) {
		t.Error("point outside model bounds should not be solid")
	}
}

func TestPointInLeaf(t *testing.T) {
	l := floorLevel()
	if got := l.PointInLeaf(vec.V(0, 0, 100)); got != 0 {
		t.Errorf("PointInLeaf(above) = %d, want 0", got)
	}
	if got := l.PointInLeaf(vec.V(0, 0, -100)); got != 1 {
		t.Errorf("PointInLeaf(below) = %d, want 1", got)
	}
}

func TestFaceAccessors(t *testing.T) {
	l := floorLevel()
	f := l.Face(0)

	if got := l.FaceNormal(f); got != vec.V(0, 0, 1) {
		t.Errorf("FaceNormal() = %v, want +Z", got)
	}
	if got := l.FaceCentroid(f); got != vec.V(32, 32, 32) {
		t.Errorf("FaceCentroid() = %v, want (32,32,32)", got)
	}
	if got := l.FaceTextureName(f); got != "wall" {
		t.Errorf("FaceTextureName() = %q, want \"wall\"", got)
	}
	if !l.FaceIsLightmapped(f) {
		t.Error("plain wall face should be lightmapped")
	}

	points := l.FacePoints(f)
	if len(points) != 4 || points[2] != vec.V(64, 64, 32) {
		t.Errorf("FacePoints() = %v", points)
	}
}

func TestFacePlaneSideFlip(t *testing.T) {
	l := floorLevel()
	f := *l.Face(0)
	f.Side = true
	if got := l.FacePlane(&f).Normal; got != vec.V(0, 0, -1) {
		t.Errorf("back-sided FacePlane().Normal = %v, want -Z", got)
	}
}

func TestInwardEdgePlanes(t *testing.T) {
	l := floorLevel()
	planes := l.InwardEdgePlanes(l.Face(0))

	if len(planes) != 4 {
		t.Fatalf("got %d edge planes, want 4", len(planes))
	}
	if !PointInsideEdgePlanes(planes, vec.V(32, 32, 32)) {
		t.Error("face centroid should be inside the edge planes")
	}
	if PointInsideEdgePlanes(planes, vec.V(100, 32, 32)) {
		t.Error("point beyond the face should be outside the edge planes")
	}
	// The edge planes extend along the normal.
	if !PointInsideEdgePlanes(planes, vec.V(32, 32, 500)) {
		t.Error("point above the face interior should be inside the edge planes")
	}
}

func TestFindFaceAtPoint(t *testing.T) {
	l := floorLevel()

	got := l.FindFaceAtPoint(l.WorldModel(), vec.V(32, 32, 32), vec.V(0, 0, 1))
	if got != l.Face(0) {
		t.Errorf("FindFaceAtPoint(on face) = %v, want face 0", got)
	}

	if got := l.FindFaceAtPoint(l.WorldModel(), vec.V(500, 500, 32), vec.V(0, 0, 1)); got != nil {
		t.Errorf("FindFaceAtPoint(outside face) = %v, want nil", got)
	}

	// Wrong normal direction never matches.
	if got := l.FindFaceAtPoint(l.WorldModel(), vec.V(32, 32, 32), vec.V(0, 0, -1)); got != nil {
		t.Errorf("FindFaceAtPoint(opposite normal) = %v, want nil", got)
	}
}

func TestTextureAvgColor(t *testing.T) {
	l := floorLevel()

	color, ok := l.Textures[0].AvgColor()
	if !ok {
		t.Fatal("texture with pixels should report ok")
	}
	// Transparent texel is skipped, so the average is the single opaque one.
	if color != vec.V(200, 100, 0) {
		t.Errorf("AvgColor() = %v, want (200,100,0)", color)
	}

	empty := Texture{Name: "missing"}
	if _, ok := empty.AvgColor(); ok {
		t.Error("texture without pixels should report !ok")
	}
}

func TestTextureContents(t *testing.T) {
	cases := []struct {
		name string
		want Contents
	}{
		{"sky4", ContentsSky},
		{"*lava1", ContentsLava},
		{"*slime0", ContentsSlime},
		{"*water2", ContentsWater},
		{"wall", ContentsSolid},
	}
	for _, c := range cases {
		if got := TextureContents(c.name); got != c.want {
			t.Errorf("TextureContents(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestPlaneDistanceAxialFastPath(t *testing.T) {
	axial := NewPlane(vec.V(0, 1, 0), 8)
	if axial.Type != PlaneY {
		t.Fatalf("expected axial classification, got %v", axial.Type)
	}
	diag := NewPlane(vec.V(1, 1, 0).Normalize(), 0)
	if diag.Type != PlaneNonAxial {
		t.Fatalf("expected non-axial classification, got %v", diag.Type)
	}

	p := vec.V(3, 20, 7)
	if got := axial.DistanceTo(p); got != 12 {
		t.Errorf("axial DistanceTo() = %v, want 12", got)
	}
	want := diag.Normal.Dot(p)
	if got := diag.DistanceTo(p); math.Abs(got-want) > 1e-12 {
		t.Errorf("non-axial DistanceTo() = %v, want %v", got, want)
	}
}
