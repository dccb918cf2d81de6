package bsp

import (
	"strings"

	"github.com/Faultbox/bsplight/pkg/vec"
)

// Distances this close to a splitting plane are treated as touching it.
const planeEpsilon = 0.1

// Face returns the face with the given number.
func (l *Level) Face(num int) *Face {
	return &l.Faces[num]
}

// FaceVertex resolves the v-th vertex index of a face through the
// surfedge table. Negative surfedges walk the edge backwards.
func (l *Level) FaceVertex(f *Face, v int) int32 {
	edge := l.SurfEdges[int(f.FirstEdge)+v]
	if edge < 0 {
		return l.Edges[-edge][1]
	}
	return l.Edges[edge][0]
}

// FacePoint returns the v-th vertex position of a face.
func (l *Level) FacePoint(f *Face, v int) vec.Vec3 {
	return l.Vertexes[l.FaceVertex(f, v)]
}

// FacePoints returns the vertex ring of a face.
func (l *Level) FacePoints(f *Face) []vec.Vec3 {
	points := make([]vec.Vec3, f.NumEdges)
	for i := range points {
		points[i] = l.FacePoint(f, i)
	}
	return points
}

// FacePlane returns the plane of a face, flipped for back-sided faces so
// the normal points out of the surface.
func (l *Level) FacePlane(f *Face) vec.Plane {
	pl := l.Planes[f.PlaneNum]
	out := vec.Plane{Normal: pl.Normal, Dist: pl.Dist}
	if f.Side {
		return out.Flipped()
	}
	return out
}

// FaceNormal returns the outward surface normal of a face.
func (l *Level) FaceNormal(f *Face) vec.Vec3 {
	return l.FacePlane(f).Normal
}

// FaceCentroid returns the vertex centroid of a face.
func (l *Level) FaceCentroid(f *Face) vec.Vec3 {
	var c vec.Vec3
	for i := 0; i < int(f.NumEdges); i++ {
		c = c.Add(l.FacePoint(f, i))
	}
	return c.Mul(1 / float64(f.NumEdges))
}

// FaceTexInfo returns the texinfo of a face, or nil if out of range.
func (l *Level) FaceTexInfo(f *Face) *TexInfo {
	if f.TexInfo < 0 || int(f.TexInfo) >= len(l.TexInfos) {
		return nil
	}
	return &l.TexInfos[f.TexInfo]
}

// FaceTexture returns the texture of a face, or nil if unresolved.
func (l *Level) FaceTexture(f *Face) *Texture {
	ti := l.FaceTexInfo(f)
	if ti == nil || ti.Miptex < 0 || int(ti.Miptex) >= len(l.Textures) {
		return nil
	}
	return &l.Textures[ti.Miptex]
}

// FaceTextureName returns the texture name of a face, or "".
func (l *Level) FaceTextureName(f *Face) string {
	if tex := l.FaceTexture(f); tex != nil {
		return tex.Name
	}
	return ""
}

// FaceIsLightmapped reports whether the face carries a lightmap. Sky and
// liquid surfaces do not.
func (l *Level) FaceIsLightmapped(f *Face) bool {
	ti := l.FaceTexInfo(f)
	if ti == nil {
		return false
	}
	return ti.Flags&TexSpecial == 0
}

// FindTexture looks a texture up by name, case-insensitively.
func (l *Level) FindTexture(name string) *Texture {
	for i := range l.Textures {
		if strings.EqualFold(l.Textures[i].Name, name) {
			return &l.Textures[i]
		}
	}
	return nil
}

// TextureContents derives leaf contents from a texture name: sky
// textures, liquids prefixed with '*', everything else solid.
func TextureContents(name string) Contents {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "sky"):
		return ContentsSky
	case strings.HasPrefix(lower, "*lava"):
		return ContentsLava
	case strings.HasPrefix(lower, "*slime"):
		return ContentsSlime
	case strings.HasPrefix(lower, "*"):
		return ContentsWater
	default:
		return ContentsSolid
	}
}

// AvgColor returns the average color of the texture's opaque texels in
// 0-255 range. ok is false when the texture has no pixel data.
func (t *Texture) AvgColor() (color vec.Vec3, ok bool) {
	if len(t.Pixels) == 0 {
		return vec.Vec3{}, false
	}
	var sum vec.Vec3
	count := 0
	for i := 0; i+3 < len(t.Pixels); i += 4 {
		if t.Pixels[i+3] < 128 {
			continue // transparent texel
		}
		sum = sum.Add(vec.V(float64(t.Pixels[i]), float64(t.Pixels[i+1]), float64(t.Pixels[i+2])))
		count++
	}
	if count == 0 {
		return vec.Vec3{}, true
	}
	return sum.Mul(1 / float64(count)), true
}

// WorldModel returns model 0, or nil for a level without models.
func (l *Level) WorldModel() *Model {
	if len(l.Models) == 0 {
		return nil
	}
	return &l.Models[0]
}

// PointInSolid reports whether the point lies in solid or sky contents of
// the world model.
func (l *Level) PointInSolid(p vec.Vec3) bool {
	world := l.WorldModel()
	if world == nil {
		return false
	}
	return l.PointInSolidModel(world, p)
}

// PointInSolidModel reports whether the point lies in solid or sky
// contents of the given model.
func (l *Level) PointInSolidModel(m *Model, p vec.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < m.Mins[i] || p[i] > m.Maxs[i] {
			return false
		}
	}
	return l.pointInSolidR(m.HeadNode, p)
}

func (l *Level) pointInSolidR(nodenum int32, p vec.Vec3) bool {
	if nodenum < 0 {
		c := l.Leafs[-1-nodenum].Contents
		return c == ContentsSolid || c == ContentsSky
	}

	node := &l.Nodes[nodenum]
	dist := l.Planes[node.PlaneNum].DistanceTo(p)

	if dist > planeEpsilon {
		return l.pointInSolidR(node.Children[0], p)
	}
	if dist < -planeEpsilon {
		return l.pointInSolidR(node.Children[1], p)
	}
	// Touching the plane: solid if either side is.
	return l.pointInSolidR(node.Children[0], p) || l.pointInSolidR(node.Children[1], p)
}

// PointInLeaf returns the index of the world leaf containing the point,
// or -1 for a level without models.
func (l *Level) PointInLeaf(p vec.Vec3) int {
	world := l.WorldModel()
	if world == nil {
		return -1
	}
	nodenum := world.HeadNode
	for nodenum >= 0 {
		node := &l.Nodes[nodenum]
		if l.Planes[node.PlaneNum].DistanceTo(p) > 0 {
			nodenum = node.Children[0]
		} else {
			nodenum = node.Children[1]
		}
	}
	return int(-1 - nodenum)
}

// InwardEdgePlanes builds one plane per face edge, each facing the
// interior of the face polygon. A point in front of all of them projects
// onto the face.
func (l *Level) InwardEdgePlanes(f *Face) []vec.Plane {
	normal := l.FaceNormal(f)
	n := int(f.NumEdges)

	out := make([]vec.Plane, 0, n)
	for i := 0; i < n; i++ {
		v0 := l.FacePoint(f, i)
		v1 := l.FacePoint(f, (i+1)%n)

		edge := v1.Sub(v0).Normalize()
		in := edge.Cross(normal)
		out = append(out, vec.Plane{Normal: in, Dist: in.Dot(v0)})
	}
	return out
}

// PointInsideEdgePlanes reports whether the point is on or in front of
// every plane in the set.
func PointInsideEdgePlanes(planes []vec.Plane, p vec.Vec3) bool {
	for _, pl := range planes {
		if pl.DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}

// FindFaceAtPoint locates the model face containing the point and facing
// roughly along wantedNormal, or nil. The point must lie on the face.
func (l *Level) FindFaceAtPoint(m *Model, p, wantedNormal vec.Vec3) *Face {
	return l.findFaceR(m.HeadNode, p, wantedNormal)
}

func (l *Level) findFaceR(nodenum int32, p, wantedNormal vec.Vec3) *Face {
	if nodenum < 0 {
		// Faces hang off nodes, not leafs.
		return nil
	}

	node := &l.Nodes[nodenum]
	dist := l.Planes[node.PlaneNum].DistanceTo(p)

	if dist > planeEpsilon {
		return l.findFaceR(node.Children[0], p, wantedNormal)
	}
	if dist < -planeEpsilon {
		return l.findFaceR(node.Children[1], p, wantedNormal)
	}

	// On the node plane: check faces lying in it.
	for i := range l.Faces {
		f := &l.Faces[i]
		if f.PlaneNum != node.PlaneNum {
			continue
		}
		if l.FaceNormal(f).Dot(wantedNormal) < 0 {
			continue
		}
		if PointInsideEdgePlanes(l.InwardEdgePlanes(f), p) {
			return f
		}
	}

	if match := l.findFaceR(node.Children[0], p, wantedNormal); match != nil {
		return match
	}
	return l.findFaceR(node.Children[1], p, wantedNormal)
}
