package light

import (
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/bsplight/internal/logger"
	"github.com/Faultbox/bsplight/pkg/bsp"
	"github.com/Faultbox/bsplight/pkg/vec"
	"github.com/Faultbox/bsplight/pkg/winding"
	"go.uber.org/zap"
)

// surfaceTemplate couples a template light (with its authored intensity,
// taken before the in-list copy is zeroed) to its emissive texture name.
type surfaceTemplate struct {
	entity  Entity
	texture string
}

// makeSurfaceLights scatters clones of each _surface template light over
// every face carrying the named texture, one clone per subdivision
// fragment.
func (s *Synthesizer) makeSurfaceLights() error {
	var templates []surfaceTemplate
	for _, e := range s.Lights {
		tex := e.Surface.Value()
		if tex == "" {
			continue
		}
		templates = append(templates, surfaceTemplate{entity: *e, texture: tex})

		// The template stays in the list as a switch marker but must not
		// cast light itself.
		e.Light.Set(0)

		logger.Info("creating surface lights",
			zap.String("texture", tex),
			zap.String("origin", s.Dicts[e.DictIndex].Get("origin")))
	}
	if len(templates) == 0 {
		return nil
	}

	var dump *os.File
	if path := s.cfg.Surface.DumpFile; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("opening surface light dump file: %w", err)
		}
		defer func() {
			f.Close()
			logger.Info("wrote surface lights", zap.String("path", path))
		}()
		dump = f
	}

	visited := make([]bool, len(s.level.Faces))
	for li := range s.level.Leafs {
		leaf := &s.level.Leafs[li]
		underwater := leaf.Contents != bsp.ContentsEmpty

		for _, facenum := range leaf.MarkSurfaces {
			mi := modelForFace(s.Models, s.level, int(facenum))
			if mi == nil {
				continue
			}
			f := s.level.Face(int(facenum))
			texname := s.level.FaceTextureName(f)

			// Ignore the underwater side of liquid surfaces.
			if strings.HasPrefix(texname, "*") && underwater {
				continue
			}
			if visited[facenum] {
				continue
			}
			visited[facenum] = true

			if err := s.subdivideFaceLights(int(facenum), f, mi, texname, templates, dump); err != nil {
				return err
			}
		}
	}
	return nil
}

// subdivideFaceLights dices one face and drops a clone of each matching
// template on every fragment.
func (s *Synthesizer) subdivideFaceLights(facenum int, f *bsp.Face, mi *ModelInfo, texname string, templates []surfaceTemplate, dump *os.File) error {
	var matched []*surfaceTemplate
	for i := range templates {
		if strings.EqualFold(templates[i].texture, texname) {
			matched = append(matched, &templates[i])
		}
	}
	if len(matched) == 0 {
		return nil
	}

	normal := s.level.FaceNormal(f)
	w := winding.FromPoints(s.level.FacePoints(f))
	err := w.Dice(s.cfg.Surface.SubdivideSize, func(frag winding.Winding) {
		mid := frag.Center()
		for _, tmpl := range matched {
			offset := tmpl.entity.SurfaceOffset.Value()
			if offset == 0 {
				offset = 2
			}
			pos := mid.Add(normal.Mul(offset)).Add(mi.Offset)
			s.createSurfaceLight(pos, normal, tmpl, dump)
		}
	})
	if err != nil {
		return fmt.Errorf("subdividing face %d: %w", facenum, err)
	}
	return nil
}

// createSurfaceLight clones a template at pos, aimed along the face
// normal when the template asks for spotlights.
func (s *Synthesizer) createSurfaceLight(pos, normal vec.Vec3, tmpl *surfaceTemplate, dump *os.File) {
	clone := tmpl.entity
	clone.Origin = pos
	clone.Generated = true
	if clone.SurfaceSpotlight {
		clone.Spotlight = true
		clone.SpotVec = normal
	}
	if dump != nil {
		s.dumpSurfaceLight(dump, &clone, pos)
	}
	s.Lights = append(s.Lights, &clone)
}

// dumpSurfaceLight appends one generated light to the debug map file.
func (s *Synthesizer) dumpSurfaceLight(dump *os.File, e *Entity, pos vec.Vec3) {
	d := s.Dicts[e.DictIndex].Copy()
	d.Remove("_surface")
	d.Set("origin", fmt.Sprintf("%v %v %v", pos[0], pos[1], pos[2]))
	dump.WriteString(bsp.WriteEntities([]bsp.EntityDict{d}))
}
