package light

import (
	"fmt"

	"github.com/Faultbox/bsplight/pkg/bsp"
	"github.com/Faultbox/bsplight/pkg/vec"
)

// ModelInfo carries the per-brush-model light settings derived from the
// entity list. The world model casts shadows; submodels opt in with the
// "_shadow" key on their entity.
type ModelInfo struct {
	Shadow bool
	Offset vec.Vec3
}

// BuildModelInfo derives model info for every model in the level.
func BuildModelInfo(level *bsp.Level, dicts []bsp.EntityDict) []ModelInfo {
	infos := make([]ModelInfo, len(level.Models))
	if len(infos) > 0 {
		infos[0].Shadow = true
	}

	for i := range dicts {
		ref := dicts[i].Get("model")
		var idx int
		if _, err := fmt.Sscanf(ref, "*%d", &idx); err != nil {
			continue
		}
		if idx <= 0 || idx >= len(infos) {
			continue
		}
		infos[idx].Shadow = dicts[i].Int("_shadow") != 0
		infos[idx].Offset = dicts[i].Vec3("origin")
	}

	return infos
}

// modelForFace returns the info of the model owning the face, or nil for
// a face outside every model's range.
func modelForFace(infos []ModelInfo, level *bsp.Level, faceNum int) *ModelInfo {
	for i := range level.Models {
		m := &level.Models[i]
		if faceNum >= int(m.FirstFace) && faceNum < int(m.FirstFace+m.NumFaces) {
			return &infos[i]
		}
	}
	return nil
}
