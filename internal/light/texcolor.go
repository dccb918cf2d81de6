package light

import (
	"github.com/Faultbox/bsplight/internal/logger"
	"github.com/Faultbox/bsplight/pkg/bsp"
	"github.com/Faultbox/bsplight/pkg/vec"
	"go.uber.org/zap"
)

// BuildTextureColors averages every texture with pixel data. Run it
// single-threaded before the parallel bounce phase; the map is read-only
// afterwards and safe to share.
func BuildTextureColors(level *bsp.Level) map[string]vec.Vec3 {
	colors := make(map[string]vec.Vec3)
	for i := range level.Textures {
		t := &level.Textures[i]
		if c, ok := t.AvgColor(); ok {
			colors[t.Name] = c
		}
	}
	logger.Info("texture colors built", zap.Int("textures", len(colors)))
	return colors
}

// textureColor looks up a face texture's average color, falling back to
// neutral gray for textures without pixel data.
func textureColor(colors map[string]vec.Vec3, name string) vec.Vec3 {
	if c, ok := colors[name]; ok {
		return c
	}
	return vec.V(127, 127, 127)
}
