package light

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/bsplight/internal/config"
	"github.com/Faultbox/bsplight/internal/logger"
	"github.com/Faultbox/bsplight/pkg/bsp"
	"github.com/Faultbox/bsplight/pkg/vec"
	"go.uber.org/zap"
)

// DefaultLightLevel is the intensity of a light entity that does not set
// one.
const DefaultLightLevel = 300

// Entity validation errors.
var (
	ErrBadLightStyle  = errors.New("bad light style (must be 0-254)")
	ErrTooManyTargets = errors.New("too many unique light targetnames")
)

// Falloff selects the distance attenuation formula of a light.
type Falloff int

// Falloff formula ids, as authored in the "delay" key.
const (
	FalloffLinear Falloff = iota
	FalloffInverse
	FalloffInverse2
	FalloffInfinite
	FalloffLocalMin
	FalloffInverse2A
	falloffCount
)

// Entity is one light-emitting placement, parsed from an entity dict and
// finalized by the synthesis pipeline.
type Entity struct {
	Origin vec.Vec3

	Light      FloatOpt // intensity
	Atten      FloatOpt
	Formula    IntOpt
	Color      Vec3Opt
	AngleScale FloatOpt
	Style      IntOpt
	Deviance   FloatOpt
	Samples    IntOpt
	Dirt       IntOpt

	Spotlight    bool
	SpotVec      vec.Vec3
	SpotAngle    FloatOpt
	SpotAngle2   FloatOpt
	SpotFalloff  float64
	SpotFalloff2 float64

	Surface          StringOpt
	SurfaceOffset    FloatOpt
	SurfaceSpotlight bool

	ProjTexture StringOpt
	ProjMangle  Vec3Opt
	ProjFOV     FloatOpt

	// ProjectedTex and ProjMatrix are resolved at load when ProjTexture
	// names a texture present in the level.
	ProjectedTex *bsp.Texture
	ProjMatrix   mgl64.Mat4

	// Generated clones (jitter samples, surface lights) are never
	// written back into the level's entity text.
	Generated bool

	// DictIndex points at the source dict; TargetEnt at the matched
	// target's dict, or -1.
	DictIndex int
	TargetEnt int

	// LeafNum is the containing world leaf, resolved last.
	LeafNum int
}

// Globals are the map-wide light settings, seeded from compiler config
// and overridden by worldspawn keys.
type Globals struct {
	AngleScale       FloatOpt
	GlobalDirt       bool
	BounceColorScale FloatOpt

	Sunlight      FloatOpt
	SunlightColor Vec3Opt
	SunVec        Vec3Opt // direction of light travel
	SunDeviance   FloatOpt
	SunlightDirt  IntOpt

	Sun2      FloatOpt
	Sun2Color Vec3Opt
	Sun2Vec   Vec3Opt

	Sunlight2      FloatOpt
	Sunlight2Color Vec3Opt
	Sunlight3      FloatOpt
	Sunlight3Color Vec3Opt
	Sunlight2Dirt  IntOpt

	SunSamples  int
	AddMinLight bool
}

// NewGlobals builds the map-wide settings from compiler config.
func NewGlobals(cfg *config.Config) *Globals {
	white := vec.V(255, 255, 255)
	return &Globals{
		AngleScale:       Float(cfg.Sun.AngleScale),
		BounceColorScale: Float(cfg.Bounce.ColorScale),
		Sunlight:         Float(0),
		SunlightColor:    Vec(white),
		SunVec:           Vec(vec.V(0, 0, -1)),
		SunDeviance:      Float(0),
		SunlightDirt:     Int(0),
		Sun2:             Float(0),
		Sun2Color:        Vec(white),
		Sun2Vec:          Vec(vec.V(0, 0, -1)),
		Sunlight2:        Float(0),
		Sunlight2Color:   Vec(white),
		Sunlight3:        Float(0),
		Sunlight3Color:   Vec(white),
		Sunlight2Dirt:    Int(0),
		SunSamples:       cfg.Sun.Samples,
		AddMinLight:      cfg.Sun.AddMinLight,
	}
}

// ApplyWorldspawn overrides global settings from worldspawn keys.
func (g *Globals) ApplyWorldspawn(d *bsp.EntityDict) {
	for _, p := range d.Pairs() {
		switch p.Key {
		case "_anglescale", "_anglesense":
			g.AngleScale.Set(d.Float(p.Key))
		case "_dirt":
			g.GlobalDirt = d.Int(p.Key) > 0
		case "_bouncecolorscale":
			g.BounceColorScale.Set(d.Float(p.Key))
		case "_sunlight":
			g.Sunlight.Set(d.Float(p.Key))
		case "_sunlight_color":
			g.SunlightColor.Set(vec.NormalizeColorFormat(d.Vec3(p.Key)))
		case "_sunlight_mangle", "_sun_mangle":
			// The mangle points at the sun; light travels the other way.
			g.SunVec.Set(vec.FromMangle(d.Vec3(p.Key)).Mul(-1))
		case "_sunlight_penumbra":
			g.SunDeviance.Set(d.Float(p.Key))
		case "_sunlight_dirt":
			g.SunlightDirt.Set(d.Int(p.Key))
		case "_sun2":
			g.Sun2.Set(d.Float(p.Key))
		case "_sun2_color":
			g.Sun2Color.Set(vec.NormalizeColorFormat(d.Vec3(p.Key)))
		case "_sun2_mangle":
			g.Sun2Vec.Set(vec.FromMangle(d.Vec3(p.Key)).Mul(-1))
		case "_sunlight2":
			g.Sunlight2.Set(d.Float(p.Key))
		case "_sunlight2_color":
			g.Sunlight2Color.Set(vec.NormalizeColorFormat(d.Vec3(p.Key)))
		case "_sunlight3":
			g.Sunlight3.Set(d.Float(p.Key))
		case "_sunlight3_color":
			g.Sunlight3Color.Set(vec.NormalizeColorFormat(d.Vec3(p.Key)))
		case "_sunlight2_dirt":
			g.Sunlight2Dirt.Set(d.Int(p.Key))
		}
	}
}

// newEntity builds a light entity with defaults wired to the globals.
func newEntity(g *Globals, dictIndex int) *Entity {
	return &Entity{
		Light:         Float(DefaultLightLevel),
		Atten:         Float(1),
		Formula:       Int(int(FalloffLinear)),
		Color:         Vec(vec.V(255, 255, 255)),
		AngleScale:    Float(g.AngleScale.Value()),
		Style:         Int(0),
		Deviance:      Float(0),
		Samples:       Int(0),
		Dirt:          Int(0),
		SpotAngle:     Float(0),
		SpotAngle2:    Float(0),
		Surface:       Str(""),
		SurfaceOffset: Float(2),
		ProjTexture:   Str(""),
		ProjMangle:    Vec(vec.Vec3{}),
		ProjFOV:       Float(90),
		DictIndex:     dictIndex,
		TargetEnt:     -1,
		LeafNum:       -1,
	}
}

// parseEntity reads the authored keys of a light entity dict.
func parseEntity(d *bsp.EntityDict, g *Globals, dictIndex int) *Entity {
	e := newEntity(g, dictIndex)
	e.Origin = d.Vec3("origin")

	for _, p := range d.Pairs() {
		switch p.Key {
		case "light":
			e.Light.Set(d.Float(p.Key))
		case "wait":
			e.Atten.Set(d.Float(p.Key))
		case "delay":
			e.Formula.Set(d.Int(p.Key))
		case "_color", "color":
			e.Color.Set(vec.NormalizeColorFormat(d.Vec3(p.Key)))
		case "_anglescale", "_anglesense":
			e.AngleScale.Set(d.Float(p.Key))
		case "style":
			e.Style.Set(d.Int(p.Key))
		case "_deviance":
			e.Deviance.Set(d.Float(p.Key))
		case "_samples":
			e.Samples.Set(d.Int(p.Key))
		case "_dirt":
			e.Dirt.Set(d.Int(p.Key))
		case "angle":
			e.SpotAngle.Set(d.Float(p.Key))
		case "_softangle":
			e.SpotAngle2.Set(d.Float(p.Key))
		case "_surface":
			e.Surface.Set(p.Value)
		case "_surface_offset":
			e.SurfaceOffset.Set(d.Float(p.Key))
		case "_surface_spotlight":
			e.SurfaceSpotlight = d.Int(p.Key) != 0
		case "_project_texture":
			e.ProjTexture.Set(p.Value)
		case "_project_mangle":
			e.ProjMangle.Set(d.Vec3(p.Key))
		case "_project_fov":
			e.ProjFOV.Set(d.Float(p.Key))
		}
	}

	if d.Has("mangle") {
		e.SpotVec = vec.FromMangle(d.Vec3("mangle"))
		e.Spotlight = true
		if !e.ProjMangle.IsSet() {
			e.ProjMangle.Set(d.Vec3("mangle"))
		}
	}

	return e
}

// checkFields normalizes authored values and rejects the invalid ones.
// Out-of-range light styles abort the compile; everything else falls
// back to a usable default, with at most one warning per run for unknown
// falloff formulas.
func (s *Synthesizer) checkFields(e *Entity, d *bsp.EntityDict) error {
	if e.Light.Value() == 0 {
		e.Light.Set(DefaultLightLevel)
	}
	if e.Atten.Value() <= 0 {
		e.Atten.Set(1)
	}
	if as := e.AngleScale.Value(); as < 0 || as > 1 {
		e.AngleScale.Set(s.glob.AngleScale.Value())
	}

	formula := Falloff(e.Formula.Value())
	if formula < FalloffLinear || formula >= falloffCount {
		if !s.warnedFormula {
			s.warnedFormula = true
			logger.Warn("unknown formula number in delay field, using linear",
				zap.Int("formula", e.Formula.Value()),
				zap.String("classname", d.Get("classname")),
				zap.String("origin", d.Get("origin")))
		}
		e.Formula.Set(int(FalloffLinear))
		formula = FalloffLinear
	}

	// Deviance and samples come as a pair.
	if e.Deviance.Value() > 0 && e.Samples.Value() == 0 {
		e.Samples.Set(16)
	}
	if e.Deviance.Value() <= 0 || e.Samples.Value() <= 1 {
		e.Deviance.Set(0)
		e.Samples.Set(1)
	}

	// Jittered lights split their brightness across the samples for the
	// formulas whose contributions add up.
	switch {
	case formula == FalloffInverse, formula == FalloffInverse2,
		formula == FalloffInfinite, formula == FalloffInverse2A,
		formula == FalloffLocalMin && s.glob.AddMinLight:
		e.Light.Set(e.Light.Value() / float64(e.Samples.Value()))
	}

	if st := e.Style.Value(); st < 0 || st > 254 {
		return fmt.Errorf("%w: %d", ErrBadLightStyle, st)
	}

	return nil
}

// styleForTargetname allocates a switchable light style (32 and up) for
// a targetname, reusing the style of an already-seen name.
func (s *Synthesizer) styleForTargetname(targetname string) (int, error) {
	for i, name := range s.styleNames {
		if name == targetname {
			return 32 + i, nil
		}
	}
	if len(s.styleNames) == maxLightTargets {
		return 0, ErrTooManyTargets
	}
	s.styleNames = append(s.styleNames, targetname)
	return 32 + len(s.styleNames) - 1, nil
}

// isLightEntity reports whether a classname describes a light.
func isLightEntity(classname string) bool {
	return strings.HasPrefix(classname, "light")
}
