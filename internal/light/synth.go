package light

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/bsplight/internal/config"
	"github.com/Faultbox/bsplight/internal/logger"
	"github.com/Faultbox/bsplight/pkg/bsp"
	"github.com/Faultbox/bsplight/pkg/vec"
	"go.uber.org/zap"
)

// maxLightTargets caps the number of distinct switchable-light
// targetnames; styles 32..63 are reserved for them.
const maxLightTargets = 32

// Synthesis errors.
var (
	ErrNoWorldspawn      = errors.New("first entity is not worldspawn")
	ErrLightDrift        = errors.New("internal: non-generated light count changed during synthesis")
	ErrEntitiesNotLoaded = errors.New("entities not loaded")
)

// Synthesizer turns the level's entity text into the finished list of
// point, spot, surface and sun light sources. One Synthesizer serves one
// compile run; it carries no state beyond it.
type Synthesizer struct {
	level *bsp.Level
	cfg   *config.Config
	glob  *Globals
	rng   *rand.Rand

	Dicts  []bsp.EntityDict
	Lights []*Entity
	Suns   []Sun
	Models []ModelInfo

	styleNames    []string
	warnedFormula bool
	loaded        bool
}

// NewSynthesizer builds a synthesizer for one compile run. The random
// source is seeded from config so runs are reproducible.
func NewSynthesizer(level *bsp.Level, cfg *config.Config) *Synthesizer {
	return &Synthesizer{
		level: level,
		cfg:   cfg,
		glob:  NewGlobals(cfg),
		rng:   rand.New(rand.NewSource(cfg.Compile.Seed)),
	}
}

// Globals exposes the resolved map-wide settings.
func (s *Synthesizer) Globals() *Globals {
	return s.glob
}

// LoadEntities parses the entity text, normalizes legacy keys, assigns
// switchable styles, applies worldspawn overrides and builds the light
// entity list.
func (s *Synthesizer) LoadEntities() error {
	dicts, err := bsp.ParseEntities(s.level.EntitiesText)
	if err != nil {
		return err
	}
	if len(dicts) == 0 || dicts[0].Get("classname") != "worldspawn" {
		return ErrNoWorldspawn
	}
	s.Dicts = dicts

	for i := range s.Dicts {
		d := &s.Dicts[i]

		// Some editors write lightmap_scale; the engine reads the
		// underscored key.
		if v := d.Get("lightmap_scale"); v != "" {
			logger.Warn("lightmap_scale should be _lightmap_scale",
				zap.Int("entity", i))
			d.Remove("lightmap_scale")
			d.Set("_lightmap_scale", v)
		}

		// Switchable lights get a unique style per targetname, written
		// back so the engine can toggle them.
		if isLightEntity(d.Get("classname")) && d.Get("targetname") != "" && d.Int("style") == 0 {
			style, err := s.styleForTargetname(d.Get("targetname"))
			if err != nil {
				return err
			}
			d.Set("style", fmt.Sprintf("%d", style))
		}

		for _, p := range d.Pairs() {
			d.Set(p.Key, bsp.DecodeEscapes(p.Value))
		}
	}

	s.glob.ApplyWorldspawn(&s.Dicts[0])
	s.Models = BuildModelInfo(s.level, s.Dicts)

	for i := range s.Dicts {
		d := &s.Dicts[i]
		if !isLightEntity(d.Get("classname")) {
			continue
		}
		e := parseEntity(d, s.glob, i)
		if err := s.resolveProjection(e, d); err != nil {
			return err
		}
		if err := s.checkFields(e, d); err != nil {
			return err
		}
		s.Lights = append(s.Lights, e)
	}

	s.loaded = true
	logger.Info("entities loaded",
		zap.Int("entities", len(s.Dicts)),
		zap.Int("lights", len(s.Lights)))
	return nil
}

// resolveProjection binds a projected-texture light to its texture and
// precomputes the projection matrix.
func (s *Synthesizer) resolveProjection(e *Entity, d *bsp.EntityDict) error {
	name := e.ProjTexture.Value()
	if name == "" {
		return nil
	}
	tex := s.level.FindTexture(name)
	if tex == nil {
		logger.Warn("light has nonexistent projected texture",
			zap.String("texture", name),
			zap.String("origin", d.Get("origin")))
		return nil
	}
	e.ProjectedTex = tex

	fov := e.ProjFOV.Value()
	var fovX, fovY float64
	var err error
	if tex.Width > tex.Height {
		fovX = fov
		fovY, err = calcFov(fov, float64(tex.Width), float64(tex.Height))
	} else {
		fovY = fov
		fovX, err = calcFov(fov, float64(tex.Height), float64(tex.Width))
	}
	if err != nil {
		return fmt.Errorf("light at %q: %w", d.Get("origin"), err)
	}
	e.ProjMatrix = projectionMatrix(e.ProjMangle.Value(), e.Origin, fovX, fovY)
	return nil
}

// SetupLights runs the synthesis pipeline: surface lights, jitter
// clones, target matching, spotlight resolution, suns, solid-escape
// nudging and leaf classification, in that order.
func (s *Synthesizer) SetupLights() error {
	if !s.loaded {
		return ErrEntitiesNotLoaded
	}
	logger.Info("setting up lights", zap.Int("count", len(s.Lights)))

	before := s.countNonGenerated()
	if err := s.makeSurfaceLights(); err != nil {
		return err
	}
	s.jitterEntities()
	if after := s.countNonGenerated(); after != before {
		return fmt.Errorf("%w: %d -> %d", ErrLightDrift, before, after)
	}

	s.matchTargets()
	s.setupSpotlights()
	s.setupSuns()
	s.setupSkyDome()
	s.fixLightsOnFaces()
	s.setupLightLeafnums()

	logger.Info("lights ready",
		zap.Int("lights", len(s.Lights)),
		zap.Int("suns", len(s.Suns)))
	return nil
}

// countNonGenerated counts the authored (non-clone) lights.
func (s *Synthesizer) countNonGenerated() int {
	n := 0
	for _, e := range s.Lights {
		if !e.Generated {
			n++
		}
	}
	return n
}

// jitterEntities replaces each light with deviance by a cloud of sample
// clones around its origin. The original stays as sample one.
func (s *Synthesizer) jitterEntities() {
	n := len(s.Lights)
	for i := 0; i < n; i++ {
		e := s.Lights[i]
		dev := e.Deviance.Value()
		for j := 1; j < e.Samples.Value(); j++ {
			clone := *e
			clone.Generated = true
			for k := 0; k < 3; k++ {
				clone.Origin[k] = e.Origin[k] + (s.rng.Float64()*2-1)*dev
			}
			s.Lights = append(s.Lights, &clone)
		}
	}
}

// matchTargets resolves each light's "target" key to the dict index of
// the first entity with a matching targetname.
func (s *Synthesizer) matchTargets() {
	for _, e := range s.Lights {
		target := s.Dicts[e.DictIndex].Get("target")
		if target == "" {
			continue
		}
		found := false
		for i := range s.Dicts {
			if s.Dicts[i].Get("targetname") == target {
				e.TargetEnt = i
				found = true
				break
			}
		}
		if !found && !e.Generated {
			logger.Warn("entity has unmatched target",
				zap.String("classname", s.Dicts[e.DictIndex].Get("classname")),
				zap.String("target", target))
		}
	}
}

// setupSpotlights aims targeted lights at their targets and converts
// cone angles into dot-product falloff thresholds.
func (s *Synthesizer) setupSpotlights() {
	for _, e := range s.Lights {
		if e.TargetEnt >= 0 {
			dest := s.Dicts[e.TargetEnt].Vec3("origin")
			e.SpotVec = dest.Sub(e.Origin).Normalize()
			e.Spotlight = true
		}
		if !e.Spotlight {
			continue
		}
		angle := e.SpotAngle.Value()
		if angle <= 0 {
			angle = 40
		}
		e.SpotFalloff = -math.Cos(mgl64.DegToRad(angle / 2))

		angle2 := e.SpotAngle2.Value()
		if angle2 <= 0 || angle2 > angle {
			angle2 = angle
		}
		e.SpotFalloff2 = -math.Cos(mgl64.DegToRad(angle2 / 2))
	}
}

// fixLightsOnFaces nudges lights that sit inside solid geometry, most
// often from being placed flush against a wall or floor.
func (s *Synthesizer) fixLightsOnFaces() {
	for _, e := range s.Lights {
		if e.Light.Value() != 0 {
			e.Origin = s.nudgePosition(e.Origin)
		}
	}
}

// nudgePosition probes two units along each axis, minus direction first,
// and returns the first position outside solid. An unfixable light is
// left in place with a warning.
func (s *Synthesizer) nudgePosition(p vec.Vec3) vec.Vec3 {
	if !s.level.PointInSolid(p) {
		return p
	}
	for i := 0; i < 6; i++ {
		probe := p
		delta := -2.0
		if i%2 == 1 {
			delta = 2.0
		}
		probe[i/2] += delta
		if !s.level.PointInSolid(probe) {
			return probe
		}
	}
	logger.Warn("light inside solid, could not nudge it out",
		zap.Float64("x", p[0]), zap.Float64("y", p[1]), zap.Float64("z", p[2]))
	return p
}

// setupLightLeafnums records the world leaf containing each light.
func (s *Synthesizer) setupLightLeafnums() {
	for _, e := range s.Lights {
		e.LeafNum = s.level.PointInLeaf(e.Origin)
	}
}

// EntitiesText serializes the corrected entity dicts. Generated lights
// live only in the in-memory list and are never written back.
func (s *Synthesizer) EntitiesText() string {
	return bsp.WriteEntities(s.Dicts)
}
