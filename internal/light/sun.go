package light

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/bsplight/internal/logger"
	"github.com/Faultbox/bsplight/pkg/vec"
	"go.uber.org/zap"
)

// sunDistance puts sun sources far enough outside any map that their
// rays arrive effectively parallel.
const sunDistance = 16384

// Sun is one directional light source. Vec points from the map toward
// the source position.
type Sun struct {
	Vec        vec.Vec3
	Light      float64
	Color      vec.Vec3
	AngleScale float64
	Dirt       bool
}

// addSun appends a sun shining along dir. dirtFlag is the per-sun
// tri-state: 0 follows the global setting, 1 forces dirt on, -1 off.
func (s *Synthesizer) addSun(dir vec.Vec3, intensity float64, color vec.Vec3, dirtFlag int) {
	dirt := s.glob.GlobalDirt
	switch dirtFlag {
	case 1:
		dirt = true
	case -1:
		dirt = false
	}
	s.Suns = append(s.Suns, Sun{
		Vec:        dir.Normalize().Mul(-sunDistance),
		Light:      intensity,
		Color:      color,
		AngleScale: s.glob.AngleScale.Value(),
		Dirt:       dirt,
	})
}

// setupSuns builds the primary sun, split into penumbra samples when a
// deviance is set, plus the optional second sun.
func (s *Synthesizer) setupSuns() {
	s.setupSun(s.glob.Sunlight.Value(), s.glob.SunlightColor.Value(), s.glob.SunVec.Value())
	if s.glob.Sun2.Value() != 0 {
		logger.Info("creating second sun")
		s.setupSun(s.glob.Sun2.Value(), s.glob.Sun2Color.Value(), s.glob.Sun2Vec.Value())
	}
}

func (s *Synthesizer) setupSun(intensity float64, color, dir vec.Vec3) {
	samples := s.glob.SunSamples
	deviance := s.glob.SunDeviance.Value()
	if deviance == 0 {
		samples = 1
	} else {
		logger.Info("using sun penumbra",
			zap.Float64("degrees", deviance),
			zap.Int("samples", samples))
	}

	dir = dir.Normalize()
	intensity /= float64(samples)
	devRad := mgl64.DegToRad(deviance)

	for i := 0; i < samples; i++ {
		direction := dir
		if i > 0 {
			// Jitter the direction in spherical coordinates, rejection
			// sampling a disc of radius deviance.
			flat := math.Sqrt(dir[0]*dir[0] + dir[1]*dir[1])
			angle := math.Atan2(dir[1], dir[0])
			elevation := math.Atan2(dir[2], flat)

			var da, de float64
			for {
				da = (s.rng.Float64()*2 - 1) * devRad
				de = (s.rng.Float64()*2 - 1) * devRad
				if da*da+de*de <= devRad*devRad {
					break
				}
			}
			angle += da
			elevation += de

			direction = vec.V(
				math.Cos(angle)*math.Cos(elevation),
				math.Sin(angle)*math.Cos(elevation),
				math.Sin(elevation))
		}
		s.addSun(direction, intensity, color, s.glob.SunlightDirt.Value())
	}
}

// setupSkyDome surrounds the map with a dome of dim suns to fake sky
// ambience: sunlight2 fills from the upper hemisphere, sunlight3 from
// the lower.
func (s *Synthesizer) setupSkyDome() {
	upper := s.glob.Sunlight2.Value()
	lower := s.glob.Sunlight3.Value()
	if upper <= 0 && lower <= 0 {
		return
	}

	iterations := int(math.Round(math.Sqrt(float64(s.glob.SunSamples-1)/4))) + 1
	if iterations < 2 {
		iterations = 2
	}
	elevationSteps := iterations - 1
	angleSteps := elevationSteps * 4
	elevationStep := mgl64.DegToRad(90 / float64(elevationSteps+1))
	angleStep := mgl64.DegToRad(360 / float64(angleSteps))

	// One extra for the vertical sun.
	numSuns := angleSteps*elevationSteps + 1
	upperPer := upper / float64(numSuns)
	lowerPer := lower / float64(numSuns)

	elevation := elevationStep * 0.5
	angle := 0.0
	for i := 0; i < elevationSteps; i++ {
		for j := 0; j < angleSteps; j++ {
			dir := vec.V(
				math.Cos(angle)*math.Cos(elevation),
				math.Sin(angle)*math.Cos(elevation),
				-math.Sin(elevation))
			if upperPer > 0 {
				s.addSun(dir, upperPer, s.glob.Sunlight2Color.Value(), s.glob.Sunlight2Dirt.Value())
			}
			if lowerPer > 0 {
				dir[2] = -dir[2]
				s.addSun(dir, lowerPer, s.glob.Sunlight3Color.Value(), s.glob.Sunlight2Dirt.Value())
			}
			angle += angleStep
		}
		elevation += elevationStep
		// Stagger each ring so the suns do not line up in columns.
		angle += angleStep / float64(elevationSteps)
	}

	// The vertical suns, travelling straight down and straight up.
	if upperPer > 0 {
		s.addSun(vec.V(0, 0, -1), upperPer, s.glob.Sunlight2Color.Value(), s.glob.Sunlight2Dirt.Value())
	}
	if lowerPer > 0 {
		s.addSun(vec.V(0, 0, 1), lowerPer, s.glob.Sunlight3Color.Value(), s.glob.Sunlight2Dirt.Value())
	}

	logger.Info("sky dome suns created",
		zap.Int("perHemisphere", numSuns),
		zap.Float64("sunlight2", upper),
		zap.Float64("sunlight3", lower))
}
