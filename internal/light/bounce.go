package light

import (
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Faultbox/bsplight/internal/config"
	"github.com/Faultbox/bsplight/internal/logger"
	"github.com/Faultbox/bsplight/pkg/bsp"
	"github.com/Faultbox/bsplight/pkg/vec"
	"github.com/Faultbox/bsplight/pkg/winding"
	"go.uber.org/zap"
)

// Bouncer converts qualifying faces into single-bounce area lights. Run
// it after the synthesizer and the texture color pass; the direct-light
// sampler must already see the finished light list.
type Bouncer struct {
	level  *bsp.Level
	cfg    *config.Config
	glob   *Globals
	models []ModelInfo
	sample SampleFunc
	bounds BoundsFunc
	colors map[string]vec.Vec3
	acc    *Accumulator
}

// NewBouncer wires a bounce pass. bounds may be nil when the visibility
// approximation is disabled.
func NewBouncer(level *bsp.Level, cfg *config.Config, glob *Globals, models []ModelInfo,
	colors map[string]vec.Vec3, sample SampleFunc, bounds BoundsFunc) *Bouncer {
	return &Bouncer{
		level:  level,
		cfg:    cfg,
		glob:   glob,
		models: models,
		sample: sample,
		bounds: bounds,
		colors: colors,
		acc:    NewAccumulator(),
	}
}

// Accumulator exposes the collected bounce lights.
func (b *Bouncer) Accumulator() *Accumulator {
	return b.acc
}

// Run fans the level's faces out over a worker pool. The first worker
// error aborts the compile; remaining faces are skipped.
func (b *Bouncer) Run() error {
	workers := b.cfg.Compile.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	faces := make(chan int)
	var wg sync.WaitGroup
	var failed atomic.Bool
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range faces {
				if err := b.processFace(i); err != nil {
					failed.Store(true)
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}

	for i := 0; i < len(b.level.Faces) && !failed.Load(); i++ {
		faces <- i
	}
	close(faces)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if b.cfg.Compile.Deterministic {
		b.acc.SortByFace()
	}
	logger.Info("bounce lights created", zap.Int("count", b.acc.Len()))
	return nil
}

// shouldBounce qualifies a face for bounce lighting: it must belong to a
// shadow-casting model, carry a lightmap, and not opt out via the skip
// texture or the no-bounce texinfo flag.
func (b *Bouncer) shouldBounce(facenum int) bool {
	mi := modelForFace(b.models, b.level, facenum)
	if mi == nil || !mi.Shadow {
		return false
	}
	f := b.level.Face(facenum)
	if !b.level.FaceIsLightmapped(f) {
		return false
	}
	if strings.EqualFold(b.level.FaceTextureName(f), "skip") {
		return false
	}
	if ti := b.level.FaceTexInfo(f); ti != nil && ti.NoBounce {
		return false
	}
	return true
}

func (b *Bouncer) processFace(facenum int) error {
	if !b.shouldBounce(facenum) {
		return nil
	}
	f := b.level.Face(facenum)

	w := winding.FromPoints(b.level.FacePoints(f))
	faceArea := w.Area()
	if faceArea == 0 {
		return nil // degenerate
	}
	facePlane := w.Plane()
	midpoint := w.Center().Add(facePlane.Normal)

	var patches []patch
	err := w.Dice(b.cfg.Bounce.PatchSize, func(frag winding.Winding) {
		patches = append(patches, makePatch(frag, facePlane, b.sample))
	})
	if err != nil {
		return fmt.Errorf("dicing face %d: %w", facenum, err)
	}

	// Average the patch samples, area weighted.
	sum := make(map[int]vec.Vec3)
	totalArea := 0.0
	for i := range patches {
		area := patches[i].w.Area()
		totalArea += area
		for style, c := range patches[i].lightByStyle {
			sum[style] = sum[style].Add(c.Mul(area))
		}
	}

	// Tiny faces make for an unstable average.
	if totalArea < 1 {
		return nil
	}
	for style := range sum {
		sum[style] = sum[style].Mul(1 / totalArea)
	}

	// Lerp between neutral gray and the texture color.
	scale := b.glob.BounceColorScale.Value()
	texColor := textureColor(b.colors, b.level.FaceTextureName(f))
	gray := vec.V(127, 127, 127)
	blended := texColor.Mul(scale).Add(gray.Mul(1 - scale))

	emit := make(map[int]vec.Vec3, len(sum))
	var maxColor vec.Vec3
	for style, c := range sum {
		e := vec.MulComponents(c.Mul(1.0/255), blended.Mul(1.0/255))
		for k := 0; k < 3; k++ {
			if math.IsNaN(e[k]) || e[k] < 0 {
				return fmt.Errorf("internal: face %d style %d emits invalid color %v", facenum, style, e)
			}
		}
		emit[style] = e
		maxColor = vec.MaxComponents(maxColor, e)
	}

	l := BounceLight{
		FaceNum:      facenum,
		Poly:         b.level.FacePoints(f),
		EdgePlanes:   b.level.InwardEdgePlanes(f),
		Pos:          midpoint,
		ColorByStyle: emit,
		MaxColor:     maxColor,
		SurfNormal:   facePlane.Normal,
		Area:         faceArea,
	}
	if b.cfg.Bounce.VisApprox && b.bounds != nil {
		l.Bounds = b.bounds(midpoint)
	}
	b.acc.Add(l)
	return nil
}
