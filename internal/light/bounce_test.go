package light

import (
	"math"
	"testing"

	"github.com/Faultbox/bsplight/internal/config"
	"github.com/Faultbox/bsplight/pkg/bsp"
	"github.com/Faultbox/bsplight/pkg/vec"
)

// flatSampler reports uniform full-bright direct light on style 0.
func flatSampler(point, normal vec.Vec3) map[int]vec.Vec3 {
	return map[int]vec.Vec3{0: vec.V(255, 255, 255)}
}

func runBouncer(t *testing.T, level *bsp.Level, cfg *config.Config, sample SampleFunc) *Accumulator {
	t.Helper()
	models := []ModelInfo{{Shadow: true}}
	b := NewBouncer(level, cfg, NewGlobals(cfg), models, BuildTextureColors(level), sample, nil)
	if err := b.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	return b.Accumulator()
}

func TestBounceQuadNeutralColor(t *testing.T) {
	level := quadLevel("")
	cfg := config.Default() // color_scale 0: neutral gray blend

	acc := runBouncer(t, level, cfg, flatSampler)
	if got := acc.Len(); got != 1 {
		t.Fatalf("bounce light count = %d, want 1", got)
	}

	l := acc.Lights()[0]
	if l.FaceNum != 0 {
		t.Errorf("FaceNum = %d, want 0", l.FaceNum)
	}
	if l.Area != 64*64 {
		t.Errorf("Area = %v, want 4096", l.Area)
	}
	if l.Pos != vec.V(32, 32, 33) {
		t.Errorf("Pos = %v, want face midpoint lifted one unit", l.Pos)
	}
	if l.SurfNormal != vec.V(0, 0, 1) {
		t.Errorf("SurfNormal = %v, want +Z", l.SurfNormal)
	}
	if len(l.EdgePlanes) != 4 {
		t.Errorf("EdgePlanes count = %d, want 4", len(l.EdgePlanes))
	}

	// Full-bright input against neutral gray: each channel is
	// (255/255) x (127/255).
	want := 127.0 / 255
	c := l.ColorByStyle[0]
	for k := 0; k < 3; k++ {
		if math.Abs(c[k]-want) > 1e-12 {
			t.Errorf("emit channel %d = %v, want %v", k, c[k], want)
		}
	}
	if l.MaxColor != c {
		t.Errorf("MaxColor = %v, want %v", l.MaxColor, c)
	}

	if got := acc.ForFace(0); len(got) != 1 || got[0] != 0 {
		t.Errorf("ForFace(0) = %v, want [0]", got)
	}
}

func TestBounceTextureBlend(t *testing.T) {
	level := quadLevel("")
	cfg := config.Default()
	cfg.Bounce.ColorScale = 1 // pure texture color

	acc := runBouncer(t, level, cfg, flatSampler)
	c := acc.Lights()[0].ColorByStyle[0]

	// The wall texture averages (200,100,0).
	want := vec.V(200.0/255, 100.0/255, 0)
	for k := 0; k < 3; k++ {
		if math.Abs(c[k]-want[k]) > 1e-12 {
			t.Errorf("emit channel %d = %v, want %v", k, c[k], want[k])
		}
	}
}

func TestBounceAreaWeighting(t *testing.T) {
	level := quadLevel("")
	cfg := config.Default()
	cfg.Bounce.PatchSize = 32 // 4 patches per face

	// Light only the x<32 half: half the area at full bright.
	half := func(point, normal vec.Vec3) map[int]vec.Vec3 {
		if point[0] < 32 {
			return map[int]vec.Vec3{0: vec.V(255, 255, 255)}
		}
		return map[int]vec.Vec3{0: {}}
	}

	acc := runBouncer(t, level, cfg, half)
	c := acc.Lights()[0].ColorByStyle[0]
	want := 0.5 * 127.0 / 255
	for k := 0; k < 3; k++ {
		if math.Abs(c[k]-want) > 1e-12 {
			t.Errorf("emit channel %d = %v, want half-area %v", k, c[k], want)
		}
	}
}

func TestBounceSkipsIneligibleFaces(t *testing.T) {
	tests := []struct {
		name  string
		setup func(level *bsp.Level)
	}{
		{"sky texinfo", func(l *bsp.Level) {
			l.TexInfos[0].Flags = bsp.TexSpecial
		}},
		{"skip texture", func(l *bsp.Level) {
			l.Textures[0].Name = "SKIP"
		}},
		{"nobounce flag", func(l *bsp.Level) {
			l.TexInfos[0].NoBounce = true
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := quadLevel("")
			tt.setup(level)

			acc := runBouncer(t, level, config.Default(), flatSampler)
			if got := acc.Len(); got != 0 {
				t.Errorf("bounce light count = %d, want 0", got)
			}
			if got := acc.ForFace(0); got != nil {
				t.Errorf("ForFace(0) = %v, want nil", got)
			}
		})
	}
}

func TestBounceSkipsNonShadowModel(t *testing.T) {
	level := quadLevel("")
	cfg := config.Default()
	models := []ModelInfo{{Shadow: false}}
	b := NewBouncer(level, cfg, NewGlobals(cfg), models, BuildTextureColors(level), flatSampler, nil)
	if err := b.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got := b.Accumulator().Len(); got != 0 {
		t.Errorf("bounce light count = %d, want 0 for non-shadow model", got)
	}
}

func TestBounceInvariants(t *testing.T) {
	level := quadLevel("")
	acc := runBouncer(t, level, config.Default(), flatSampler)

	for _, l := range acc.Lights() {
		if !(l.Area > 0) {
			t.Errorf("face %d area = %v, want > 0", l.FaceNum, l.Area)
		}
		for style, c := range l.ColorByStyle {
			for k := 0; k < 3; k++ {
				if math.IsNaN(c[k]) || c[k] < 0 {
					t.Errorf("face %d style %d channel %d = %v", l.FaceNum, style, k, c[k])
				}
			}
		}
	}
}

func TestBounceVisBounds(t *testing.T) {
	level := quadLevel("")
	cfg := config.Default()
	models := []ModelInfo{{Shadow: true}}
	bounds := func(p vec.Vec3) vec.Vec3 { return vec.V(512, 512, 256) }

	b := NewBouncer(level, cfg, NewGlobals(cfg), models, BuildTextureColors(level), flatSampler, bounds)
	if err := b.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got := b.Accumulator().Lights()[0].Bounds; got != vec.V(512, 512, 256) {
		t.Errorf("Bounds = %v, want the estimator's volume", got)
	}

	cfg.Bounce.VisApprox = false
	b = NewBouncer(level, cfg, NewGlobals(cfg), models, BuildTextureColors(level), flatSampler, bounds)
	if err := b.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if got := b.Accumulator().Lights()[0].Bounds; got != (vec.Vec3{}) {
		t.Errorf("Bounds = %v, want zero with vis approx disabled", got)
	}
}

func TestAccumulatorSortByFace(t *testing.T) {
	a := NewAccumulator()
	a.Add(BounceLight{FaceNum: 5})
	a.Add(BounceLight{FaceNum: 1})
	a.Add(BounceLight{FaceNum: 5})
	a.Add(BounceLight{FaceNum: 0})

	a.SortByFace()

	want := []int{0, 1, 5, 5}
	for i, l := range a.Lights() {
		if l.FaceNum != want[i] {
			t.Errorf("lights[%d].FaceNum = %d, want %d", i, l.FaceNum, want[i])
		}
	}
	if got := a.ForFace(5); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("ForFace(5) = %v, want [2 3]", got)
	}
	if got := a.ForFace(7); got != nil {
		t.Errorf("ForFace(7) = %v, want nil", got)
	}
}

func TestTextureColorFallback(t *testing.T) {
	colors := map[string]vec.Vec3{"wall": vec.V(10, 20, 30)}
	if got := textureColor(colors, "wall"); got != vec.V(10, 20, 30) {
		t.Errorf("textureColor(wall) = %v", got)
	}
	if got := textureColor(colors, "missing"); got != vec.V(127, 127, 127) {
		t.Errorf("textureColor(missing) = %v, want neutral gray", got)
	}
}
