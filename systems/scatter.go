package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"
)

// ScatterMode selects how the scattered light field is distributed.
type ScatterMode uint8

const (
	ScatterUniform ScatterMode = iota // uniform over the viewport
	ScatterSimplex                    // clustered by OpenSimplex noise
	ScatterPerlin                     // clustered by Perlin noise
)

// ParseScatterMode maps a config name to a ScatterMode.
func ParseScatterMode(s string) (ScatterMode, error) {
	switch s {
	case "uniform", "":
		return ScatterUniform, nil
	case "simplex":
		return ScatterSimplex, nil
	case "perlin":
		return ScatterPerlin, nil
	}
	return 0, fmt.Errorf("unknown light scatter %q (want uniform, simplex or perlin)", s)
}

func (m ScatterMode) String() string {
	switch m {
	case ScatterSimplex:
		return "simplex"
	case ScatterPerlin:
		return "perlin"
	default:
		return "uniform"
	}
}

// maxRejections bounds the retries for one noise-shaped sample; after that
// the last candidate is kept so the light count stays exact.
const maxRejections = 32

// Perlin noise parameters: persistence, frequency step, octaves.
const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// LightCount returns the number of scattered lights for a viewport:
// one per areaPerLight square units, rounded down.
func LightCount(vp Viewport, areaPerLight float64) int {
	if !(areaPerLight > 0) {
		return 0
	}
	return int(vp.Area() / areaPerLight)
}

// Scatterer generates the scattered light field.
type Scatterer struct {
	mode    ScatterMode
	scale   float64
	simplex opensimplex.Noise
	perlin  *perlin.Perlin
}

// NewScatterer creates a scatterer. noiseScale converts world units to noise
// coordinates and is ignored in uniform mode.
func NewScatterer(mode ScatterMode, noiseScale float64, seed int64) *Scatterer {
	s := &Scatterer{mode: mode, scale: noiseScale}
	switch mode {
	case ScatterSimplex:
		s.simplex = opensimplex.NewNormalized(seed)
	case ScatterPerlin:
		s.perlin = perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed)
	}
	return s
}

// Mode returns the scatter mode.
func (s *Scatterer) Mode() ScatterMode {
	return s.mode
}

// Scatter returns exactly n unplaced lights inside the viewport.
func (s *Scatterer) Scatter(rng *rand.Rand, vp Viewport, n int) []Light {
	lights := make([]Light, 0, max(n, 0))
	for i := 0; i < n; i++ {
		p := uniformPoint(rng, vp)
		if s.mode != ScatterUniform {
			for try := 0; try < maxRejections && rng.Float64() >= s.density(p); try++ {
				p = uniformPoint(rng, vp)
			}
		}
		lights = append(lights, Light{Position: p})
	}
	return lights
}

// density returns the acceptance probability in [0, 1] at p.
func (s *Scatterer) density(p r2.Vec) float64 {
	x, y := p.X*s.scale, p.Y*s.scale
	switch s.mode {
	case ScatterSimplex:
		return s.simplex.Eval2(x, y)
	case ScatterPerlin:
		// Noise2D is roughly in [-1, 1].
		return math.Max(0, math.Min(1, (s.perlin.Noise2D(x, y)+1)/2))
	default:
		return 1
	}
}

// uniformPoint samples the half-open viewport rectangle.
func uniformPoint(rng *rand.Rand, vp Viewport) r2.Vec {
	return r2.Vec{
		X: (rng.Float64() - 0.5) * vp.Width,
		Y: (rng.Float64() - 0.5) * vp.Height,
	}
}
