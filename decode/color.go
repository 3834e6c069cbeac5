package decode

import (
	"math"

	"github.com/mezinster/cimbar-go/frame"
	"github.com/mezinster/cimbar-go/tuning"
)

// ColorMode is the closed variant set of color-matching strategies (spec §9
// "Polymorphism": a tagged sum, not a dynamic-dispatch interface).
type ColorMode int

const (
	ColorRGB ColorMode = iota
	ColorRelative
	ColorLAB
)

// MatchColor dispatches to the palette index nearest (r, g, b) under mode.
func MatchColor(mode ColorMode, r, g, b int) int {
	switch mode {
	case ColorRelative:
		return matchRelative(r, g, b)
	case ColorLAB:
		return matchLAB(r, g, b)
	default:
		return frame.NearestColorRGB(r, g, b)
	}
}

// ModeFor picks the color mode a fresh decode attempt should start with,
// per cfg.UseRelativeColor; LAB is reserved for the quality-gate failover
// (spec §4.F.5-6), never the first attempt.
func ModeFor(cfg tuning.Config) ColorMode {
	if cfg.UseRelativeColor {
		return ColorRelative
	}
	return ColorRGB
}

func maxInt3(a, b, c int) int {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func minInt3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// relativeTriple normalizes a sample to channel-difference coordinates,
// robust to absolute brightness shifts a white-balance pass didn't fully
// correct: channel range is floored at 48 so a near-gray sample (small
// maxChan-minChan) doesn't blow up the normalization (spec §4.F.5
// "Relative").
func relativeTriple(r, g, b int) (dRG, dGB, dBR float64) {
	maxC := maxInt3(r, g, b)
	minC := minInt3(r, g, b)
	rng := maxC - minC
	if rng < 48 {
		rng = 48
	}
	f := float64(rng)
	return float64(r-g) / f, float64(g-b) / f, float64(b-r) / f
}

func matchRelative(r, g, b int) int {
	dRG, dGB, dBR := relativeTriple(r, g, b)
	best, bestDist := 0, math.MaxFloat64
	for i, c := range frame.Colors {
		pRG, pGB, pBR := relativeTriple(int(c.R), int(c.G), int(c.B))
		dist := sq(dRG-pRG) + sq(dGB-pGB) + sq(dBR-pBR)
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

func sq(x float64) float64 { return x * x }

// --- CIELAB (failover only) ---

// labPalette is computed once: the palette colors converted to CIELAB, so
// matchLAB never redoes the sRGB->XYZ->LAB conversion for the palette.
var labPalette = computeLabPalette()

func computeLabPalette() [8][3]float64 {
	var out [8][3]float64
	for i, c := range frame.Colors {
		out[i] = rgbToLab(int(c.R), int(c.G), int(c.B))
	}
	return out
}

func matchLAB(r, g, b int) int {
	lab := rgbToLab(r, g, b)
	best, bestDist := 0, math.MaxFloat64
	for i, p := range labPalette {
		dist := sq(lab[0]-p[0]) + sq(lab[1]-p[1]) + sq(lab[2]-p[2])
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

func srgbToLinear(c float64) float64 {
	c /= 255
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

// rgbToLab converts sRGB [0,255] to CIELAB via linear sRGB -> XYZ(D65) ->
// Lab, the standard pipeline (spec §4.F.5 "LAB").
func rgbToLab(r, g, b int) [3]float64 {
	lr, lg, lb := srgbToLinear(float64(r)), srgbToLinear(float64(g)), srgbToLinear(float64(b))

	x := 0.4124564*lr + 0.3575761*lg + 0.1804375*lb
	y := 0.2126729*lr + 0.7151522*lg + 0.0721750*lb
	z := 0.0193339*lr + 0.1191920*lg + 0.9503041*lb

	const xn, yn, zn = 0.95047, 1.0, 1.08883
	fx, fy, fz := labF(x/xn), labF(y/yn), labF(z/zn)

	l := 116*fy - 16
	a := 500 * (fx - fy)
	bb := 200 * (fy - fz)
	return [3]float64{l, a, bb}
}
