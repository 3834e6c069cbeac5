package decode

import (
	"image"

	"github.com/mezinster/cimbar-go/locate"
)

// WhiteBalance is a Von Kries diagonal correction: each channel is scaled
// independently so that the brightest sample found near a finder (expected
// to be the white ring) maps to 255 (spec §4.F.2 "White balance").
type WhiteBalance struct {
	ScaleR, ScaleG, ScaleB float64
}

// Identity is the no-op correction, used when EnableWhiteBalance is false or
// no trustworthy white sample was found.
var Identity = WhiteBalance{ScaleR: 1, ScaleG: 1, ScaleB: 1}

// ComputeWhiteBalance samples a window around each non-nil finder point,
// takes the per-channel maximum observed (the brightest pixel near a finder
// ring is the best available estimate of the illuminant's white point), and
// derives the diagonal scale that maps that sample to (255,255,255). Returns
// Identity, false if no finder sampled a luma above 30 — too dark to trust
// (spec §4.F.2).
func ComputeWhiteBalance(img *image.RGBA, points []locate.Point, radius int) (WhiteBalance, bool) {
	b := img.Bounds()
	maxR, maxG, maxB := 0, 0, 0
	for _, p := range points {
		cx, cy := int(p.X), int(p.Y)
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				x, y := cx+dx, cy+dy
				if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
					continue
				}
				c := img.RGBAAt(x, y)
				if int(c.R) > maxR {
					maxR = int(c.R)
				}
				if int(c.G) > maxG {
					maxG = int(c.G)
				}
				if int(c.B) > maxB {
					maxB = int(c.B)
				}
			}
		}
	}

	luma := 0.299*float64(maxR) + 0.587*float64(maxG) + 0.114*float64(maxB)
	if luma < 30 {
		return Identity, false
	}

	wb := Identity
	if maxR > 0 {
		wb.ScaleR = 255 / float64(maxR)
	}
	if maxG > 0 {
		wb.ScaleG = 255 / float64(maxG)
	}
	if maxB > 0 {
		wb.ScaleB = 255 / float64(maxB)
	}
	return wb, true
}

// Apply scales (r, g, b) by wb, clamping each channel to [0, 255].
func (wb WhiteBalance) Apply(r, g, b int) (int, int, int) {
	return clampChan(float64(r) * wb.ScaleR), clampChan(float64(g) * wb.ScaleG), clampChan(float64(b) * wb.ScaleB)
}

func clampChan(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}

// NonNilPoints collects whichever of tl, tr, bl, br are non-nil.
func NonNilPoints(tl, tr, bl, br *locate.Point) []locate.Point {
	var out []locate.Point
	for _, p := range []*locate.Point{tl, tr, bl, br} {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
