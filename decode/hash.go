package decode

import (
	"image"
	"image/color"
	"math/bits"

	"github.com/mezinster/cimbar-go/frame"
)

// computeAHash is the average-hash of an 8x8 luma patch: bit i is 1 when
// pixel i's luma exceeds the patch mean, packed row-major MSB-first. Because
// the threshold is the patch's own mean rather than a fixed value, the hash
// is invariant to the cell's absolute foreground color — only the dot
// pattern's shape relative to its surroundings matters (spec §4.F.4
// "two-pass").
func computeAHash(img *image.RGBA, x0, y0, size int) uint64 {
	b := img.Bounds()
	lumas := make([]float64, size*size)
	var sum float64
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			x, y := x0+dx, y0+dy
			var c color.RGBA
			if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
				c = img.RGBAAt(x, y)
			}
			l := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			lumas[dy*size+dx] = l
			sum += l
		}
	}
	mean := sum / float64(size*size)

	var h uint64
	for _, l := range lumas {
		h <<= 1
		if l > mean {
			h |= 1
		}
	}
	return h
}

// referenceHashes holds the average hash of each of the 16 symbols, rendered
// once at a fixed foreground color: the hash only encodes the dot pattern's
// shape, so the rendering color is arbitrary.
var referenceHashes = computeReferenceHashes()

func computeReferenceHashes() [16]uint64 {
	var out [16]uint64
	tmp := image.NewRGBA(image.Rect(0, 0, frame.CellSize, frame.CellSize))
	for sym := 0; sym < 16; sym++ {
		frame.DrawCell(tmp, 0, 0, frame.CellSize, 1, sym)
		out[sym] = computeAHash(tmp, 0, 0, frame.CellSize)
	}
	return out
}

func hammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// matchSymbolHash finds the closest reference hash by Hamming distance and
// reports the runner-up's margin (spec §4.F.4). The two-pass detector
// (hashDetectSymbol) picks the offset with the lowest distance and does not
// consult the margin.
func matchSymbolHash(hash uint64) (symbolIdx, distance, margin int) {
	bestIdx, best, second := 0, 65, 65
	for i, ref := range referenceHashes {
		d := hammingDistance(hash, ref)
		if d < best {
			second = best
			best = d
			bestIdx = i
		} else if d < second {
			second = d
		}
	}
	return bestIdx, best, second - best
}
