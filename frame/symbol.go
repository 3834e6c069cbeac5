package frame

import (
	"image"
	"image/color"
)

// quadrantOffset and dotHalf compute q and h from spec §3 "Symbol":
// q = max(1, floor(size*0.28)), h = max(1, floor(q*0.75)).
func quadrantOffset(size int) int {
	q := int(float64(size) * 0.28)
	if q < 1 {
		q = 1
	}
	return q
}

func dotHalf(q int) int {
	h := int(float64(q) * 0.75)
	if h < 1 {
		h = 1
	}
	return h
}

// corner identifies which bit of the 4-bit symbol a dot position encodes.
// Bit numbering from spec §3: bit3=TL, bit2=TR, bit1=BL, bit0=BR.
type corner struct {
	bit  uint
	cx   func(size, q int) int
	cy   func(size, q int) int
}

var corners = [4]corner{
	{bit: 3, cx: func(_, q int) int { return q }, cy: func(_, q int) int { return q }},                         // TL
	{bit: 2, cx: func(size, q int) int { return size - 1 - q }, cy: func(_, q int) int { return q }},           // TR
	{bit: 1, cx: func(_, q int) int { return q }, cy: func(size, q int) int { return size - 1 - q }},           // BL
	{bit: 0, cx: func(size, q int) int { return size - 1 - q }, cy: func(size, q int) int { return size - 1 - q }}, // BR
}

// DrawCell renders one cell at top-left pixel (x0, y0): a full-cell fill of
// Colors[colorIdx], then a 2h×2h black square at each corner whose
// corresponding symbol bit is zero. The center pixel is always left as the
// foreground color.
func DrawCell(img *image.RGBA, x0, y0, size, colorIdx, symbolIdx int) {
	fg := Colors[colorIdx&7]
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x0+x, y0+y, fg)
		}
	}

	q := quadrantOffset(size)
	h := dotHalf(q)
	centerX, centerY := size/2, size/2

	for _, c := range corners {
		if symbolIdx&(1<<c.bit) != 0 {
			continue // bit set: foreground dot, nothing to paint
		}
		cx, cy := c.cx(size, q), c.cy(size, q)
		for dy := -h; dy < h; dy++ {
			for dx := -h; dx < h; dx++ {
				px, py := cx+dx, cy+dy
				if px == centerX && py == centerY {
					continue // never overwrite the color sample point
				}
				img.SetRGBA(x0+px, y0+py, color.RGBA{A: 255})
			}
		}
	}
}

// luma is the standard Rec. 601 luma approximation.
func luma(c color.RGBA) float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// lumaAt reads the pixel at (x0+dx, y0+dy) and returns its luma.
func lumaAt(img *image.RGBA, x0, y0, dx, dy int) float64 {
	return luma(img.RGBAAt(x0+dx, y0+dy))
}

// DetectCell is the lossless/GIF-path detector (spec §4.F.4 "single-pass"):
// color from the untouched center pixel, symbol bits from corner luma
// against the legacy threshold center*0.5+20 (spec §3 tuning table; kept
// distinct from the camera-path threshold per design note #5).
func DetectCell(img *image.RGBA, x0, y0, size int) (colorIdx, symbolIdx int) {
	center := img.RGBAAt(x0+size/2, y0+size/2)
	colorIdx = NearestColorRGB(int(center.R), int(center.G), int(center.B))

	centerLuma := luma(center)
	threshold := centerLuma*0.5 + 20

	q := quadrantOffset(size)
	for _, c := range corners {
		cx, cy := c.cx(size, q), c.cy(size, q)
		if lumaAt(img, x0, y0, cx, cy) > threshold {
			symbolIdx |= 1 << c.bit
		}
	}
	return colorIdx, symbolIdx
}
