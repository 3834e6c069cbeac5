// Package locate implements component D: anchor-based detection of CimBar's
// four finder patterns in a photographed frame, by run-length scanning a
// downsampled luma buffer and classifying the surviving candidates by
// orientation.
package locate

import (
	"image"
	"math"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/mezinster/cimbar-go/cerrors"
)

// Point is an (x, y) pixel coordinate in full-resolution image space.
type Point struct{ X, Y float64 }

// BoundingBox is an axis-aligned pixel rectangle.
type BoundingBox struct{ MinX, MinY, MaxX, MaxY int }

// Result is what finder localization hands to the perspective warp stage
// (component E): a cropped working image, its bounding box in the source
// image, whichever finder centers were confidently classified, and an
// estimate of the cell size in source pixels. TL/TR/BL/BR are expressed in
// Cropped's own coordinate space (i.e. already shifted by the crop's
// origin), since Cropped is what the warp/sample stage actually reads.
type Result struct {
	Cropped  *image.RGBA
	BBox     BoundingBox
	TL, TR, BL, BR *Point
	CellSize float64
}

// candidate is a merged run-length hit: its center and the approximate
// finder span (≈3 cells) that produced it.
type candidate struct {
	x, y float64
	span float64
}

// brightThreshold is the luma floor a "bright" run must clear (spec
// §4.D.2). This codec's palette lumas span about 69 (blue) to 198 (yellow):
// every cell color except yellow falls below the threshold, so yellow cells
// count as bright runs.
const brightThreshold = 180.0

// Locate runs the full component-D pipeline against a photographed bitmap
// suspected of containing one CimBar frame.
func Locate(img *image.RGBA) (*Result, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	lumaFull := computeLuma(img)
	lumaHalf, hw, hh := downsample2x(lumaFull, w, h)

	hits := scanRuns(lumaHalf, hw, hh)
	merged := mergeHits(hits, float64(maxInt(w, h))/30.0)

	tl, tr, bl, br := classify(merged, lumaFull, w, h)

	found := countNonNil(tl, tr, bl, br)
	var bbox BoundingBox
	var cellSize float64
	if found >= 2 {
		bbox, cellSize = boundsFromFinders(tl, tr, bl, br, merged)
	} else {
		bb, err := lumaBoundingBox(lumaFull, w, h, 30)
		if err != nil {
			return nil, err
		}
		bbox = bb
		cellSize = float64(bbox.MaxX-bbox.MinX) / 3
	}

	cropped, originX, originY := cropWithPadding(img, bbox, cellSize)
	tl, tr, bl, br = shiftPoint(tl, originX, originY), shiftPoint(tr, originX, originY),
		shiftPoint(bl, originX, originY), shiftPoint(br, originX, originY)
	return &Result{
		Cropped:  cropped,
		BBox:     bbox,
		TL:       tl,
		TR:       tr,
		BL:       bl,
		BR:       br,
		CellSize: cellSize,
	}, nil
}

// shiftPoint translates p from full-image space into Cropped's coordinate
// space, where (originX, originY) is the full-image pixel that became
// Cropped's (0, 0).
func shiftPoint(p *Point, originX, originY int) *Point {
	if p == nil {
		return nil
	}
	return &Point{X: p.X - float64(originX), Y: p.Y - float64(originY)}
}

func countNonNil(pts ...*Point) int {
	n := 0
	for _, p := range pts {
		if p != nil {
			n++
		}
	}
	return n
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func computeLuma(img *image.RGBA) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			out[y*w+x] = 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
		}
	}
	return out
}

func downsample2x(luma []float64, w, h int) ([]float64, int, int) {
	hw, hh := w/2, h/2
	out := make([]float64, hw*hh)
	for y := 0; y < hh; y++ {
		for x := 0; x < hw; x++ {
			sum := luma[(2*y)*w+2*x] + luma[(2*y)*w+2*x+1] + luma[(2*y+1)*w+2*x] + luma[(2*y+1)*w+2*x+1]
			out[y*hw+x] = sum / 4
		}
	}
	return out, hw, hh
}

// scanRuns performs the horizontal bright->dark->bright run scan of spec
// §4.D.2 on every other row, then a vertical confirmation (§4.D.3).
func scanRuns(luma []float64, w, h int) []candidate {
	var hits []candidate
	for y := 0; y < h; y += 2 {
		row := luma[y*w : y*w+w]
		for x := 0; x < w; {
			brightLen1, nx := runLength(row, x, true)
			if brightLen1 == 0 {
				x = nx
				continue
			}
			darkStart := x + brightLen1
			darkLen, nx2 := runLength(row, darkStart, false)
			if darkLen == 0 {
				x = nx2
				continue
			}
			brightStart2 := darkStart + darkLen
			brightLen2, nx3 := runLength(row, brightStart2, true)
			if brightLen2 == 0 {
				x = nx3
				continue
			}
			if withinTolerance(darkLen, brightLen1) && withinTolerance(darkLen, brightLen2) {
				cx := float64(darkStart) + float64(darkLen)/2
				span := float64(darkLen + brightLen1 + brightLen2)
				if confirmVertical(luma, w, h, int(cx), y, span) {
					hits = append(hits, candidate{x: cx, y: float64(y), span: span})
				}
			}
			x = brightStart2
		}
	}
	return hits
}

func withinTolerance(a, b int) bool {
	if a == 0 || b == 0 {
		return false
	}
	ratio := float64(a) / float64(b)
	return ratio > 0.6 && ratio < 1.6
}

// runLength returns the length of a run starting at x whose pixels satisfy
// bright (luma>=brightThreshold) or its complement, and the index to resume
// scanning from.
func runLength(row []float64, x int, bright bool) (length, next int) {
	n := len(row)
	for x < n && classifyPixel(row[x]) != bright {
		x++
	}
	start := x
	for x < n && classifyPixel(row[x]) == bright {
		x++
	}
	return x - start, x
}

func classifyPixel(l float64) bool { return l >= brightThreshold }

func confirmVertical(luma []float64, w, h, cx, cy int, span float64) bool {
	window := int(3 * span)
	if window < 1 {
		window = 1
	}
	yStart := cy - window
	if yStart < 0 {
		yStart = 0
	}
	yEnd := cy + window
	if yEnd >= h {
		yEnd = h - 1
	}
	if cx < 0 || cx >= w {
		return false
	}
	brightAbove, brightBelow := false, false
	for y := yStart; y <= yEnd; y++ {
		bright := classifyPixel(luma[y*w+cx])
		if y < cy && bright {
			brightAbove = true
		}
		if y > cy && bright {
			brightBelow = true
		}
	}
	return brightAbove && brightBelow
}

func mergeHits(hits []candidate, tolerance float64) []candidate {
	if len(hits) == 0 {
		return nil
	}
	slices.SortFunc(hits, func(a, b candidate) int {
		if a.x < b.x {
			return -1
		}
		if a.x > b.x {
			return 1
		}
		return 0
	})

	var merged []candidate
	used := make([]bool, len(hits))
	for i := range hits {
		if used[i] {
			continue
		}
		cluster := []candidate{hits[i]}
		used[i] = true
		for j := i + 1; j < len(hits); j++ {
			if used[j] {
				continue
			}
			if dist(hits[i].x, hits[i].y, hits[j].x, hits[j].y) <= tolerance {
				cluster = append(cluster, hits[j])
				used[j] = true
			}
		}
		merged = append(merged, averageCluster(cluster))
	}
	return merged
}

func dist(x1, y1, x2, y2 float64) float64 {
	dx, dy := x1-x2, y1-y2
	return math.Sqrt(dx*dx + dy*dy)
}

func averageCluster(cluster []candidate) candidate {
	var sx, sy, ss float64
	for _, c := range cluster {
		sx += c.x
		sy += c.y
		ss += c.span
	}
	n := float64(len(cluster))
	return candidate{x: sx / n, y: sy / n, span: ss / n}
}

// classify assigns the surviving (half-resolution) candidates to the four
// finder roles per spec §4.D.5, sampling a 5x5 patch in the full-resolution
// luma (the 2x-downsampled centers are too coarse to tell the asymmetric TL
// apart from the others).
func classify(cands []candidate, lumaFull []float64, w, h int) (tl, tr, bl, br *Point) {
	if len(cands) == 0 {
		return nil, nil, nil, nil
	}
	type scored = struct {
		pt    Point
		patch float64
	}
	var scoredList []scored
	for _, c := range cands {
		fx, fy := c.x*2, c.y*2
		scoredList = append(scoredList, scored{pt: Point{X: fx, Y: fy}, patch: patchLuma(lumaFull, w, h, int(fx), int(fy))})
	}

	sort.Slice(scoredList, func(i, j int) bool { return scoredList[i].patch < scoredList[j].patch })
	tlCandidate := scoredList[0]

	ambiguous := len(scoredList) > 1 && (scoredList[1].patch-scoredList[0].patch) < 20
	if ambiguous {
		return classifyByExtremes(scoredList)
	}

	tlPt := tlCandidate.pt
	rest := make([]scored, 0, len(scoredList)-1)
	for _, s := range scoredList {
		if s.pt != tlPt {
			rest = append(rest, s)
		}
	}
	if len(rest) == 0 {
		return &tlPt, nil, nil, nil
	}

	// BR = farthest from TL.
	brIdx := 0
	brDist := -1.0
	for i, s := range rest {
		d := dist(tlPt.X, tlPt.Y, s.pt.X, s.pt.Y)
		if d > brDist {
			brDist = d
			brIdx = i
		}
	}
	brPt := rest[brIdx].pt
	rest = append(rest[:brIdx], rest[brIdx+1:]...)

	tlRes, trRes, blRes, brRes := &tlPt, (*Point)(nil), (*Point)(nil), &brPt
	for _, s := range rest {
		// Cross product of (BR-TL) x (C-TL); sign assigns TR vs BL under an
		// image-space y-down convention (spec §9 Open Question #4): negative
		// is TR (above the TL-BR diagonal), otherwise BL.
		cross := crossProduct(tlPt, brPt, s.pt)
		if cross < 0 {
			trRes = copyPoint(s.pt)
		} else {
			blRes = copyPoint(s.pt)
		}
	}
	return tlRes, trRes, blRes, brRes
}

func copyPoint(p Point) *Point { return &p }

func crossProduct(tl, br, c Point) float64 {
	ax, ay := br.X-tl.X, br.Y-tl.Y
	bx, by := c.X-tl.X, c.Y-tl.Y
	return ax*by - ay*bx
}

// classifyByExtremes is the fallback of spec §4.D.5: when TL's brightness
// gap to the next-lowest candidate is too small to trust, fall back to
// coordinate extremes (min x+y is TL, max x+y is BR, etc).
func classifyByExtremes(scoredList []struct {
	pt    Point
	patch float64
}) (tl, tr, bl, br *Point) {
	if len(scoredList) == 0 {
		return nil, nil, nil, nil
	}
	byTL := append([]struct {
		pt    Point
		patch float64
	}(nil), scoredList...)
	sort.Slice(byTL, func(i, j int) bool { return byTL[i].pt.X+byTL[i].pt.Y < byTL[j].pt.X+byTL[j].pt.Y })
	tlPt := byTL[0].pt
	brPt := byTL[len(byTL)-1].pt
	tl = &tlPt
	if len(byTL) > 1 {
		br = &brPt
	}
	for _, s := range byTL[1 : len(byTL)-1] {
		if s.pt.X > tlPt.X && s.pt.Y < brPt.Y {
			p := s.pt
			tr = &p
		} else {
			p := s.pt
			bl = &p
		}
	}
	return tl, tr, bl, br
}

func patchLuma(luma []float64, w, h, cx, cy int) float64 {
	var sum float64
	n := 0
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			x, y := cx+dx, cy+dy
			if x < 0 || x >= w || y < 0 || y >= h {
				continue
			}
			sum += luma[y*w+x]
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func boundsFromFinders(tl, tr, bl, br *Point, all []candidate) (BoundingBox, float64) {
	xs := []float64{}
	ys := []float64{}
	for _, p := range []*Point{tl, tr, bl, br} {
		if p != nil {
			xs = append(xs, p.X)
			ys = append(ys, p.Y)
		}
	}
	minX, maxX := minMax(xs)
	minY, maxY := minMax(ys)
	cellSize := 1.0
	if len(all) > 0 {
		cellSize = all[0].span * 2 / 3 // span is in half-resolution pixels
	}
	return BoundingBox{MinX: int(minX), MinY: int(minY), MaxX: int(maxX), MaxY: int(maxY)}, cellSize
}

func minMax(v []float64) (min, max float64) {
	if len(v) == 0 {
		return 0, 0
	}
	min, max = v[0], v[0]
	for _, x := range v[1:] {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}

// lumaBoundingBox is the last-resort fallback: bounding box of pixels with
// luma > 30, used when fewer than two finders were located.
func lumaBoundingBox(luma []float64, w, h int, floor float64) (BoundingBox, error) {
	minX, minY, maxX, maxY := w, h, -1, -1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if luma[y*w+x] > floor {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return BoundingBox{}, cerrors.ErrFinderNotFound
	}
	return BoundingBox{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}, nil
}

// cropWithPadding crops img to bbox expanded by 1.5 cells plus a 2% margin
// (spec §4.D.7), returning the crop along with the full-image pixel that
// became the crop's own (0, 0) origin, so callers can translate other
// full-image coordinates into the crop's space.
func cropWithPadding(img *image.RGBA, bbox BoundingBox, cellSize float64) (out *image.RGBA, originX, originY int) {
	b := img.Bounds()
	pad := 1.5*cellSize + 0.02*float64(maxInt(bbox.MaxX-bbox.MinX, bbox.MaxY-bbox.MinY))
	minX := clampInt(bbox.MinX-int(pad), b.Min.X, b.Max.X)
	minY := clampInt(bbox.MinY-int(pad), b.Min.Y, b.Max.Y)
	maxX := clampInt(bbox.MaxX+int(pad), b.Min.X, b.Max.X)
	maxY := clampInt(bbox.MaxY+int(pad), b.Min.Y, b.Max.Y)
	if maxX <= minX || maxY <= minY {
		return img, b.Min.X, b.Min.Y
	}
	out = image.NewRGBA(image.Rect(0, 0, maxX-minX, maxY-minY))
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			out.SetRGBA(x-minX, y-minY, img.RGBAAt(x, y))
		}
	}
	return out, minX, minY
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
