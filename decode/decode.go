// Package decode implements component F: turning a photographed, possibly
// perspective-distorted CimBar frame into raw bytes. It chains locate and
// warp to produce a canonical frame image, reads cells with either a
// hash-based two-pass symbol detector or a single fixed-threshold pass,
// matches colors under one of three color-distance modes, RS-decodes the
// result, and gates on the outcome (spec §4.F).
package decode

import (
	"image"

	"github.com/mezinster/cimbar-go/cerrors"
	"github.com/mezinster/cimbar-go/frame"
	"github.com/mezinster/cimbar-go/locate"
	"github.com/mezinster/cimbar-go/rs"
	"github.com/mezinster/cimbar-go/tuning"
)

// drift tracks the accumulated, damped sample-offset correction the
// two-pass hash detector builds up as it walks cells in raster order,
// capped at ±15px (spec §4.F.4 "drift tracking").
type drift struct {
	x, y float64
}

const driftCap = 15.0

func (d *drift) update(ddx, ddy int) {
	d.x = clampFloat(d.x+float64(ddx)*0.3, -driftCap, driftCap)
	d.y = clampFloat(d.y+float64(ddy)*0.3, -driftCap, driftCap)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// offsets9 is the 3x3 neighborhood the hash detector probes around a cell's
// drift-corrected anchor.
var offsets9 = [9][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {0, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// hashDetectSymbol finds the best-matching symbol among 9 candidate sample
// positions around (anchorX, anchorY), returning the winning offset so the
// caller can both update drift and reuse the position for color sampling.
func hashDetectSymbol(img *image.RGBA, anchorX, anchorY, size int) (symbolIdx, bestDX, bestDY int) {
	bestDist := 65
	for _, off := range offsets9 {
		x0, y0 := anchorX+off[0], anchorY+off[1]
		h := computeAHash(img, x0, y0, size)
		sym, dist, _ := matchSymbolHash(h)
		if dist < bestDist {
			bestDist = dist
			symbolIdx = sym
			bestDX, bestDY = off[0], off[1]
		}
	}
	return symbolIdx, bestDX, bestDY
}

// decodeCells reads every non-finder cell of a canonical frameSize image and
// packs (colorIdx, symbolIdx) values 7 bits at a time, the camera-path
// counterpart of frame.DecodeFrame.
func decodeCells(img *image.RGBA, frameSize int, cfg tuning.Config, mode ColorMode, wb WhiteBalance) []byte {
	coords := frame.UsableCellCoords(frameSize)
	acc := newBitAccumulator(frame.UsableBits(frameSize))
	d := drift{}

	for _, rc := range coords {
		x0, y0 := rc[0]*frame.CellSize, rc[1]*frame.CellSize
		var symbolIdx, sampleX, sampleY int

		if cfg.UseHashDetection {
			anchorX := x0 + int(d.x)
			anchorY := y0 + int(d.y)
			sym, ddx, ddy := hashDetectSymbol(img, anchorX, anchorY, frame.CellSize)
			d.update(ddx, ddy)
			symbolIdx = sym
			sampleX, sampleY = anchorX+ddx+frame.CellSize/2, anchorY+ddy+frame.CellSize/2
		} else {
			sampleX, sampleY = x0+frame.CellSize/2, y0+frame.CellSize/2
			symbolIdx = thresholdSymbol(img, x0, y0, frame.CellSize, cfg.SymbolThreshold, cfg.QuadrantOffset)
		}

		center := sampleColor(img, sampleX, sampleY)
		r, g, b := wb.Apply(int(center.R), int(center.G), int(center.B))
		colorIdx := MatchColor(mode, r, g, b)

		acc.write7(colorIdx<<4 | symbolIdx)
	}

	return acc.buf[:frame.RawBytesPerFrame(frameSize)]
}

func sampleColor(img *image.RGBA, x, y int) rgbaSample {
	b := img.Bounds()
	if x < b.Min.X || x >= b.Max.X || y < b.Min.Y || y >= b.Max.Y {
		return rgbaSample{}
	}
	c := img.RGBAAt(x, y)
	return rgbaSample{R: c.R, G: c.G, B: c.B}
}

type rgbaSample struct{ R, G, B uint8 }

// thresholdSymbol is the single-pass fixed-threshold detector used when
// UseHashDetection is off: corner bit set when its luma exceeds
// center*threshold (spec §3 tuning table "symbol_threshold"), with corners
// sampled quadrantOffset*size in from the cell edges ("quadrant_offset").
func thresholdSymbol(img *image.RGBA, x0, y0, size int, threshold, quadrantOffset float64) int {
	center := sampleColor(img, x0+size/2, y0+size/2)
	centerLuma := 0.299*float64(center.R) + 0.587*float64(center.G) + 0.114*float64(center.B)
	cutoff := centerLuma * threshold

	q := int(float64(size) * quadrantOffset)
	if q < 1 {
		q = 1
	}
	var symbolIdx int
	corners := [4][3]int{
		{3, q, q},
		{2, size - 1 - q, q},
		{1, q, size - 1 - q},
		{0, size - 1 - q, size - 1 - q},
	}
	for _, c := range corners {
		bit, cx, cy := c[0], c[1], c[2]
		px := sampleColor(img, x0+cx, y0+cy)
		luma := 0.299*float64(px.R) + 0.587*float64(px.G) + 0.114*float64(px.B)
		if luma > cutoff {
			symbolIdx |= 1 << uint(bit)
		}
	}
	return symbolIdx
}

// rsDecodeBlocks de-interleaves raw (the interleaved cell output of a single
// frame) and RS-decodes it block by block, per frame.DecodeFrame's failure policy: a block
// that fails correction contributes all-zero data bytes rather than an
// error.
func rsDecodeBlocks(raw []byte, frameSize int) []byte {
	blockLens, dpf := frame.BlockLayout(frameSize)
	blocks := frame.DeInterleave(raw, blockLens)
	out := make([]byte, 0, dpf)
	for _, blk := range blocks {
		data, err := rs.Decode(blk)
		if err != nil {
			out = append(out, make([]byte, len(blk)-rs.ECC)...)
			continue
		}
		out = append(out, data...)
	}
	return out
}

// qualityGatePasses reports whether decoded's first 64 bytes are not all
// zero, the signature that at least one RS block corrected successfully
// (spec §4.F.6 "Quality gate").
func qualityGatePasses(decoded []byte) bool {
	n := len(decoded)
	if n > 64 {
		n = 64
	}
	for _, b := range decoded[:n] {
		if b != 0 {
			return true
		}
	}
	return n == 0
}

// decodeAtSize runs the full component-F pipeline against a single
// photographed bitmap presumed to hold one CimBar frame at frameSize,
// trying each strategy in strategyChain and, on a first-pass quality-gate
// failure, retrying the same strategy under CIELAB color matching before
// moving to the next strategy (spec §4.F.3, §4.F.6).
func decodeAtSize(bitmap *image.RGBA, frameSize int, cfg tuning.Config) ([]byte, error) {
	if err := frame.ValidateFrameSize(frameSize); err != nil {
		return nil, err
	}
	loc, err := locate.Locate(bitmap)
	if err != nil {
		return nil, err
	}

	wb := Identity
	if cfg.EnableWhiteBalance {
		pts := NonNilPoints(loc.TL, loc.TR, loc.BL, loc.BR)
		if found, ok := ComputeWhiteBalance(loc.Cropped, pts, frame.CellSize); ok {
			wb = found
		}
	}

	for _, try := range defaultStrategies.chain() {
		canonical, err := try(loc.Cropped, loc, frameSize)
		if err != nil {
			continue
		}

		mode := ModeFor(cfg)
		raw := decodeCells(canonical, frameSize, cfg, mode, wb)
		decoded := rsDecodeBlocks(raw, frameSize)
		if qualityGatePasses(decoded) {
			return decoded, nil
		}

		if cfg.EnableLabFailover && mode != ColorLAB {
			raw = decodeCells(canonical, frameSize, cfg, ColorLAB, wb)
			decoded = rsDecodeBlocks(raw, frameSize)
			if qualityGatePasses(decoded) {
				return decoded, nil
			}
		}
	}

	return nil, cerrors.ErrAllStrategiesFailed
}

// DecodeCamera is component F's entry point: a photographed bitmap whose
// frame_size is not known in advance. It tries every supported frame size,
// largest-capacity first, so a true match is found before a smaller size's
// strategy chain happens to pass the quality gate on noise (rare, but
// cheaper to avoid than to debug). Returns the decoded frame's raw bytes
// (still length-prefixed per spec §3 "Payload framing") and the frame size
// that worked, so callers decoding a multi-frame stream can reuse it for
// subsequent frames without re-probing.
func DecodeCamera(bitmap *image.RGBA, cfg tuning.Config) ([]byte, int, error) {
	sizes := append([]int(nil), frame.SupportedSizes[:]...)
	for i, j := 0, len(sizes)-1; i < j; i, j = i+1, j-1 {
		sizes[i], sizes[j] = sizes[j], sizes[i]
	}

	var lastErr error = cerrors.ErrAllStrategiesFailed
	for _, size := range sizes {
		decoded, err := decodeAtSize(bitmap, size, cfg)
		if err != nil {
			lastErr = err
			continue
		}
		return decoded, size, nil
	}
	return nil, 0, lastErr
}

// DecodeCameraAtSize decodes a photographed bitmap already known to hold a
// frameSize frame, skipping the size-probing loop DecodeCamera performs —
// the path a live scan uses once frame-0 has established the stream's size.
func DecodeCameraAtSize(bitmap *image.RGBA, frameSize int, cfg tuning.Config) ([]byte, error) {
	return decodeAtSize(bitmap, frameSize, cfg)
}
