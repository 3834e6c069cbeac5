package frame

import (
	"image"

	"github.com/mezinster/cimbar-go/rs"
)

// EncodeFrame renders one dpf-sized chunk into an RGBA bitmap: RS-encode the
// blockLens-defined blocks, byte-stride interleave, pack 7 bits per
// non-finder cell in row-major order, render symbols, render finders.
// chunk must be exactly DataPerFrame(frameSize) bytes (zero-padded by the
// caller if it is the final, short chunk).
func EncodeFrame(chunk []byte, frameSize int) *image.RGBA {
	blockLens, _ := BlockLayout(frameSize)

	codewords := make([][]byte, len(blockLens))
	offset := 0
	for i, l := range blockLens {
		dataLen := l - rs.ECC
		message := chunk[offset : offset+dataLen]
		offset += dataLen
		codewords[i] = rs.EncodeBlock(message)
	}

	raw := Interleave(codewords)

	cols, rows := Grid(frameSize)
	img := image.NewRGBA(image.Rect(0, 0, cols*CellSize, rows*CellSize))

	coords := UsableCellCoords(frameSize)
	for idx, rc := range coords {
		v := read7(raw, idx*7)
		colorIdx, symbolIdx := v>>4, v&0xF
		DrawCell(img, rc[0]*CellSize, rc[1]*CellSize, CellSize, colorIdx, symbolIdx)
	}
	DrawFinders(img, frameSize)
	return img
}

// DecodeFrame is the exact inverse of EncodeFrame: sample one color and one
// symbol per non-finder cell, clamp the ceil-sized cell read to
// RawBytesPerFrame (design note #3), de-interleave, and RS-decode every
// block. A block that fails correction contributes data bytes that are all
// zero (spec §4.B "Failure policy"), and its error is swallowed here — the
// frame-level quality gate (component F) is what acts on an all-zero
// outcome.
func DecodeFrame(img *image.RGBA, frameSize int) []byte {
	coords := UsableCellCoords(frameSize)
	acc := newBitAccumulator(UsableBits(frameSize))
	for _, rc := range coords {
		colorIdx, symbolIdx := DetectCell(img, rc[0]*CellSize, rc[1]*CellSize, CellSize)
		acc.write7(colorIdx<<4 | symbolIdx)
	}

	raw := acc.buf[:RawBytesPerFrame(frameSize)]

	blockLens, dpf := BlockLayout(frameSize)
	blocks := DeInterleave(raw, blockLens)

	out := make([]byte, 0, dpf)
	for _, b := range blocks {
		data, err := rs.Decode(b)
		if err != nil {
			out = append(out, make([]byte, len(b)-rs.ECC)...)
			continue
		}
		out = append(out, data...)
	}
	return out
}
