// Package frame implements the CimBar frame codec: cell geometry, finder
// patterns, symbol rendering/detection, Reed-Solomon block layout with
// byte-stride interleaving, and the top-level Encode/Decode entry points
// that turn an already-encrypted byte stream into RGBA bitmaps and back.
package frame

import "github.com/mezinster/cimbar-go/cerrors"

// CellSize is the pixel width/height of one cell.
const CellSize = 8

// FinderCells is the number of cells occupied by the four 3x3 finder
// patterns (4 * 9).
const FinderCells = 36

// SupportedSizes are the only accepted frame_size values (spec §6).
var SupportedSizes = [4]int{128, 192, 256, 384}

// ValidateFrameSize returns cerrors.ErrUnsupportedFrameSize unless size is
// one of the wire-format constants.
func ValidateFrameSize(size int) error {
	for _, s := range SupportedSizes {
		if s == size {
			return nil
		}
	}
	return cerrors.ErrUnsupportedFrameSize
}

// Grid returns the column/row count of a frame_size's cell grid.
func Grid(frameSize int) (cols, rows int) {
	n := frameSize / CellSize
	return n, n
}

// UsableCells returns the number of non-finder cells in a frame.
func UsableCells(frameSize int) int {
	cols, rows := Grid(frameSize)
	return cols*rows - FinderCells
}

// UsableBits returns 7*UsableCells(frameSize), the total bit capacity of the
// cell grid.
func UsableBits(frameSize int) int {
	return UsableCells(frameSize) * 7
}

// RawBytesPerFrame is `raw` from spec §3: floor(usableCells*7/8). This is
// the byte count the RS block layout operates on, deliberately the floor
// (see design note: decode must clamp to this value explicitly rather than
// use the ceil a direct bit-pack of all cells would produce).
func RawBytesPerFrame(frameSize int) int {
	return UsableBits(frameSize) / 8
}

// ceilBytesPerFrame is the number of bytes a full cell-by-cell bit read
// naturally produces (spec design note #3); decode must truncate to
// RawBytesPerFrame before slicing RS blocks.
func ceilBytesPerFrame(frameSize int) int {
	bits := UsableBits(frameSize)
	return (bits + 7) / 8
}

// IsFinderCell reports whether grid cell (col, row) belongs to one of the
// four 3x3 corner finder patterns.
func IsFinderCell(col, row, cols, rows int) bool {
	inCornerBand := func(v, limit int) bool { return v < 3 || v >= limit-3 }
	colBand := inCornerBand(col, cols)
	rowBand := inCornerBand(row, rows)
	if !colBand || !rowBand {
		return false
	}
	// Only the four 3x3 corners qualify, not every cell that is merely in
	// one of the corner bands along a single axis combined arbitrarily —
	// col<3 && row<3 is TL, col>=cols-3 && row<3 is TR, etc. Since both
	// colBand and rowBand are true here, (col,row) is necessarily in one of
	// the four corners.
	return true
}

// UsableCellCoords returns the row-major sequence of non-finder (col, row)
// grid cells, the iteration order spec §3 "Cell raster" specifies for both
// encode and decode.
func UsableCellCoords(frameSize int) [][2]int {
	cols, rows := Grid(frameSize)
	coords := make([][2]int, 0, UsableCells(frameSize))
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if IsFinderCell(col, row, cols, rows) {
				continue
			}
			coords = append(coords, [2]int{col, row})
		}
	}
	return coords
}
