package frame

import "image"

// FinderCorner identifies one of the frame's four 3x3-cell finder patterns.
type FinderCorner int

const (
	TL FinderCorner = iota
	TR
	BL
	BR
)

// finderOrigin returns the (col, row) of a finder's top-left cell.
func finderOrigin(corner FinderCorner, cols, rows int) (col, row int) {
	switch corner {
	case TL:
		return 0, 0
	case TR:
		return cols - 3, 0
	case BL:
		return 0, rows - 3
	default: // BR
		return cols - 3, rows - 3
	}
}

// hasInnerDot reports whether a corner's finder pattern carries the small
// white inner dot. Only TL omits it, making it asymmetric and therefore
// orientation-distinguishing (spec §4.A "Finder pattern").
func hasInnerDot(corner FinderCorner) bool {
	return corner != TL
}

// DrawFinders renders all four finder patterns onto img for the given
// frame_size.
func DrawFinders(img *image.RGBA, frameSize int) {
	cols, rows := Grid(frameSize)
	for _, corner := range []FinderCorner{TL, TR, BL, BR} {
		drawFinder(img, corner, cols, rows)
	}
}

func drawFinder(img *image.RGBA, corner FinderCorner, cols, rows int) {
	col, row := finderOrigin(corner, cols, rows)
	x0, y0 := col*CellSize, row*CellSize

	for dy := 0; dy < 3*CellSize; dy++ {
		for dx := 0; dx < 3*CellSize; dx++ {
			img.SetRGBA(x0+dx, y0+dy, FinderWhite)
		}
	}

	centerX, centerY := x0+CellSize, y0+CellSize
	for dy := 0; dy < CellSize; dy++ {
		for dx := 0; dx < CellSize; dx++ {
			img.SetRGBA(centerX+dx, centerY+dy, FinderDark)
		}
	}

	if !hasInnerDot(corner) {
		return
	}
	dot := CellSize / 2
	inset := (CellSize - dot) / 2
	for dy := 0; dy < dot; dy++ {
		for dx := 0; dx < dot; dx++ {
			img.SetRGBA(centerX+inset+dx, centerY+inset+dy, FinderWhite)
		}
	}
}
