package frame

import "image/color"

// Colors is the fixed, ordered 8-entry palette CimBar renders cells with.
// Two palette variants exist upstream (spec §9 Open Question #1): a
// "perceptual" one and a "saturated" one. This implementation ships the
// saturated variant and keeps it the only palette — images encoded against
// the other variant will not decode, by design (spec §6 "Palette
// stability").
//
// Every entry is deliberately kept well clear of black: the symbol dots
// painted on top of a cell's fill are pure black (spec §3 "Symbol"), and the
// legacy GIF-path bit threshold (center*0.5+20) only separates a painted dot
// from the surrounding fill when the fill's own luma comfortably exceeds 40
// — see design note on Open Question #5.
var Colors = [8]color.RGBA{
	{R: 230, G: 30, B: 30, A: 255},  // 0 red
	{R: 30, G: 200, B: 30, A: 255},  // 1 green
	{R: 50, G: 50, B: 220, A: 255},  // 2 blue
	{R: 230, G: 140, B: 20, A: 255}, // 3 orange
	{R: 150, G: 30, B: 200, A: 255}, // 4 purple
	{R: 220, G: 220, B: 30, A: 255}, // 5 yellow
	{R: 20, G: 160, B: 160, A: 255}, // 6 teal
	{R: 220, G: 170, B: 30, A: 255}, // 7 amber
}

// FinderWhite and FinderDark are the two tones used by finder patterns: the
// outer ring is white, the center cell is dark gray.
var (
	FinderWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	FinderDark  = color.RGBA{R: 64, G: 64, B: 64, A: 255}
)

// NearestColorRGB finds the palette index minimizing the weighted squared
// distance 2*dR^2 + 4*dG^2 + dB^2 from (r,g,b), the default raw-RGB color
// match mode (spec §4.F.5).
func NearestColorRGB(r, g, b int) int {
	best := 0
	bestDist := -1
	for i, c := range Colors {
		dr := r - int(c.R)
		dg := g - int(c.G)
		db := b - int(c.B)
		dist := 2*dr*dr + 4*dg*dg + db*db
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}
