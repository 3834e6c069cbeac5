package decode

import (
	"image"
	"sync"

	"github.com/mezinster/cimbar-go/cerrors"
	"github.com/mezinster/cimbar-go/frame"
	"github.com/mezinster/cimbar-go/locate"
	"github.com/mezinster/cimbar-go/warp"
)

// canonicalFinderCenters returns the pixel position a finder's dark center
// cell occupies in a frameSize canonical image, for each of the four
// corners (spec §4.A "Finder pattern": the center cell sits one cell in from
// each edge of the 3x3 pattern).
func canonicalFinderCenters(frameSize int) (tl, tr, bl, br locate.Point) {
	n := float64(frameSize)
	c := 1.5 * float64(frame.CellSize)
	return locate.Point{X: c, Y: c},
		locate.Point{X: n - c, Y: c},
		locate.Point{X: c, Y: n - c},
		locate.Point{X: n - c, Y: n - c}
}

// strategy renders a frameSize x frameSize canonical image from src given
// the located finders, or reports it cannot (spec §4.F.3 "strategy chain").
type strategy func(src *image.RGBA, loc *locate.Result, frameSize int) (*image.RGBA, error)

// fourPointWarpStrategy requires all four finders: a full homography via
// Solve4Point, inverted for sampling.
func fourPointWarpStrategy(src *image.RGBA, loc *locate.Result, frameSize int) (*image.RGBA, error) {
	if loc.TL == nil || loc.TR == nil || loc.BL == nil || loc.BR == nil {
		return nil, cerrors.ErrFinderNotFound
	}
	dtl, dtr, dbl, dbr := canonicalFinderCenters(frameSize)
	h, err := warp.Solve4Point(
		[4]locate.Point{*loc.TL, *loc.TR, *loc.BL, *loc.BR},
		[4]locate.Point{dtl, dtr, dbl, dbr},
	)
	if err != nil {
		return nil, err
	}
	inv, err := warp.Invert(h)
	if err != nil {
		return nil, err
	}
	return warp.Sample(src, inv, frameSize), nil
}

// twoPointWarpStrategy falls back to the TL/BR diagonal when fewer than four
// finders were located.
func twoPointWarpStrategy(src *image.RGBA, loc *locate.Result, frameSize int) (*image.RGBA, error) {
	if loc.TL == nil || loc.BR == nil {
		return nil, cerrors.ErrFinderNotFound
	}
	inv, err := warp.Solve2Point(*loc.TL, *loc.BR, float64(frameSize))
	if err != nil {
		return nil, err
	}
	return warp.Sample(src, inv, frameSize), nil
}

// cropResizeStrategy is the last-resort fallback: no perspective correction,
// just a nearest-neighbor resize of the already-cropped working image.
func cropResizeStrategy(src *image.RGBA, loc *locate.Result, frameSize int) (*image.RGBA, error) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, cerrors.ErrWarpDegenerate
	}
	out := image.NewRGBA(image.Rect(0, 0, frameSize, frameSize))
	for dy := 0; dy < frameSize; dy++ {
		sy := b.Min.Y + dy*h/frameSize
		for dx := 0; dx < frameSize; dx++ {
			sx := b.Min.X + dx*w/frameSize
			out.SetRGBA(dx, dy, src.RGBAAt(sx, sy))
		}
	}
	return out, nil
}

// strategyRegistry is a named, ordered set of strategies, guarded the same
// way a codec registry guards its codec map: an RWMutex around a plain map,
// with a separate slice recording registration order since the chain must
// be tried most-information-first.
type strategyRegistry struct {
	mu     sync.RWMutex
	byName map[string]strategy
	order  []string
}

func newStrategyRegistry() *strategyRegistry {
	return &strategyRegistry{byName: make(map[string]strategy)}
}

func (r *strategyRegistry) register(name string, s strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = s
}

// chain returns the registered strategies in registration order.
func (r *strategyRegistry) chain() []strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]strategy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// defaultStrategies is the fixed order spec §4.F.3 tries per photo: most
// information first, degrading gracefully as finders go missing.
var defaultStrategies = newDefaultStrategyRegistry()

func newDefaultStrategyRegistry() *strategyRegistry {
	r := newStrategyRegistry()
	r.register("four-point-warp", fourPointWarpStrategy)
	r.register("two-point-warp", twoPointWarpStrategy)
	r.register("crop-resize", cropResizeStrategy)
	return r
}
