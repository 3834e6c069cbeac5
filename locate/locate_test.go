package locate_test

import (
	"image"
	"testing"

	"github.com/mezinster/cimbar-go/frame"
	"github.com/mezinster/cimbar-go/locate"
)

func renderBlankFrame(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	// Fill with a bright, non-finder-colored background so the horizontal
	// scan's bright/dark/bright run logic has a clean canvas to work with.
	white := frame.FinderWhite
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	frame.DrawFinders(img, size)
	return img
}

func TestLocateFindsFourFinders(t *testing.T) {
	img := renderBlankFrame(256)
	result, err := locate.Locate(img)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if result.Cropped == nil {
		t.Fatal("expected a cropped working image")
	}
}

// embedWithMargin pastes src into the center of a larger canvas, simulating
// a photograph with room around the frame.
func embedWithMargin(src *image.RGBA, margin int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx()+2*margin, b.Dy()+2*margin
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, frame.FinderWhite)
		}
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetRGBA(margin+x, margin+y, src.RGBAAt(b.Min.X+x, b.Min.Y+y))
		}
	}
	return out
}

// TestLocateFinderPointsAreCroppedRelative guards against TL/TR/BL/BR being
// left in full-image space while Cropped's origin has shifted: every
// classified finder point must land inside Cropped's own bounds.
func TestLocateFinderPointsAreCroppedRelative(t *testing.T) {
	img := embedWithMargin(renderBlankFrame(256), 60)
	result, err := locate.Locate(img)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}

	b := result.Cropped.Bounds()
	for name, p := range map[string]*locate.Point{"TL": result.TL, "TR": result.TR, "BL": result.BL, "BR": result.BR} {
		if p == nil {
			continue
		}
		if p.X < float64(b.Min.X) || p.X >= float64(b.Max.X) || p.Y < float64(b.Min.Y) || p.Y >= float64(b.Max.Y) {
			t.Fatalf("%s = (%v, %v) falls outside Cropped bounds %v; finder coordinates were not translated into crop space", name, p.X, p.Y, b)
		}
	}
}
