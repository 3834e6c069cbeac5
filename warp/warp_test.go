package warp_test

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/mezinster/cimbar-go/locate"
	"github.com/mezinster/cimbar-go/warp"
)

func TestSolve4PointIdentity(t *testing.T) {
	square := [4]locate.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}}
	h, err := warp.Solve4Point(square, square)
	if err != nil {
		t.Fatalf("Solve4Point: %v", err)
	}
	x, y := h.Apply(42, 17)
	if math.Abs(x-42) > 1e-6 || math.Abs(y-17) > 1e-6 {
		t.Fatalf("identity map got (%f, %f)", x, y)
	}
}

func TestSolve4PointDegenerate(t *testing.T) {
	collinear := [4]locate.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}}
	dst := [4]locate.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 0, Y: 100}, {X: 100, Y: 100}}
	if _, err := warp.Solve4Point(collinear, dst); err == nil {
		t.Fatal("expected degenerate warp error")
	}
}

func TestSampleNearestNeighborFloor(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.SetRGBA(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	square := [4]locate.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}, {X: 4, Y: 4}}
	h, err := warp.Solve4Point(square, square)
	if err != nil {
		t.Fatalf("Solve4Point: %v", err)
	}
	out := warp.Sample(src, h, 4)
	got := out.RGBAAt(1, 1)
	if got.R != 10 || got.G != 20 || got.B != 30 {
		t.Fatalf("sampled pixel = %+v, want (10,20,30)", got)
	}
}
