// Package warp implements component E: 2-point and 4-point perspective
// transforms from a located quadrilateral to a canonical square, sampled by
// floor-based nearest neighbor (spec §4.E).
package warp

import (
	"image"
	"image/color"
	"math"

	"github.com/mezinster/cimbar-go/cerrors"
	"github.com/mezinster/cimbar-go/locate"
)

// Homography is a 3x3 projective transform, row-major, applied to
// homogeneous coordinates (x, y, 1).
type Homography [9]float64

// Apply maps (x, y) through h.
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		return 0, 0
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w
}

// Solve4Point computes the homography mapping src[i] -> dst[i] for four
// point correspondences (TL, TR, BL, BR order), via the direct linear
// transform: an 8x8 linear system solved by Gaussian elimination with
// partial pivoting (spec §4.E "4-point").
func Solve4Point(src, dst [4]locate.Point) (Homography, error) {
	// Each correspondence (x,y)->(X,Y) contributes two equations in the 8
	// unknowns h0..h7 (h8 fixed to 1):
	//   x*h0 + y*h1 + h2 - X*x*h6 - X*y*h7 = X
	//   x*h3 + y*h4 + h5 - Y*x*h6 - Y*y*h7 = Y
	a := make([][]float64, 8)
	for i := range a {
		a[i] = make([]float64, 9) // 8 coeffs + RHS
	}
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		X, Y := dst[i].X, dst[i].Y
		r1 := a[2*i]
		r1[0], r1[1], r1[2] = x, y, 1
		r1[6], r1[7] = -X*x, -X*y
		r1[8] = X

		r2 := a[2*i+1]
		r2[3], r2[4], r2[5] = x, y, 1
		r2[6], r2[7] = -Y*x, -Y*y
		r2[8] = Y
	}

	sol, err := gaussianEliminate(a)
	if err != nil {
		return Homography{}, err
	}
	var h Homography
	copy(h[:8], sol)
	h[8] = 1
	return h, nil
}

// gaussianEliminate solves an 8x8 linear system (rows of 9 values: 8
// coefficients + RHS) by Gaussian elimination with partial pivoting.
func gaussianEliminate(a [][]float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		best := math.Abs(a[col][col])
		for row := col + 1; row < n; row++ {
			if v := math.Abs(a[row][col]); v > best {
				best = v
				pivot = row
			}
		}
		if best < 1e-9 {
			return nil, cerrors.ErrWarpDegenerate
		}
		a[col], a[pivot] = a[pivot], a[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for k := col; k <= n; k++ {
				a[row][k] -= factor * a[col][k]
			}
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := a[row][n]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}

// Solve2Point builds the fallback homography of spec §4.E "2-point", valid
// only when the barcode is assumed square: given the TL->BR diagonal, the
// unit axes u_x, u_y are derived algebraically rather than by a linear
// solve, and the canonical square of side frameSize is mapped onto the
// parallelogram those axes describe.
func Solve2Point(tl, br locate.Point, frameSize float64) (Homography, error) {
	dx, dy := br.X-tl.X, br.Y-tl.Y
	n := math.Hypot(dx, dy) / math.Sqrt2
	if n < 1e-6 {
		return Homography{}, cerrors.ErrWarpDegenerate
	}
	uxX, uxY := (dx+dy)/(2*n), (dy-dx)/(2*n)
	uyX, uyY := -(dy-dx)/(2*n), (dx+dy)/(2*n)

	// Forward map: source(u,v) = TL + u*ux*frameSize_unit + v*uy*frameSize_unit,
	// where (u,v) are normalized [0,1] canonical coordinates. Expressed as a
	// homography from canonical pixel space (0..frameSize) to source space.
	scale := n / frameSize
	h := Homography{
		uxX * scale, uyX * scale, tl.X,
		uxY * scale, uyY * scale, tl.Y,
		0, 0, 1,
	}
	return h, nil
}

// Invert returns the inverse of a 3x3 homography, used to map destination
// (canonical) pixels back to source pixels for sampling.
func Invert(h Homography) (Homography, error) {
	m := [9]float64(h)
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
	if math.Abs(det) < 1e-12 {
		return Homography{}, cerrors.ErrWarpDegenerate
	}
	invDet := 1 / det
	var inv Homography
	inv[0] = (m[4]*m[8] - m[5]*m[7]) * invDet
	inv[1] = (m[2]*m[7] - m[1]*m[8]) * invDet
	inv[2] = (m[1]*m[5] - m[2]*m[4]) * invDet
	inv[3] = (m[5]*m[6] - m[3]*m[8]) * invDet
	inv[4] = (m[0]*m[8] - m[2]*m[6]) * invDet
	inv[5] = (m[2]*m[3] - m[0]*m[5]) * invDet
	inv[6] = (m[3]*m[7] - m[4]*m[6]) * invDet
	inv[7] = (m[1]*m[6] - m[0]*m[7]) * invDet
	inv[8] = (m[0]*m[4] - m[1]*m[3]) * invDet
	return inv, nil
}

// Sample warps src into a frameSize x frameSize canonical image using
// inverseH (mapping canonical destination pixels back to src coordinates).
// Sampling is nearest-neighbor with floor(), never round() or bilinear:
// round() introduces a systematic 0.5-pixel bias that misaligns every 8px
// cell, and bilinear blurs the cell boundaries this codec depends on being
// sharp (spec §4.E "Sampling").
func Sample(src *image.RGBA, inverseH Homography, frameSize int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, frameSize, frameSize))
	b := src.Bounds()
	for dy := 0; dy < frameSize; dy++ {
		for dx := 0; dx < frameSize; dx++ {
			sx, sy := inverseH.Apply(float64(dx), float64(dy))
			ix, iy := int(math.Floor(sx)), int(math.Floor(sy))
			if ix < b.Min.X || ix >= b.Max.X || iy < b.Min.Y || iy >= b.Max.Y {
				out.SetRGBA(dx, dy, color.RGBA{A: 255})
				continue
			}
			out.SetRGBA(dx, dy, src.RGBAAt(ix, iy))
		}
	}
	return out
}
