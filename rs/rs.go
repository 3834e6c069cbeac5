// Package rs implements Reed-Solomon RS(255,191) over GF(256): systematic
// encode by remainder division, and decode by syndromes, Berlekamp-Massey,
// Chien search and Forney correction.
package rs

import (
	"github.com/mezinster/cimbar-go/cerrors"
	"github.com/mezinster/cimbar-go/gf256"
)

const (
	// BlockTotal is the codeword length of a full RS block.
	BlockTotal = 255
	// ECC is the number of parity bytes appended to every block, full or
	// shortened.
	ECC = 64
	// BlockData is the message length of a full (non-shortened) block.
	BlockData = BlockTotal - ECC // 191
)

// generator is g(x) = product_{i=0..ECC-1} (x - alpha^i), low-order
// coefficient first. It is fixed for the lifetime of the process.
var generator = buildGenerator()

func buildGenerator() []byte {
	g := []byte{1}
	for i := 0; i < ECC; i++ {
		g = gf256.PolyMul(g, []byte{gf256.Exp(i), 1})
	}
	return g
}

// EncodeBlock encodes a message of up to BlockData bytes into a systematic
// codeword of len(message)+ECC bytes: the message bytes unchanged, followed
// by ECC parity bytes. Shorter-than-full blocks (the last block in a frame)
// are handled by logically prepending zeros to the message when computing
// the remainder, which is equivalent to encoding a full block whose leading
// bytes are zero and discarding them — so the same routine serves both full
// and shortened blocks.
func EncodeBlock(message []byte) []byte {
	// Polynomial long division of message(x)*x^ECC by generator(x); generator
	// is monic in its highest-degree coefficient (generator[ECC] == 1).
	work := make([]byte, len(message)+ECC)
	copy(work, message)
	for i := 0; i < len(message); i++ {
		coeff := work[i]
		if coeff == 0 {
			continue
		}
		for j := 0; j <= ECC; j++ {
			work[i+j] = gf256.Add(work[i+j], gf256.Mul(coeff, generator[ECC-j]))
		}
	}

	out := make([]byte, len(message)+ECC)
	copy(out, message)
	copy(out[len(message):], work[len(message):])
	return out
}

// Decode recovers the message portion (len(received)-ECC bytes) of a
// received codeword, correcting up to 32 byte errors. It returns
// cerrors.ErrRSBlockFailure if correction is not possible.
func Decode(received []byte) ([]byte, error) {
	if len(received) <= ECC {
		return nil, cerrors.ErrRSBlockFailure
	}
	dataLen := len(received) - ECC

	syndromes := computeSyndromes(received)
	if allZero(syndromes) {
		out := make([]byte, dataLen)
		copy(out, received[:dataLen])
		return out, nil
	}

	lambda := berlekampMassey(syndromes)
	nu := len(lambda) - 1
	if nu <= 0 {
		return nil, cerrors.ErrRSBlockFailure
	}

	roots, locations := chienSearch(lambda, len(received))
	if len(roots) != nu {
		return nil, cerrors.ErrRSBlockFailure
	}

	omega := errorEvaluator(syndromes, lambda)
	corrected := make([]byte, len(received))
	copy(corrected, received)
	for k, root := range roots {
		pos := locations[k]
		magnitude := forneyMagnitude(root, omega, lambda)
		corrected[pos] = gf256.Add(corrected[pos], magnitude)
	}

	verify := computeSyndromes(corrected)
	if !allZero(verify) {
		return nil, cerrors.ErrRSBlockFailure
	}

	out := make([]byte, dataLen)
	copy(out, corrected[:dataLen])
	return out, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// computeSyndromes returns S_0..S_63 for received, treated as a polynomial
// with received[0] as the highest-degree coefficient (systematic codewords
// are conventionally evaluated this way so that a zero-error message's
// syndromes are all zero regardless of length).
func computeSyndromes(received []byte) []byte {
	s := make([]byte, ECC)
	for k := 0; k < ECC; k++ {
		s[k] = evalAtAlpha(received, k)
	}
	return s
}

// evalAtAlpha evaluates received (MSB-first coefficients) at alpha^k.
func evalAtAlpha(received []byte, k int) byte {
	a := gf256.Exp(k)
	var y byte
	for _, c := range received {
		y = gf256.Add(gf256.Mul(y, a), c)
	}
	return y
}

// berlekampMassey returns the error-locator polynomial Lambda(x), low-order
// coefficient first, Lambda[0] == 1.
func berlekampMassey(syndromes []byte) []byte {
	n := len(syndromes)
	lambda := []byte{1}
	prevLambda := []byte{1}
	l := 0
	m := 1
	b := byte(1)

	for r := 0; r < n; r++ {
		delta := syndromes[r]
		for i := 1; i <= l; i++ {
			if i < len(lambda) {
				delta = gf256.Add(delta, gf256.Mul(lambda[i], syndromes[r-i]))
			}
		}
		if delta == 0 {
			m++
			continue
		}
		t := make([]byte, len(lambda))
		copy(t, lambda)

		coeff := gf256.Div(delta, b)
		shifted := make([]byte, len(prevLambda)+m)
		for i, c := range prevLambda {
			shifted[i+m] = gf256.Mul(coeff, c)
		}
		lambda = gf256.PolyAdd(lambda, shifted)

		if 2*l <= r {
			l = r + 1 - l
			prevLambda = t
			b = delta
			m = 1
		} else {
			m++
		}
	}
	return trimTrailingZeros(lambda)
}

func trimTrailingZeros(p []byte) []byte {
	n := len(p)
	for n > 1 && p[n-1] == 0 {
		n--
	}
	return p[:n]
}

// chienSearch finds the roots of lambda in GF(256)\{0} by brute-force
// evaluation, returning each root alongside its corresponding error
// position in the received codeword. A root is the inverse of an error
// locator X = alpha^p, so position = n-1-log(root^-1).
func chienSearch(lambda []byte, n int) (roots []byte, positions []int) {
	for i := 0; i < gf256.Order; i++ {
		x := gf256.Exp(i)
		if gf256.PolyEval(lambda, x) == 0 {
			pos := n - 1 - gf256.Log(gf256.Inv(x))
			if pos < 0 || pos >= n {
				continue
			}
			roots = append(roots, x)
			positions = append(positions, pos)
		}
	}
	return roots, positions
}

// errorEvaluator computes Omega(x) = S(x)*Lambda(x) mod x^ECC.
func errorEvaluator(syndromes, lambda []byte) []byte {
	full := gf256.PolyMul(syndromes, lambda)
	if len(full) > ECC {
		full = full[:ECC]
	}
	return full
}

// forneyMagnitude computes the error magnitude for error-locator root
// `root` (= X^-1 for error locator X), per Forney's formula with syndromes
// starting at alpha^0: magnitude = -X * Omega(X^-1) / Lambda'(X^-1).
// In GF(2^m) negation is a no-op and the derivative keeps only odd-power
// terms (even-power terms vanish under char-2 differentiation).
func forneyMagnitude(root byte, omega, lambda []byte) byte {
	omegaVal := gf256.PolyEval(omega, root)
	lambdaDerivVal := evalDerivative(lambda, root)
	if lambdaDerivVal == 0 {
		return 0
	}
	return gf256.Mul(gf256.Inv(root), gf256.Div(omegaVal, lambdaDerivVal))
}

// evalDerivative evaluates the formal derivative of p at x. Over GF(2^m),
// d/dx sum(c_i x^i) = sum over odd i of (c_i x^(i-1)), since even powers
// differentiate to a coefficient multiple of 2 == 0.
func evalDerivative(p []byte, x byte) byte {
	var y byte
	for i := 1; i < len(p); i += 2 {
		term := p[i]
		for j := 1; j < i; j++ {
			term = gf256.Mul(term, x)
		}
		y = gf256.Add(y, term)
	}
	return y
}
