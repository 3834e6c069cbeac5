// Package gf256 implements arithmetic over GF(256) with the primitive
// polynomial x^8 + x^4 + x^3 + x^2 + 1 (0x11D) and generator alpha=2, the
// field CimBar's Reed-Solomon codec runs over.
package gf256

// Primitive polynomial 0x11D: x^8 + x^4 + x^3 + x^2 + 1.
const primitivePoly = 0x11D

// Order is the number of non-zero field elements.
const Order = 255

var (
	expTable [Order * 2]byte // antilog, doubled to avoid a modulo on lookups
	logTable [256]byte       // log, logTable[0] is unused (0 has no log)
)

func init() {
	x := 1
	for i := 0; i < Order; i++ {
		expTable[i] = byte(x)
		logTable[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= primitivePoly
		}
	}
	for i := Order; i < Order*2; i++ {
		expTable[i] = expTable[i-Order]
	}
}

// Add is addition (and subtraction) in GF(256): XOR.
func Add(a, b byte) byte { return a ^ b }

// Sub is subtraction in GF(256), identical to Add.
func Sub(a, b byte) byte { return a ^ b }

// Exp returns alpha^i for i in [0, 254]; larger i wraps modulo 255.
func Exp(i int) byte {
	i %= Order
	if i < 0 {
		i += Order
	}
	return expTable[i]
}

// Log returns the discrete log of a non-zero element, base alpha=2.
// Log(0) is undefined and returns 0.
func Log(a byte) int {
	if a == 0 {
		return 0
	}
	return int(logTable[a])
}

// Mul multiplies two field elements.
func Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[int(logTable[a])+int(logTable[b])]
}

// Div divides a by b in GF(256); b must be non-zero.
func Div(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return expTable[(int(logTable[a])-int(logTable[b])+Order)%Order]
}

// Inv returns the multiplicative inverse of a non-zero element.
func Inv(a byte) byte {
	return expTable[Order-int(logTable[a])]
}

// Pow raises a to the n-th power.
func Pow(a byte, n int) byte {
	if a == 0 {
		if n == 0 {
			return 1
		}
		return 0
	}
	e := (int(logTable[a]) * n) % Order
	if e < 0 {
		e += Order
	}
	return expTable[e]
}

// PolyEval evaluates polynomial p (coefficients low-order first) at x.
func PolyEval(p []byte, x byte) byte {
	// Horner's method from the highest-degree coefficient down.
	if len(p) == 0 {
		return 0
	}
	y := p[len(p)-1]
	for i := len(p) - 2; i >= 0; i-- {
		y = Add(Mul(y, x), p[i])
	}
	return y
}

// PolyMul multiplies two polynomials (low-order coefficient first).
func PolyMul(a, b []byte) []byte {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	out := make([]byte, len(a)+len(b)-1)
	for i, ac := range a {
		if ac == 0 {
			continue
		}
		for j, bc := range b {
			out[i+j] = Add(out[i+j], Mul(ac, bc))
		}
	}
	return out
}

// PolyScale multiplies every coefficient of p by a scalar.
func PolyScale(p []byte, scalar byte) []byte {
	out := make([]byte, len(p))
	for i, c := range p {
		out[i] = Mul(c, scalar)
	}
	return out
}

// PolyAdd adds two polynomials (low-order coefficient first).
func PolyAdd(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	copy(out, a)
	for i, c := range b {
		out[i] = Add(out[i], c)
	}
	return out
}
