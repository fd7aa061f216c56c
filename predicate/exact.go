package predicate

import (
	"math/big"

	"github.com/nyquist-labs/paraflip/geom"
)

// The exact tier trades Shewchuk's staged floating-point expansions for
// exact rational arithmetic: every float64 input converts losslessly to a
// big.Rat (IEEE-754 doubles are exact binary fractions), and +, -, * over
// big.Rat never round. The result is exact for any float64 input, at the
// cost of speed — acceptable here since it's reached only when the fast
// filter can't already rule out a sign flip, which is rare on realistic
// input.

func ratFromFloat(f float64) *big.Rat {
	r := new(big.Rat)
	r.SetFloat64(f)
	return r
}

// orient2DExact returns the exact sign of the same determinant orient2DFast
// approximates, as a float64 in {-1, 0, 1} (the magnitude is discarded; only
// the sign survives past this tier).
func orient2DExact(a, b, c geom.Point) float64 {
	ax, ay := ratFromFloat(a.X), ratFromFloat(a.Y)
	bx, by := ratFromFloat(b.X), ratFromFloat(b.Y)
	cx, cy := ratFromFloat(c.X), ratFromFloat(c.Y)

	// (ax-cx)*(by-cy) - (ay-cy)*(bx-cx)
	acx := new(big.Rat).Sub(ax, cx)
	bcy := new(big.Rat).Sub(by, cy)
	acy := new(big.Rat).Sub(ay, cy)
	bcx := new(big.Rat).Sub(bx, cx)

	left := new(big.Rat).Mul(acx, bcy)
	right := new(big.Rat).Mul(acy, bcx)
	det := new(big.Rat).Sub(left, right)
	return float64(det.Sign())
}

// inCircleExact mirrors inCircleFast's determinant, evaluated exactly.
func inCircleExact(a, b, c, d geom.Point) float64 {
	adx := new(big.Rat).Sub(ratFromFloat(a.X), ratFromFloat(d.X))
	ady := new(big.Rat).Sub(ratFromFloat(a.Y), ratFromFloat(d.Y))
	bdx := new(big.Rat).Sub(ratFromFloat(b.X), ratFromFloat(d.X))
	bdy := new(big.Rat).Sub(ratFromFloat(b.Y), ratFromFloat(d.Y))
	cdx := new(big.Rat).Sub(ratFromFloat(c.X), ratFromFloat(d.X))
	cdy := new(big.Rat).Sub(ratFromFloat(c.Y), ratFromFloat(d.Y))

	sq := func(r *big.Rat) *big.Rat { return new(big.Rat).Mul(r, r) }
	mul := func(x, y *big.Rat) *big.Rat { return new(big.Rat).Mul(x, y) }
	sub := func(x, y *big.Rat) *big.Rat { return new(big.Rat).Sub(x, y) }
	add := func(x, y *big.Rat) *big.Rat { return new(big.Rat).Add(x, y) }

	alift := add(sq(adx), sq(ady))
	blift := add(sq(bdx), sq(bdy))
	clift := add(sq(cdx), sq(cdy))

	bdxcdy := mul(bdx, cdy)
	cdxbdy := mul(cdx, bdy)
	cdxady := mul(cdx, ady)
	adxcdy := mul(adx, cdy)
	adxbdy := mul(adx, bdy)
	bdxady := mul(bdx, ady)

	det := add(
		add(
			mul(alift, sub(bdxcdy, cdxbdy)),
			mul(blift, sub(cdxady, adxcdy)),
		),
		mul(clift, sub(adxbdy, bdxady)),
	)
	return float64(det.Sign())
}
