// Package predicate implements the robust geometric predicates the mesh and
// engine build on: orient2d (which side of a directed line a point falls on)
// and incircle (whether a point lies inside a triangle's circumcircle).
//
// Each predicate is a three-tier cascade, cheapest first:
//
//  1. a fast floating-point evaluation guarded by a conservative a-priori
//     error bound (Shewchuk's classic forward-error-analysis filter);
//  2. an exact evaluation over exact rational arithmetic, used only when the
//     fast tier's bound can't rule out a sign flip;
//  3. a symbolic (Simulation of Simplicity) perturbation, used only when the
//     exact tier proves the true value is precisely zero, so that degenerate
//     input (three collinear points, four concyclic points) still produces a
//     definite, deterministic answer instead of "I don't know."
//
// Callers never see the tiers: Orient2D and InCircle always return a
// definite Orient/Side.
package predicate

import (
	"math"
	"sync"

	"github.com/nyquist-labs/paraflip/geom"
)

// Orient is the sign of a 2D orientation test.
type Orient int8

const (
	Clockwise        Orient = -1
	Collinear        Orient = 0
	CounterClockwise Orient = 1
)

// Side is the result of an incircle test, named from the perspective of the
// fourth point relative to the circle through the first three.
type Side int8

const (
	Outside Side = -1
	OnEdge  Side = 0
	Inside  Side = 1
)

var (
	epsilon      float64
	ccwErrBoundA float64
	ccwErrBoundB float64
	ccwErrBoundC float64
	iccErrBoundA float64
	iccErrBoundB float64
	iccErrBoundC float64
	initOnce     sync.Once
)

// init derives the machine epsilon and the derived error-bound constants the
// same way Shewchuk's exactinit does: halve 1.0 until it stops perturbing
// 1.0 in floating point.
func init() {
	initOnce.Do(func() {
		epsilon = 1.0
		for half := 0.5; 1.0+half != 1.0; half = half / 2 {
			epsilon = half
		}
		epsilon = epsilon / 2

		ccwErrBoundA = (3.0 + 16.0*epsilon) * epsilon
		ccwErrBoundB = (2.0 + 12.0*epsilon) * epsilon
		ccwErrBoundC = (9.0 + 64.0*epsilon) * epsilon * epsilon

		iccErrBoundA = (10.0 + 96.0*epsilon) * epsilon
		iccErrBoundB = (4.0 + 48.0*epsilon) * epsilon
		iccErrBoundC = (44.0 + 576.0*epsilon) * epsilon * epsilon
	})
}

func signOf(f float64) Orient {
	switch {
	case f > 0:
		return CounterClockwise
	case f < 0:
		return Clockwise
	default:
		return Collinear
	}
}

// Orient2D reports the orientation of c relative to the directed line a->b:
// CounterClockwise if c is to the left, Clockwise if to the right. Exactly
// collinear points are resolved by the symbolic perturbation, so Collinear
// is returned only when two of the points coincide. ia, ib, ic are the
// points' stable indices in the owning point set, used only to seed that
// perturbation; they don't affect any non-degenerate result.
func Orient2D(a, b, c geom.Point, ia, ib, ic int) Orient {
	det, fastOrient, resolved := orient2DFast(a, b, c)
	if resolved {
		return fastOrient
	}

	det = orient2DExact(a, b, c)
	if det != 0 {
		return signOf(det)
	}

	return orient2DSoS(a, b, c, ia, ib, ic)
}

// orient2DFast is Shewchuk's orient2dfast plus the ccwerrboundA filter: it
// returns a usable sign whenever the raw determinant can't have been flipped
// by floating point rounding, and signals "resolved=false" otherwise.
func orient2DFast(a, b, c geom.Point) (det float64, orient Orient, resolved bool) {
	detleft := (a.X - c.X) * (b.Y - c.Y)
	detright := (a.Y - c.Y) * (b.X - c.X)
	det = detleft - detright

	var detsum float64
	switch {
	case detleft > 0:
		if detright <= 0 {
			return det, signOf(det), true
		}
		detsum = detleft + detright
	case detleft < 0:
		if detright >= 0 {
			return det, signOf(det), true
		}
		detsum = -detleft - detright
	default:
		return det, signOf(det), true
	}

	errbound := ccwErrBoundA * detsum
	if det >= errbound || -det >= errbound {
		return det, signOf(det), true
	}
	return det, Collinear, false
}

// InCircle reports whether d lies Inside, Outside, or OnEdge of the circle
// through a, b, c. a, b, c are assumed to be in counter-clockwise order, per
// the mesh's triangle orientation invariant. Indices seed the SoS fallback
// exactly as in Orient2D.
func InCircle(a, b, c, d geom.Point, ia, ib, ic, id int) Side {
	det, fastSide, resolved := inCircleFast(a, b, c, d)
	if resolved {
		return fastSide
	}

	det = inCircleExact(a, b, c, d)
	if det != 0 {
		return sideOf(det)
	}

	return inCircleSoS(a, b, c, d, ia, ib, ic, id)
}

func sideOf(f float64) Side {
	switch {
	case f > 0:
		return Inside
	case f < 0:
		return Outside
	default:
		return OnEdge
	}
}

// inCircleFast is Shewchuk's incirclefast plus the iccerrboundA filter.
func inCircleFast(a, b, c, d geom.Point) (det float64, side Side, resolved bool) {
	adx := a.X - d.X
	ady := a.Y - d.Y
	bdx := b.X - d.X
	bdy := b.Y - d.Y
	cdx := c.X - d.X
	cdy := c.Y - d.Y

	bdxcdy := bdx * cdy
	cdxbdy := cdx * bdy
	alift := adx*adx + ady*ady

	cdxady := cdx * ady
	adxcdy := adx * cdy
	blift := bdx*bdx + bdy*bdy

	adxbdy := adx * bdy
	bdxady := bdx * ady
	clift := cdx*cdx + cdy*cdy

	det = alift*(bdxcdy-cdxbdy) + blift*(cdxady-adxcdy) + clift*(adxbdy-bdxady)

	permanent := (math.Abs(bdxcdy)+math.Abs(cdxbdy))*alift +
		(math.Abs(cdxady)+math.Abs(adxcdy))*blift +
		(math.Abs(adxbdy)+math.Abs(bdxady))*clift
	errbound := iccErrBoundA * permanent
	if det > errbound || -det > errbound {
		return det, sideOf(det), true
	}
	return det, OnEdge, false
}
