package predicate

import "github.com/nyquist-labs/paraflip/geom"

// orient2DSoS and inCircleSoS implement Simulation of Simplicity
// (Edelsbrunner & Mücke, 1990): when the exact tier proves a determinant is
// precisely zero, perturb the input by an infinitesimal amount that depends
// only on each point's stable index, and take the sign of the resulting
// (still-exact, in the limit) polynomial. Because the perturbation is
// infinitesimal it never changes the answer for genuinely non-degenerate
// input; it only breaks ties that would otherwise be undefined.
//
// orient2d's determinant is linear in each point's y-coordinate (each
// appears once, in its own row), so perturbing ay, by, cy by ε^ia, ε^ib,
// ε^ic respectively — independently, no cross terms — turns the zero
// determinant into exactly:
//
//	ε^ia * (cx-bx) + ε^ib * (ax-cx) + ε^ic * (bx-ax)
//
// As ε→0+, whichever term has the smallest exponent (i.e. whose point has
// the smallest index) dominates. If that term's coefficient is itself zero
// — the other two points share an x-coordinate, which since all points are
// distinct means they differ in y — the same expansion along the x-column
// gives a second, guaranteed-nonzero term.

func orient2DSoS(a, b, c geom.Point, ia, ib, ic int) Orient {
	pts := [3]geom.Point{a, b, c}
	idx := [3]int{ia, ib, ic}

	dominant := 0
	for i := 1; i < 3; i++ {
		if idx[i] < idx[dominant] {
			dominant = i
		}
	}

	// Cofactor of the y-column entry at the dominant row, derived from
	// expanding the orientation determinant along its y column.
	var cofY float64
	switch dominant {
	case 0:
		cofY = pts[2].X - pts[1].X
	case 1:
		cofY = pts[0].X - pts[2].X
	default:
		cofY = pts[1].X - pts[0].X
	}
	if cofY != 0 {
		return signOf(cofY)
	}

	var cofX float64
	if dominant == 0 {
		cofX = pts[1].Y - pts[2].Y
	} else if dominant == 1 {
		cofX = pts[2].Y - pts[0].Y
	} else {
		cofX = pts[0].Y - pts[1].Y
	}
	return signOf(cofX)
}

// inCircleSoS reduces to a single call into the already-total orient2DSoS:
// incircle's determinant is likewise linear in each point's lifted
// (x²+y²) column, so perturbing that column by ε^index per point makes the
// cofactor of the dominant (smallest-index) point exactly ± the orient2d
// determinant of the other three points, in their original order. That
// determinant goes through the full Orient2D cascade, whose own SoS tier
// never returns Collinear for three distinct points, so this always
// terminates in one step.
func inCircleSoS(a, b, c, d geom.Point, ia, ib, ic, id int) Side {
	pts := [4]geom.Point{a, b, c, d}
	idx := [4]int{ia, ib, ic, id}

	dominant := 0
	for i := 1; i < 4; i++ {
		if idx[i] < idx[dominant] {
			dominant = i
		}
	}

	other := [3]int{}
	j := 0
	for i := 0; i < 4; i++ {
		if i != dominant {
			other[j] = i
			j++
		}
	}
	p0, p1, p2 := pts[other[0]], pts[other[1]], pts[other[2]]
	i0, i1, i2 := idx[other[0]], idx[other[1]], idx[other[2]]

	orient := Orient2D(p0, p1, p2, i0, i1, i2)

	// Cofactor sign alternates with the excluded row: (-1)^(row+2), i.e. +
	// for rows 0 and 2, - for rows 1 and 3.
	sign := 1
	if dominant == 1 || dominant == 3 {
		sign = -1
	}
	return Side(sign) * Side(orient)
}
