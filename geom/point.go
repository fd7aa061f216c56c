// Package geom holds the plain data types shared by every layer of paraflip:
// predicates, the mesh store, the engine, and the plumbing around them.
package geom

import "fmt"

// Point is a 2D point in double precision. Z is carried verbatim by the core
// but never inspected by any geometric predicate.
type Point struct {
	X, Y, Z float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Edge is a pair of vertex indices into a point set, used both for input
// constraints and for reporting edges out of the mesh.
type Edge struct {
	U, V int
}

func (e Edge) String() string {
	return fmt.Sprintf("%d-%d", e.U, e.V)
}

// Canon returns the edge with the smaller index first, so two edges that name
// the same undirected pair compare equal.
func (e Edge) Canon() Edge {
	if e.U > e.V {
		return Edge{e.V, e.U}
	}
	return e
}
