// Package checker runs a battery of independent sanity checks against a
// finished mesh: Euler's formula, bidirectional adjacency, consistent
// winding, the local Delaunay property, and (when constraints were given)
// that every requested constraint edge actually made it into the mesh.
// Each check is independent of the others so a single defect doesn't mask
// the rest.
package checker

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"

	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/mesh"
	"github.com/nyquist-labs/paraflip/predicate"
)

// Report collects the pass/fail outcome of each check plus enough detail to
// explain a failure without re-running anything.
type Report struct {
	VertexCount   int
	EdgeCount     int
	TriangleCount int
	Euler         int
	EulerOK       bool

	AdjacencyOK       bool
	AdjacencyFailures int

	OrientationOK       bool
	MisorientedTris     int

	DelaunayOK      bool
	DelaunayFailures int

	ConstraintsOK      bool
	MissingConstraints int
}

// Passed reports whether every check that ran, ran clean.
func (r Report) Passed() bool {
	return r.EulerOK && r.AdjacencyOK && r.OrientationOK && r.DelaunayOK && r.ConstraintsOK
}

// Run executes every check against m and writes a human-readable summary to
// w, one line per check, colored the way a terminal checker traditionally
// is: green "Pass", red "***Fail***".
func Run(w io.Writer, m *mesh.Mesh, pts []geom.Point, constraints []geom.Edge) Report {
	var r Report

	r.VertexCount, r.EdgeCount, r.TriangleCount = CheckEuler(&r, m)
	printEuler(w, r)

	r.AdjacencyFailures = CheckAdjacency(m)
	r.AdjacencyOK = r.AdjacencyFailures == 0
	printResult(w, "Adjacency check", r.AdjacencyOK, r.AdjacencyFailures)

	r.MisorientedTris = CheckOrientation(m, pts)
	r.OrientationOK = r.MisorientedTris == 0
	printResult(w, "Orient check", r.OrientationOK, r.MisorientedTris)

	r.DelaunayFailures = CheckDelaunay(m, pts)
	r.DelaunayOK = r.DelaunayFailures == 0
	printResult(w, "Delaunay check", r.DelaunayOK, r.DelaunayFailures)

	if len(constraints) > 0 {
		r.MissingConstraints = CheckConstraints(m, constraints)
		r.ConstraintsOK = r.MissingConstraints == 0
		printResult(w, "Constraint check", r.ConstraintsOK, r.MissingConstraints)
	} else {
		r.ConstraintsOK = true
	}

	return r
}

func printEuler(w io.Writer, r Report) {
	fmt.Fprintf(w, "Vertex: %d Edge: %d Triangle: %d Euler: %d\n", r.VertexCount, r.EdgeCount, r.TriangleCount, r.Euler)
	printResult(w, "Euler check", r.EulerOK, 0)
}

func printResult(w io.Writer, label string, ok bool, count int) {
	if ok {
		fmt.Fprintf(w, "%s: %s\n", label, aurora.Green("Pass"))
		return
	}
	fmt.Fprintf(w, "%s: %s %d\n", label, aurora.Red("***Fail***"), count)
}

// CheckEuler counts live vertices, unique edges, and triangles and verifies
// V-E+F=1, with only the triangles counted as faces (the reference implementation's checkEuler only ever computed a
// segment count of zero, since its getSegmentCount left segSet unpopulated;
// this walks mesh.Edges to count real unique edges instead).
func CheckEuler(r *Report, m *mesh.Mesh) (vertices, edges, triangles int) {
	seen := make(map[int]bool)
	for ti, alive := range m.Alive {
		if !alive {
			continue
		}
		for _, v := range m.Tris[ti].Verts {
			seen[v] = true
		}
	}
	vertices = len(seen)

	edgeCount := 0
	m.Edges(func(int, int8, bool) bool {
		edgeCount++
		return true
	})
	edges = edgeCount
	triangles = m.NumLiveTris()

	euler := vertices - edges + triangles
	r.Euler = euler
	r.EulerOK = euler == 1 // the outer face is not counted
	return
}

// CheckAdjacency verifies that every live triangle's opposite links point
// back at it with a matching vertex slot, returning the number of
// mismatches found.
func CheckAdjacency(m *mesh.Mesh) int {
	failures := 0
	for ti, alive := range m.Alive {
		if !alive {
			continue
		}
		for vi, opp := range m.Opp[ti].Edges {
			if opp.Tri == mesh.NilTri {
				continue
			}
			back := m.Opp[opp.Tri].Edges[opp.Vert]
			if back.Tri != ti || int(back.Vert) != vi {
				failures++
			}
		}
	}
	return failures
}

// CheckOrientation verifies every live triangle winds counterclockwise,
// returning the number that don't.
func CheckOrientation(m *mesh.Mesh, pts []geom.Point) int {
	count := 0
	for ti, alive := range m.Alive {
		if !alive {
			continue
		}
		v := m.Tris[ti].Verts
		ord := predicate.Orient2D(pts[v[0]], pts[v[1]], pts[v[2]], v[0], v[1], v[2])
		if ord != predicate.CounterClockwise {
			count++
		}
	}
	return count
}

// CheckDelaunay verifies the local Delaunay property across every
// unconstrained interior edge, returning the number of edges that fail it.
// Each undirected edge is checked from exactly one side (the lower
// triangle index), matching the reference implementation's botTi<topTi
// ordering so a shared edge isn't double counted.
func CheckDelaunay(m *mesh.Mesh, pts []geom.Point) int {
	failures := 0
	for botTi, alive := range m.Alive {
		if !alive {
			continue
		}
		for botVi, opp := range m.Opp[botTi].Edges {
			topTi := opp.Tri
			if topTi == mesh.NilTri || opp.Constraint || topTi < botTi {
				continue
			}
			a, b := m.EdgeVerts(botTi, int8(botVi))
			p := m.OppositeVertex(botTi, int8(botVi))
			q := m.OppositeVertex(topTi, opp.Vert)
			side := predicate.InCircle(pts[p], pts[a], pts[b], pts[q], p, a, b, q)
			if side == predicate.Inside {
				failures++
			}
		}
	}
	return failures
}

// CheckConstraints verifies that every requested constraint edge is present
// in the mesh and flagged as constrained, returning the number that
// weren't found. Unlike the reference implementation's fan walk -- which
// used a shared "j" loop counter, an INT_MAX sentinel to signal success,
// and stopped scanning entirely once it hit MaxWalking on the wrong branch
// -- this scans the edges of every live triangle in the mesh and reports a
// plain bool, so there's no ambiguity between "not found yet"
// and "found".
func CheckConstraints(m *mesh.Mesh, constraints []geom.Edge) int {
	failures := 0
	for _, e := range constraints {
		found, constrained := findConstraintEdge(m, e)
		if !found || !constrained {
			failures++
		}
	}
	return failures
}

func findConstraintEdge(m *mesh.Mesh, e geom.Edge) (found, constrained bool) {
	for ti, alive := range m.Alive {
		if !alive {
			continue
		}
		for vi := int8(0); vi < 3; vi++ {
			a, b := m.EdgeVerts(ti, vi)
			if (a == e.U && b == e.V) || (a == e.V && b == e.U) {
				return true, m.Opp[ti].Edges[vi].Constraint
			}
		}
	}
	return false, false
}
