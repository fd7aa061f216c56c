// Package fixer is the serial safety net behind the engine's parallel flip
// rounds: a single initial scan seeds a FIFO of every locally non-Delaunay
// edge, then each pop off the queue is flipped (if it's still bad),
// appended to a FlipItem log, and its four newly-exposed edges are pushed
// back onto the queue. The engine's own per-round legalization should
// already leave the mesh Delaunay; fixer exists for the cases that don't --
// input degenerate enough that a round's flip waves interact in ways the
// round-local candidate queue didn't anticipate -- and as the thing
// constraint insertion calls after it reopens the mesh to non-Delaunay
// edges while forcing a constraint segment in.
package fixer

import (
	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/mesh"
	"github.com/nyquist-labs/paraflip/predicate"
)

// Stuck reports that a fix pass made no progress toward convergence within
// the step budget -- evidence of a cycle or a corrupt mesh, since a finite
// triangulation has a finite number of legal flips before reaching a fixed
// point.
type Stuck struct {
	Steps int
}

func (e *Stuck) Error() string {
	return "fixer: did not converge to a Delaunay mesh within the step budget"
}

// Fix seeds a FIFO with every non-Delaunay edge found in one scan of the
// live mesh, then drains it: each item is flipped if it's still bad (an
// earlier flip may have already legalized it), the flip is appended to the
// returned log, and the two triangles' four other edges -- the only ones a
// flip can have made newly non-Delaunay -- are enqueued. It terminates
// because every flip strictly decreases the number of circumcircle
// inversions in the mesh, a quantity bounded below by zero. Constrained
// edges are never enqueued or flipped. maxSteps bounds the total number of
// flips performed.
func Fix(m *mesh.Mesh, pts []geom.Point, maxSteps int) ([]mesh.FlipItem, error) {
	var queue []mesh.FlipItem
	for t, alive := range m.Alive {
		if !alive {
			continue
		}
		for e := int8(0); e < 3; e++ {
			opp := m.Opp[t].Edges[e]
			if opp.Tri == mesh.NilTri || opp.Constraint || opp.Tri < t {
				continue
			}
			if violatesDelaunay(m, pts, t, e) {
				queue = append(queue, mesh.FlipItem{Tri: t, Vi: e})
			}
		}
	}

	var log []mesh.FlipItem
	steps := 0
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if !m.Alive[item.Tri] {
			continue
		}
		opp := m.Opp[item.Tri].Edges[item.Vi]
		if opp.Tri == mesh.NilTri || opp.Constraint || !violatesDelaunay(m, pts, item.Tri, item.Vi) {
			continue
		}

		steps++
		if steps > maxSteps {
			return log, &Stuck{Steps: steps}
		}

		t0, t1 := item.Tri, opp.Tri
		m.Flip(t0, item.Vi)
		log = append(log, mesh.FlipItem{Tri: t0, Vi: item.Vi})

		// mesh.Flip puts the new diagonal at slot 2 of both t0 and t1; their
		// slots 0 and 1 carry the four outer edges the flip just exposed.
		queue = append(queue,
			mesh.FlipItem{Tri: t0, Vi: 0}, mesh.FlipItem{Tri: t0, Vi: 1},
			mesh.FlipItem{Tri: t1, Vi: 0}, mesh.FlipItem{Tri: t1, Vi: 1},
		)
	}
	return log, nil
}

func violatesDelaunay(m *mesh.Mesh, pts []geom.Point, t int, e int8) bool {
	opp := m.Opp[t].Edges[e]
	a, b := m.EdgeVerts(t, e)
	p := m.OppositeVertex(t, e)
	q := m.OppositeVertex(opp.Tri, opp.Vert)
	return predicate.InCircle(pts[p], pts[a], pts[b], pts[q], p, a, b, q) == predicate.Inside
}
