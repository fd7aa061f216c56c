// Package constraint inserts required edges into an existing triangulation:
// each requested edge either already exists in the mesh (found by walking
// the fan of triangles around one endpoint, counter-clockwise then
// clockwise) or is forced into existence by repeatedly flipping
// the mesh edges it currently crosses, a chain that terminates because
// each flip strictly reduces the number of crossings between the mesh and
// the segment being inserted.
package constraint

import (
	"github.com/nyquist-labs/paraflip/fixer"
	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/internal"
	"github.com/nyquist-labs/paraflip/mesh"
	"github.com/nyquist-labs/paraflip/predicate"
)

// Insert forces every edge in edges to exist in m, marking each as
// constrained so the fixer and future flips never remove it, then re-runs
// the fixer over everything else to restore the Delaunay property outside
// the constrained edges. It panics with an internal.EngineError, aborting
// the whole batch, on the first edge that can't be resolved within
// maxWalk steps -- see InsertOne to insert edges independently instead.
func Insert(m *mesh.Mesh, pts []geom.Point, edges []geom.Edge, maxWalk int) {
	for _, edge := range edges {
		InsertOne(m, pts, edge, maxWalk)
	}
	if _, err := fixer.Fix(m, pts, maxWalk); err != nil {
		internal.Throw("constraint: %v", err)
	}
}

// InsertOne forces a single edge to exist in m and marks it constrained,
// without re-running the fixer. Callers that want every edge attempted
// independently (rather than aborting the batch on the first failure)
// should call InsertOne per edge under their own recover, then run
// fixer.Fix once at the end themselves.
func InsertOne(m *mesh.Mesh, pts []geom.Point, edge geom.Edge, maxWalk int) {
	u, v := edge.U, edge.V
	if t, e, found := findEdge(m, u, v); found {
		m.SetConstraint(t, e, true)
		return
	}
	forceEdge(m, pts, u, v, maxWalk)
	t, e, found := findEdge(m, u, v)
	if !found {
		internal.Throw("constraint: edge %d-%d not realized after forcing", u, v)
	}
	m.SetConstraint(t, e, true)
}

// vertSlot returns the slot occupied by vertex v within triangle t, or -1.
func vertSlot(m *mesh.Mesh, t, v int) int8 {
	for i, vv := range m.Tris[t].Verts {
		if vv == v {
			return int8(i)
		}
	}
	return -1
}

// findEdge looks for an existing mesh edge between u and v by walking the
// fan of triangles around u, first counter-clockwise then clockwise. Each
// direction terminates either by finding v, by returning to the start
// (interior vertex, full loop), or by reaching a hull boundary -- so the
// walk is always bounded by the number of triangles incident on u.
func findEdge(m *mesh.Mesh, u, v int) (int, int8, bool) {
	if t, e, ok := walkAround(m, u, v, 1); ok {
		return t, e, true
	}
	return walkAround(m, u, v, 2)
}

func walkAround(m *mesh.Mesh, u, v int, step int8) (int, int8, bool) {
	start := m.VertTri[u]
	if start == mesh.NilTri {
		return 0, 0, false
	}
	t := start
	for {
		su := vertSlot(m, t, u)
		if su < 0 {
			return 0, 0, false
		}
		for i, vv := range m.Tris[t].Verts {
			if vv == v && int8(i) != su {
				third := int8(3) - su - int8(i)
				return t, third, true
			}
		}
		next := m.Opp[t].Edges[(su+step)%3].Tri
		if next == mesh.NilTri || next == start {
			return 0, 0, false
		}
		t = next
	}
}

// forceEdge makes the edge u-v exist by repeatedly flipping the mesh edges
// that currently cross the open segment (u,v). A candidate that isn't yet
// safe to flip (its quadrilateral isn't convex) is deferred to the back of
// the queue rather than dropped, since a later flip elsewhere in the chain
// can make it convex.
func forceEdge(m *mesh.Mesh, pts []geom.Point, u, v int, maxSteps int) {
	tri, e, ok := firstCrossing(m, pts, u, v)
	if !ok {
		internal.Throw("constraint: no crossing edge found from %d toward %d", u, v)
	}

	queue := []mesh.FlipItem{{Tri: tri, Vi: e}}
	steps := 0
	for len(queue) > 0 {
		steps++
		if steps > maxSteps {
			internal.Throw("constraint: forcing edge %d-%d did not converge within %d steps", u, v, maxSteps)
		}

		item := queue[0]
		queue = queue[1:]

		if !m.Alive[item.Tri] {
			continue
		}
		opp := m.Opp[item.Tri].Edges[item.Vi]
		if opp.Tri == mesh.NilTri {
			continue
		}
		a, b := m.EdgeVerts(item.Tri, item.Vi)
		if isEdge(a, b, u, v) {
			continue
		}
		if !properlyCrosses(pts, u, v, a, b) {
			continue
		}
		if !convexQuad(m, pts, item.Tri, item.Vi) {
			queue = append(queue, item)
			continue
		}

		m.Flip(item.Tri, item.Vi)
		// The new diagonal always lands at slot 2 of the triangle passed to
		// Flip; if it isn't u-v yet, it may still cross the segment further
		// on, so requeue it.
		na, nb := m.EdgeVerts(item.Tri, 2)
		if !isEdge(na, nb, u, v) {
			queue = append(queue, mesh.FlipItem{Tri: item.Tri, Vi: 2})
		}
	}
}

func isEdge(a, b, u, v int) bool {
	return (a == u && b == v) || (a == v && b == u)
}

// firstCrossing finds the triangle in u's fan whose far edge (the one not
// touching u) the segment u-v passes through: v must fall angularly
// between the far edge's two endpoints as seen from u.
func firstCrossing(m *mesh.Mesh, pts []geom.Point, u, v int) (int, int8, bool) {
	start := m.VertTri[u]
	if start == mesh.NilTri {
		return 0, 0, false
	}
	t := start
	for {
		su := vertSlot(m, t, u)
		if su < 0 {
			return 0, 0, false
		}
		a, b := m.EdgeVerts(t, su)
		oa := predicate.Orient2D(pts[u], pts[a], pts[v], u, a, v)
		ob := predicate.Orient2D(pts[u], pts[b], pts[v], u, b, v)
		if oa != ob {
			return t, su, true
		}
		next := m.Opp[t].Edges[(su+1)%3].Tri
		if next == mesh.NilTri || next == start {
			return 0, 0, false
		}
		t = next
	}
}

// properlyCrosses reports whether open segments (u,v) and (a,b) cross:
// their endpoints must straddle each other's supporting line.
func properlyCrosses(pts []geom.Point, u, v, a, b int) bool {
	d1 := predicate.Orient2D(pts[u], pts[v], pts[a], u, v, a)
	d2 := predicate.Orient2D(pts[u], pts[v], pts[b], u, v, b)
	d3 := predicate.Orient2D(pts[a], pts[b], pts[u], a, b, u)
	d4 := predicate.Orient2D(pts[a], pts[b], pts[v], a, b, v)
	return d1 != d2 && d3 != d4
}

// convexQuad reports whether the quadrilateral formed by the two triangles
// sharing edge (t, e) is convex, i.e. safe to flip without inverting
// either resulting triangle.
func convexQuad(m *mesh.Mesh, pts []geom.Point, t int, e int8) bool {
	opp := m.Opp[t].Edges[e]
	a, b := m.EdgeVerts(t, e)
	p := m.OppositeVertex(t, e)
	q := m.OppositeVertex(opp.Tri, opp.Vert)

	o1 := predicate.Orient2D(pts[p], pts[a], pts[q], p, a, q)
	o2 := predicate.Orient2D(pts[a], pts[q], pts[b], a, q, b)
	o3 := predicate.Orient2D(pts[q], pts[b], pts[p], q, b, p)
	o4 := predicate.Orient2D(pts[b], pts[p], pts[a], b, p, a)
	return o1 == o2 && o2 == o3 && o3 == o4
}
