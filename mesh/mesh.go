// Package mesh is the pure data store for a triangulation in progress: an
// index-based triangle list plus its opposite-triangle adjacency, and
// nothing else. It carries no geometric logic — no predicate calls, no
// notion of "is this Delaunay" — so every higher layer (engine, fixer,
// constraint) can treat it as a plain, cheaply-copied set of parallel
// arrays.
//
// Vertices are referenced by index into an external point slice the mesh
// doesn't own; edges are referenced by (triangle index, local slot 0-2),
// exactly the encoding a Delaunay flip needs: "the edge opposite vertex slot
// v of triangle t".
package mesh

// NilTri marks the absence of a neighboring triangle: an edge on the
// current outer boundary of the mesh.
const NilTri = -1

// Tri is a triangle as three vertex indices, always stored counter-clockwise.
// Slot i's opposite edge is the one between the other two vertices, i.e.
// slot 0's opposite edge is (Verts[1], Verts[2]).
type Tri struct {
	Verts [3]int
}

// Opposite is one triangle's adjacency across the edge opposite a given
// vertex slot.
type Opposite struct {
	Tri        int  // NilTri if this edge is a mesh boundary
	Vert       int8 // the neighbor's vertex slot whose opposite edge is this same edge
	Constraint bool // true if this edge must survive every future flip
}

// TriOpp is the adjacency record for all three edges of a triangle,
// indexed the same way as the owning Tri.Verts.
type TriOpp struct {
	Edges [3]Opposite
}

// FlipItem names one candidate edge for the flip engine: the edge opposite
// vertex slot Vi of triangle Tri.
type FlipItem struct {
	Tri int
	Vi  int8
}

// Mesh is the triangle list plus its adjacency. Alive[i] false means slot i
// has been vacated by Kill and must be skipped; dead slots
// are only reclaimed by Compact, never reused mid-phase, so an index handed
// out during a phase stays valid until the next barrier.
type Mesh struct {
	Tris  []Tri
	Opp   []TriOpp
	Alive []bool

	// VertTri maps a vertex index to one triangle incident on it, used to
	// seed a walk from any given vertex (the constraint-insert walks start
	// here).
	VertTri []int
}

// New returns an empty mesh sized for nPoints vertices.
func New(nPoints int) *Mesh {
	vt := make([]int, nPoints)
	for i := range vt {
		vt[i] = NilTri
	}
	return &Mesh{VertTri: vt}
}

// AddTri appends a new triangle with no adjacency set and returns its
// index. Callers must Link its edges (or leave them NilTri for a genuine
// boundary) before the mesh is queried.
func (m *Mesh) AddTri(v0, v1, v2 int) int {
	id := len(m.Tris)
	m.Tris = append(m.Tris, Tri{Verts: [3]int{v0, v1, v2}})
	m.Opp = append(m.Opp, TriOpp{Edges: [3]Opposite{{Tri: NilTri}, {Tri: NilTri}, {Tri: NilTri}}})
	m.Alive = append(m.Alive, true)
	for _, v := range [3]int{v0, v1, v2} {
		if m.VertTri[v] == NilTri {
			m.VertTri[v] = id
		}
	}
	return id
}

// AllocTri appends a blank triangle slot -- zero vertices, all-boundary
// adjacency -- without touching VertTri. It exists for callers that split
// triangles across a pool of goroutines and only know a job's real vertices
// once every job's slots have been handed out; use AddTri instead whenever
// the vertices are already known.
func (m *Mesh) AllocTri() int {
	id := len(m.Tris)
	m.Tris = append(m.Tris, Tri{})
	m.Opp = append(m.Opp, TriOpp{Edges: [3]Opposite{{Tri: NilTri}, {Tri: NilTri}, {Tri: NilTri}}})
	m.Alive = append(m.Alive, true)
	return id
}

// Link records that edge (t0, e0) and edge (t1, e1) are the same undirected
// edge shared by two triangles, updating both sides' adjacency.
func (m *Mesh) Link(t0 int, e0 int8, t1 int, e1 int8) {
	m.Opp[t0].Edges[e0] = Opposite{Tri: t1, Vert: e1, Constraint: m.Opp[t0].Edges[e0].Constraint}
	m.Opp[t1].Edges[e1] = Opposite{Tri: t0, Vert: e0, Constraint: m.Opp[t1].Edges[e1].Constraint}
}

// SetConstraint marks (or clears) the constraint bit for edge (t, e) and
// its mirror on the far side, if any.
func (m *Mesh) SetConstraint(t int, e int8, constrained bool) {
	m.Opp[t].Edges[e].Constraint = constrained
	if nt := m.Opp[t].Edges[e].Tri; nt != NilTri {
		nv := m.Opp[t].Edges[e].Vert
		m.Opp[nt].Edges[nv].Constraint = constrained
	}
}

// OppositeVertex returns the vertex index of the vertex opposite edge slot
// e of triangle t (i.e. the vertex that is not one of the edge's two
// endpoints).
func (m *Mesh) OppositeVertex(t int, e int8) int {
	return m.Tris[t].Verts[e]
}

// EdgeVerts returns the two vertex indices that bound edge slot e of
// triangle t, in the triangle's counter-clockwise order.
func (m *Mesh) EdgeVerts(t int, e int8) (int, int) {
	v := m.Tris[t].Verts
	switch e {
	case 0:
		return v[1], v[2]
	case 1:
		return v[2], v[0]
	default:
		return v[0], v[1]
	}
}

// Kill marks a triangle as no longer part of the mesh. It is not removed
// from the backing slices until Compact runs, so indices captured earlier
// in the same phase remain valid to dereference (as dead) rather than
// silently referring to a different, later triangle.
func (m *Mesh) Kill(t int) {
	m.Alive[t] = false
}

// Flip performs the 2-2 edge flip across edge slot e0 of triangle t0 (whose
// opposite triangle is t1, via slot e1): the shared edge (a, b) rotates to
// become (v0, v1), the two triangles' apex vertices. It rewires adjacency on
// all four outer edges and always leaves the new diagonal at slot 2 of both
// t0 and t1, so callers can requeue affected edges by that fixed layout.
// Flip panics if the edge has no opposite triangle; a boundary edge is
// never a flip candidate.
func (m *Mesh) Flip(t0 int, e0 int8) {
	opp := m.Opp[t0].Edges[e0]
	t1, e1 := opp.Tri, opp.Vert
	if t1 == NilTri {
		panic("mesh: Flip called on a boundary edge")
	}

	v0 := m.Tris[t0].Verts[e0]
	v1 := m.Tris[t1].Verts[e1]
	a, b := m.EdgeVerts(t0, e0)

	// Outer neighbors, named by the edge they sit across before the flip.
	// t0's slots (starting at e0) run [v0, a, b], so its two non-shared
	// edges are (b,v0) at (e0+1)%3 and (v0,a) at (e0+2)%3; t1's mirror
	// that with [v1, b, a], so its two non-shared edges are (a,v1) at
	// (e1+1)%3 and (v1,b) at (e1+2)%3.
	oppA := m.Opp[t0].Edges[(e0+1)%3] // edge (b,v0)
	oppB := m.Opp[t0].Edges[(e0+2)%3] // edge (v0,a)
	oppC := m.Opp[t1].Edges[(e1+1)%3] // edge (a,v1)
	oppD := m.Opp[t1].Edges[(e1+2)%3] // edge (v1,b)

	m.Tris[t0] = Tri{Verts: [3]int{v0, v1, b}}
	m.Tris[t1] = Tri{Verts: [3]int{v1, v0, a}}

	// New t0 = (v0,v1,b): slot0's edge is (v1,b) = oppD, slot1's is
	// (b,v0) = oppA, slot2 is the new diagonal (v0,v1).
	m.Opp[t0] = TriOpp{Edges: [3]Opposite{
		oppD,
		oppA,
		{Tri: t1, Vert: 2}, // (v0,v1) shared new edge
	}}
	// New t1 = (v1,v0,a): slot0's edge is (v0,a) = oppB, slot1's is
	// (a,v1) = oppC, slot2 is the new diagonal (v1,v0).
	m.Opp[t1] = TriOpp{Edges: [3]Opposite{
		oppB,
		oppC,
		{Tri: t0, Vert: 2}, // (v1,v0) shared new edge
	}}

	relink(m, t0, 0, oppD)
	relink(m, t0, 1, oppA)
	relink(m, t1, 0, oppB)
	relink(m, t1, 1, oppC)

	m.VertTri[v0] = t0
	m.VertTri[v1] = t1
	m.VertTri[a] = t1
	m.VertTri[b] = t0
}

// relink fixes the far side of an outer edge carried across a flip to point
// back at its new (tri, slot) home.
func relink(m *Mesh, newTri int, newSlot int8, far Opposite) {
	if far.Tri == NilTri {
		return
	}
	m.Opp[far.Tri].Edges[far.Vert] = Opposite{Tri: newTri, Vert: newSlot, Constraint: far.Constraint}
}

// Compact drops dead triangles and remaps every surviving index, including
// VertTri and every Opp entry. It must only be called between phases (see
// the concurrency model): nothing may hold a triangle index across a call
// to Compact.
func (m *Mesh) Compact() {
	remap := make([]int, len(m.Tris))
	newTris := make([]Tri, 0, len(m.Tris))
	newOpp := make([]TriOpp, 0, len(m.Opp))

	for i, alive := range m.Alive {
		if !alive {
			remap[i] = NilTri
			continue
		}
		remap[i] = len(newTris)
		newTris = append(newTris, m.Tris[i])
		newOpp = append(newOpp, m.Opp[i])
	}

	for i := range newOpp {
		for e := range newOpp[i].Edges {
			if newOpp[i].Edges[e].Tri == NilTri {
				continue
			}
			newOpp[i].Edges[e].Tri = remap[newOpp[i].Edges[e].Tri]
		}
	}

	for v, t := range m.VertTri {
		if t == NilTri {
			continue
		}
		m.VertTri[v] = remap[t]
	}

	m.Tris = newTris
	m.Opp = newOpp
	m.Alive = make([]bool, len(newTris))
	for i := range m.Alive {
		m.Alive[i] = true
	}
}

// NumLiveTris reports how many triangles are currently alive.
func (m *Mesh) NumLiveTris() int {
	n := 0
	for _, a := range m.Alive {
		if a {
			n++
		}
	}
	return n
}

// Edges yields each undirected edge of the mesh exactly once (the boundary
// or the lower-indexed of the two triangles sharing it owns it), along with
// whether it is constrained.
func (m *Mesh) Edges(yield func(t0 int, e0 int8, constrained bool) bool) {
	for t, alive := range m.Alive {
		if !alive {
			continue
		}
		for e := int8(0); e < 3; e++ {
			opp := m.Opp[t].Edges[e]
			if opp.Tri != NilTri && opp.Tri < t {
				continue // owned by the other side already
			}
			if !yield(t, e, opp.Constraint) {
				return
			}
		}
	}
}
