package mesh_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyquist-labs/paraflip/mesh"
)

// twoTriSquare builds the two-triangle fan over a unit square, split along
// the (1,3) diagonal: t0=(0,1,3), t1=(1,2,3).
func twoTriSquare(t *testing.T) *mesh.Mesh {
	t.Helper()
	m := mesh.New(4)
	t0 := m.AddTri(0, 1, 3)
	t1 := m.AddTri(1, 2, 3)
	// Shared edge is (1,3): in t0 that's slot 0 (opposite vertex 0); in t1
	// that's slot 1 (opposite vertex 2).
	m.Link(t0, 0, t1, 1)
	return m
}

func TestLinkIsBidirectional(t *testing.T) {
	m := twoTriSquare(t)
	require.Equal(t, 1, m.Opp[0].Edges[0].Tri)
	require.Equal(t, int8(1), m.Opp[0].Edges[0].Vert)
	require.Equal(t, 0, m.Opp[1].Edges[1].Tri)
	require.Equal(t, int8(0), m.Opp[1].Edges[1].Vert)
}

func TestFlipPreservesVertexSet(t *testing.T) {
	m := twoTriSquare(t)

	before := make(map[int]bool)
	for _, tri := range m.Tris {
		for _, v := range tri.Verts {
			before[v] = true
		}
	}

	m.Flip(0, 0)

	after := make(map[int]bool)
	for i, alive := range m.Alive {
		if !alive {
			continue
		}
		for _, v := range m.Tris[i].Verts {
			after[v] = true
		}
	}
	assert.Equal(t, before, after, "flip must not create or drop a vertex")
}

func TestFlipKeepsAdjacencyConsistent(t *testing.T) {
	m := twoTriSquare(t)
	m.Flip(0, 0)

	assertBidirectional(t, m)
}

// TestFlipRewiresOuterAdjacencyToCorrectSlots builds a fan of six triangles
// so that every edge touched by the central flip has a real neighbor on the
// far side, not a NilTri boundary -- a mislabeled slot would still pass
// assertBidirectional's back-pointer check (both sides would agree on the
// wrong slot), so this also checks that each edge's vertex pair, per
// EdgeVerts, matches what the opposite triangle reports for the same slot.
func TestFlipRewiresOuterAdjacencyToCorrectSlots(t *testing.T) {
	m := mesh.New(8)
	t0 := m.AddTri(0, 1, 3) // slot0 edge (1,3): shared diagonal
	t1 := m.AddTri(1, 2, 3) // slot1 edge (3,1): shared diagonal
	t2 := m.AddTri(0, 3, 4) // slot2 edge (0,3): borders t0's (3,0)
	t3 := m.AddTri(1, 0, 7) // slot2 edge (1,0): borders t0's (0,1)
	t4 := m.AddTri(3, 2, 5) // slot2 edge (3,2): borders t1's (2,3)
	t5 := m.AddTri(2, 1, 6) // slot2 edge (2,1): borders t1's (1,2)

	m.Link(t0, 0, t1, 1)
	m.Link(t0, 1, t2, 2)
	m.Link(t0, 2, t3, 2)
	m.Link(t1, 0, t4, 2)
	m.Link(t1, 2, t5, 2)

	m.Flip(t0, 0)

	assertBidirectional(t, m)
	assertEdgesMatchNeighbors(t, m)

	assert.Equal(t, [3]int{0, 2, 3}, m.Tris[t0].Verts)
	assert.Equal(t, [3]int{2, 0, 1}, m.Tris[t1].Verts)

	assert.Equal(t, t4, m.Opp[t0].Edges[0].Tri, "t0 slot0 (2,3) should now border t4")
	assert.Equal(t, t2, m.Opp[t0].Edges[1].Tri, "t0 slot1 (3,0) should still border t2")
	assert.Equal(t, t3, m.Opp[t1].Edges[0].Tri, "t1 slot0 (0,1) should still border t3")
	assert.Equal(t, t5, m.Opp[t1].Edges[1].Tri, "t1 slot1 (1,2) should now border t5")
	assert.Equal(t, t1, m.Opp[t0].Edges[2].Tri, "t0 slot2 is the new diagonal")
	assert.Equal(t, t0, m.Opp[t1].Edges[2].Tri, "t1 slot2 is the new diagonal")
}

func TestCompactRemapsSurvivors(t *testing.T) {
	m := twoTriSquare(t)
	m.Kill(0)
	m.Compact()

	require.Equal(t, 1, m.NumLiveTris())
	assert.Equal(t, [3]int{1, 2, 3}, m.Tris[0].Verts)
	for _, e := range m.Opp[0].Edges {
		assert.Equal(t, mesh.NilTri, e.Tri)
	}
}

func TestEdgesVisitEachUndirectedEdgeOnce(t *testing.T) {
	m := twoTriSquare(t)

	seen := 0
	m.Edges(func(t0 int, e0 int8, constrained bool) bool {
		seen++
		return true
	})
	// 2 triangles * 3 edges, one shared: (2*3+2*3)/2... boundary edges
	// count once each (4 of them) plus the shared edge once = 5.
	assert.Equal(t, 5, seen)
}

// assertEdgesMatchNeighbors checks that every live edge's vertex pair is the
// exact reverse of what the opposite triangle reports for its own slot --
// bidirectional Tri/Vert back-pointers alone can't catch a flip that wires a
// correct-looking but wrong pair of slots together.
func assertEdgesMatchNeighbors(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	for ti, alive := range m.Alive {
		if !alive {
			continue
		}
		for e := int8(0); e < 3; e++ {
			opp := m.Opp[ti].Edges[e]
			if opp.Tri == mesh.NilTri {
				continue
			}
			a, b := m.EdgeVerts(ti, e)
			oa, ob := m.EdgeVerts(opp.Tri, opp.Vert)
			require.Equal(t, a, ob, "edge (%d,%d) vertex mismatch with neighbor", ti, e)
			require.Equal(t, b, oa, "edge (%d,%d) vertex mismatch with neighbor", ti, e)
		}
	}
}

func assertBidirectional(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	for ti, alive := range m.Alive {
		if !alive {
			continue
		}
		for e, opp := range m.Opp[ti].Edges {
			if opp.Tri == mesh.NilTri {
				continue
			}
			back := m.Opp[opp.Tri].Edges[opp.Vert]
			require.Equal(t, ti, back.Tri, "edge (%d,%d) opposite does not point back", ti, e)
			require.Equal(t, int8(e), back.Vert, "edge (%d,%d) opposite slot mismatch", ti, e)
		}
	}
}
