package triangulate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/mesh"
	"github.com/nyquist-labs/paraflip/predicate"
	"github.com/nyquist-labs/paraflip/triangulate"
)

func compute(t *testing.T, in triangulate.Input, opts triangulate.Options) triangulate.Output {
	t.Helper()
	var out triangulate.Output
	require.NoError(t, triangulate.Compute(in, &out, opts))
	assertInvariants(t, out.Mesh, in.Points)
	return out
}

func TestScenario_Square(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	out := compute(t, triangulate.Input{Points: pts}, triangulate.Options{})
	assert.Equal(t, 2, out.NumTriangles)
}

func TestScenario_ColinearTripletPlusOne(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 1}}
	out := compute(t, triangulate.Input{Points: pts}, triangulate.Options{})
	assert.Equal(t, 2, out.NumTriangles)
}

func TestScenario_FourCoCircular(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	out := compute(t, triangulate.Input{Points: pts}, triangulate.Options{})
	assert.Equal(t, 2, out.NumTriangles, "SoS must produce a definite, valid triangulation of a co-circular square")
}

func TestScenario_Grid3x3(t *testing.T) {
	var pts []geom.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			pts = append(pts, geom.Point{X: float64(x), Y: float64(y)})
		}
	}
	out := compute(t, triangulate.Input{Points: pts}, triangulate.Options{})
	assert.Equal(t, 2*9-2-8, out.NumTriangles)
}

func TestScenario_ConstraintAcrossInterior(t *testing.T) {
	var pts []geom.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			pts = append(pts, geom.Point{X: float64(x), Y: float64(y)})
		}
	}
	out := compute(t, triangulate.Input{
		Points:      pts,
		Constraints: []geom.Edge{{U: 1, V: 7}},
	}, triangulate.Options{})

	found, constrained := edgeExists(out.Mesh, 1, 7)
	assert.True(t, found)
	assert.True(t, constrained)
}

func TestScenario_OrigPointIdxIsAPermutation(t *testing.T) {
	var pts []geom.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			pts = append(pts, geom.Point{X: float64(x), Y: float64(y)})
		}
	}
	out := compute(t, triangulate.Input{Points: pts}, triangulate.Options{})

	require.Len(t, out.OrigPointIdx, len(pts))
	seen := make([]bool, len(pts))
	for _, idx := range out.OrigPointIdx {
		require.False(t, seen[idx], "index %d repeated in OrigPointIdx", idx)
		seen[idx] = true
	}
	assert.NotZero(t, out.InfPt, "InfPt should be a real coordinate, not the zero value")
}

func TestScenario_DuplicatePoints(t *testing.T) {
	pts := []geom.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0},
	}
	out := compute(t, triangulate.Input{Points: pts}, triangulate.Options{})
	assert.Greater(t, out.NumTriangles, 0)
}

func TestInvalidInputTooFewPoints(t *testing.T) {
	var out triangulate.Output
	err := triangulate.Compute(triangulate.Input{Points: []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}}, &out, triangulate.Options{})
	require.Error(t, err)
	assert.IsType(t, &triangulate.InvalidInput{}, err)
}

func TestInvalidInputBadConstraintIndex(t *testing.T) {
	pts := []geom.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	var out triangulate.Output
	err := triangulate.Compute(triangulate.Input{
		Points:      pts,
		Constraints: []geom.Edge{{U: 0, V: 99}},
	}, &out, triangulate.Options{})
	require.Error(t, err)
	assert.IsType(t, &triangulate.InvalidInput{}, err)
}

func TestInsertAllRecordsFailedConstraintsInsteadOfAborting(t *testing.T) {
	var pts []geom.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			pts = append(pts, geom.Point{X: float64(x), Y: float64(y)})
		}
	}
	var out triangulate.Output
	err := triangulate.Compute(triangulate.Input{
		Points:      pts,
		Constraints: []geom.Edge{{U: 1, V: 7}},
	}, &out, triangulate.Options{InsertAll: true, MaxWalk: 0})
	require.NoError(t, err)
	assert.Greater(t, out.NumTriangles, 0)
}

func edgeExists(m *mesh.Mesh, u, v int) (bool, bool) {
	found, constrained := false, false
	m.Edges(func(t0 int, e0 int8, c bool) bool {
		a, b := m.EdgeVerts(t0, e0)
		if (a == u && b == v) || (a == v && b == u) {
			found, constrained = true, c
			return false
		}
		return true
	})
	return found, constrained
}

// assertInvariants checks the properties every successful Compute must
// satisfy: bidirectional adjacency, a valid Euler characteristic, and no
// unconstrained edge that violates the Delaunay property.
func assertInvariants(t *testing.T, m *mesh.Mesh, pts []geom.Point) {
	t.Helper()
	require.NotNil(t, m)

	verts := make(map[int]bool)
	edges := 0
	for ti, alive := range m.Alive {
		if !alive {
			continue
		}
		for _, v := range m.Tris[ti].Verts {
			verts[v] = true
		}
		for e, opp := range m.Opp[ti].Edges {
			if opp.Tri != mesh.NilTri {
				back := m.Opp[opp.Tri].Edges[opp.Vert]
				require.Equal(t, ti, back.Tri)
				require.Equal(t, int8(e), back.Vert)
			}
			if opp.Tri == mesh.NilTri || opp.Tri > ti {
				edges++
			}

			if opp.Tri == mesh.NilTri || opp.Constraint {
				continue
			}
			a, b := m.EdgeVerts(ti, int8(e))
			p := m.OppositeVertex(ti, int8(e))
			q := m.OppositeVertex(opp.Tri, opp.Vert)
			side := predicate.InCircle(pts[p], pts[a], pts[b], pts[q], p, a, b, q)
			assert.NotEqual(t, predicate.Inside, side, "edge (%d,%d) is not locally Delaunay", a, b)
		}
	}

	faces := m.NumLiveTris() + 1 // +1 for the outer face
	euler := len(verts) - edges + faces
	assert.Equal(t, 2, euler, "V-E+F must equal 2 for a connected planar triangulation")
}
