package checker_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyquist-labs/paraflip/checker"
	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/triangulate"
)

func grid3x3() []geom.Point {
	var pts []geom.Point
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			pts = append(pts, geom.Point{X: float64(x), Y: float64(y)})
		}
	}
	return pts
}

func TestRunPassesOnAPlainTriangulation(t *testing.T) {
	pts := grid3x3()
	var out triangulate.Output
	require.NoError(t, triangulate.Compute(triangulate.Input{Points: pts}, &out, triangulate.Options{}))

	var buf bytes.Buffer
	r := checker.Run(&buf, out.Mesh, pts, nil)
	assert.True(t, r.Passed())
	assert.Equal(t, 0, r.AdjacencyFailures)
	assert.Equal(t, 0, r.MisorientedTris)
	assert.Equal(t, 0, r.DelaunayFailures)
	assert.Contains(t, buf.String(), "Euler check")
}

func TestRunReportsSatisfiedConstraints(t *testing.T) {
	pts := grid3x3()
	edges := []geom.Edge{{U: 1, V: 7}}
	var out triangulate.Output
	require.NoError(t, triangulate.Compute(triangulate.Input{Points: pts, Constraints: edges}, &out, triangulate.Options{}))

	var buf bytes.Buffer
	r := checker.Run(&buf, out.Mesh, pts, edges)
	assert.True(t, r.ConstraintsOK)
	assert.Equal(t, 0, r.MissingConstraints)
}

func TestCheckConstraintsFlagsAMissingEdge(t *testing.T) {
	pts := grid3x3()
	var out triangulate.Output
	require.NoError(t, triangulate.Compute(triangulate.Input{Points: pts}, &out, triangulate.Options{}))

	missing := checker.CheckConstraints(out.Mesh, []geom.Edge{{U: 1, V: 7}, {U: 0, V: 8}})
	assert.Equal(t, 2, missing)
}

func TestCheckEulerMatchesLiveMeshCounts(t *testing.T) {
	pts := grid3x3()
	var out triangulate.Output
	require.NoError(t, triangulate.Compute(triangulate.Input{Points: pts}, &out, triangulate.Options{}))

	var r checker.Report
	vertices, edges, triangles := checker.CheckEuler(&r, out.Mesh)
	assert.Equal(t, 9, vertices)
	assert.Equal(t, out.NumTriangles, triangles)
	assert.True(t, r.EulerOK)
	assert.Greater(t, edges, 0)
}
