package gen_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyquist-labs/paraflip/gen"
	"github.com/nyquist-labs/paraflip/geom"
)

func TestPointsIsDeterministicForASeed(t *testing.T) {
	a, err := gen.Points(gen.Uniform, 200, 42)
	require.NoError(t, err)
	b, err := gen.Points(gen.Uniform, 200, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestPointsProducesNoDuplicates(t *testing.T) {
	pts, err := gen.Points(gen.Grid, 500, 7)
	require.NoError(t, err)
	seen := make(map[geom.Point]struct{}, len(pts))
	for _, p := range pts {
		_, dup := seen[p]
		assert.False(t, dup, "duplicate point %v", p)
		seen[p] = struct{}{}
	}
	assert.Len(t, pts, 500)
}

func TestPointsSetsZToCosX(t *testing.T) {
	pts, err := gen.Points(gen.Uniform, 20, 1)
	require.NoError(t, err)
	for _, p := range pts {
		assert.InDelta(t, math.Cos(p.X), p.Z, 1e-12)
	}
}

func TestParseDistributionRejectsUnknownNames(t *testing.T) {
	_, err := gen.ParseDistribution("Hexagonal")
	assert.Error(t, err)
}

func TestParseDistributionAcceptsEveryKnownName(t *testing.T) {
	for _, name := range []string{"Uniform", "Gaussian", "Disk", "ThinCircle", "Circle", "Grid", "Ellipse", "TwoLines"} {
		_, err := gen.ParseDistribution(name)
		assert.NoError(t, err, name)
	}
}

func TestPointsRoundTripsThroughIO(t *testing.T) {
	pts, err := gen.Points(gen.Uniform, 30, 99)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gen.WritePoints(&buf, pts))

	back, err := gen.ReadPoints(&buf)
	require.NoError(t, err)
	require.Len(t, back, len(pts))
	for i := range pts {
		assert.InDelta(t, pts[i].X, back[i].X, 1e-9)
		assert.InDelta(t, pts[i].Y, back[i].Y, 1e-9)
		assert.InDelta(t, pts[i].Z, back[i].Z, 1e-9)
	}
}

func TestReadPointsRejectsMalformedLines(t *testing.T) {
	_, err := gen.ReadPoints(strings.NewReader("0.0\n"))
	assert.Error(t, err)
}

func TestConstraintsRoundTripThroughIO(t *testing.T) {
	edges := []geom.Edge{{U: 0, V: 3}, {U: 1, V: 2}}

	var buf bytes.Buffer
	require.NoError(t, gen.WriteConstraints(&buf, edges))

	back, err := gen.ReadConstraints(&buf)
	require.NoError(t, err)
	assert.Equal(t, edges, back)
}

func TestReadConstraintsRejectsMalformedLines(t *testing.T) {
	_, err := gen.ReadConstraints(strings.NewReader("only-one-field\n"))
	assert.Error(t, err)
}

func TestLoadSVGPolygonExtractsVertices(t *testing.T) {
	const svg = `<svg xmlns="http://www.w3.org/2000/svg"><polygon points="0,0 10,0 10,10 0,10"/></svg>`
	pts, err := gen.LoadSVGPolygon(strings.NewReader(svg))
	require.NoError(t, err)
	require.Len(t, pts, 4)
	assert.Equal(t, geom.Point{X: 10, Y: 10}, pts[2])
}

func TestLoadSVGPolygonRejectsMissingPolygon(t *testing.T) {
	const svg = `<svg xmlns="http://www.w3.org/2000/svg"><rect width="1" height="1"/></svg>`
	_, err := gen.LoadSVGPolygon(strings.NewReader(svg))
	assert.Error(t, err)
}
