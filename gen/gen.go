// Package gen synthesizes point sets and constraint sets for exercising the
// triangulation engine, mirroring the reference input generator's fixed
// menu of distributions so a run can be reproduced from just a name and a
// seed.
package gen

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/nyquist-labs/paraflip/geom"
)

// Distribution names one of the point-generation strategies below.
type Distribution string

const (
	Uniform    Distribution = "Uniform"
	Gaussian   Distribution = "Gaussian"
	Disk       Distribution = "Disk"
	ThinCircle Distribution = "ThinCircle"
	Circle     Distribution = "Circle"
	Grid       Distribution = "Grid"
	Ellipse    Distribution = "Ellipse"
	TwoLines   Distribution = "TwoLines"
)

var allDistributions = map[Distribution]func(*rand.Rand) geom.Point{
	Uniform:    uniformPoint,
	Gaussian:   gaussianPoint,
	Disk:       diskPoint,
	ThinCircle: thinCirclePoint,
	Circle:     circlePoint,
	Grid:       gridPoint,
	Ellipse:    ellipsePoint,
	TwoLines:   twoLinesPoint,
}

// ParseDistribution resolves a distribution by name, matching the fixed
// vocabulary the reference generator accepts.
func ParseDistribution(name string) (Distribution, error) {
	d := Distribution(name)
	if _, ok := allDistributions[d]; !ok {
		return "", fmt.Errorf("gen: unknown distribution %q", name)
	}
	return d, nil
}

// Points generates n distinct points from dist, seeded by seed. Every
// point's Z coordinate is set to cos(X), matching the reference generator;
// paraflip's triangulation never inspects Z, so this only round-trips
// through generation and file I/O.
func Points(dist Distribution, n int, seed int64) ([]geom.Point, error) {
	next, ok := allDistributions[dist]
	if !ok {
		return nil, fmt.Errorf("gen: unknown distribution %q", dist)
	}

	r := rand.New(rand.NewSource(seed))
	seen := make(map[geom.Point]struct{}, n)
	pts := make([]geom.Point, 0, n)
	for len(pts) < n {
		p := next(r)
		p.Z = math.Cos(p.X)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pts = append(pts, p)
	}
	return pts, nil
}

func uniformPoint(r *rand.Rand) geom.Point {
	return geom.Point{X: r.Float64(), Y: r.Float64()}
}

// gaussianPoint uses a Box-Muller transform, the same shape of generator as
// the reference nextGaussian.
func gaussianPoint(r *rand.Rand) geom.Point {
	u1, u2 := r.Float64(), r.Float64()
	if u1 == 0 {
		u1 = 1e-12
	}
	radius := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	return geom.Point{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
}

func diskPoint(r *rand.Rand) geom.Point {
	for {
		x := r.Float64() - 0.5
		y := r.Float64() - 0.5
		if x*x+y*y <= 0.45*0.45 {
			return geom.Point{X: x + 0.5, Y: y + 0.5}
		}
	}
}

func randCirclePoint(r *rand.Rand, radius float64) (float64, float64) {
	a := r.Float64() * math.Pi * 2
	return radius * math.Cos(a), radius * math.Sin(a)
}

func thinCirclePoint(r *rand.Rand) geom.Point {
	d := r.Float64() * 0.001
	x, y := randCirclePoint(r, 0.45+d)
	return geom.Point{X: x + 0.5, Y: y + 0.5}
}

func circlePoint(r *rand.Rand) geom.Point {
	x, y := randCirclePoint(r, 0.45)
	return geom.Point{X: x + 0.5, Y: y + 0.5}
}

// gridPoint snaps a uniform sample onto the nearest of 8192 lattice lines
// per axis, matching the reference generator's round-to-nearest-integer
// snap.
func gridPoint(r *rand.Rand) geom.Point {
	const lattice = 8192
	snap := func() float64 {
		val := r.Float64() * lattice
		frac := val - math.Floor(val)
		if frac < 0.5 {
			return math.Floor(val) / lattice
		}
		return math.Ceil(val) / lattice
	}
	return geom.Point{X: snap(), Y: snap()}
}

func ellipsePoint(r *rand.Rand) geom.Point {
	x, y := randCirclePoint(r, 0.45)
	return geom.Point{X: x/3.0 + 0.5, Y: y*2.0/3.0 + 0.5}
}

// twoLinesPoint picks one of two fixed segments with equal probability and
// a uniform parameter along it.
func twoLinesPoint(r *rand.Rand) geom.Point {
	type segment struct{ x0, y0, x1, y1 float64 }
	lines := [2]segment{
		{0, 0, 0.3, 0.5},
		{0.7, 0.5, 1, 1},
	}
	l := lines[0]
	if r.Float64() >= 0.5 {
		l = lines[1]
	}
	t := r.Float64()
	return geom.Point{X: (l.x1-l.x0)*t + l.x0, Y: (l.y1-l.y0)*t + l.y0}
}
