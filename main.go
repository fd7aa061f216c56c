// Command paraflip triangulates a point set, optionally forcing constraint
// edges into the result, and reports or draws what it built.
//
// Points can come from a file (-points) or be synthesized from one of the
// named distributions (-distribution/-count/-seed). Constraint edges are
// read from -constraints, if given.
package main

import (
	"fmt"
	"log"
	"os"

	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/nyquist-labs/paraflip/checker"
	"github.com/nyquist-labs/paraflip/dbg"
	"github.com/nyquist-labs/paraflip/gen"
	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/triangulate"
)

var (
	pointsPath      = kingpin.Flag("points", "path to a whitespace-separated points file; overrides -distribution").String()
	constraintsPath = kingpin.Flag("constraints", "path to a two-column constraint edge file").String()
	distribution    = kingpin.Flag("distribution", "point distribution to synthesize").Default("Uniform").String()
	count           = kingpin.Flag("count", "number of points to synthesize").Default("1000").Int()
	seed            = kingpin.Flag("seed", "random seed for synthesized points").Default("1").Int64()
	outputPath      = kingpin.Flag("output", "path to write the resulting points file to").String()

	insertAll = kingpin.Flag("insert-all", "make constraint insertion best-effort instead of aborting on the first failure").Bool()
	noSort    = kingpin.Flag("no-sort", "disable the locality presort of insertion order").Bool()
	noReorder = kingpin.Flag("no-reorder", "skip the final triangle-index compaction pass").Bool()
	verbose   = kingpin.Flag("verbose", "log phase-by-phase progress").Bool()
	maxWalk   = kingpin.Flag("max-walk", "cap on every bounded walk (0 means the built-in default)").Int()

	runChecker = kingpin.Flag("checker", "run the independent mesh-validity checks and print their results").Bool()
	drawPath   = kingpin.Flag("draw", "render the resulting mesh to this PNG path").String()
)

func main() {
	kingpin.Parse()

	pts, err := loadPoints()
	if err != nil {
		log.Fatalf("paraflip: %v", err)
	}

	var constraints []geom.Edge
	if *constraintsPath != "" {
		constraints, err = loadConstraints()
		if err != nil {
			log.Fatalf("paraflip: %v", err)
		}
	}

	opts := triangulate.Options{
		InsertAll: *insertAll,
		NoSort:    *noSort,
		NoReorder: *noReorder,
		Verbose:   *verbose,
		MaxWalk:   *maxWalk,
	}

	var out triangulate.Output
	if err := triangulate.Compute(triangulate.Input{Points: pts, Constraints: constraints}, &out, opts); err != nil {
		log.Fatalf("paraflip: %v", err)
	}

	fmt.Printf("triangulated %d points into %d triangles\n", len(pts), out.NumTriangles)
	if len(out.FailedConstraints) > 0 {
		fmt.Printf("%d constraint(s) could not be forced into the mesh: %v\n", len(out.FailedConstraints), out.FailedConstraints)
	}

	if *runChecker {
		checker.Run(os.Stdout, out.Mesh, pts, constraints)
	}

	if *outputPath != "" {
		if err := writeOutput(pts); err != nil {
			log.Fatalf("paraflip: writing output: %v", err)
		}
	}

	if *drawPath != "" {
		if err := dbg.Draw(out.Mesh, pts, *drawPath, 40); err != nil {
			log.Fatalf("paraflip: drawing mesh: %v", err)
		}
	}
}

func loadPoints() ([]geom.Point, error) {
	if *pointsPath != "" {
		f, err := os.Open(*pointsPath)
		if err != nil {
			return nil, fmt.Errorf("opening points file: %w", err)
		}
		defer f.Close()
		return gen.ReadPoints(f)
	}

	dist, err := gen.ParseDistribution(*distribution)
	if err != nil {
		return nil, err
	}
	return gen.Points(dist, *count, *seed)
}

func loadConstraints() ([]geom.Edge, error) {
	f, err := os.Open(*constraintsPath)
	if err != nil {
		return nil, fmt.Errorf("opening constraints file: %w", err)
	}
	defer f.Close()
	return gen.ReadConstraints(f)
}

func writeOutput(pts []geom.Point) error {
	f, err := os.Create(*outputPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return gen.WritePoints(f, pts)
}
