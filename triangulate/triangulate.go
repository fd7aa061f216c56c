// Package triangulate is the orchestrator: it wires the engine, the fixer,
// and the constraint inserter into the single entry point external callers
// use, and is the one place in the module that turns an internal panic
// back into a normal Go error.
package triangulate

import (
	"errors"
	"fmt"
	"log"

	"github.com/nyquist-labs/paraflip/constraint"
	"github.com/nyquist-labs/paraflip/engine"
	"github.com/nyquist-labs/paraflip/fixer"
	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/internal"
	"github.com/nyquist-labs/paraflip/mesh"
)

// Input is the point set and, optionally, the constraint edges to
// triangulate around.
type Input struct {
	Points      []geom.Point
	Constraints []geom.Edge
}

// Output is the resulting mesh plus a couple of summary fields callers
// otherwise have to recompute themselves.
type Output struct {
	Mesh              *mesh.Mesh
	NumTriangles      int
	FailedConstraints []geom.Edge // only populated when Options.InsertAll is set
	// OrigPointIdx is a permutation of 0..len(input.Points)-1: the order in
	// which the engine fed points to the incremental builder.
	OrigPointIdx []int
	// InfPt is a representative coordinate for the synthetic point at
	// infinity used to close the hull; see engine.Result.InfPt.
	InfPt geom.Point
}

// Options tunes a Compute call. The zero value is a usable default: sorted
// insertion order, reordering enabled, a generous walk budget, and silent
// operation.
type Options struct {
	// InsertAll makes constraint insertion best-effort: a constraint edge
	// that can't be forced into the mesh is recorded in
	// Output.FailedConstraints instead of aborting the whole computation.
	InsertAll bool
	// NoSort disables the locality presort of insertion order.
	NoSort bool
	// NoReorder disables the post-build compaction pass that keeps
	// triangle indices dense; kept for parity with the external interface
	// even though Compute always compacts internally between phases for
	// correctness -- setting it only skips the final tidy-up pass.
	NoReorder bool
	// Verbose turns on phase-by-phase logging through Logger (or the
	// standard logger, if Logger is nil).
	Verbose bool
	Logger  *log.Logger
	// MaxWalk caps every bounded walk in the engine, fixer, and constraint
	// inserter. Zero means the default of 1,000,000 steps.
	MaxWalk int
}

func (o Options) logger() *log.Logger {
	if !o.Verbose {
		return nil
	}
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o Options) maxWalk() int {
	if o.MaxWalk > 0 {
		return o.MaxWalk
	}
	return 1_000_000
}

// Compute triangulates input.Points, honoring input.Constraints, and
// writes the result into output. It never panics: every internal failure
// (a stuck walk, a malformed constraint) is recovered at this boundary and
// returned as one of the error types in errors.go.
func Compute(input Input, output *Output, opts Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if cause := internal.HandleRecover(r); cause != nil {
				err = &EngineStuck{Reason: cause.Error()}
			}
		}
	}()

	if verr := validate(input); verr != nil {
		return verr
	}

	logger := opts.logger()
	maxWalk := opts.maxWalk()

	built, buildErr := engine.Build(input.Points, engine.Config{
		MaxWalk: maxWalk,
		NoSort:  opts.NoSort,
		Logger:  logger,
	})
	if buildErr != nil {
		var stuck *engine.Stuck
		if errors.As(buildErr, &stuck) {
			return &EngineStuck{Reason: stuck.Error()}
		}
		return buildErr
	}
	m := built.Mesh

	if _, fixErr := fixer.Fix(m, input.Points, maxWalk); fixErr != nil {
		var stuck *fixer.Stuck
		if errors.As(fixErr, &stuck) {
			return &EngineStuck{Reason: stuck.Error()}
		}
		return fixErr
	}

	var failed []geom.Edge
	if len(input.Constraints) > 0 {
		if opts.InsertAll {
			failed = insertBestEffort(m, input.Points, input.Constraints, maxWalk)
		} else {
			constraint.Insert(m, input.Points, input.Constraints, maxWalk)
		}
	}

	if !opts.NoReorder {
		m.Compact()
	}

	if logger != nil {
		logger.Printf("triangulate: done: %d triangles, %d constraint(s) failed", m.NumLiveTris(), len(failed))
	}

	output.Mesh = m
	output.NumTriangles = m.NumLiveTris()
	output.FailedConstraints = failed
	output.OrigPointIdx = built.OrigPointIdx
	output.InfPt = built.InfPt
	return nil
}

// insertBestEffort attempts each constraint edge under its own recover, so
// one bad edge doesn't take the rest of the batch down with it, then runs
// the fixer once at the end over whatever succeeded.
func insertBestEffort(m *mesh.Mesh, pts []geom.Point, edges []geom.Edge, maxWalk int) []geom.Edge {
	var failed []geom.Edge
	for _, edge := range edges {
		if !tryInsertOne(m, pts, edge, maxWalk) {
			failed = append(failed, edge)
		}
	}
	if _, err := fixer.Fix(m, pts, maxWalk); err != nil {
		internal.Throw("triangulate: %v", err)
	}
	return failed
}

func tryInsertOne(m *mesh.Mesh, pts []geom.Point, edge geom.Edge, maxWalk int) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if internal.HandleRecover(r) != nil {
				ok = false
				return
			}
		}
	}()
	constraint.InsertOne(m, pts, edge, maxWalk)
	return true
}

func validate(input Input) error {
	if len(input.Points) < 3 {
		return &InvalidInput{Reason: fmt.Sprintf("need at least 3 points, got %d", len(input.Points))}
	}
	n := len(input.Points)
	for _, e := range input.Constraints {
		if e.U < 0 || e.U >= n || e.V < 0 || e.V >= n {
			return &InvalidInput{Reason: fmt.Sprintf("constraint edge %v references an out-of-range point", e)}
		}
		if e.U == e.V {
			return &InvalidInput{Reason: fmt.Sprintf("constraint edge %v has identical endpoints", e)}
		}
	}
	return nil
}
