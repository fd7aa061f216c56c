package triangulate

// InvalidInput reports that the input point set or constraint list can't
// possibly be triangulated as given (too few points, a constraint
// referencing an out-of-range index).
type InvalidInput struct {
	Reason string
}

func (e *InvalidInput) Error() string {
	return "triangulate: invalid input: " + e.Reason
}

// EngineStuck reports that a bounded walk -- point location, flip
// legalization, or a constraint-forcing walk -- exceeded its step budget
// without converging.
type EngineStuck struct {
	Reason string
}

func (e *EngineStuck) Error() string {
	return "triangulate: did not converge: " + e.Reason
}

// PredicateDomain reports a geometric predicate call outside its documented
// domain, e.g. requesting an orientation test against a point set that no
// longer has the assumed number of vertices.
type PredicateDomain struct {
	Reason string
}

func (e *PredicateDomain) Error() string {
	return "triangulate: predicate domain error: " + e.Reason
}

// CapacityExceeded reports that the memory pool or an internal buffer ran
// out of room for the requested size.
type CapacityExceeded struct {
	Reason string
}

func (e *CapacityExceeded) Error() string {
	return "triangulate: capacity exceeded: " + e.Reason
}
