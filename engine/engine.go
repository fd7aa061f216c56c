// Package engine builds a Delaunay triangulation from a point set using
// bulk-synchronous rounds: a read-only Locate phase (parallel), a Vote
// phase that resolves multiple points landing in the same triangle, a
// Splay phase that performs the accepted 1-to-3 splits (parallel prepare,
// serial commit of the shared edges the split touches), and a Flip phase
// that legalizes the edges those splits disturbed -- itself run as a
// sequence of waves, each testing candidates in parallel and applying a
// conflict-free subset serially, exactly the pattern the vote protocol
// exists for.
//
// No phase mutates the mesh while another phase is reading it: Locate and
// the per-wave incircle tests only ever read, the splay-prepare step writes
// only its own job's triangle slots, and every other write happens after
// their errgroup has returned. This is what makes it safe to hand the same
// *mesh.Mesh to many goroutines at once.
//
// The hull is closed from the very first triangle by a single synthetic
// point at infinity, P∞, rather than by a coordinate-based super-triangle:
// every triangle that touches P∞ stands in for the unbounded region outside
// the current hull, and hull growth is nothing more than the ordinary split
// of whichever infinite triangle a new point lands in. P∞ carries no
// coordinate of its own -- see orientToInf -- so it never needs a
// deliberately-oversized point that could itself distort a predicate.
package engine

import (
	"context"
	"log"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nyquist-labs/paraflip/geom"
	"github.com/nyquist-labs/paraflip/mesh"
	"github.com/nyquist-labs/paraflip/pool"
	"github.com/nyquist-labs/paraflip/predicate"
)

// flipCandidate is the scratch record one wave of flipToFixedPoint tests in
// parallel; named at package scope so its buffers are poolable by type.
type flipCandidate struct {
	item   mesh.FlipItem
	accept bool
}

// Config tunes a Build run.
type Config struct {
	// MaxWalk caps both point-location walks and flip-legalization waves;
	// exceeding it means the mesh is corrupt, not merely large.
	MaxWalk int
	// NoSort skips the locality presort of insertion order.
	NoSort bool
	// Logger receives one line per bulk-synchronous round when non-nil.
	Logger *log.Logger
}

// DefaultConfig matches the values the CLI falls back to.
func DefaultConfig() Config {
	return Config{MaxWalk: 1_000_000}
}

// Stuck reports that a walk (point location or flip legalization) ran past
// Config.MaxWalk steps without converging.
type Stuck struct {
	Where string
	Steps int
}

func (e *Stuck) Error() string {
	return "engine: " + e.Where + " did not converge within the step budget"
}

// Result is everything Build produces: the mesh itself plus the two fields
// the mesh alone can't carry -- the order points were actually inserted in,
// and a representative coordinate for the point at infinity used to close
// the hull.
type Result struct {
	Mesh *mesh.Mesh
	// OrigPointIdx is a permutation of 0..len(pts)-1: the order in which
	// input points were fed to the incremental builder (after the
	// locality presort, unless Config.NoSort was set).
	OrigPointIdx []int
	// InfPt is a coordinate placed outside the input bounding box, beyond
	// its upper-right corner (see infinityCoord). It is
	// never consulted by the algorithm itself -- P∞'s orientation and
	// incircle behavior are both defined without reference to any
	// coordinate -- and exists only so callers that want to draw or report
	// the point at infinity have something concrete to show.
	InfPt geom.Point
}

// Build triangulates pts, returning a mesh whose vertex indices are exactly
// 0..len(pts)-1: every triangle touching the synthetic point at infinity
// used to bootstrap and grow the hull is stripped before returning.
func Build(pts []geom.Point, cfg Config) (Result, error) {
	if len(pts) < 3 {
		panic("engine: need at least 3 points")
	}
	if cfg.MaxWalk == 0 {
		cfg.MaxWalk = DefaultConfig().MaxWalk
	}

	infIdx := len(pts)
	origOrder := insertionOrder(len(pts), cfg.NoSort, pts)

	m := bootstrap(pts, infIdx, origOrder)

	arena := pool.New()
	pool.Reserve[int](arena, len(pts))

	pending := append([]int(nil), origOrder[3:]...)
	round := 0

	for len(pending) > 0 {
		round++

		located, err := locateAll(arena, m, pts, infIdx, pending, cfg.MaxWalk)
		if err != nil {
			return Result{}, err
		}

		winners, deferred := vote(pending, located)
		pool.Release(arena, located)

		queue := splitAll(m, winners)

		if err := flipToFixedPoint(arena, m, pts, infIdx, queue, cfg.MaxWalk); err != nil {
			return Result{}, err
		}

		if cfg.Logger != nil {
			cfg.Logger.Printf("engine: round %d candidates=%d inserted=%d deferred=%d live_tris=%d",
				round, len(pending), len(winners), len(deferred), m.NumLiveTris())
		}
		pending = deferred
	}

	stripInfinity(m, infIdx)
	m.Compact()
	m.VertTri = m.VertTri[:len(pts)]
	// Stripping can kill a hull vertex's VertTri entry; reseed every vertex
	// from a surviving triangle.
	for v := range m.VertTri {
		m.VertTri[v] = mesh.NilTri
	}
	for ti, tri := range m.Tris {
		for _, v := range tri.Verts {
			m.VertTri[v] = ti
		}
	}
	return Result{Mesh: m, OrigPointIdx: origOrder, InfPt: infinityCoord(pts)}, nil
}

// bootstrap builds the very first mesh: a seed triangle from the first
// three points of order (reoriented CCW if necessary -- SoS guarantees
// Orient2D never actually reports Collinear for three distinct points), and
// a fan of three triangles from P∞ around the seed's three edges, so that
// every edge of the mesh already has a neighbor and the flip/split phases
// never need to special-case a NilTri boundary while any real point remains
// to be inserted.
func bootstrap(pts []geom.Point, infIdx int, order []int) *mesh.Mesh {
	ia, ib, ic := order[0], order[1], order[2]
	if predicate.Orient2D(pts[ia], pts[ib], pts[ic], ia, ib, ic) == predicate.Clockwise {
		ib, ic = ic, ib
	}

	m := mesh.New(infIdx + 1)
	seed := m.AddTri(ia, ib, ic)

	var edges [3][2]int
	for i := 0; i < 3; i++ {
		u, v := m.EdgeVerts(seed, int8(i))
		edges[i] = [2]int{u, v}
	}

	fan := make([]int, 3)
	for i := 0; i < 3; i++ {
		u, v := edges[i][0], edges[i][1]
		fan[i] = m.AddTri(v, u, infIdx)
		m.Link(seed, int8(i), fan[i], 2)
	}
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		m.Link(fan[i], 1, fan[j], 0)
	}
	return m
}

// infinityCoord picks a reporting-only coordinate for P∞, placed outside
// pts' bounding box one span beyond its maximum X and maximum Y.
func infinityCoord(pts []geom.Point) geom.Point {
	minX, minY, maxX, maxY := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	return geom.Point{X: maxX + span, Y: maxY + span}
}

// orientToInf returns orient2d(a, b, P∞): the sign of the turn from a to b
// as seen against the fixed direction P∞ recedes toward. Following an ideal
// point to infinity along direction d makes orient2d(a,b,P) converge to the
// sign of cross(b-a, d); taking d as due east (1,0) reduces that to
// sign(a.Y-b.Y), tie-broken by comparing X (an infinitesimal northward tilt
// on the east direction) so the result is always definite for a != b. This
// is the SoS orientation rule the point at infinity is specified to have,
// expressed without ever giving P∞ a coordinate.
func orientToInf(a, b geom.Point) predicate.Orient {
	if a.Y != b.Y {
		if a.Y > b.Y {
			return predicate.CounterClockwise
		}
		return predicate.Clockwise
	}
	if a.X != b.X {
		if b.X > a.X {
			return predicate.CounterClockwise
		}
		return predicate.Clockwise
	}
	return predicate.Collinear
}

// orient generalizes predicate.Orient2D to a triple of vertex indices that
// may include infIdx, reducing any placement of P∞ to orientToInf via the
// standard rotation/swap parity identities for orient2d's argument order.
func orient(pts []geom.Point, infIdx, u, v, w int) predicate.Orient {
	switch infIdx {
	case u:
		return orientToInf(pts[v], pts[w])
	case v:
		return -orientToInf(pts[u], pts[w])
	case w:
		return orientToInf(pts[u], pts[v])
	default:
		return predicate.Orient2D(pts[u], pts[v], pts[w], u, v, w)
	}
}

// locateAll finds, for every pending point, the currently-alive triangle
// that contains it. It only reads the mesh, so every point's walk runs
// concurrently. The returned slice is borrowed from arena and must be
// handed back via pool.Release once the caller is done with it.
func locateAll(arena *pool.Pool, m *mesh.Mesh, pts []geom.Point, infIdx int, pending []int, maxWalk int) ([]int, error) {
	located := pool.Get[int](arena, len(pending))
	g, _ := errgroup.WithContext(context.Background())
	for i, p := range pending {
		i, p := i, p
		g.Go(func() error {
			tri, err := locate(m, pts, infIdx, p, maxWalk)
			if err != nil {
				return err
			}
			located[i] = tri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		pool.Release(arena, located)
		return nil, err
	}
	return located, nil
}

// locate walks from an arbitrary live triangle toward the one containing
// point p, crossing whichever edge p lies on the far side of. Every
// triangle in the mesh has real adjacency on all three edges once bootstrap
// has run -- the hull is always closed by a fan touching P∞ -- so the walk
// never needs to stop at a NilTri boundary.
func locate(m *mesh.Mesh, pts []geom.Point, infIdx int, p int, maxWalk int) (int, error) {
	tri := firstAlive(m)
	for steps := 0; ; steps++ {
		if steps > maxWalk {
			return 0, &Stuck{Where: "point location", Steps: steps}
		}
		moved := false
		for e := int8(0); e < 3; e++ {
			a, b := m.EdgeVerts(tri, e)
			if orient(pts, infIdx, a, b, p) == predicate.Clockwise {
				tri = m.Opp[tri].Edges[e].Tri
				moved = true
				break
			}
		}
		if !moved {
			return tri, nil
		}
	}
}

func firstAlive(m *mesh.Mesh) int {
	for i, alive := range m.Alive {
		if alive {
			return i
		}
	}
	panic("engine: mesh has no live triangles")
}

// vote resolves the case where two or more pending points located to the
// same triangle in the same round: only one may split it this round (its
// competitors' target triangle won't exist afterward), chosen
// deterministically -- lowest point index wins -- so the result never
// depends on goroutine scheduling. Losers are returned for the next round.
func vote(pending, located []int) (winners map[int]int, deferred []int) {
	winners = make(map[int]int, len(pending))
	for i, p := range pending {
		tri := located[i]
		if cur, ok := winners[tri]; !ok || p < cur {
			winners[tri] = p
		}
	}
	claimed := make(map[int]bool, len(winners))
	for i, p := range pending {
		tri := located[i]
		if winners[tri] == p && !claimed[tri] {
			claimed[tri] = true
			continue
		}
		deferred = append(deferred, p)
	}
	return winners, deferred
}

// splitJob is one winner's 1-to-3 split: tri is reused for the first of the
// three resulting triangles, tB and tC are pre-allocated slots for the
// other two. v0..v2 and the outerX adjacency are captured by prepareSplit
// (a pure read of tri's pre-split state) before it overwrites tri itself.
type splitJob struct {
	tri, p, tB, tC         int
	v0, v1, v2             int
	outerA, outerB, outerC mesh.Opposite
}

// splitAll performs one round's accepted splits: preparing every job
// (reading each winner's host triangle and writing only that job's own
// three triangle slots) runs in parallel across jobs, since no two winners
// share a host triangle; the writes that reach outside a job's own slots --
// fixing the far side of each outer edge's back-pointer, and updating
// VertTri for shared vertices -- are applied serially afterward.
func splitAll(m *mesh.Mesh, winners map[int]int) []mesh.FlipItem {
	jobs := make([]splitJob, 0, len(winners))
	for tri, p := range winners {
		jobs = append(jobs, splitJob{tri: tri, p: p, tB: m.AllocTri(), tC: m.AllocTri()})
	}

	g, _ := errgroup.WithContext(context.Background())
	for i := range jobs {
		i := i
		g.Go(func() error {
			prepareSplit(m, &jobs[i])
			return nil
		})
	}
	_ = g.Wait() // prepareSplit never errors; Wait only serves as the barrier.

	// An outer neighbor may itself be another job's host, whose old slot s
	// now lives at slot 2 of that job's tB (s=0), tC (s=1) or tri (s=2).
	moved := make(map[mesh.FlipItem]mesh.Opposite, 3*len(jobs))
	for _, j := range jobs {
		moved[mesh.FlipItem{Tri: j.tri, Vi: 0}] = mesh.Opposite{Tri: j.tB, Vert: 2}
		moved[mesh.FlipItem{Tri: j.tri, Vi: 1}] = mesh.Opposite{Tri: j.tC, Vert: 2}
		moved[mesh.FlipItem{Tri: j.tri, Vi: 2}] = mesh.Opposite{Tri: j.tri, Vert: 2}
	}
	rehome := func(newTri int, far mesh.Opposite) {
		if to, ok := moved[mesh.FlipItem{Tri: far.Tri, Vi: far.Vert}]; ok {
			far.Tri, far.Vert = to.Tri, to.Vert
			m.Opp[newTri].Edges[2] = far
		}
		fixOuterBackPointer(m, newTri, 2, far)
	}

	var queue []mesh.FlipItem
	for _, j := range jobs {
		rehome(j.tB, j.outerA)
		rehome(j.tC, j.outerB)
		rehome(j.tri, j.outerC)

		m.VertTri[j.v0], m.VertTri[j.v1], m.VertTri[j.v2], m.VertTri[j.p] = j.tri, j.tri, j.tB, j.tri
		queue = append(queue,
			mesh.FlipItem{Tri: j.tri, Vi: 2}, mesh.FlipItem{Tri: j.tB, Vi: 2}, mesh.FlipItem{Tri: j.tC, Vi: 2},
		)
	}
	return queue
}

// prepareSplit replaces triangle j.tri=(v0,v1,v2) with three triangles
// (v0,v1,p), (v1,v2,p), (v2,v0,p) at j.tri/j.tB/j.tC, and links their three
// shared internal edges around p. It touches only those three slots, so it
// is safe to run concurrently with every other job's prepareSplit: distinct
// jobs never share a host triangle (vote guarantees that) and each job's
// pre-allocated tB/tC slots belong to it alone.
func prepareSplit(m *mesh.Mesh, j *splitJob) {
	tri := j.tri
	v0, v1, v2 := m.Tris[tri].Verts[0], m.Tris[tri].Verts[1], m.Tris[tri].Verts[2]
	j.v0, j.v1, j.v2 = v0, v1, v2
	j.outerA = m.Opp[tri].Edges[0] // (v1,v2), opposite v0
	j.outerB = m.Opp[tri].Edges[1] // (v2,v0), opposite v1
	j.outerC = m.Opp[tri].Edges[2] // (v0,v1), opposite v2

	p := j.p
	tA, tB, tC := tri, j.tB, j.tC

	m.Tris[tA] = mesh.Tri{Verts: [3]int{v0, v1, p}}
	m.Tris[tB] = mesh.Tri{Verts: [3]int{v1, v2, p}}
	m.Tris[tC] = mesh.Tri{Verts: [3]int{v2, v0, p}}

	installOuter(m, tA, 2, j.outerC)
	installOuter(m, tB, 2, j.outerA)
	installOuter(m, tC, 2, j.outerB)

	m.Link(tA, 0, tB, 1)
	m.Link(tB, 0, tC, 1)
	m.Link(tC, 0, tA, 1)
}

// installOuter writes far into (newTri, slot) without touching far's own
// record; safe to call from a job's parallel prepare step since it only
// ever writes into that job's own triangle. The far side's back-pointer is
// fixed up afterward, serially, by fixOuterBackPointer.
func installOuter(m *mesh.Mesh, newTri int, slot int8, far mesh.Opposite) {
	m.Opp[newTri].Edges[slot] = far
}

// fixOuterBackPointer completes installOuter by pointing far's own record
// back at its new (tri, slot) home. Must run after every job's prepare step
// has finished, since far.Tri may belong to another job in this same round.
func fixOuterBackPointer(m *mesh.Mesh, newTri int, slot int8, far mesh.Opposite) {
	if far.Tri == mesh.NilTri {
		return
	}
	m.Opp[far.Tri].Edges[far.Vert] = mesh.Opposite{Tri: newTri, Vert: slot, Constraint: far.Constraint}
}

// flipToFixedPoint legalizes a flip queue in waves: each wave tests every
// current candidate's incircle predicate in parallel (a pure read), then
// applies the accepted, mutually non-conflicting flips serially (two
// flips conflict if they'd touch the same triangle), pushing each applied
// flip's four outer edges into the next wave.
func flipToFixedPoint(arena *pool.Pool, m *mesh.Mesh, pts []geom.Point, infIdx int, queue []mesh.FlipItem, maxWalk int) error {
	for wave := 0; len(queue) > 0; wave++ {
		if wave > maxWalk {
			return &Stuck{Where: "flip legalization", Steps: wave}
		}

		cands := pool.Get[flipCandidate](arena, len(queue))
		g, _ := errgroup.WithContext(context.Background())
		for i, item := range queue {
			i, item := i, item
			g.Go(func() error {
				cands[i] = flipCandidate{item: item, accept: shouldFlip(m, pts, infIdx, item)}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			pool.Release(arena, cands)
			return err
		}

		sort.Slice(cands, func(i, j int) bool {
			return EncodeVote(cands[i].item.Tri, cands[i].item.Vi) < EncodeVote(cands[j].item.Tri, cands[j].item.Vi)
		})

		touched := make(map[int]bool)
		var next []mesh.FlipItem
		for _, c := range cands {
			if !c.accept {
				continue
			}
			t0 := c.item.Tri
			opp := m.Opp[t0].Edges[c.item.Vi]
			if !m.Alive[t0] || opp.Tri == mesh.NilTri || touched[t0] || touched[opp.Tri] {
				continue
			}
			t1 := opp.Tri
			touched[t0], touched[t1] = true, true

			m.Flip(t0, c.item.Vi)
			// mesh.Flip always puts the new diagonal at slot 2 of both t0
			// and t1; the two triangles' other slots (0 and 1 on each
			// side) carry the edges that used to face the old diagonal's
			// apexes and are the only ones the flip could have made
			// non-Delaunay.
			next = append(next,
				mesh.FlipItem{Tri: t0, Vi: 0}, mesh.FlipItem{Tri: t0, Vi: 1},
				mesh.FlipItem{Tri: t1, Vi: 0}, mesh.FlipItem{Tri: t1, Vi: 1},
			)
		}
		pool.Release(arena, cands)
		queue = next
	}
	return nil
}

// shouldFlip reports whether the edge opposite item.Vi in item.Tri violates
// the Delaunay property against its neighbor across that edge. An edge
// touching P∞ on either side is never a flip candidate: P∞ is infinitely
// far from every real circumcircle, so it can never be found inside one,
// and once the finite mesh is stripped of P∞ such an edge simply becomes a
// hull boundary rather than an adjacency pair subject to the Delaunay
// property at all.
func shouldFlip(m *mesh.Mesh, pts []geom.Point, infIdx int, item mesh.FlipItem) bool {
	opp := m.Opp[item.Tri].Edges[item.Vi]
	if opp.Tri == mesh.NilTri || opp.Constraint || !m.Alive[item.Tri] || !m.Alive[opp.Tri] {
		return false
	}
	a, b := m.EdgeVerts(item.Tri, item.Vi)
	p := m.OppositeVertex(item.Tri, item.Vi)
	q := m.OppositeVertex(opp.Tri, opp.Vert)
	if p == infIdx || q == infIdx || a == infIdx || b == infIdx {
		return false
	}
	return predicate.InCircle(pts[p], pts[a], pts[b], pts[q], p, a, b, q) == predicate.Inside
}

// stripInfinity kills every triangle touching P∞, leaving only the finite
// triangulation of the real points.
func stripInfinity(m *mesh.Mesh, infIdx int) {
	for i, alive := range m.Alive {
		if !alive {
			continue
		}
		for _, v := range m.Tris[i].Verts {
			if v == infIdx {
				m.Kill(i)
				break
			}
		}
	}
}

// insertionOrder returns the indices 0..n-1, optionally presorted
// lexicographically by coordinate to keep consecutive point-location walks
// short (a cheap stand-in for a true space-filling-curve sort).
func insertionOrder(n int, noSort bool, pts []geom.Point) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if noSort {
		return order
	}
	sort.Slice(order, func(i, j int) bool {
		pi, pj := pts[order[i]], pts[order[j]]
		if pi.X != pj.X {
			return pi.X < pj.X
		}
		return pi.Y < pj.Y
	})
	return order
}
