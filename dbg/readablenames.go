// Package dbg holds debug-only helpers: turning mesh internals into
// readable log output and rendering a mesh to a PNG for visual inspection.
// Nothing here is on the critical path of triangulate.Compute.
package dbg

import (
	"fmt"
	"strings"

	petname "github.com/dustinkirkland/golang-petname"
)

// Name turns an arbitrary triangle or point index into a random readable
// name, memoized per index so repeated log lines about the same triangle
// read consistently within a run. It flagrantly leaks memory, but the
// table only grows as large as the number of distinct indices logged in a
// debug run, which is never large enough to matter.
//
// The mapping is not stable across runs: the same index means something
// different every time, which is the point -- it stops a reader from
// mistaking two runs' logs as directly comparable.
var memo = make(map[int]string)

func init() {
	petname.NonDeterministicMode()
}

// Name returns a readable stand-in for a triangle or vertex index, e.g.
// "GrumpyOtter" for triangle 42.
func Name(index int) string {
	if index < 0 {
		return "Ø"
	}
	if r, ok := memo[index]; ok {
		return r
	}
	r := fmt.Sprintf("%s%s", strings.Title(petname.Adjective()), strings.Title(petname.Name()))
	memo[index] = r
	return r
}
