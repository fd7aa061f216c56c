// Package internal holds the panic/recover error boundary shared by every
// algorithm package that would otherwise need to thread "if err != nil"
// through tight recursive or iterative loops: constraint insertion and the
// fixer passes run on its behalf call Throw on a failure they can't recover
// from locally, and triangulate.Compute is the single place that turns it
// back into a normal returned error. Point location and the engine's flip
// waves return an engine.Stuck error instead.
package internal

import "github.com/pkg/errors"

// EngineError is the sentinel panic type every internal algorithm uses.
// Only a panic carrying exactly this type is ever recovered; anything else
// propagates, since it means a real bug rather than an anticipated failure.
type EngineError error

// Throw panics with a freshly wrapped EngineError, capturing a stack trace
// at the point of failure.
func Throw(format string, args ...interface{}) {
	panic(EngineError(errors.Errorf(format, args...)))
}

// HandleRecover recovers exactly an EngineError from a deferred recover(),
// returning it as a normal error. Any other recovered value is re-panicked.
func HandleRecover(r interface{}) error {
	if r == nil {
		return nil
	}
	if err, ok := r.(EngineError); ok {
		return err
	}
	panic(r)
}
