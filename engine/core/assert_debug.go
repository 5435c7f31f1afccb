//go:build debug

package core

import "fmt"

// DebugAssertions reports whether invariant checks are compiled in.
const DebugAssertions = true

// Assert panics when cond is false. Only active in builds tagged `debug`.
func Assert(cond bool, msg string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+msg, args...))
	}
}
