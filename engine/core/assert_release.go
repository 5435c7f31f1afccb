//go:build !debug

package core

// DebugAssertions reports whether invariant checks are compiled in.
const DebugAssertions = false

// Assert is a no-op outside of `debug` builds.
func Assert(cond bool, msg string, args ...interface{}) {}
