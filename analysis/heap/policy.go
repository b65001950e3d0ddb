// Package heap implements the heap abstraction: abstract heap objects
// (instance keys), abstract contexts, and the context-sensitivity policies
// that create them.
//
// Policies are strategies sharing one interface. They are chosen once per
// run and never mutated; all mutable state lives in the Store they intern
// their values into.
package heap

import "github.com/cs-au-dk/ctxpta/analysis/program"

// Policy is a context-sensitivity strategy.
type Policy interface {
	// Record returns the abstract object allocated at site when it is
	// reached in ctx. Equal inputs yield the same reference.
	Record(site *program.AllocSite, ctx Context) *InstanceKey
	// Merge computes the context of the callee for one call edge. recv is
	// the receiver object of virtual and special calls and nil for static
	// calls.
	Merge(site *program.CallSite, recv *InstanceKey, caller Context) Context
	// InitialContext is the context of the analysis entry point.
	InitialContext() Context
	// String names the policy and its parameters.
	String() string
}
