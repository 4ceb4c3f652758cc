// Package sharedcell provides Cell, a reference-counted owning handle to a
// single heap-allocated value.
//
// Every handle that refers to the same value shares one control block: the
// value pointer and a counter of live handles. The value is released exactly
// once, when the last handle is dropped or reassigned away.
//
// Lifecycle:
//
//	a := sharedcell.Of(5)   // refs=1
//	b := a.Clone()          // refs=2, same pair
//	b.Drop()                // refs=1, value alive
//	a.Drop()                // refs=0, value released
//
// Go has no destructors, so the end of a handle's lifetime is explicit:
// call Drop, usually with defer right after obtaining the handle.
//
// A Cell is NOT safe for concurrent use. Handles that share a pair must all
// live on one goroutine (or be externally synchronised).
package sharedcell
