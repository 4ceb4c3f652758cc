package sharedcell

import (
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// pairIDs hands out control block ids. It is the only package-level state
// and is atomic so independent cells may be built on different goroutines.
var pairIDs atomic.Uint64

// control is the shared (value, count) pair. All handles referring to the
// same value point at one control.
type control[T any] struct {
	id       uint64
	value    *T
	refs     int
	released bool

	onRelease func(T)
	tracker   *Tracker
	log       zerolog.Logger
}

// Cell is a reference-counted handle to a shared value.
//
// The zero value is an empty handle: it owns nothing, RefCount reports 0
// and Assign can make it adopt a pair.
//
// A Cell must not be copied by value; use Clone. go vet reports copies. A
// copy made anyway reads as empty once its pair has been released.
type Cell[T any] struct {
	_   noCopy
	ctl *control[T]
}

// noCopy makes go vet's copylocks check flag value copies of Cell.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// live returns c's pair, or nil when c is nil, empty, or a stale copy whose
// pair was released through another handle.
func (c *Cell[T]) live() *control[T] {
	if c == nil || c.ctl == nil || c.ctl.released {
		return nil
	}
	return c.ctl
}

// New takes ownership of v and returns the first handle to it (refs=1).
// It returns an error matching ErrInvalidArgument if v is nil or if a
// release hook was given for another value type.
func New[T any](v *T, opts ...Option) (*Cell[T], error) {
	if v == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "sharedcell.New: nil value")
	}

	o := buildOptions(opts)
	var hook func(T)
	if o.onRelease != nil {
		fn, ok := o.onRelease.(func(T))
		if !ok {
			return nil, errors.Wrapf(ErrInvalidArgument,
				"sharedcell.New: release hook %T does not accept %T", o.onRelease, *v)
		}
		hook = fn
	}

	id := pairIDs.Add(1)
	ctl := &control[T]{
		id:        id,
		value:     v,
		refs:      1,
		onRelease: hook,
		tracker:   o.tracker,
		log:       o.logger.With().Uint64("pair", id).Logger(),
	}

	ctl.tracker.constructed(id)
	ctl.log.Debug().Msg("cell constructed")
	return &Cell[T]{ctl: ctl}, nil
}

// Of is New for a value that is not yet on the heap.
// It panics where New would return an error, i.e. on a mistyped release hook.
func Of[T any](v T, opts ...Option) *Cell[T] {
	c, err := New(&v, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Clone returns a new handle sharing c's pair and increments the count.
// Cloning an empty handle returns another empty handle.
func (c *Cell[T]) Clone() *Cell[T] {
	ctl := c.live()
	if ctl == nil {
		return &Cell[T]{}
	}
	ctl.acquire("clone")
	ctl.tracker.cloned()
	return &Cell[T]{ctl: ctl}
}

// Assign makes c share other's pair and returns c, so assignments chain:
//
//	a.Assign(b.Assign(c))
//
// If c and other already share a pair (including a.Assign(a)) nothing
// happens. Otherwise c first leaves its current pair, releasing it if c was
// the last owner, and then adopts other's. Assigning an empty handle leaves
// c empty.
//
// Assign panics with an error wrapping ErrInvalidArgument on a nil receiver.
func (c *Cell[T]) Assign(other *Cell[T]) *Cell[T] {
	if c == nil {
		panic(errors.Wrap(ErrInvalidArgument, "sharedcell.Assign: nil receiver"))
	}
	next := other.live()
	old := c.live()
	if old == next {
		c.ctl = next
		return c
	}

	c.ctl = nil
	if old != nil {
		if err := old.leave(); err != nil {
			panic(err)
		}
	}

	if next != nil {
		next.acquire("assign")
		next.tracker.assigned()
		c.ctl = next
	} else {
		old.tracker.assigned()
	}
	return c
}

// Drop ends this handle's ownership. The pair is released when this was the
// last handle. After Drop the handle is empty; dropping it again is a no-op.
//
// The only error is one matching ErrDoubleFree: the pair was already
// released, through a handle copied by value instead of cloned.
func (c *Cell[T]) Drop() error {
	if c == nil || c.ctl == nil {
		return nil
	}
	ctl := c.ctl
	c.ctl = nil
	ctl.tracker.dropped()
	return ctl.leave()
}

// Value returns the shared value. It panics on an empty handle.
func (c *Cell[T]) Value() T {
	v, ok := c.Get()
	if !ok {
		panic(errors.Wrap(ErrEmpty, "sharedcell.Value"))
	}
	return v
}

// Get returns the shared value and true, or the zero value and false on an
// empty handle.
func (c *Cell[T]) Get() (T, bool) {
	ctl := c.live()
	if ctl == nil {
		var zero T
		return zero, false
	}
	return *ctl.value, true
}

// Set overwrites the shared value. Every handle of the pair observes the
// change. It reports false on an empty handle.
func (c *Cell[T]) Set(v T) bool {
	ctl := c.live()
	if ctl == nil {
		return false
	}
	*ctl.value = v
	return true
}

// RefCount returns the number of live handles sharing c's pair, or 0.
func (c *Cell[T]) RefCount() int {
	ctl := c.live()
	if ctl == nil {
		return 0
	}
	return ctl.refs
}

// Empty reports whether c owns nothing.
func (c *Cell[T]) Empty() bool { return c.live() == nil }

// SharesWith reports whether c and other refer to the same pair. Two empty
// handles share nothing.
func (c *Cell[T]) SharesWith(other *Cell[T]) bool {
	ctl := c.live()
	return ctl != nil && ctl == other.live()
}

// ID returns the pair id, or 0 for an empty handle. Ids are unique for the
// life of the process.
func (c *Cell[T]) ID() uint64 {
	ctl := c.live()
	if ctl == nil {
		return 0
	}
	return ctl.id
}

func (c *Cell[T]) String() string {
	ctl := c.live()
	if ctl == nil {
		return "Cell(empty)"
	}
	return fmt.Sprintf("Cell(pair=%d refs=%d value=%v)", ctl.id, ctl.refs, *ctl.value)
}

// acquire adds a reference. Only a pair that still has an owner can gain
// another one.
func (ctl *control[T]) acquire(op string) {
	if ctl.released || ctl.refs < 1 {
		panic(invalidRefs(op, ctl.id, ctl.refs))
	}
	ctl.refs++
	ctl.tracker.observe(ctl.id, ctl.refs)
}

// leave drops one reference and releases the pair when it was the last one.
// A released pair is never decremented again.
func (ctl *control[T]) leave() error {
	if ctl.released {
		return doubleFree(ctl.id)
	}
	if ctl.refs <= 0 {
		panic(invalidRefs("leave", ctl.id, ctl.refs))
	}

	ctl.refs--
	ctl.tracker.observe(ctl.id, ctl.refs)
	if ctl.refs > 0 {
		return nil
	}
	return ctl.release()
}

// release frees the value. It must run exactly once per pair.
func (ctl *control[T]) release() error {
	if ctl.released {
		return doubleFree(ctl.id)
	}

	v := *ctl.value
	ctl.value = nil
	ctl.released = true

	ctl.tracker.released(ctl.id)
	ctl.log.Debug().Msg("cell released")
	if ctl.onRelease != nil {
		ctl.onRelease(v)
	}
	return nil
}
