package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/marcodamonte/ownership/internal/config"
	"github.com/marcodamonte/ownership/sharedcell"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// watch returns the options every demo cell is built with: a shared tracker,
// the logger, and a hook that prints each release.
func watch(tr *sharedcell.Tracker, logger zerolog.Logger) []sharedcell.Option {
	return []sharedcell.Option{
		sharedcell.WithTracker(tr),
		sharedcell.WithLogger(logger),
		sharedcell.WithReleaseHook(func(v int) {
			fmt.Printf("    ↳ released value %d\n", v)
		}),
	}
}

func expect(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return errors.Newf(format, args...)
}

type dropper interface{ Drop() error }

// dropAll drops every handle, in order, and reports every failure.
func dropAll(handles ...dropper) error {
	var err error
	for _, h := range handles {
		err = errors.CombineErrors(err, h.Drop())
	}
	return err
}

// releasedOnce checks the tracker for every pair id.
func releasedOnce(tr *sharedcell.Tracker, ids ...uint64) error {
	for _, id := range ids {
		if n := tr.Releases(id); n != 1 {
			return errors.Newf("pair %d released %d times, want 1", id, n)
		}
	}
	s := tr.Stats()
	fmt.Printf("  stats: constructed=%d cloned=%d assigned=%d dropped=%d released=%d live=%d\n",
		s.Constructed, s.Cloned, s.Assigned, s.Dropped, s.Released, s.Live)
	return expect(s.Live == 0, "%d pairs still owned", s.Live)
}

// ── demos ────────────────────────────────────────────────────────────────────

func demoConstruct(cfg config.Config, logger zerolog.Logger) error {
	tr := sharedcell.NewTracker()

	v := cfg.First
	a, err := sharedcell.New(&v, watch(tr, logger)...)
	if err != nil {
		return err
	}
	fmt.Printf("  New(&%d) → %s\n", v, a)
	if err := expect(a.RefCount() == 1, "refs=%d after New, want 1", a.RefCount()); err != nil {
		return err
	}

	// The zero value owns nothing.
	var empty sharedcell.Cell[int]
	fmt.Printf("  var empty Cell[int] → %s refs=%d\n", &empty, empty.RefCount())

	id := a.ID()
	if err := a.Drop(); err != nil {
		return err
	}
	return releasedOnce(tr, id)
}

// demoClone: A from First (refs=1) → B = clone(A) (refs=2) → drop B (refs=1,
// still alive) → drop A (refs=0, released once).
func demoClone(cfg config.Config, logger zerolog.Logger) error {
	tr := sharedcell.NewTracker()

	a := sharedcell.Of(cfg.First, watch(tr, logger)...)
	fmt.Printf("  A := Of(%d)      refs=%d\n", cfg.First, a.RefCount())

	b := a.Clone()
	fmt.Printf("  B := A.Clone()   refs=%d  shares=%v\n", a.RefCount(), a.SharesWith(b))
	if err := expect(a.RefCount() == 2, "refs=%d after clone, want 2", a.RefCount()); err != nil {
		return err
	}

	if err := b.Drop(); err != nil {
		return err
	}
	fmt.Printf("  B.Drop()         refs=%d  A.Value()=%d\n", a.RefCount(), a.Value())
	if err := expect(tr.Stats().Released == 0, "value released while A still holds it"); err != nil {
		return err
	}

	id := a.ID()
	fmt.Println("  A.Drop()")
	if err := a.Drop(); err != nil {
		return err
	}
	return releasedOnce(tr, id)
}

// demoAssign: A from First, C from Second; A = C releases First; refs of
// Second's pair becomes 2; dropping both releases Second once.
func demoAssign(cfg config.Config, logger zerolog.Logger) error {
	tr := sharedcell.NewTracker()

	a := sharedcell.Of(cfg.First, watch(tr, logger)...)
	c := sharedcell.Of(cfg.Second, watch(tr, logger)...)
	idA, idC := a.ID(), c.ID()
	fmt.Printf("  A := Of(%d), C := Of(%d)\n", cfg.First, cfg.Second)

	fmt.Println("  A.Assign(C)")
	a.Assign(c)
	fmt.Printf("  A=%s\n  C=%s\n", a, c)
	if err := expect(c.RefCount() == 2, "refs=%d after assign, want 2", c.RefCount()); err != nil {
		return err
	}
	if err := expect(tr.Releases(idA) == 1, "A's original value not released"); err != nil {
		return err
	}

	fmt.Println("  A.Drop(); C.Drop()")
	if err := a.Drop(); err != nil {
		return err
	}
	if err := c.Drop(); err != nil {
		return err
	}
	return releasedOnce(tr, idA, idC)
}

func demoSelfAssign(cfg config.Config, logger zerolog.Logger) error {
	tr := sharedcell.NewTracker()

	a := sharedcell.Of(cfg.First, watch(tr, logger)...)
	b := a.Clone()

	// Both forms hit the same guard: identity is the pair, not the handle.
	a.Assign(a)
	a.Assign(b)
	fmt.Printf("  A.Assign(A); A.Assign(B)  → refs=%d value=%d\n", a.RefCount(), a.Value())
	if err := expect(a.RefCount() == 2 && tr.Stats().Released == 0,
		"self-assignment changed the pair: refs=%d released=%d", a.RefCount(), tr.Stats().Released); err != nil {
		return err
	}

	id := a.ID()
	if err := dropAll(b, a); err != nil {
		return err
	}
	return releasedOnce(tr, id)
}

// demoSoleOwner shows the order inside Assign: the sole owner's old value is
// released while the new pair's count is still untouched.
func demoSoleOwner(cfg config.Config, logger zerolog.Logger) error {
	tr := sharedcell.NewTracker()

	var target *sharedcell.Cell[int]
	refsAtRelease := -1
	a := sharedcell.Of(cfg.First,
		sharedcell.WithTracker(tr),
		sharedcell.WithLogger(logger),
		sharedcell.WithReleaseHook(func(v int) {
			refsAtRelease = target.RefCount()
			fmt.Printf("    ↳ released value %d (target refs=%d)\n", v, refsAtRelease)
		}),
	)
	target = sharedcell.Of(cfg.Second, watch(tr, logger)...)
	idA, idT := a.ID(), target.ID()

	a.Assign(target)
	fmt.Printf("  after assign: target refs=%d\n", target.RefCount())
	if err := expect(refsAtRelease == 1, "old pair released after adopt (target refs=%d)", refsAtRelease); err != nil {
		return err
	}

	if err := dropAll(a, target); err != nil {
		return err
	}
	return releasedOnce(tr, idA, idT)
}

// demoDefer: Go has no destructors; the scope that obtains a handle drops it.
func demoDefer(cfg config.Config, logger zerolog.Logger) error {
	tr := sharedcell.NewTracker()

	owner := sharedcell.Of(cfg.First, watch(tr, logger)...)
	id := owner.ID()

	borrow := func(c *sharedcell.Cell[int], depth int) (err error) {
		h := c.Clone()
		defer func() { err = errors.CombineErrors(err, h.Drop()) }()
		fmt.Printf("  depth %d: refs=%d\n", depth, h.RefCount())
		return nil
	}
	for depth := 1; depth <= 3; depth++ {
		if err := borrow(owner, depth); err != nil {
			return err
		}
	}
	fmt.Printf("  back in caller: refs=%d\n", owner.RefCount())
	if err := expect(owner.RefCount() == 1, "deferred drops leaked: refs=%d", owner.RefCount()); err != nil {
		return err
	}

	err := func() (err error) {
		defer func() { err = errors.CombineErrors(err, owner.Drop()) }()
		fmt.Println("  last scope: owner dropped on return")
		return nil
	}()
	if err != nil {
		return err
	}
	return releasedOnce(tr, id)
}

func demoErrors(_ config.Config, _ zerolog.Logger) error {
	_, err := sharedcell.New[int](nil)
	fmt.Printf("  New(nil): %v\n", err)
	fmt.Println("  errors.Is(err, ErrInvalidArgument):", errors.Is(err, sharedcell.ErrInvalidArgument))
	if err := expect(errors.Is(err, sharedcell.ErrInvalidArgument), "nil value accepted"); err != nil {
		return err
	}

	a := sharedcell.Of(1)
	if err := a.Drop(); err != nil {
		return err
	}
	second := a.Drop()
	fmt.Println("  Drop twice:", second) // <nil>: the handle is already empty
	if err := expect(second == nil, "second Drop on the same handle: %v", second); err != nil {
		return err
	}

	v, ok := a.Get()
	fmt.Printf("  Get on empty: %d, %v\n", v, ok)

	var recovered error
	func() {
		defer func() {
			if r := recover(); r != nil {
				recovered, _ = r.(error)
			}
		}()
		a.Value()
	}()
	fmt.Printf("  Value on empty panics: %v\n", recovered)
	return expect(errors.Is(recovered, sharedcell.ErrEmpty), "Value on empty did not panic with ErrEmpty")
}
