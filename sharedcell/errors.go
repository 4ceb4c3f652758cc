package sharedcell

import "github.com/cockroachdb/errors"

// Sentinel errors. Test with errors.Is; the returned errors carry extra
// context (the pair id, the calling operation) on top of these.
var (
	// ErrInvalidArgument is returned by New when it is given a nil value.
	ErrInvalidArgument = errors.New("sharedcell: invalid argument")

	// ErrDoubleFree marks an attempt to release a pair that was already
	// released. It indicates a bug in the reference counting, never a
	// normal runtime condition.
	ErrDoubleFree = errors.New("sharedcell: double free detected")

	// ErrEmpty is wrapped in the panic value of Value on an empty handle.
	ErrEmpty = errors.New("sharedcell: empty cell")
)

func doubleFree(id uint64) error {
	return errors.WithAssertionFailure(errors.Wrapf(ErrDoubleFree, "pair %d released twice", id))
}

func invalidRefs(op string, id uint64, refs int) error {
	return errors.AssertionFailedf("sharedcell: %s on pair %d: invalid ref count %d", op, id, refs)
}
