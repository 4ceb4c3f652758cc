package sharedcell

// Stats is a snapshot of the lifecycle events a Tracker has seen.
type Stats struct {
	Constructed int64 // pairs created by New
	Cloned      int64 // handles created by Clone
	Assigned    int64 // Assign calls that changed a handle's pair
	Dropped     int64 // Drop calls on non-empty handles
	Released    int64 // pairs whose value was released
	Live        int64 // pairs constructed and not yet released
}

// Tracker records lifecycle events of every pair built with WithTracker.
// It shares the cells' threading model: no locking.
//
// The zero value is ready to use. A nil *Tracker is valid and records
// nothing.
type Tracker struct {
	stats    Stats
	refs     map[uint64]int
	releases map[uint64]int
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		refs:     make(map[uint64]int),
		releases: make(map[uint64]int),
	}
}

// Stats returns a snapshot of the counters.
func (t *Tracker) Stats() Stats {
	if t == nil {
		return Stats{}
	}
	s := t.stats
	s.Live = s.Constructed - s.Released
	return s
}

// Releases returns how many times pair id was released. Anything other than
// 0 or 1 is a bug.
func (t *Tracker) Releases(id uint64) int {
	if t == nil {
		return 0
	}
	return t.releases[id]
}

// Refs returns the last ref count observed for pair id.
func (t *Tracker) Refs(id uint64) int {
	if t == nil {
		return 0
	}
	return t.refs[id]
}

func (t *Tracker) constructed(id uint64) {
	if t == nil {
		return
	}
	t.init()
	t.stats.Constructed++
	t.refs[id] = 1
}

func (t *Tracker) cloned() {
	if t != nil {
		t.stats.Cloned++
	}
}

func (t *Tracker) assigned() {
	if t != nil {
		t.stats.Assigned++
	}
}

func (t *Tracker) dropped() {
	if t != nil {
		t.stats.Dropped++
	}
}

func (t *Tracker) observe(id uint64, refs int) {
	if t != nil {
		t.init()
		t.refs[id] = refs
	}
}

func (t *Tracker) released(id uint64) {
	if t == nil {
		return
	}
	t.init()
	t.stats.Released++
	t.releases[id]++
}

func (t *Tracker) init() {
	if t.refs == nil {
		t.refs = make(map[uint64]int)
	}
	if t.releases == nil {
		t.releases = make(map[uint64]int)
	}
}
