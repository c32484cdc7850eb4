// Package ibstree implements an interval binary search tree: a left-leaning
// red-black tree keyed on endpoint values, augmented at every node with
// three interval sets (less, equal, greater) and a depth augmentation that
// exposes the maximum overlap count in constant time.
package ibstree

// Endpoint is the total order the tree's keys are drawn from. Compare
// returns a negative number if the receiver sorts before other, zero if
// they are equal, and a positive number if it sorts after.
type Endpoint[T any] interface {
	Compare(other T) int
}

// Interval is the contract required of values stored in the tree: a low and
// a high endpoint with independent inclusion flags, Low <= High, and (when
// Low == High) both inclusions true. The tree never constructs or validates
// intervals; it only compares and stores references to caller-owned values.
type Interval[T any] interface {
	Low() T
	High() T
	LowIncluded() bool
	HighIncluded() bool
}

// place is the outcome of classifying an endpoint key against an interval:
// which of the node's three sets the interval belongs to relative to that
// key, per the sorted-path placement rule.
type place int

const (
	placeLess place = iota
	placeEqual
	placeGreater
)

// contains reports whether point lies inside iv, honoring both inclusion
// flags.
func contains[T Endpoint[T], I Interval[T]](iv I, point T) bool {
	if c := point.Compare(iv.Low()); c < 0 || (c == 0 && !iv.LowIncluded()) {
		return false
	}
	if c := point.Compare(iv.High()); c > 0 || (c == 0 && !iv.HighIncluded()) {
		return false
	}
	return true
}

// overlaps reports whether a and b share at least one point, considering
// inclusions at a touching endpoint.
func overlaps[T Endpoint[T], I Interval[T]](a, b I) bool {
	if c := a.Low().Compare(b.High()); c > 0 || (c == 0 && !(a.LowIncluded() && b.HighIncluded())) {
		return false
	}
	if c := b.Low().Compare(a.High()); c > 0 || (c == 0 && !(b.LowIncluded() && a.HighIncluded())) {
		return false
	}
	return true
}

// classify places iv relative to key, per the sorted-path placement rule:
// iv is "equal" at key when key falls inside iv, "less" when iv lies
// entirely below key, and "greater" when iv lies entirely above key.
func classify[T Endpoint[T], I Interval[T]](key T, iv I) place {
	if contains[T, I](iv, key) {
		return placeEqual
	}
	if key.Compare(iv.High()) >= 0 {
		return placeLess
	}
	return placeGreater
}

// Span is the tightest interval enclosing every interval currently in a
// tree: the lowest low endpoint and the highest high endpoint, with
// inclusion flags reflecting whether any interval achieving that endpoint
// includes it.
type Span[T any] struct {
	Low          T
	LowIncluded  bool
	High         T
	HighIncluded bool
}
