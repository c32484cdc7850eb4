package ibstree

import (
	"errors"

	"github.com/ibs-tree/ibstree/internal/ibsset"
)

// ErrEmptyCollection is returned by Choose and Span when the tree holds no
// intervals.
var ErrEmptyCollection = errors.New("ibstree: empty collection")

// Tree is a left-leaning red-black tree keyed on endpoint values, holding a
// dynamic collection of intervals and answering stabbing and range queries
// in output-sensitive time. The zero value is not usable; construct one
// with New. A Tree is single-threaded: callers must not mutate it while a
// query result slice from it is still being consumed by another goroutine,
// and must serialize all access themselves — there is no internal locking.
type Tree[T Endpoint[T], I Interval[T]] struct {
	root    *node[T, I]
	members ibsset.Set[I]
}

// New creates an empty tree.
func New[T Endpoint[T], I Interval[T]]() *Tree[T, I] {
	return &Tree[T, I]{members: ibsset.New[I]()}
}

// AllowsReferenceDuplicates reports whether the same interval reference may
// be stored more than once. It is always false: Insert is a no-op for a
// reference already present.
func (t *Tree[T, I]) AllowsReferenceDuplicates() bool {
	return false
}

// Count returns the number of intervals currently in the tree.
func (t *Tree[T, I]) Count() int {
	return t.members.Len()
}

// IsEmpty reports whether the tree holds no intervals.
func (t *Tree[T, I]) IsEmpty() bool {
	return t.members.IsEmpty()
}

// Choose returns an arbitrary interval from the tree, failing with
// ErrEmptyCollection if it is empty.
func (t *Tree[T, I]) Choose() (I, error) {
	iv, err := t.members.Choose()
	if err != nil {
		var zero I
		return zero, ErrEmptyCollection
	}
	return iv, nil
}

// Clear removes every interval from the tree.
func (t *Tree[T, I]) Clear() {
	t.root = nil
	t.members = ibsset.New[I]()
}

// MaximumDepth returns the largest number of intervals containing any
// single point, or zero for an empty tree.
func (t *Tree[T, I]) MaximumDepth() int {
	return childMax[T, I](t.root)
}

// Insert adds iv to the tree. It returns false without modifying the tree
// if the exact reference iv is already present.
func (t *Tree[T, I]) Insert(iv I) bool {
	if t.members.Contains(iv) {
		return false
	}
	t.members.Add(iv)

	t.root = insertLow[T, I](t.root, iv)
	t.root.red = false
	t.root = insertHigh[T, I](t.root, iv)
	t.root.red = false
	return true
}

// InsertAll adds every interval in ivs, skipping references already
// present.
func (t *Tree[T, I]) InsertAll(ivs ...I) {
	for _, iv := range ivs {
		t.Insert(iv)
	}
}

// Remove removes iv from the tree. It returns false, leaving the tree
// unchanged, if iv was not present.
func (t *Tree[T, I]) Remove(iv I) bool {
	if !t.members.Contains(iv) {
		return false
	}
	t.members.Remove(iv)

	t.root = removeLow[T, I](t.root, iv)
	if t.root != nil {
		t.root.red = false
	}
	t.root = removeHigh[T, I](t.root, iv)
	if t.root != nil {
		t.root.red = false
	}

	t.root = dropIfUnreferenced[T, I](t.root, iv.Low())
	t.root = dropIfUnreferenced[T, I](t.root, iv.High())
	if t.root != nil {
		t.root.red = false
	}
	return true
}

// Span returns the tightest interval enclosing every interval currently in
// the tree. ok is false for an empty tree.
func (t *Tree[T, I]) Span() (span Span[T], ok bool) {
	if t.root == nil {
		return Span[T]{}, false
	}
	lo := minNode[T, I](t.root)
	hi := maxNode[T, I](t.root)
	return Span[T]{
		Low:          lo.key,
		LowIncluded:  lo.delta > 0,
		High:         hi.key,
		HighIncluded: hi.deltaAfter < 0,
	}, true
}

// insertLow descends toward key=iv.Low(), creating the endpoint node if
// necessary, classifying iv into the less/equal/greater set of every node
// visited along the way, and recording iv's contribution to delta/
// deltaAfter at the target node.
func insertLow[T Endpoint[T], I Interval[T]](n *node[T, I], iv I) *node[T, I] {
	if n == nil {
		n = newEndpointNode[T, I](iv.Low())
	}

	switch cmp := iv.Low().Compare(n.key); {
	case cmp < 0:
		n.left = insertLow[T, I](n.left, iv)
	case cmp > 0:
		n.right = insertLow[T, I](n.right, iv)
	default:
		if iv.LowIncluded() {
			n.delta++
		} else {
			n.deltaAfter++
		}
	}

	n.classifyAndStore(iv)
	return fixUp[T, I](n)
}

// insertHigh is the mirror of insertLow for key=iv.High().
func insertHigh[T Endpoint[T], I Interval[T]](n *node[T, I], iv I) *node[T, I] {
	if n == nil {
		n = newEndpointNode[T, I](iv.High())
	}

	switch cmp := iv.High().Compare(n.key); {
	case cmp < 0:
		n.left = insertHigh[T, I](n.left, iv)
	case cmp > 0:
		n.right = insertHigh[T, I](n.right, iv)
	default:
		if iv.HighIncluded() {
			n.deltaAfter--
		} else {
			n.delta--
		}
	}

	n.classifyAndStore(iv)
	return fixUp[T, I](n)
}

func removeLow[T Endpoint[T], I Interval[T]](n *node[T, I], iv I) *node[T, I] {
	if n == nil {
		return nil
	}

	n.classifyAndRemove(iv)

	switch cmp := iv.Low().Compare(n.key); {
	case cmp < 0:
		n.left = removeLow[T, I](n.left, iv)
	case cmp > 0:
		n.right = removeLow[T, I](n.right, iv)
	default:
		if iv.LowIncluded() {
			n.delta--
		} else {
			n.deltaAfter--
		}
	}

	n.updateMax()
	return n
}

func removeHigh[T Endpoint[T], I Interval[T]](n *node[T, I], iv I) *node[T, I] {
	if n == nil {
		return nil
	}

	n.classifyAndRemove(iv)

	switch cmp := iv.High().Compare(n.key); {
	case cmp < 0:
		n.left = removeHigh[T, I](n.left, iv)
	case cmp > 0:
		n.right = removeHigh[T, I](n.right, iv)
	default:
		if iv.HighIncluded() {
			n.deltaAfter++
		} else {
			n.delta++
		}
	}

	n.updateMax()
	return n
}

// dropIfUnreferenced removes the node at key from the tree when no
// interval references it anymore (its sets are all empty and its
// delta/deltaAfter have returned to zero).
func dropIfUnreferenced[T Endpoint[T], I Interval[T]](n *node[T, I], key T) *node[T, I] {
	target := findNode[T, I](n, key)
	if target == nil {
		return n
	}
	if target.delta != 0 || target.deltaAfter != 0 ||
		!target.less.IsEmpty() || !target.equal.IsEmpty() || !target.greater.IsEmpty() {
		return n
	}
	return deleteKey[T, I](n, key)
}

func findNode[T Endpoint[T], I Interval[T]](n *node[T, I], key T) *node[T, I] {
	for n != nil {
		switch cmp := key.Compare(n.key); {
		case cmp < 0:
			n = n.left
		case cmp > 0:
			n = n.right
		default:
			return n
		}
	}
	return nil
}
