package ibstree

import "github.com/ibs-tree/ibstree/internal/ibsset"

// FindOverlapsAt returns every interval in the tree containing point, via a
// single-path descent. Running time is O(log n + k) for output size k; the
// returned order is unspecified.
func (t *Tree[T, I]) FindOverlapsAt(point T) []I {
	var out []I
	for n := t.root; n != nil; {
		switch cmp := point.Compare(n.key); {
		case cmp < 0:
			out = append(out, n.less.Elements()...)
			n = n.left
		case cmp > 0:
			out = append(out, n.greater.Elements()...)
			n = n.right
		default:
			out = append(out, n.equal.Elements()...)
			n = nil
		}
	}
	return out
}

// FindOverlaps returns every interval in the tree overlapping query,
// deduplicated by reference. The descent finds the split node — the
// deepest node both of query's endpoints descend through — then runs an
// asymmetric left-phase and right-phase descent from it, emitting whole
// subtrees where the augmentation guarantees every interval there
// overlaps.
func (t *Tree[T, I]) FindOverlaps(query I) []I {
	acc := ibsset.New[I]()
	descendToSplit[T, I](t.root, query, acc)
	return acc.Elements()
}

// FindOverlap returns an arbitrary interval overlapping query.
func (t *Tree[T, I]) FindOverlap(query I) (I, bool) {
	hits := t.FindOverlaps(query)
	if len(hits) == 0 {
		var zero I
		return zero, false
	}
	return hits[0], true
}

// CountOverlaps returns the number of intervals overlapping query.
func (t *Tree[T, I]) CountOverlaps(query I) int {
	return len(t.FindOverlaps(query))
}

func addAll[T Endpoint[T], I Interval[T]](acc ibsset.Set[I], s ibsset.Set[I]) {
	for iv := range s {
		acc.Add(iv)
	}
}

// wholesale adds every interval referenced anywhere in the subtree rooted
// at n: the augmentation guarantees all of it overlaps the query once the
// caller has established that the subtree's key range is fully enclosed.
func wholesale[T Endpoint[T], I Interval[T]](n *node[T, I], acc ibsset.Set[I]) {
	if n == nil {
		return
	}
	addAll[T, I](acc, n.less)
	addAll[T, I](acc, n.equal)
	addAll[T, I](acc, n.greater)
	wholesale[T, I](n.left, acc)
	wholesale[T, I](n.right, acc)
}

func descendToSplit[T Endpoint[T], I Interval[T]](n *node[T, I], q I, acc ibsset.Set[I]) {
	for n != nil {
		switch {
		case q.High().Compare(n.key) < 0:
			addAll[T, I](acc, n.less)
			n = n.left
		case n.key.Compare(q.Low()) < 0:
			addAll[T, I](acc, n.greater)
			n = n.right
		default:
			for iv := range n.less {
				if overlaps[T, I](iv, q) {
					acc.Add(iv)
				}
			}
			for iv := range n.equal {
				acc.Add(iv)
			}
			for iv := range n.greater {
				if overlaps[T, I](iv, q) {
					acc.Add(iv)
				}
			}
			leftPhase[T, I](n.left, q, acc)
			rightPhase[T, I](n.right, q, acc)
			return
		}
	}
}

// leftPhase descends the split node's left subtree, tracking query.Low()
// against each node's key.
func leftPhase[T Endpoint[T], I Interval[T]](n *node[T, I], q I, acc ibsset.Set[I]) {
	for n != nil {
		switch cmp := q.Low().Compare(n.key); {
		case cmp > 0:
			addAll[T, I](acc, n.greater)
			n = n.right
		case cmp < 0:
			addAll[T, I](acc, n.less)
			addAll[T, I](acc, n.equal)
			addAll[T, I](acc, n.greater)
			wholesale[T, I](n.right, acc)
			n = n.left
		default:
			addAll[T, I](acc, n.greater)
			if q.LowIncluded() {
				addAll[T, I](acc, n.equal)
			}
			wholesale[T, I](n.right, acc)
			return
		}
	}
}

// rightPhase descends the split node's right subtree, tracking
// query.High() against each node's key; the mirror of leftPhase.
func rightPhase[T Endpoint[T], I Interval[T]](n *node[T, I], q I, acc ibsset.Set[I]) {
	for n != nil {
		switch cmp := q.High().Compare(n.key); {
		case cmp < 0:
			addAll[T, I](acc, n.less)
			n = n.left
		case cmp > 0:
			addAll[T, I](acc, n.less)
			addAll[T, I](acc, n.equal)
			addAll[T, I](acc, n.greater)
			wholesale[T, I](n.left, acc)
			n = n.right
		default:
			addAll[T, I](acc, n.less)
			if q.HighIncluded() {
				addAll[T, I](acc, n.equal)
			}
			wholesale[T, I](n.left, acc)
			return
		}
	}
}
