package ibstree

import "github.com/ibs-tree/ibstree/internal/ibsset"

// node is an endpoint node: one key from the total order, the three
// augmented interval sets that partition responsibility for intervals
// passing through key, a left-leaning red-black color bit, the depth
// delta/deltaAfter fields, and the derived sum/max.
type node[T Endpoint[T], I Interval[T]] struct {
	key     T
	less    ibsset.Set[I]
	equal   ibsset.Set[I]
	greater ibsset.Set[I]

	left, right *node[T, I]
	red         bool

	delta      int
	deltaAfter int
	sum        int
	max        int
}

func newEndpointNode[T Endpoint[T], I Interval[T]](key T) *node[T, I] {
	return &node[T, I]{
		key:     key,
		less:    ibsset.New[I](),
		equal:   ibsset.New[I](),
		greater: ibsset.New[I](),
		red:     true,
	}
}

func (n *node[T, I]) setFor(p place) ibsset.Set[I] {
	switch p {
	case placeLess:
		return n.less
	case placeGreater:
		return n.greater
	default:
		return n.equal
	}
}

// classifyAndStore places iv into n's less/equal/greater set according to
// n.key, per the sorted-path placement rule.
func (n *node[T, I]) classifyAndStore(iv I) {
	n.setFor(classify[T, I](n.key, iv)).Add(iv)
}

func (n *node[T, I]) classifyAndRemove(iv I) {
	n.setFor(classify[T, I](n.key, iv)).Remove(iv)
}

func isRed[T Endpoint[T], I Interval[T]](n *node[T, I]) bool {
	return n != nil && n.red
}

func childSum[T Endpoint[T], I Interval[T]](n *node[T, I]) int {
	if n == nil {
		return 0
	}
	return n.sum
}

func childMax[T Endpoint[T], I Interval[T]](n *node[T, I]) int {
	if n == nil {
		return 0
	}
	return n.max
}

// updateMax recomputes sum and max bottom-up from the current children and
// this node's own delta/deltaAfter. v tracks the running depth as the
// in-order walk crosses, then leaves, this node's key.
func (n *node[T, I]) updateMax() {
	v := childSum[T, I](n.left) + n.delta
	m1 := max(childMax[T, I](n.left), v)
	v += n.deltaAfter
	m2 := max(m1, v)
	n.sum = v + childSum[T, I](n.right)
	n.max = max(m2, v+childMax[T, I](n.right))
}

// rotateLeft rotates n's right child to the top, migrating the augmented
// sets so every invariant in the data model still holds at the two
// affected nodes. It is the mirror of rotateRight (less/greater swapped).
func rotateLeft[T Endpoint[T], I Interval[T]](n *node[T, I]) *node[T, I] {
	x := n.right
	n.right = x.left
	x.left = n

	x.red = n.red
	n.red = true

	for iv := range n.greater {
		switch classify[T, I](x.key, iv) {
		case placeGreater:
			x.greater.Add(iv)
		default:
			x.equal.Add(iv)
		}
	}
	n.greater = ibsset.New[I]()

	b := x.less.Difference(n.less)
	for iv := range b {
		x.less.Remove(iv)
		n.greater.Add(iv)
	}

	for iv := range x.less {
		n.equal.Remove(iv)
		n.less.Remove(iv)
	}

	n.updateMax()
	x.updateMax()
	return x
}

// rotateRight rotates n's left child to the top, migrating the augmented
// sets per the data model's rotation rule:
//  1. every interval in old-root's less also becomes reachable from
//     new-root, placed into new-root's less or equal depending on whether
//     it now straddles the new root's key;
//  2. intervals in the new root's greater set that are not also in the
//     old root's greater set have migrated from "entirely right of
//     new-root" to "between new-root and old-root", so they move into the
//     demoted old-root's less set;
//  3. any interval that ends up in the new root's greater set is removed
//     from the old root's equal/greater, since it has migrated upward.
func rotateRight[T Endpoint[T], I Interval[T]](n *node[T, I]) *node[T, I] {
	x := n.left
	n.left = x.right
	x.right = n

	x.red = n.red
	n.red = true

	for iv := range n.less {
		switch classify[T, I](x.key, iv) {
		case placeLess:
			x.less.Add(iv)
		default:
			x.equal.Add(iv)
		}
	}
	n.less = ibsset.New[I]()

	b := x.greater.Difference(n.greater)
	for iv := range b {
		x.greater.Remove(iv)
		n.less.Add(iv)
	}

	for iv := range x.greater {
		n.equal.Remove(iv)
		n.greater.Remove(iv)
	}

	n.updateMax()
	x.updateMax()
	return x
}

func flipColors[T Endpoint[T], I Interval[T]](n *node[T, I]) {
	n.red = !n.red
	n.left.red = !n.left.red
	n.right.red = !n.right.red
}

// fixUp re-applies the left-leaning red-black rebalance rules on the way
// up from a recursive insert or delete, then refreshes the augmentation.
func fixUp[T Endpoint[T], I Interval[T]](n *node[T, I]) *node[T, I] {
	if isRed[T, I](n.right) && !isRed[T, I](n.left) {
		n = rotateLeft[T, I](n)
	}
	if isRed[T, I](n.left) && isRed[T, I](n.left.left) {
		n = rotateRight[T, I](n)
	}
	if isRed[T, I](n.left) && isRed[T, I](n.right) {
		flipColors[T, I](n)
	}
	n.updateMax()
	return n
}

func moveRedLeft[T Endpoint[T], I Interval[T]](n *node[T, I]) *node[T, I] {
	flipColors[T, I](n)
	if isRed[T, I](n.right.left) {
		n.right = rotateRight[T, I](n.right)
		n = rotateLeft[T, I](n)
		flipColors[T, I](n)
	}
	return n
}

func moveRedRight[T Endpoint[T], I Interval[T]](n *node[T, I]) *node[T, I] {
	flipColors[T, I](n)
	if isRed[T, I](n.left.left) {
		n = rotateRight[T, I](n)
		flipColors[T, I](n)
	}
	return n
}

// minNode returns the leftmost descendant of n (n must be non-nil).
func minNode[T Endpoint[T], I Interval[T]](n *node[T, I]) *node[T, I] {
	for n.left != nil {
		n = n.left
	}
	return n
}

// maxNode returns the rightmost descendant of n (n must be non-nil).
func maxNode[T Endpoint[T], I Interval[T]](n *node[T, I]) *node[T, I] {
	for n.right != nil {
		n = n.right
	}
	return n
}

// deleteMin removes the leftmost node of the subtree rooted at n and
// returns the replacement subtree.
func deleteMin[T Endpoint[T], I Interval[T]](n *node[T, I]) *node[T, I] {
	if n.left == nil {
		return nil
	}
	if !isRed[T, I](n.left) && !isRed[T, I](n.left.left) {
		n = moveRedLeft[T, I](n)
	}
	n.left = deleteMin[T, I](n.left)
	return fixUp[T, I](n)
}

// deleteKey removes the node whose key equals target from the subtree
// rooted at n, replacing it with its in-order successor when it has two
// children. The caller must have already emptied the target node's
// augmentation sets and delta/deltaAfter (no live interval may reference
// the endpoint being removed).
func deleteKey[T Endpoint[T], I Interval[T]](n *node[T, I], target T) *node[T, I] {
	if target.Compare(n.key) < 0 {
		if n.left == nil {
			return n
		}
		if !isRed[T, I](n.left) && !isRed[T, I](n.left.left) {
			n = moveRedLeft[T, I](n)
		}
		n.left = deleteKey[T, I](n.left, target)
	} else {
		if isRed[T, I](n.left) {
			n = rotateRight[T, I](n)
		}
		if target.Compare(n.key) == 0 && n.right == nil {
			return nil
		}
		if !isRed[T, I](n.right) && !isRed[T, I](n.right.left) {
			n = moveRedRight[T, I](n)
		}
		if target.Compare(n.key) == 0 {
			succ := minNode[T, I](n.right)
			n.key = succ.key
			n.less = succ.less
			n.equal = succ.equal
			n.greater = succ.greater
			n.delta = succ.delta
			n.deltaAfter = succ.deltaAfter
			n.right = deleteMin[T, I](n.right)
		} else {
			n.right = deleteKey[T, I](n.right, target)
		}
	}
	return fixUp[T, I](n)
}
