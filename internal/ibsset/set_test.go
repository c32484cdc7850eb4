package ibsset_test

import (
	"errors"
	"testing"

	"github.com/ibs-tree/ibstree/internal/ibsset"
)

func TestNew(t *testing.T) {
	s := ibsset.New[int]()
	if !s.IsEmpty() {
		t.Error("set should be empty")
	}
}

func TestAddContains(t *testing.T) {
	s := ibsset.New[int]()
	s.Add(1)
	if !s.Contains(1) {
		t.Error("set should contain 1 after adding 1")
	}
	if s.Contains(2) {
		t.Error("set should not contain 2")
	}
}

func TestAddIdempotent(t *testing.T) {
	s := ibsset.New[int]()
	s.Add(1)
	s.Add(1)
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestRemove(t *testing.T) {
	s := ibsset.New[int]()
	s.Add(1)
	s.Remove(1)
	if s.Contains(1) {
		t.Error("set should not contain 1 after removing 1")
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s := ibsset.New[int]()
	s.Remove(1) // should not panic
	if !s.IsEmpty() {
		t.Error("set should remain empty")
	}
}

func TestLen(t *testing.T) {
	s := ibsset.New[int]()
	s.Add(1)
	s.Add(2)
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestElements(t *testing.T) {
	s := ibsset.Of(1, 2, 3)
	elements := s.Elements()
	if len(elements) != 3 {
		t.Fatalf("len(elements) = %d, want 3", len(elements))
	}
	seen := ibsset.New[int]()
	for _, e := range elements {
		seen.Add(e)
	}
	for _, want := range []int{1, 2, 3} {
		if !seen.Contains(want) {
			t.Errorf("elements missing %d", want)
		}
	}
}

func TestChooseEmpty(t *testing.T) {
	s := ibsset.New[int]()
	if _, err := s.Choose(); !errors.Is(err, ibsset.ErrEmptyCollection) {
		t.Errorf("Choose() error = %v, want ErrEmptyCollection", err)
	}
}

func TestChooseReturnsMember(t *testing.T) {
	s := ibsset.Of(1, 2, 3)
	v, err := s.Choose()
	if err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	if !s.Contains(v) {
		t.Errorf("Choose() = %d, not a member of the set", v)
	}
}

func TestUnion(t *testing.T) {
	a := ibsset.Of(1, 2)
	b := ibsset.Of(2, 3)
	u := a.Union(b)
	for _, want := range []int{1, 2, 3} {
		if !u.Contains(want) {
			t.Errorf("Union missing %d", want)
		}
	}
	if u.Len() != 3 {
		t.Errorf("Union.Len() = %d, want 3", u.Len())
	}
	// Union must not mutate its operands.
	if a.Len() != 2 || b.Len() != 2 {
		t.Error("Union mutated an operand")
	}
}

func TestDifference(t *testing.T) {
	a := ibsset.Of(1, 2, 3)
	b := ibsset.Of(2, 3)
	d := a.Difference(b)
	if d.Len() != 1 || !d.Contains(1) {
		t.Errorf("Difference = %v, want {1}", d.Elements())
	}
}

func TestReferenceIdentity(t *testing.T) {
	type handle struct{ v int }

	a := &handle{v: 1}
	b := &handle{v: 1}

	s := ibsset.New[*handle]()
	s.Add(a)
	s.Add(b)

	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2: distinct handles with equal values must both be kept", s.Len())
	}
	if !s.Contains(a) || !s.Contains(b) {
		t.Error("set should contain both handles")
	}
}

func TestClone(t *testing.T) {
	a := ibsset.Of(1, 2)
	b := a.Clone()
	b.Add(3)
	if a.Contains(3) {
		t.Error("Clone should be independent of the original")
	}
}
