package workload_test

import (
	"slices"
	"testing"

	"github.com/ibs-tree/ibstree/internal/config"
	"github.com/ibs-tree/ibstree/internal/workload"
)

func spec(low, high int64, lowIncl, highIncl bool) config.IntervalSpec {
	return config.IntervalSpec{
		Low: low, High: high,
		LowIncluded: lowIncl, HighIncluded: highIncl,
	}
}

func atQuery(name string, at int64) config.QuerySpec {
	return config.QuerySpec{Name: name, Type: config.QueryTypePoint, At: &at}
}

func rangeQuery(name string, low, high int64, lowIncl, highIncl bool) config.QuerySpec {
	s := spec(low, high, lowIncl, highIncl)
	return config.QuerySpec{Name: name, Type: config.QueryTypeRange, Span: &s}
}

func testWorkload(t *testing.T, queries ...config.QuerySpec) *workload.Workload {
	t.Helper()

	cfg := config.Workload{
		Name: "demo",
		Intervals: []config.IntervalEntry{
			{ID: "a", Span: spec(1, 3, true, true)},
			{ID: "b", Span: spec(2, 4, true, true)},
			{ID: "c", Span: spec(5, 7, true, true)},
		},
		Queries: queries,
	}

	w, err := workload.Load(cfg)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return w
}

func TestLoadDuplicateID(t *testing.T) {
	cfg := config.Workload{
		Intervals: []config.IntervalEntry{
			{ID: "a", Span: spec(1, 3, true, true)},
			{ID: "a", Span: spec(5, 7, true, true)},
		},
	}
	if _, err := workload.Load(cfg); err == nil {
		t.Error("Load() with duplicate ids should error")
	}
}

func TestRunPointQuery(t *testing.T) {
	w := testWorkload(t, atQuery("at3", 3))

	results, err := w.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Run() returned %d results, want 1", len(results))
	}

	got := slices.Clone(results[0].Matches)
	slices.Sort(got)
	want := []string{"a", "b"}
	if !slices.Equal(got, want) {
		t.Errorf("Matches = %v, want %v", got, want)
	}
}

func TestRunRangeQuery(t *testing.T) {
	w := testWorkload(t, rangeQuery("span2to6", 2, 6, true, true))

	results, err := w.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := slices.Clone(results[0].Matches)
	slices.Sort(got)
	want := []string{"a", "b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("Matches = %v, want %v", got, want)
	}
}

func TestRunUnknownQueryType(t *testing.T) {
	w := testWorkload(t, config.QuerySpec{Name: "bad", Type: "triangle"})
	if _, err := w.Run(); err == nil {
		t.Error("Run() with unknown query type should error")
	}
}

func TestRunPointQueryMissingAt(t *testing.T) {
	w := testWorkload(t, config.QuerySpec{Name: "bad", Type: config.QueryTypePoint})
	if _, err := w.Run(); err == nil {
		t.Error("Run() with missing \"at\" should error")
	}
}

func TestAddAndRemoveInterval(t *testing.T) {
	w := testWorkload(t)

	if _, err := w.AddInterval("d", spec(10, 20, true, true)); err != nil {
		t.Fatalf("AddInterval() error = %v", err)
	}
	if w.Tree().Count() != 4 {
		t.Errorf("Count() = %d, want 4", w.Tree().Count())
	}

	if _, err := w.AddInterval("a", spec(0, 1, true, true)); err == nil {
		t.Error("AddInterval() with duplicate id should error")
	}

	if !w.RemoveInterval("d") {
		t.Error("RemoveInterval(\"d\") = false, want true")
	}
	if w.RemoveInterval("d") {
		t.Error("RemoveInterval(\"d\") twice should return false")
	}
}

func TestIntervalIDsSorted(t *testing.T) {
	w := testWorkload(t)
	got := w.IntervalIDs()
	want := []string{"a", "b", "c"}
	if !slices.Equal(got, want) {
		t.Errorf("IntervalIDs() = %v, want %v", got, want)
	}
}

func TestStats(t *testing.T) {
	w := testWorkload(t)
	stats := w.Stats()

	if stats.Count != 3 {
		t.Errorf("Stats().Count = %d, want 3", stats.Count)
	}
	if stats.MaximumDepth != 2 {
		t.Errorf("Stats().MaximumDepth = %d, want 2", stats.MaximumDepth)
	}
	if !stats.HasSpan || stats.Span != "[1,7]" {
		t.Errorf("Stats().Span = %q hasSpan=%v, want [1,7]", stats.Span, stats.HasSpan)
	}
}

func TestStatsEmptyWorkload(t *testing.T) {
	w := testWorkload(t)
	w.RemoveInterval("a")
	w.RemoveInterval("b")
	w.RemoveInterval("c")

	stats := w.Stats()
	if stats.Count != 0 {
		t.Errorf("Stats().Count = %d, want 0", stats.Count)
	}
	if stats.HasSpan {
		t.Error("Stats().HasSpan should be false for an empty workload")
	}
}
