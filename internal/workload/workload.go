// Package workload builds an ibstree.Tree from a config.Workload and drives
// its query plan, reporting per-query result counts and timings.
package workload

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ibs-tree/ibstree/internal/config"
	"github.com/ibs-tree/ibstree/internal/ibstree"
	"github.com/ibs-tree/ibstree/internal/utils/maps"
)

// Point is the endpoint type intervals are keyed on.
type Point int64

// Compare orders points numerically.
func (p Point) Compare(other Point) int {
	switch {
	case p < other:
		return -1
	case p > other:
		return 1
	default:
		return 0
	}
}

// Interval is a workload interval: an identified span of points.
type Interval struct {
	ID           string
	low, high    Point
	lowIncluded  bool
	highIncluded bool
}

// NewInterval creates an interval from a config.IntervalSpec.
func NewInterval(id string, spec config.IntervalSpec) *Interval {
	return &Interval{
		ID:           id,
		low:          Point(spec.Low),
		high:         Point(spec.High),
		lowIncluded:  spec.LowIncluded,
		highIncluded: spec.HighIncluded,
	}
}

func (iv *Interval) Low() Point          { return iv.low }
func (iv *Interval) High() Point         { return iv.high }
func (iv *Interval) LowIncluded() bool   { return iv.lowIncluded }
func (iv *Interval) HighIncluded() bool  { return iv.highIncluded }

// String renders the interval in the same bracket notation the workload
// config accepts.
func (iv *Interval) String() string {
	lowBracket, highBracket := "[", "]"
	if !iv.lowIncluded {
		lowBracket = "("
	}
	if !iv.highIncluded {
		highBracket = ")"
	}
	return fmt.Sprintf("%s%d,%d%s", lowBracket, iv.low, iv.high, highBracket)
}

// QueryResult is the outcome of running one QuerySpec against the tree.
type QueryResult struct {
	Name     string
	Matches  []string
	Duration time.Duration
}

// Workload owns a tree built from a config.Workload and the query plan to
// run against it.
type Workload struct {
	Name      string
	tree      *ibstree.Tree[Point, *Interval]
	intervals map[string]*Interval
	queries   []config.QuerySpec
}

// Load builds a Workload from the given configuration.
func Load(cfg config.Workload) (*Workload, error) {
	w := &Workload{
		Name:      cfg.Name,
		tree:      ibstree.New[Point, *Interval](),
		intervals: make(map[string]*Interval, len(cfg.Intervals)),
		queries:   cfg.Queries,
	}

	for _, entry := range cfg.Intervals {
		if _, exists := w.intervals[entry.ID]; exists {
			return nil, fmt.Errorf("workload: duplicate interval id %q", entry.ID)
		}
		iv := NewInterval(entry.ID, entry.Span)
		w.intervals[entry.ID] = iv
		w.tree.Insert(iv)
	}

	log.Info().
		Str("workload", w.Name).
		Int("intervals", w.tree.Count()).
		Msg("Workload loaded")

	return w, nil
}

// Tree returns the underlying interval tree.
func (w *Workload) Tree() *ibstree.Tree[Point, *Interval] {
	return w.tree
}

// AddInterval inserts a new interval into the workload's tree, failing if
// the id is already in use.
func (w *Workload) AddInterval(id string, spec config.IntervalSpec) (*Interval, error) {
	if _, exists := w.intervals[id]; exists {
		return nil, fmt.Errorf("workload: duplicate interval id %q", id)
	}
	iv := NewInterval(id, spec)
	w.intervals[id] = iv
	w.tree.Insert(iv)
	return iv, nil
}

// RemoveInterval removes the interval with the given id, if present.
func (w *Workload) RemoveInterval(id string) bool {
	iv, ok := w.intervals[id]
	if !ok {
		return false
	}
	delete(w.intervals, id)
	return w.tree.Remove(iv)
}

// Run executes every query in the workload's plan, in the order they were
// configured, and returns one QueryResult per query.
func (w *Workload) Run() ([]QueryResult, error) {
	results := make([]QueryResult, 0, len(w.queries))
	for _, q := range w.queries {
		result, err := w.runQuery(q)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (w *Workload) runQuery(q config.QuerySpec) (QueryResult, error) {
	start := time.Now()

	var matches []*Interval
	switch q.Type {
	case config.QueryTypePoint:
		if q.At == nil {
			return QueryResult{}, fmt.Errorf("workload: query %q: missing \"at\"", q.Name)
		}
		matches = w.tree.FindOverlapsAt(Point(*q.At))
	case config.QueryTypeRange:
		if q.Span == nil {
			return QueryResult{}, fmt.Errorf("workload: query %q: missing \"span\"", q.Name)
		}
		matches = w.tree.FindOverlaps(NewInterval("", *q.Span))
	default:
		return QueryResult{}, fmt.Errorf("workload: query %q: unknown type %q", q.Name, q.Type)
	}

	ids := make([]string, len(matches))
	for i, iv := range matches {
		ids[i] = iv.ID
	}

	duration := time.Since(start)
	log.Debug().
		Str("query", q.Name).
		Str("type", q.Type).
		Int("matches", len(ids)).
		Dur("duration", duration).
		Msg("Query executed")

	return QueryResult{Name: q.Name, Matches: ids, Duration: duration}, nil
}

// Stats summarizes the current state of the workload's tree.
type Stats struct {
	Count       int
	MaximumDepth int
	Span        string
	HasSpan     bool
}

// Stats returns a snapshot of the workload's tree: its size, maximum depth,
// and enclosing span.
func (w *Workload) Stats() Stats {
	stats := Stats{
		Count:        w.tree.Count(),
		MaximumDepth: w.tree.MaximumDepth(),
	}
	if span, ok := w.tree.Span(); ok {
		stats.HasSpan = true
		lowBracket, highBracket := "[", "]"
		if !span.LowIncluded {
			lowBracket = "("
		}
		if !span.HighIncluded {
			highBracket = ")"
		}
		stats.Span = fmt.Sprintf("%s%d,%d%s", lowBracket, span.Low, span.High, highBracket)
	}
	return stats
}

// IntervalIDs returns the ids of every interval currently loaded, sorted.
func (w *Workload) IntervalIDs() []string {
	return maps.SortedKeys(w.intervals)
}
