package config

// Accepted query types.
const (
	QueryTypePoint = "point"
	QueryTypeRange = "range"
)

// IntervalEntry is one interval to load into the tree before running the
// workload's queries.
type IntervalEntry struct {
	ID   string       `yaml:"id"             validate:"required"`
	Span IntervalSpec `yaml:"span"            validate:"interval"`
}

// QuerySpec is a single query in the workload's query plan: either a point
// stab (At) or a range overlap (Span), selected by Type.
type QuerySpec struct {
	Name string        `yaml:"name"           validate:"required"`
	Type string        `yaml:"type"           validate:"required,oneof=point range"`
	At   *int64        `yaml:"at,omitempty"`
	Span *IntervalSpec `yaml:"span,omitempty"`
}

// Workload is a named collection of intervals and the queries to run against
// the tree they build.
type Workload struct {
	Name      string          `yaml:"name"      validate:"required"`
	Intervals []IntervalEntry `yaml:"intervals" validate:"dive"`
	Queries   []QuerySpec     `yaml:"queries"   validate:"dive"`
}

// Configuration represents the configuration of the application.
type Configuration struct {
	Workload Workload `yaml:"workload"`
}
