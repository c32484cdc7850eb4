package config_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ibs-tree/ibstree/internal/config"
)

const validConfig = `
workload:
  name: demo
  intervals:
    - id: a
      span: "[1,5)"
    - id: b
      span: "(3,7]"
  queries:
    - name: q1
      type: point
      at: 5
    - name: q2
      type: range
      span: "[2,6]"
`

const invalidIntervalLiteral = `
workload:
  name: demo
  intervals:
    - id: a
      span: "1,5"
  queries: []
`

const invalidIntervalBrackets = `
workload:
  name: demo
  intervals:
    - id: a
      span: "{1,5}"
  queries: []
`

const invalidQueryType = `
workload:
  name: demo
  intervals: []
  queries:
    - name: q1
      type: triangle
`

const missingWorkloadName = `
workload:
  intervals: []
  queries: []
`

const missingIntervalID = `
workload:
  name: demo
  intervals:
    - span: "[1,5)"
  queries: []
`

func ptrInt64(v int64) *int64 { return &v }

func TestReadConfig_Valid(t *testing.T) {
	reader := strings.NewReader(validConfig)

	cfg, err := config.ReadConfig(reader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := &config.Configuration{
		Workload: config.Workload{
			Name: "demo",
			Intervals: []config.IntervalEntry{
				{
					ID: "a",
					Span: config.IntervalSpec{
						Low: 1, High: 5,
						LowIncluded: true, HighIncluded: false,
					},
				},
				{
					ID: "b",
					Span: config.IntervalSpec{
						Low: 3, High: 7,
						LowIncluded: false, HighIncluded: true,
					},
				},
			},
			Queries: []config.QuerySpec{
				{Name: "q1", Type: "point", At: ptrInt64(5)},
				{
					Name: "q2", Type: "range",
					Span: &config.IntervalSpec{
						Low: 2, High: 6,
						LowIncluded: true, HighIncluded: true,
					},
				},
			},
		},
	}

	if !reflect.DeepEqual(*cfg, *expected) {
		t.Errorf("expected %+v, got %+v", expected, cfg)
	}
}

func TestReadConfig_Err(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid interval literal", invalidIntervalLiteral},
		{"invalid interval brackets", invalidIntervalBrackets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := strings.NewReader(tt.data)
			_, err := config.ReadConfig(reader)
			if err == nil {
				t.Error("expected an error but got nil")
			}
		})
	}
}

func TestReadConfig_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid query type", invalidQueryType},
		{"missing workload name", missingWorkloadName},
		{"missing interval id", missingIntervalID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := strings.NewReader(tt.data)
			_, err := config.ReadConfig(reader)
			if err == nil {
				t.Error("expected validation error but got nil")
			}
		})
	}
}

type errReader struct{}

func (r *errReader) Read(_ []byte) (n int, err error) {
	return 0, errors.New("read error")
}

func TestReadConfig_ErrReader(t *testing.T) {
	_, err := config.ReadConfig(&errReader{})
	if err == nil {
		t.Error("expected an error but got nil")
	}
}
