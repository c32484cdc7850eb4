package config

import (
	"fmt"
	"regexp"
	"strconv"
)

// bracketRegex matches bracket-notation interval literals such as "[1,5)" or
// "(-3, 7]".
var bracketRegex = regexp.MustCompile(`^([\[(])\s*(-?\d+)\s*,\s*(-?\d+)\s*([\])])$`)

// IntervalSpec represents an interval endpoint pair in bracket notation. It's
// used to support unmarshaling from YAML.
type IntervalSpec struct {
	Low          int64
	High         int64
	LowIncluded  bool
	HighIncluded bool
}

// UnmarshalYAML unmarshals an interval from its bracket-notation string, e.g.
// "[1,5)" for the half-open interval from 1 (included) to 5 (excluded).
func (s *IntervalSpec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var literal string
	if err := unmarshal(&literal); err != nil {
		return err
	}

	match := bracketRegex.FindStringSubmatch(literal)
	if match == nil {
		return fmt.Errorf("config: invalid interval literal %q", literal)
	}

	low, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return err
	}
	high, err := strconv.ParseInt(match[3], 10, 64)
	if err != nil {
		return err
	}

	s.Low = low
	s.High = high
	s.LowIncluded = match[1] == "["
	s.HighIncluded = match[4] == "]"
	return nil
}
