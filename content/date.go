package content

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Date is a frontmatter date. It accepts YAML timestamps as well as the
// common quoted forms authors write by hand.
type Date struct {
	time.Time
}

// ParseDate parses s with the accepted frontmatter layouts. Values without a
// zone are interpreted as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// UnmarshalYAML implements the yaml.v2 unmarshaler used by the frontmatter parser.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v.UTC()
		return nil
	case string:
		t, err := ParseDate(v)
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	default:
		return fmt.Errorf("invalid date %v", raw)
	}
}

// UnmarshalText lets TOML frontmatter use the same layouts.
func (d *Date) UnmarshalText(text []byte) error {
	t, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
