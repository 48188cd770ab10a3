package holiday

import "time"

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

type Holiday struct {
	ID          string
	Name        string
	Date        time.Time
	Description *string
	IsOptional  bool
	CreatedAt   time.Time
}

// Year returns the calendar year the holiday falls in.
func (h Holiday) Year() int {
	return h.Date.Year()
}

// Set is a lookup of non-working dates keyed by calendar day.
type Set map[string]struct{}

// NewSet builds a Set from the given dates.
func NewSet(dates ...time.Time) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add marks d as a holiday.
func (s Set) Add(d time.Time) {
	s[d.Format(DateLayout)] = struct{}{}
}

// Contains reports whether d is a holiday. A nil Set contains nothing.
func (s Set) Contains(d time.Time) bool {
	_, ok := s[d.Format(DateLayout)]
	return ok
}

// Dates returns the set members as strings in DateLayout.
func (s Set) Dates() []string {
	out := make([]string, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	return out
}
