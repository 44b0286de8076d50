// Package ledger holds the operations of the current load and selects
// subsets of them by period and category.
//
// A Store is not synchronized. Callers that share one across goroutines
// must serialize Load against readers.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yurifrl/finsight/pkg/models"
)

const (
	MinDate = "1900-01-01"
	MaxDate = "9999-12-31"

	// AllCategories is the category value a presentation layer sends for
	// "no category filter".
	AllCategories = "__all__"
)

// PeriodFilter selects operations with From <= Date <= To and, when
// Category is set, an equal category ignoring case.
type PeriodFilter struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Category string `json:"category,omitempty"`
}

// Bounds returns the effective inclusive range.
func (f PeriodFilter) Bounds() (string, string) {
	from, to := strings.TrimSpace(f.From), strings.TrimSpace(f.To)
	if from == "" {
		from = MinDate
	}
	if to == "" {
		to = MaxDate
	}
	return from, to
}

// ErrInvalidBound is returned by Validate for a bound that is not an ISO date.
var ErrInvalidBound = errors.New("invalid date bound")

// Validate reports a set bound that is not a valid ISO date. Bounds are
// compared as strings, which only orders ISO dates correctly.
func (f PeriodFilter) Validate() error {
	if from := strings.TrimSpace(f.From); from != "" && !models.IsISODate(from) {
		return fmt.Errorf("%w: from %q", ErrInvalidBound, f.From)
	}
	if to := strings.TrimSpace(f.To); to != "" && !models.IsISODate(to) {
		return fmt.Errorf("%w: to %q", ErrInvalidBound, f.To)
	}
	return nil
}

// HasCategory reports whether the filter restricts by category.
func (f PeriodFilter) HasCategory() bool {
	c := strings.TrimSpace(f.Category)
	return c != "" && c != AllCategories
}

// Match reports whether op passes the filter. ISO dates compare correctly
// as strings.
func (f PeriodFilter) Match(op models.Operation) bool {
	from, to := f.Bounds()
	if op.Date < from || op.Date > to {
		return false
	}
	if f.HasCategory() && !strings.EqualFold(op.Category, strings.TrimSpace(f.Category)) {
		return false
	}
	return true
}

type Store struct {
	ops []models.Operation
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces the whole store. Operations without an ISO date are
// dropped.
func (s *Store) Load(ops []models.Operation) {
	next := make([]models.Operation, 0, len(ops))
	for _, op := range ops {
		if !models.IsISODate(op.Date) {
			continue
		}
		next = append(next, op)
	}
	s.ops = next
}

func (s *Store) Len() int {
	return len(s.ops)
}

// All returns a copy of the operations in insertion order.
func (s *Store) All() []models.Operation {
	out := make([]models.Operation, len(s.ops))
	copy(out, s.ops)
	return out
}

// Filter returns a fresh slice of matching operations in insertion order.
func (s *Store) Filter(f PeriodFilter) []models.Operation {
	out := make([]models.Operation, 0, len(s.ops))
	for _, op := range s.ops {
		if f.Match(op) {
			out = append(out, op)
		}
	}
	return out
}

// Categories lists distinct non-empty categories in first-seen order.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, op := range s.ops {
		c := strings.TrimSpace(op.Category)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// DateRange returns the earliest and latest dates held, or empty strings
// for an empty store.
func (s *Store) DateRange() (string, string) {
	var first, last string
	for _, op := range s.ops {
		if first == "" || op.Date < first {
			first = op.Date
		}
		if op.Date > last {
			last = op.Date
		}
	}
	return first, last
}
