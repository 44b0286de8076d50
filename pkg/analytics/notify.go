package analytics

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/yurifrl/finsight/pkg/models"
)

type Kind string

const (
	KindInfo     Kind = "info"
	KindWarning  Kind = "warning"
	KindCritical Kind = "critical"
)

// Code identifies the rule that produced a notification.
type Code string

const (
	CodeRecentActivity   Code = "recent_activity"
	CodeCategoryOverload Code = "category_overload"
	CodeCushionDrop      Code = "cushion_drop"
	CodeAnomaly          Code = "anomaly"
)

// Item is one line of a notification body.
type Item struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Title  string  `json:"title"`
}

// Notification is an ephemeral alert. Numeric fields carry raw values;
// rendering them for display is left to the presentation layer.
type Notification struct {
	Kind     Kind    `json:"kind"`
	Code     Code    `json:"code"`
	Title    string  `json:"title"`
	Detail   string  `json:"detail,omitempty"`
	Items    []Item  `json:"items,omitempty"`
	Category string  `json:"category,omitempty"`
	Month    string  `json:"month,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Share    float64 `json:"share,omitempty"`
}

// Notify runs every rule in display order: recent activity, category
// overload, cushion regression, anomalies. previous is the cushion carried
// from the last call, nil when there is none. The returned pointer is the
// cushion to carry into the next call; with no operations the previous
// value is returned untouched.
func Notify(ops []models.Operation, previous *float64, opts Options) ([]Notification, *float64) {
	if len(ops) == 0 {
		return nil, previous
	}
	opts = opts.withDefaults()

	var out []Notification
	if n, ok := recentActivity(ops, opts.RecentLimit); ok {
		out = append(out, n)
	}
	out = append(out, categoryOverload(ops, opts.OverloadShare)...)

	cushion := SummarizeWith(ops, opts).Cushion
	if previous != nil && cushion < *previous {
		out = append(out, cushionDrop(*previous, cushion))
	}

	out = append(out, anomalies(ops, opts)...)
	return out, &cushion
}

// SortByDate returns a copy of ops sorted by date, keeping load order for
// equal dates.
func SortByDate(ops []models.Operation) []models.Operation {
	sorted := make([]models.Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

func recentActivity(ops []models.Operation, limit int) (Notification, bool) {
	sorted := SortByDate(ops)
	if len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}
	items := make([]Item, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		op := sorted[i]
		items = append(items, Item{Date: op.Date, Amount: op.Amount, Title: op.DisplayTitle()})
	}
	if len(items) == 0 {
		return Notification{}, false
	}
	return Notification{
		Kind:  KindInfo,
		Code:  CodeRecentActivity,
		Title: "Recent activity",
		Items: items,
	}, true
}

func categoryOverload(ops []models.Operation, threshold float64) []Notification {
	var month string
	for _, op := range ops {
		if m := op.Month(); m > month {
			month = m
		}
	}

	var order []string
	byCategory := map[string]float64{}
	var total float64
	for _, op := range ops {
		if op.Month() != month || !op.IsExpense() {
			continue
		}
		if _, ok := byCategory[op.Category]; !ok {
			order = append(order, op.Category)
		}
		magnitude := math.Abs(op.Amount)
		byCategory[op.Category] += magnitude
		total += magnitude
	}
	if total == 0 {
		return nil
	}

	var out []Notification
	for _, cat := range order {
		share := byCategory[cat] / total
		if share < threshold {
			continue
		}
		percent := math.Round(share * 100)
		out = append(out, Notification{
			Kind:     KindWarning,
			Code:     CodeCategoryOverload,
			Title:    "Category overload: " + cat,
			Detail:   fmt.Sprintf("%s takes %s%% of expenses in %s", cat, strconv.FormatFloat(percent, 'f', -1, 64), month),
			Category: cat,
			Month:    month,
			Amount:   byCategory[cat],
			Share:    share,
		})
	}
	return out
}

func cushionDrop(previous, current float64) Notification {
	drop := previous - current
	return Notification{
		Kind:   KindWarning,
		Code:   CodeCushionDrop,
		Title:  "Financial cushion decreased",
		Detail: "cushion dropped by " + strconv.FormatFloat(drop, 'f', -1, 64),
		Amount: drop,
	}
}

// IsAnomalous reports whether op is a large non-rent withdrawal.
func IsAnomalous(op models.Operation, opts Options) bool {
	opts = opts.withDefaults()
	return math.Abs(op.Withdrawal) >= opts.AnomalyThreshold && !opts.isRent(op.Category)
}

func anomalies(ops []models.Operation, opts Options) []Notification {
	var out []Notification
	for _, op := range ops {
		if !IsAnomalous(op, opts) {
			continue
		}
		out = append(out, Notification{
			Kind:     KindCritical,
			Code:     CodeAnomaly,
			Title:    "Unusual transaction: " + op.DisplayTitle(),
			Detail:   fmt.Sprintf("%s withdrawal of %s in %s", op.Date, strconv.FormatFloat(op.Withdrawal, 'f', -1, 64), op.Category),
			Items:    []Item{{Date: op.Date, Amount: op.Amount, Title: op.DisplayTitle()}},
			Category: op.Category,
			Amount:   op.Withdrawal,
		})
	}
	return out
}

// Session owns the cushion carried between Notify calls. One Session
// belongs to one ledger; it is not safe for concurrent use.
type Session struct {
	opts        Options
	lastCushion *float64
}

func NewSession(opts Options) *Session {
	return &Session{opts: opts}
}

// Notify evaluates ops and advances the carried cushion.
func (s *Session) Notify(ops []models.Operation) []Notification {
	notes, next := Notify(ops, s.lastCushion, s.opts)
	s.lastCushion = next
	return notes
}

// Summarize uses the session options.
func (s *Session) Summarize(ops []models.Operation) Summary {
	return SummarizeWith(ops, s.opts)
}

func (s *Session) Options() Options {
	return s.opts.withDefaults()
}

// LastCushion returns the carried cushion, if any.
func (s *Session) LastCushion() (float64, bool) {
	if s.lastCushion == nil {
		return 0, false
	}
	return *s.lastCushion, true
}

// SetLastCushion restores a cushion persisted by the caller.
func (s *Session) SetLastCushion(v float64) {
	s.lastCushion = &v
}

// Reset forgets the carried cushion.
func (s *Session) Reset() {
	s.lastCushion = nil
}
