// Package analytics derives summaries, notifications and chart data from a
// filtered set of operations. Every function is pure; the one piece of
// carried state, the last known cushion, lives on Session.
package analytics

import "strings"

const (
	DefaultOpsPerMonth      = 8
	DefaultRecentLimit      = 10
	DefaultOverloadShare    = 0.8
	DefaultAnomalyThreshold = 10000
)

// DefaultRentCategories never raise anomaly notifications.
var DefaultRentCategories = []string{"Аренда", "Rent"}

type Options struct {
	// OpsPerMonth feeds the month-count estimate used when Months is zero.
	OpsPerMonth int
	// Months, when positive, is the explicit period length.
	Months int
	// RecentLimit caps the recent activity list.
	RecentLimit int
	// OverloadShare is the share of a month's expenses that makes a
	// category overloaded.
	OverloadShare float64
	// AnomalyThreshold is the withdrawal magnitude that raises a critical
	// notification.
	AnomalyThreshold float64
	RentCategories   []string
}

func DefaultOptions() Options {
	return Options{
		OpsPerMonth:      DefaultOpsPerMonth,
		RecentLimit:      DefaultRecentLimit,
		OverloadShare:    DefaultOverloadShare,
		AnomalyThreshold: DefaultAnomalyThreshold,
		RentCategories:   DefaultRentCategories,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.OpsPerMonth <= 0 {
		o.OpsPerMonth = d.OpsPerMonth
	}
	if o.RecentLimit <= 0 {
		o.RecentLimit = d.RecentLimit
	}
	if o.OverloadShare <= 0 {
		o.OverloadShare = d.OverloadShare
	}
	if o.AnomalyThreshold <= 0 {
		o.AnomalyThreshold = d.AnomalyThreshold
	}
	if o.RentCategories == nil {
		o.RentCategories = d.RentCategories
	}
	return o
}

func (o Options) isRent(category string) bool {
	category = strings.TrimSpace(category)
	for _, rent := range o.RentCategories {
		if strings.EqualFold(category, rent) {
			return true
		}
	}
	return false
}
