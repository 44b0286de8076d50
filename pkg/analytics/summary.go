package analytics

import (
	"math"

	"github.com/yurifrl/finsight/pkg/models"
)

// Tier is a coarse rating of the savings rate.
type Tier string

const (
	TierNegative Tier = "negative"
	TierLow      Tier = "low"
	TierMedium   Tier = "medium"
	TierHigh     Tier = "high"
)

// Summary holds the aggregate statistics of an operation subset.
type Summary struct {
	Operations       int     `json:"operations"`
	TotalIncome      float64 `json:"total_income"`
	TotalExpense     float64 `json:"total_expense"`
	MandatoryExpense float64 `json:"mandatory_expense"`
	VariableExpense  float64 `json:"variable_expense"`
	Net              float64 `json:"net"`
	Months           int     `json:"months"`
	AvgIncome        float64 `json:"avg_income"`
	AvgExpense       float64 `json:"avg_expense"`
	AvgMandatory     float64 `json:"avg_mandatory"`
	SavingsRate      float64 `json:"savings_rate"`
	Tier             Tier    `json:"sustainability_tier"`
	Cushion          float64 `json:"cushion"`
	CushionMonths    float64 `json:"months_of_cushion_coverage"`
}

// Summarize computes a Summary with DefaultOptions.
func Summarize(ops []models.Operation) Summary {
	return SummarizeWith(ops, DefaultOptions())
}

// SummarizeWith computes a Summary. Every division is guarded to yield 0.
func SummarizeWith(ops []models.Operation, opts Options) Summary {
	opts = opts.withDefaults()

	s := Summary{Operations: len(ops)}
	for _, op := range ops {
		switch {
		case op.Amount > 0:
			s.TotalIncome += op.Amount
		case op.Amount < 0:
			magnitude := math.Abs(op.Amount)
			s.TotalExpense += magnitude
			if op.Mandatory {
				s.MandatoryExpense += magnitude
			}
		}
	}
	s.VariableExpense = s.TotalExpense - s.MandatoryExpense
	s.Net = s.TotalIncome - s.TotalExpense

	s.Months = EstimateMonths(len(ops), opts)
	s.AvgIncome = perMonth(s.TotalIncome, s.Months)
	s.AvgExpense = perMonth(s.TotalExpense, s.Months)
	s.AvgMandatory = perMonth(s.MandatoryExpense, s.Months)

	if s.AvgIncome > 0 {
		s.SavingsRate = 1 - s.AvgExpense/s.AvgIncome
	}
	s.Tier = TierFor(s.SavingsRate)

	s.Cushion = math.Max(s.Net, 0)
	if s.AvgMandatory > 0 {
		s.CushionMonths = s.Cushion / s.AvgMandatory
	}
	return s
}

// EstimateMonths returns the period length used for per-month averages.
// Without an explicit Months option it is max(1, round(count/OpsPerMonth)),
// an approximation that assumes a fixed number of operations per month. It
// is not a calendar computation.
func EstimateMonths(count int, opts Options) int {
	opts = opts.withDefaults()
	if opts.Months > 0 {
		return opts.Months
	}
	months := int(math.Round(float64(count) / float64(opts.OpsPerMonth)))
	if months < 1 {
		return 1
	}
	return months
}

// TierFor maps a savings rate to its tier.
func TierFor(rate float64) Tier {
	switch {
	case rate > 0.30:
		return TierHigh
	case rate > 0.10:
		return TierMedium
	case rate > 0:
		return TierLow
	default:
		return TierNegative
	}
}

func perMonth(total float64, months int) float64 {
	if total == 0 || months <= 0 {
		return 0
	}
	return total / float64(months)
}
