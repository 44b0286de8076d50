package analytics

import (
	"math"
	"testing"

	"github.com/yurifrl/finsight/pkg/models"
)

const tolerance = 1e-9

func op(id int, date string, deposit, withdrawal float64, category string, mandatory bool) models.Operation {
	return models.Operation{
		ID:         id,
		Date:       date,
		Category:   category,
		Deposit:    deposit,
		Withdrawal: withdrawal,
		Amount:     models.NetAmount(deposit, withdrawal),
		Mandatory:  mandatory,
	}
}

func salaryAndRent() []models.Operation {
	return []models.Operation{
		op(0, "2025-11-01", 95000, 0, "Зарплата", false),
		op(1, "2025-11-02", 0, 40000, "Аренда", true),
	}
}

func TestSummarizeSalaryAndRent(t *testing.T) {
	s := Summarize(salaryAndRent())

	checks := []struct {
		name      string
		got, want float64
	}{
		{"total income", s.TotalIncome, 95000},
		{"total expense", s.TotalExpense, 40000},
		{"mandatory expense", s.MandatoryExpense, 40000},
		{"variable expense", s.VariableExpense, 0},
		{"net", s.Net, 55000},
		{"cushion", s.Cushion, 55000},
		{"avg mandatory", s.AvgMandatory, 40000},
		{"months of coverage", s.CushionMonths, 55000.0 / 40000.0},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > tolerance {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
	if s.Months != 1 {
		t.Errorf("expected 1 month, got %d", s.Months)
	}
	// 1 - 40000/95000 ≈ 0.579
	if s.Tier != TierHigh {
		t.Errorf("expected high tier, got %s", s.Tier)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	if s.TotalIncome != 0 || s.TotalExpense != 0 || s.MandatoryExpense != 0 || s.VariableExpense != 0 ||
		s.Net != 0 || s.AvgIncome != 0 || s.AvgExpense != 0 || s.AvgMandatory != 0 ||
		s.SavingsRate != 0 || s.Cushion != 0 || s.CushionMonths != 0 {
		t.Errorf("expected all-zero summary, got %+v", s)
	}
	if s.Months != 1 {
		t.Errorf("expected month estimate floor of 1, got %d", s.Months)
	}
	if s.Tier != TierNegative {
		t.Errorf("expected zero savings rate to map to negative, got %s", s.Tier)
	}
	if math.IsNaN(s.SavingsRate) || math.IsNaN(s.CushionMonths) {
		t.Error("zero guards must not produce NaN")
	}
}

func TestSummaryConservation(t *testing.T) {
	subsets := [][]models.Operation{
		nil,
		salaryAndRent(),
		{op(0, "2025-01-01", 0, 100, "Еда", false), op(1, "2025-01-02", 0, 250.75, "Аренда", true)},
		{op(0, "2025-01-01", 10, 0, "Прочее", false), op(1, "2025-01-01", 0, 10, "Прочее", false), op(2, "2025-01-03", 0, 0, "Прочее", true)},
	}

	for i, ops := range subsets {
		s := Summarize(ops)
		if math.Abs(s.TotalIncome-s.TotalExpense-s.Net) > tolerance {
			t.Errorf("subset %d: income - expense != net (%+v)", i, s)
		}
		if math.Abs(s.MandatoryExpense+s.VariableExpense-s.TotalExpense) > tolerance {
			t.Errorf("subset %d: mandatory + variable != expense (%+v)", i, s)
		}
		if s.Cushion < 0 {
			t.Errorf("subset %d: negative cushion %v", i, s.Cushion)
		}
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	ops := salaryAndRent()
	first := Summarize(ops)
	second := Summarize(ops)
	if first != second {
		t.Errorf("expected identical summaries, got %+v and %+v", first, second)
	}
}

func TestNegativeNetGivesNoCushion(t *testing.T) {
	s := Summarize([]models.Operation{
		op(0, "2025-01-01", 1000, 0, "Зарплата", false),
		op(1, "2025-01-02", 0, 3000, "Еда", false),
	})
	if s.Net != -2000 || s.Cushion != 0 {
		t.Errorf("expected net -2000 and zero cushion, got %+v", s)
	}
	if s.Tier != TierNegative {
		t.Errorf("expected negative tier, got %s", s.Tier)
	}
	if s.CushionMonths != 0 {
		t.Errorf("expected zero coverage without mandatory expense, got %v", s.CushionMonths)
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		rate float64
		want Tier
	}{
		{-0.5, TierNegative},
		{0, TierNegative},
		{0.05, TierLow},
		{0.10, TierLow},
		{0.2, TierMedium},
		{0.30, TierMedium},
		{0.31, TierHigh},
	}
	for _, tt := range tests {
		if got := TierFor(tt.rate); got != tt.want {
			t.Errorf("TierFor(%v): expected %s, got %s", tt.rate, tt.want, got)
		}
	}
}

func TestEstimateMonths(t *testing.T) {
	tests := []struct {
		count int
		opts  Options
		want  int
	}{
		{0, Options{}, 1},
		{3, Options{}, 1},
		{4, Options{}, 1},
		{12, Options{}, 2},
		{24, Options{}, 3},
		{24, Options{OpsPerMonth: 4}, 6},
		{24, Options{Months: 12}, 12},
	}
	for _, tt := range tests {
		if got := EstimateMonths(tt.count, tt.opts); got != tt.want {
			t.Errorf("EstimateMonths(%d, %+v): expected %d, got %d", tt.count, tt.opts, tt.want, got)
		}
	}
}

func TestSummarizeAveragesUseMonths(t *testing.T) {
	var ops []models.Operation
	for i := 0; i < 16; i++ {
		ops = append(ops, op(i, "2025-01-01", 1000, 0, "Зарплата", false))
	}
	s := Summarize(ops)
	if s.Months != 2 || s.AvgIncome != 8000 {
		t.Errorf("expected 2 months and avg income 8000, got %d and %v", s.Months, s.AvgIncome)
	}

	explicit := SummarizeWith(ops, Options{Months: 4})
	if explicit.AvgIncome != 4000 {
		t.Errorf("expected explicit period to override the estimate, got %v", explicit.AvgIncome)
	}
}
