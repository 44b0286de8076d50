package analytics

import (
	"math"

	"github.com/yurifrl/finsight/pkg/models"
)

// ChartData is the income/expense split for the presentation chart.
type ChartData struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	HasData  bool    `json:"has_data"`
}

func Aggregate(ops []models.Operation) ChartData {
	var c ChartData
	for _, op := range ops {
		switch {
		case op.Amount > 0:
			c.Income += op.Amount
		case op.Amount < 0:
			c.Expenses += math.Abs(op.Amount)
		}
	}
	c.HasData = c.Income != 0 || c.Expenses != 0
	return c
}

// BalancePoint is one sample of the running balance.
type BalancePoint struct {
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

// BalanceSeries returns the balance after each operation, sorted by date.
func BalanceSeries(ops []models.Operation) []BalancePoint {
	sorted := SortByDate(ops)
	points := make([]BalancePoint, 0, len(sorted))
	for _, op := range sorted {
		points = append(points, BalancePoint{Date: op.Date, Balance: op.Balance})
	}
	return points
}

// Totals are the raw deposit and withdrawal sums of a period.
type Totals struct {
	Count      int     `json:"count"`
	Deposit    float64 `json:"deposit"`
	Withdrawal float64 `json:"withdrawal"`
}

func PeriodTotals(ops []models.Operation) Totals {
	t := Totals{Count: len(ops)}
	for _, op := range ops {
		t.Deposit += op.Deposit
		t.Withdrawal += math.Abs(op.Withdrawal)
	}
	return t
}

// AnomalyReport summarizes threshold anomalies over a period.
type AnomalyReport struct {
	TotalOperations int                `json:"total_operations"`
	AnomalyCount    int                `json:"anomaly_count"`
	AnomalyRatio    float64            `json:"anomaly_ratio"`
	TotalWithdrawal float64            `json:"total_withdrawal"`
	TotalDeposit    float64            `json:"total_deposit"`
	Anomalies       []models.Operation `json:"anomalies"`
}

func Anomalies(ops []models.Operation, opts Options) AnomalyReport {
	totals := PeriodTotals(ops)
	r := AnomalyReport{
		TotalOperations: len(ops),
		TotalWithdrawal: totals.Withdrawal,
		TotalDeposit:    totals.Deposit,
		Anomalies:       []models.Operation{},
	}
	for _, op := range ops {
		if IsAnomalous(op, opts) {
			r.Anomalies = append(r.Anomalies, op)
		}
	}
	r.AnomalyCount = len(r.Anomalies)
	if r.TotalOperations > 0 {
		r.AnomalyRatio = float64(r.AnomalyCount) / float64(r.TotalOperations)
	}
	return r
}
