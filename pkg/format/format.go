// Package format renders the plain numbers produced by analytics for people:
// locale digit grouping, currency suffix, percentages and tier labels.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/yurifrl/finsight/pkg/analytics"
)

const (
	DefaultLocale   = "ru"
	DefaultCurrency = "₽"
)

type Formatter struct {
	printer  *message.Printer
	lang     language.Base
	currency string
}

// New builds a formatter for locale. Unknown locales fall back to English.
func New(locale, currency string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.English
	}
	base, _ := tag.Base()
	return &Formatter{
		printer:  message.NewPrinter(tag),
		lang:     base,
		currency: currency,
	}
}

func Default() *Formatter {
	return New(DefaultLocale, DefaultCurrency)
}

// Number groups digits and keeps two decimals only when there is a fraction.
func (f *Formatter) Number(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsInteger() {
		return f.printer.Sprintf("%d", d.IntPart())
	}
	return f.printer.Sprintf("%.2f", d.InexactFloat64())
}

func (f *Formatter) Money(v float64) string {
	if f.currency == "" {
		return f.Number(v)
	}
	return f.Number(v) + " " + f.currency
}

// Signed is Money with an explicit sign, as used for operation amounts.
func (f *Formatter) Signed(v float64) string {
	switch {
	case v > 0:
		return "+" + f.Money(v)
	case v < 0:
		return "-" + f.Money(-v)
	default:
		return f.Money(0)
	}
}

// Percent renders a share in [0, 1] as a whole percentage.
func (f *Formatter) Percent(share float64) string {
	p := decimal.NewFromFloat(share).Mul(decimal.NewFromInt(100)).Round(0)
	return f.printer.Sprintf("%d", p.IntPart()) + "%"
}

// Months renders a coverage ratio with one decimal.
func (f *Formatter) Months(v float64) string {
	return f.printer.Sprintf("%.1f", decimal.NewFromFloat(v).Round(1).InexactFloat64())
}

var tierLabels = map[string]map[analytics.Tier]string{
	"ru": {
		analytics.TierNegative: "Отрицательная",
		analytics.TierLow:      "Низкая",
		analytics.TierMedium:   "Средняя",
		analytics.TierHigh:     "Высокая",
	},
	"en": {
		analytics.TierNegative: "Negative",
		analytics.TierLow:      "Low",
		analytics.TierMedium:   "Medium",
		analytics.TierHigh:     "High",
	},
}

// Tier returns the savings sustainability label in the formatter language.
func (f *Formatter) Tier(t analytics.Tier) string {
	labels, ok := tierLabels[f.lang.String()]
	if !ok {
		labels = tierLabels["en"]
	}
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}

// Detail renders the body line of a notification with formatted numbers.
func (f *Formatter) Detail(n analytics.Notification) string {
	switch n.Code {
	case analytics.CodeCategoryOverload:
		return n.Category + ": " + f.Percent(n.Share) + " · " + f.Money(n.Amount) + " · " + n.Month
	case analytics.CodeCushionDrop:
		return "-" + f.Money(n.Amount)
	case analytics.CodeAnomaly:
		if len(n.Items) > 0 {
			return n.Items[0].Date + " · " + n.Category + " · " + f.Signed(n.Items[0].Amount)
		}
		return n.Category + " · " + f.Money(n.Amount)
	}
	return n.Detail
}

// Summary renders every numeric field of s.
func (f *Formatter) Summary(s analytics.Summary) map[string]string {
	return map[string]string{
		"total_income":      f.Money(s.TotalIncome),
		"total_expense":     f.Money(s.TotalExpense),
		"mandatory_expense": f.Money(s.MandatoryExpense),
		"variable_expense":  f.Money(s.VariableExpense),
		"net":               f.Signed(s.Net),
		"avg_income":        f.Money(s.AvgIncome),
		"avg_expense":       f.Money(s.AvgExpense),
		"avg_mandatory":     f.Money(s.AvgMandatory),
		"savings_rate":      f.Percent(s.SavingsRate),
		"tier":              f.Tier(s.Tier),
		"cushion":           f.Money(s.Cushion),
		"cushion_months":    f.Months(s.CushionMonths),
	}
}
