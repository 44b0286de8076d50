package format

import (
	"strings"
	"testing"

	"github.com/yurifrl/finsight/pkg/analytics"
)

func TestMoneyEnglish(t *testing.T) {
	f := New("en", "$")
	tests := []struct {
		in       float64
		contains string
	}{
		{1234, "1,234"},
		{1234.567, "1,234.57"},
		{0, "0"},
	}
	for _, tt := range tests {
		got := f.Money(tt.in)
		if !strings.Contains(got, tt.contains) || !strings.HasSuffix(got, " $") {
			t.Errorf("Money(%v): expected %q with currency, got %q", tt.in, tt.contains, got)
		}
	}
	if got := f.Number(95000); strings.Contains(got, ".") {
		t.Errorf("whole numbers must not carry decimals, got %q", got)
	}
}

func TestSigned(t *testing.T) {
	f := New("en", "")
	if got := f.Signed(95000); got != "+95,000" {
		t.Errorf("expected +95,000, got %q", got)
	}
	if got := f.Signed(-40000); got != "-40,000" {
		t.Errorf("expected -40,000, got %q", got)
	}
	if got := f.Signed(0); got != "0" {
		t.Errorf("expected 0, got %q", got)
	}
}

func TestPercentAndMonths(t *testing.T) {
	f := New("en", "")
	if got := f.Percent(0.85); got != "85%" {
		t.Errorf("expected 85%%, got %q", got)
	}
	if got := f.Percent(0.5789); got != "58%" {
		t.Errorf("expected 58%%, got %q", got)
	}
	if got := f.Months(1.375); got != "1.4" {
		t.Errorf("expected 1.4, got %q", got)
	}
}

func TestTierLabels(t *testing.T) {
	if got := Default().Tier(analytics.TierHigh); got != "Высокая" {
		t.Errorf("expected russian label, got %q", got)
	}
	if got := New("en-US", "").Tier(analytics.TierLow); got != "Low" {
		t.Errorf("expected english label, got %q", got)
	}
	if got := New("xx-invalid!", "").Tier(analytics.TierMedium); got != "Medium" {
		t.Errorf("expected english fallback, got %q", got)
	}
}

func TestDefaultLocale(t *testing.T) {
	got := Default().Money(55000)
	if !strings.HasSuffix(got, " ₽") || !strings.Contains(got, "000") {
		t.Errorf("unexpected russian money rendering %q", got)
	}
}

func TestDetail(t *testing.T) {
	f := New("en", "")
	drop := analytics.Notification{Code: analytics.CodeCushionDrop, Amount: 5000, Detail: "raw"}
	if got := f.Detail(drop); got != "-5,000" {
		t.Errorf("expected formatted drop, got %q", got)
	}
	info := analytics.Notification{Code: analytics.CodeRecentActivity, Detail: "as is"}
	if got := f.Detail(info); got != "as is" {
		t.Errorf("expected detail passthrough, got %q", got)
	}

	s := f.Summary(analytics.Summary{Net: 55000, SavingsRate: 0.579, Tier: analytics.TierHigh})
	if s["net"] != "+55,000" || s["savings_rate"] != "58%" || s["tier"] != "High" {
		t.Errorf("unexpected summary rendering: %v", s)
	}
}
