package normalize

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/finsight/pkg/category"
	"github.com/yurifrl/finsight/pkg/models"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"05.11.25", "2025-11-05"},
		{"5.11.2025", "2025-11-05"},
		{"05/11/2025", "2025-11-05"},
		{"1-2-24", "2024-02-01"},
		{"03/04/2025", "2025-04-03"},
		{"2025-11-05", "2025-11-05"},
		{"2025/11/05", "2025-11-05"},
		{"2025-11-05T10:30:00Z", "2025-11-05"},
		{"05.11.2025 14:20", "2025-11-05"},
		{"5 Nov 2025", "2025-11-05"},
		{"  ", ""},
		{"yesterday", "yesterday"},
		{"31.02.2025", "31.02.2025"},
	}

	for _, tt := range tests {
		if got := ParseDate(tt.in); got != tt.want {
			t.Errorf("ParseDate(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestParseDateExtraLayouts(t *testing.T) {
	if got := ParseDate("Nov-05-2025"); got != "Nov-05-2025" {
		t.Fatalf("expected passthrough without extra layout, got %q", got)
	}
	if got := ParseDate("Nov-05-2025", "Jan-02-2006"); got != "2025-11-05" {
		t.Errorf("expected extra layout to apply, got %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"1500", 1500},
		{"1500,50", 1500.5},
		{"1 500,50 ₽", 1500.5},
		{"$12.30", 12.3},
		{"-40000", -40000},
		{"+95000", 95000},
		{"1,234.56", 0},
		{"abc", 0},
		{"-", 0},
	}

	for _, tt := range tests {
		if got := ParseAmount(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ParseAmount(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func newTestNormalizer(opts Options) *Normalizer {
	return New(log.New(io.Discard), category.New(), opts)
}

func TestNormalize(t *testing.T) {
	n := newTestNormalizer(Options{})

	op, err := n.Normalize(models.RawRow{
		"Date":       "",
		"Date.1":     "02.11.25",
		"Category":   "RENT",
		"RefNo":      "TRF-0091",
		"Withdrawal": "40 000,00",
		"Deposit":    "",
		"Balance":    "55000",
		"Mandatory":  "yes",
	}, 7)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if op.ID != 7 {
		t.Errorf("expected fallback id 7, got %d", op.ID)
	}
	if op.Date != "2025-11-02" {
		t.Errorf("expected date from Date.1, got %q", op.Date)
	}
	if op.Category != category.Rent {
		t.Errorf("expected canonical rent label, got %q", op.Category)
	}
	if op.Amount != -40000 || op.Withdrawal != 40000 || op.Deposit != 0 {
		t.Errorf("unexpected amounts: %+v", op)
	}
	if op.Balance != 55000 || op.BalanceDerived {
		t.Errorf("expected supplied balance, got %+v", op)
	}
	if !op.Mandatory {
		t.Error("expected mandatory flag")
	}
	if op.DisplayTitle() != "TRF-0091" {
		t.Errorf("expected reference note as title, got %q", op.DisplayTitle())
	}
}

func TestNormalizeIgnoresUpstreamAmount(t *testing.T) {
	n := newTestNormalizer(Options{})
	op, err := n.Normalize(models.RawRow{"date": "2025-11-01", "deposit": "100", "withdrawal": "30", "amount": "999", "id": "42"}, 0)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if op.Amount != 70 {
		t.Errorf("expected amount derived from raw pair, got %v", op.Amount)
	}
	if op.ID != 42 {
		t.Errorf("expected source id, got %d", op.ID)
	}
}

func TestNormalizeRejections(t *testing.T) {
	n := newTestNormalizer(Options{})
	if _, err := n.Normalize(models.RawRow{"Category": "Food"}, 0); !errors.Is(err, ErrMissingDate) {
		t.Errorf("expected ErrMissingDate, got %v", err)
	}
	if _, err := n.Normalize(models.RawRow{"Date": "someday"}, 0); !errors.Is(err, ErrMissingDate) {
		t.Errorf("expected ErrMissingDate for unparseable date, got %v", err)
	}

	op, err := n.Normalize(models.RawRow{"Date": "01.11.2025"}, 0)
	if err != nil {
		t.Fatalf("expected uncategorized row to pass without RequireCategory: %v", err)
	}
	if op.Category != models.Uncategorized {
		t.Errorf("expected sentinel category, got %q", op.Category)
	}

	strict := newTestNormalizer(Options{RequireCategory: true})
	if _, err := strict.Normalize(models.RawRow{"Date": "01.11.2025"}, 0); !errors.Is(err, ErrMissingCategory) {
		t.Errorf("expected ErrMissingCategory, got %v", err)
	}
}

func TestNormalizeAll(t *testing.T) {
	n := newTestNormalizer(Options{RequireCategory: true})
	rows := []models.RawRow{
		{"Date": "01.11.25", "Category": "salary", "Deposit": "95000"},
		{"Date": "bad", "Category": "rent", "Withdrawal": "10"},
		{"Date": "02.11.25", "Category": "", "Withdrawal": "10"},
		{"Date": "02.11.25", "Category": "rent", "Withdrawal": "40000", "Mandatory": "1"},
		{"Date": "03.11.25", "Category": "Кафе", "Withdrawal": "500", "Balance": "1"},
	}

	res := n.NormalizeAll(rows)
	if len(res.Operations) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(res.Operations))
	}
	if len(res.Rejected) != 2 {
		t.Fatalf("expected 2 rejections, got %d", len(res.Rejected))
	}
	if res.Rejected[0].Index != 1 || res.Rejected[0].Reason != "date" {
		t.Errorf("unexpected first rejection: %+v", res.Rejected[0])
	}
	if res.Rejected[1].Index != 2 || res.Rejected[1].Reason != "category" {
		t.Errorf("unexpected second rejection: %+v", res.Rejected[1])
	}

	for _, op := range res.Operations {
		if !models.IsISODate(op.Date) {
			t.Errorf("stored operation with non-ISO date: %+v", op)
		}
	}

	if res.Operations[0].Balance != 95000 || !res.Operations[0].BalanceDerived {
		t.Errorf("expected derived running balance 95000, got %+v", res.Operations[0])
	}
	if res.Operations[1].Balance != 55000 {
		t.Errorf("expected derived running balance 55000, got %v", res.Operations[1].Balance)
	}
	if res.Operations[2].Balance != 1 {
		t.Errorf("expected supplied balance to win, got %v", res.Operations[2].Balance)
	}
	if res.Operations[1].ID != 3 {
		t.Errorf("expected positional id 3, got %d", res.Operations[1].ID)
	}
}
