package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/finsight/pkg/category"
	"github.com/yurifrl/finsight/pkg/models"
	"github.com/yurifrl/finsight/pkg/normalize"
	"github.com/yurifrl/finsight/pkg/parser"
)

type stubPredictor struct {
	rows  []models.RawRow
	err   error
	calls int
	got   string
}

func (s *stubPredictor) Predict(_ context.Context, csvText string) ([]models.RawRow, error) {
	s.calls++
	s.got = csvText
	return s.rows, s.err
}

func newTestProcessor(predictor Predictor) *Processor {
	logger := log.New(io.Discard)
	return NewProcessor(logger, normalize.New(logger, category.New(), normalize.Options{}), predictor)
}

const ledgerCSV = "Date;Category;Withdrawal;Deposit\n" +
	"01.11.2025;salary;;95000\n" +
	"02.11.2025;;40000;\n" +
	"not a date;Еда;10;\n"

func TestLoadBytes(t *testing.T) {
	res, err := newTestProcessor(nil).LoadBytes(context.Background(), []byte(ledgerCSV), "ledger.csv")
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if res.Accepted != 2 || len(res.Operations) != 2 {
		t.Fatalf("expected 2 accepted operations, got %+v", res)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Index != 2 || res.Rejected[0].Reason != "date" {
		t.Errorf("unexpected rejections: %+v", res.Rejected)
	}
	if res.Operations[0].Category != category.Salary {
		t.Errorf("expected resolved category, got %q", res.Operations[0].Category)
	}
	if res.Operations[1].Category != models.Uncategorized {
		t.Errorf("expected sentinel category, got %q", res.Operations[1].Category)
	}
	if res.Operations[1].Balance != 55000 {
		t.Errorf("expected derived balance 55000, got %v", res.Operations[1].Balance)
	}
}

func TestLoadRowsWithPredictor(t *testing.T) {
	stub := &stubPredictor{rows: []models.RawRow{
		{"Category": "Зарплата"},
		{"Category": "Аренда"},
		{"Category": "Еда"},
	}}
	res, err := newTestProcessor(stub).LoadBytes(context.Background(), []byte(ledgerCSV), "ledger.csv")
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}
	if stub.calls != 1 || !strings.HasPrefix(stub.got, "Date,Category,Withdrawal,Deposit\n") {
		t.Errorf("expected one call with the ledger as csv, got %d %q", stub.calls, stub.got)
	}
	if res.Categorized != 1 {
		t.Errorf("expected one row categorized, got %d", res.Categorized)
	}
	if res.Operations[0].Category != category.Salary || res.Operations[1].Category != category.Rent {
		t.Errorf("unexpected categories: %q %q", res.Operations[0].Category, res.Operations[1].Category)
	}
}

func TestLoadRowsPredictorFailure(t *testing.T) {
	stub := &stubPredictor{err: errors.New("connection refused")}
	set := models.RowSet{Rows: []models.RawRow{{"Date": "2025-11-01", "Deposit": "10"}}}

	res := newTestProcessor(stub).LoadRows(context.Background(), set)
	if res.Accepted != 1 || res.Categorized != 0 {
		t.Errorf("expected load to proceed uncategorized, got %+v", res)
	}
	if res.Rejected == nil {
		t.Error("expected non-nil rejection list")
	}
}

func TestLoadRowsSkipsPredictorWhenCategorized(t *testing.T) {
	stub := &stubPredictor{}
	set := models.RowSet{Rows: []models.RawRow{{"Date": "2025-11-01", "Category": "Еда"}}}
	newTestProcessor(stub).LoadRows(context.Background(), set)
	if stub.calls != 0 {
		t.Errorf("expected no prediction call, got %d", stub.calls)
	}
}

func TestLoadFile(t *testing.T) {
	p := newTestProcessor(nil)

	path := filepath.Join(t.TempDir(), "ledger.csv")
	if err := os.WriteFile(path, []byte(ledgerCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.LoadFile(context.Background(), path); err != nil {
		t.Errorf("LoadFile failed: %v", err)
	}

	if _, err := p.LoadFile(context.Background(), filepath.Join(t.TempDir(), "none.csv")); err == nil {
		t.Error("expected read error")
	}
	if _, err := p.LoadBytes(context.Background(), []byte("x"), "ledger.pdf"); !errors.Is(err, parser.ErrUnknownFileType) {
		t.Errorf("expected ErrUnknownFileType, got %v", err)
	}
}
