package csv

import (
	"strings"
	"testing"

	"github.com/yurifrl/finsight/pkg/models"
)

func TestCreate(t *testing.T) {
	ops := []models.Operation{
		{ID: 0, Date: "2025-11-01", Category: "Зарплата", Deposit: 95000, Amount: 95000, Balance: 95000},
		{ID: 1, Date: "2025-11-02", Category: "Аренда", Withdrawal: 40000, Amount: -40000, Balance: 55000, Mandatory: true, Title: "Rent, November"},
	}

	out, err := Create(models.OperationCSVHeader, ops, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 records, got %q", out)
	}
	if lines[0] != "ID,Date,Category,Title,Withdrawal,Deposit,Balance,Amount,Mandatory" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	want := `1,2025-11-02,Аренда,"Rent, November",40000.00,0.00,55000.00,-40000.00,true`
	if lines[2] != want {
		t.Errorf("expected %s, got %s", want, lines[2])
	}

	onlyExpenses := func(o models.Operation) bool { return o.IsExpense() }
	out, err = Create(models.OperationCSVHeader, ops, onlyExpenses)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if n := strings.Count(string(out), "\n"); n != 2 {
		t.Errorf("expected filter to keep one record, got %q", out)
	}
}

func TestEncodeRowSet(t *testing.T) {
	set := models.RowSet{
		Header: []string{"Date", "Category"},
		Rows: []models.RawRow{
			{"Date": "2025-11-01", "Category": ""},
			{"Date": "2025-11-02"},
		},
	}
	out, err := EncodeRowSet(set)
	if err != nil {
		t.Fatalf("EncodeRowSet failed: %v", err)
	}
	want := "Date,Category\n2025-11-01,\n2025-11-02,\n"
	if string(out) != want {
		t.Errorf("expected %q, got %q", want, out)
	}

	out, err = EncodeRowSet(models.RowSet{Rows: []models.RawRow{{"b": "2", "a": "1"}}})
	if err != nil {
		t.Fatalf("EncodeRowSet failed: %v", err)
	}
	if string(out) != "a,b\n1,2\n" {
		t.Errorf("expected derived sorted header, got %q", out)
	}
}
