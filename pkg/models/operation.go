package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ISODateLayout is the canonical date format exchanged between layers.
const ISODateLayout = "2006-01-02"

// Uncategorized is the sentinel label for operations whose category is not
// resolved yet.
const Uncategorized = "Uncategorized"

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrMissingDate = errors.New("missing date")
)

// Operation is one normalized ledger entry.
type Operation struct {
	ID             int     `json:"id"`
	Date           string  `json:"date"`
	Category       string  `json:"category"`
	Withdrawal     float64 `json:"withdrawal"`
	Deposit        float64 `json:"deposit"`
	Balance        float64 `json:"balance"`
	BalanceDerived bool    `json:"balance_derived,omitempty"`
	Amount         float64 `json:"amount"`
	Mandatory      bool    `json:"mandatory"`
	ReferenceNote  string  `json:"reference_note,omitempty"`
	Title          string  `json:"title,omitempty"`
}

// DisplayTitle returns the dedicated title, falling back to the reference
// note and then to the category.
func (o Operation) DisplayTitle() string {
	if o.Title != "" {
		return o.Title
	}
	if o.ReferenceNote != "" {
		return o.ReferenceNote
	}
	return o.Category
}

// Month returns the YYYY-MM prefix of the operation date.
func (o Operation) Month() string {
	if len(o.Date) < 7 {
		return ""
	}
	return o.Date[:7]
}

// IsExpense reports whether the operation reduces the balance.
func (o Operation) IsExpense() bool {
	return o.Amount < 0
}

// IsIncome reports whether the operation increases the balance.
func (o Operation) IsIncome() bool {
	return o.Amount > 0
}

// NetAmount recomputes the signed effect from the raw debit/credit pair.
func NetAmount(deposit, withdrawal float64) float64 {
	return deposit - math.Abs(withdrawal)
}

// IsISODate reports whether s is a valid YYYY-MM-DD calendar date.
func IsISODate(s string) bool {
	if len(s) != len(ISODateLayout) {
		return false
	}
	_, err := time.Parse(ISODateLayout, s)
	return err == nil
}

// OperationCSVHeader is the column order used by CSVFields.
var OperationCSVHeader = []string{"ID", "Date", "Category", "Title", "Withdrawal", "Deposit", "Balance", "Amount", "Mandatory"}

// CSVFields renders the operation in OperationCSVHeader order.
func (o Operation) CSVFields() []string {
	return []string{
		strconv.Itoa(o.ID),
		o.Date,
		o.Category,
		o.DisplayTitle(),
		formatNumber(o.Withdrawal),
		formatNumber(o.Deposit),
		formatNumber(o.Balance),
		formatNumber(o.Amount),
		strconv.FormatBool(o.Mandatory),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// OperationBuilder assembles an Operation and enforces its invariants on
// Build: a valid ISO date and an amount derived from the raw pair.
type OperationBuilder struct {
	op  Operation
	err error
}

func NewOperation(id int) *OperationBuilder {
	return &OperationBuilder{op: Operation{ID: id, Category: Uncategorized}}
}

func (b *OperationBuilder) SetDate(date string) *OperationBuilder {
	date = strings.TrimSpace(date)
	if date == "" {
		b.err = ErrMissingDate
		return b
	}
	if !IsISODate(date) {
		b.err = fmt.Errorf("%w: %q", ErrInvalidDate, date)
		return b
	}
	b.op.Date = date
	return b
}

func (b *OperationBuilder) SetCategory(category string) *OperationBuilder {
	if category = strings.TrimSpace(category); category != "" {
		b.op.Category = category
	}
	return b
}

func (b *OperationBuilder) SetWithdrawal(v float64) *OperationBuilder {
	b.op.Withdrawal = math.Abs(v)
	return b
}

func (b *OperationBuilder) SetDeposit(v float64) *OperationBuilder {
	b.op.Deposit = math.Abs(v)
	return b
}

func (b *OperationBuilder) SetBalance(v float64) *OperationBuilder {
	b.op.Balance = v
	b.op.BalanceDerived = false
	return b
}

// DeriveBalance marks the balance as not supplied by the source; the loader
// fills it with the running total.
func (b *OperationBuilder) DeriveBalance() *OperationBuilder {
	b.op.BalanceDerived = true
	return b
}

func (b *OperationBuilder) SetMandatory(m bool) *OperationBuilder {
	b.op.Mandatory = m
	return b
}

func (b *OperationBuilder) SetReferenceNote(note string) *OperationBuilder {
	b.op.ReferenceNote = strings.TrimSpace(note)
	return b
}

func (b *OperationBuilder) SetTitle(title string) *OperationBuilder {
	b.op.Title = strings.TrimSpace(title)
	return b
}

func (b *OperationBuilder) Build() (*Operation, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.op.Date == "" {
		return nil, ErrMissingDate
	}
	op := b.op
	op.Amount = NetAmount(op.Deposit, op.Withdrawal)
	return &op, nil
}
