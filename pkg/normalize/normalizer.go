// Package normalize coerces heterogeneous raw rows into canonical
// operations.
package normalize

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/finsight/pkg/category"
	"github.com/yurifrl/finsight/pkg/models"
)

var (
	ErrMissingDate     = errors.New("row has no resolvable date")
	ErrMissingCategory = errors.New("row has no resolvable category")
)

// Column aliases, most specific first.
var (
	IDKeys         = []string{"ID", "Id", "id", "Index"}
	DateKeys       = []string{"Date", "Date.1", "TransactionDate", "date", "transaction_date", "value_date", "Дата"}
	CategoryKeys   = []string{"Category", "PredictedCategory", "category", "Категория"}
	WithdrawalKeys = []string{"Withdrawal", "Debit", "withdrawal", "debit", "outflow", "Списание", "Расход"}
	DepositKeys    = []string{"Deposit", "Credit", "deposit", "credit", "inflow", "Зачисление", "Приход"}
	BalanceKeys    = []string{"Balance", "balance", "Остаток", "Баланс"}
	MandatoryKeys  = []string{"Mandatory", "mandatory", "is_mandatory", "Обязательный"}
	ReferenceKeys  = []string{"RefNo", "Reference", "ref_no", "reference", "refno", "Description", "description", "Описание"}
	TitleKeys      = []string{"Title", "Payee", "title", "payee", "Название"}
)

// Options controls ingestion policy.
type Options struct {
	// RequireCategory rejects rows whose category does not resolve to a
	// meaningful label.
	RequireCategory bool
	// DateLayouts are tried after the built-in generic layouts.
	DateLayouts []string
}

// Rejection records a row left out of the ledger.
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
	Value  string `json:"value,omitempty"`
}

// Result is the outcome of normalizing a whole row set.
type Result struct {
	Operations []models.Operation
	Rejected   []Rejection
}

type Normalizer struct {
	logger   *log.Logger
	resolver *category.Resolver
	opts     Options
}

func New(logger *log.Logger, resolver *category.Resolver, opts Options) *Normalizer {
	if resolver == nil {
		resolver = category.New()
	}
	return &Normalizer{
		logger:   logger,
		resolver: resolver,
		opts:     opts,
	}
}

// Normalize converts one row. fallbackIndex becomes the ID when the row
// carries none. The amount is always recomputed from the raw pair.
func (n *Normalizer) Normalize(row models.RawRow, fallbackIndex int) (*models.Operation, error) {
	rawDate, _ := row.Lookup(DateKeys...)
	date := ParseDate(rawDate, n.opts.DateLayouts...)
	if !models.IsISODate(date) {
		return nil, fmt.Errorf("%w: %q", ErrMissingDate, rawDate)
	}

	rawCategory, _ := row.Lookup(CategoryKeys...)
	label := n.resolver.Resolve(rawCategory)
	if n.opts.RequireCategory && !category.Meaningful(label) {
		return nil, fmt.Errorf("%w: %q", ErrMissingCategory, rawCategory)
	}

	id := fallbackIndex
	if v, ok := row.Lookup(IDKeys...); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			id = parsed
		}
	}

	withdrawal, _ := row.Lookup(WithdrawalKeys...)
	deposit, _ := row.Lookup(DepositKeys...)
	mandatory, _ := row.Lookup(MandatoryKeys...)
	reference, _ := row.Lookup(ReferenceKeys...)
	title, _ := row.Lookup(TitleKeys...)

	b := models.NewOperation(id).
		SetDate(date).
		SetCategory(label).
		SetWithdrawal(ParseAmount(withdrawal)).
		SetDeposit(ParseAmount(deposit)).
		SetMandatory(ParseBool(mandatory)).
		SetReferenceNote(reference).
		SetTitle(title)

	if balance, ok := row.Lookup(BalanceKeys...); ok {
		b.SetBalance(ParseAmount(balance))
	} else {
		b.DeriveBalance()
	}

	return b.Build()
}

// NormalizeAll converts rows in order. Rejected rows are excluded from the
// result and listed in Rejected. Operations without a source balance get
// the running total of amounts in load order.
func (n *Normalizer) NormalizeAll(rows []models.RawRow) Result {
	res := Result{Operations: make([]models.Operation, 0, len(rows))}
	var running float64

	for i, row := range rows {
		op, err := n.Normalize(row, i)
		if err != nil {
			n.logger.Debug("row rejected", "index", i, "error", err)
			res.Rejected = append(res.Rejected, Rejection{Index: i, Reason: reason(err), Value: err.Error()})
			continue
		}
		running += op.Amount
		if op.BalanceDerived {
			op.Balance = running
		}
		res.Operations = append(res.Operations, *op)
	}

	n.logger.Info("rows normalized", "accepted", len(res.Operations), "rejected", len(res.Rejected))
	return res
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingDate):
		return "date"
	case errors.Is(err, ErrMissingCategory):
		return "category"
	default:
		return "invalid"
	}
}
