package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/finsight/pkg/categorizer"
	"github.com/yurifrl/finsight/pkg/csv"
	"github.com/yurifrl/finsight/pkg/models"
	"github.com/yurifrl/finsight/pkg/normalize"
	"github.com/yurifrl/finsight/pkg/parser"
)

// Predictor fills in categories for rows that arrive without one.
type Predictor interface {
	Predict(ctx context.Context, csvText string) ([]models.RawRow, error)
}

// LoadResult is a ready-to-store ledger plus what was left out of it.
type LoadResult struct {
	Operations  []models.Operation    `json:"-"`
	Accepted    int                   `json:"accepted"`
	Rejected    []normalize.Rejection `json:"rejected"`
	Categorized int                   `json:"categorized"`
}

type Processor struct {
	logger     *log.Logger
	parser     *parser.Parser
	normalizer *normalize.Normalizer
	predictor  Predictor
}

// NewProcessor wires the ingestion pipeline. predictor may be nil.
func NewProcessor(logger *log.Logger, normalizer *normalize.Normalizer, predictor Predictor) *Processor {
	return &Processor{
		logger:     logger,
		parser:     parser.New(logger),
		normalizer: normalizer,
		predictor:  predictor,
	}
}

func (p *Processor) LoadFile(ctx context.Context, path string) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to read file: %w", err)
	}
	return p.LoadBytes(ctx, data, filepath.Base(path))
}

func (p *Processor) LoadBytes(ctx context.Context, data []byte, filename string) (LoadResult, error) {
	set, err := p.parser.ProcessBytes(data, filename)
	if err != nil {
		return LoadResult{}, fmt.Errorf("failed to process file: %w", err)
	}
	p.logger.Info("processing ledger", "filename", filename, "rows", len(set.Rows))
	return p.LoadRows(ctx, set), nil
}

// LoadRows categorizes and normalizes an already decoded row set. A failing
// predictor is logged and the rows are normalized without predictions.
func (p *Processor) LoadRows(ctx context.Context, set models.RowSet) LoadResult {
	var res LoadResult
	if p.predictor != nil && missingCategories(set.Rows) {
		res.Categorized = p.predict(ctx, set)
	}

	normalized := p.normalizer.NormalizeAll(set.Rows)
	res.Operations = normalized.Operations
	res.Accepted = len(normalized.Operations)
	res.Rejected = normalized.Rejected
	if res.Rejected == nil {
		res.Rejected = []normalize.Rejection{}
	}
	return res
}

func (p *Processor) predict(ctx context.Context, set models.RowSet) int {
	text, err := csv.EncodeRowSet(set)
	if err != nil {
		p.logger.Warn("failed to encode rows for categorizer", "error", err)
		return 0
	}
	predicted, err := p.predictor.Predict(ctx, string(text))
	if err != nil {
		p.logger.Warn("category prediction failed, continuing without it", "error", err)
		return 0
	}
	n := categorizer.Fill(set.Rows, predicted)
	p.logger.Debug("categories predicted", "rows", len(predicted), "filled", n)
	return n
}

func missingCategories(rows []models.RawRow) bool {
	for _, r := range rows {
		if !r.Has(normalize.CategoryKeys...) {
			return true
		}
	}
	return false
}
