package plan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/finsight/pkg/ledger"
	"github.com/yurifrl/finsight/pkg/normalize"
)

// Plan names a ledger file and the periods to analyze, in order. The carried
// cushion flows from one period into the next.
type Plan struct {
	Ledger  string   `yaml:"ledger"`
	Periods []Period `yaml:"periods"`
}

type Period struct {
	Name     string `yaml:"name"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Category string `yaml:"category"`
}

func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Periods) == 0 {
		return nil, errors.New("plan has no periods")
	}
	for i, period := range p.Periods {
		if err := period.Filter().Validate(); err != nil {
			return nil, fmt.Errorf("period %d (%s): %w", i+1, period.Label(), err)
		}
	}
	if p.Ledger != "" && !filepath.IsAbs(p.Ledger) {
		p.Ledger = filepath.Join(filepath.Dir(path), p.Ledger)
	}
	return &p, nil
}

// Filter converts the period bounds to ISO dates.
func (p Period) Filter() ledger.PeriodFilter {
	f := ledger.PeriodFilter{Category: p.Category}
	if p.From != "" {
		f.From = normalize.ParseDate(p.From)
	}
	if p.To != "" {
		f.To = normalize.ParseDate(p.To)
	}
	return f
}

// Label is the period name, or its bounds when unnamed.
func (p Period) Label() string {
	if p.Name != "" {
		return p.Name
	}
	from, to := p.Filter().Bounds()
	return from + " .. " + to
}

func (p *Plan) Print(w io.Writer) {
	fmt.Fprintf(w, "Ledger: %s\n", p.Ledger)
	for i, period := range p.Periods {
		f := period.Filter()
		from, to := f.Bounds()
		category := "all"
		if f.HasCategory() {
			category = f.Category
		}
		fmt.Fprintf(w, "[%d] %s from=%s to=%s category=%s\n", i+1, period.Label(), from, to, category)
	}
}
