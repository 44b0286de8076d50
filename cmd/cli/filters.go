package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yurifrl/finsight/pkg/analytics"
	"github.com/yurifrl/finsight/pkg/categorizer"
	"github.com/yurifrl/finsight/pkg/config"
	"github.com/yurifrl/finsight/pkg/csv"
	"github.com/yurifrl/finsight/pkg/format"
	"github.com/yurifrl/finsight/pkg/ledger"
	"github.com/yurifrl/finsight/pkg/models"
	"github.com/yurifrl/finsight/pkg/normalize"
	"github.com/yurifrl/finsight/pkg/service"
	"github.com/yurifrl/finsight/pkg/state"
)

type filters struct {
	startDate string
	endDate   string
	category  string
}

func (f *filters) toPeriodFilter() (ledger.PeriodFilter, error) {
	pf := ledger.PeriodFilter{Category: f.category}
	if f.startDate != "" {
		pf.From = normalize.ParseDate(f.startDate)
	}
	if f.endDate != "" {
		pf.To = normalize.ParseDate(f.endDate)
	}
	if err := pf.Validate(); err != nil {
		return ledger.PeriodFilter{}, fmt.Errorf("--start/--end: %w", err)
	}
	return pf, nil
}

func (f *filters) toFilterFunc() (csv.FilterFunc[models.Operation], error) {
	pf, err := f.toPeriodFilter()
	if err != nil {
		return nil, err
	}
	return pf.Match, nil
}

// app is what every command needs once flags are parsed.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	processor *service.Processor
	format    *format.Formatter
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "finsight",
		Level:           cfg.Level(),
	})

	var predictor service.Predictor
	if cfg.Categorizer.URL != "" {
		client, err := categorizer.New(cfg.Categorizer.URL, cfg.Categorizer.Timeout, logger)
		if err != nil {
			return nil, err
		}
		predictor = client
	}

	normalizer := normalize.New(logger, cfg.Resolver(), cfg.NormalizeOptions())
	return &app{
		cfg:       cfg,
		logger:    logger,
		processor: service.NewProcessor(logger, normalizer, predictor),
		format:    cfg.Formatter(),
	}, nil
}

// load reads path into a fresh store.
func (a *app) load(ctx context.Context, path string) (*ledger.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	res, err := a.processor.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	for _, rej := range res.Rejected {
		a.logger.Debug("row left out of the ledger", "index", rej.Index, "reason", rej.Reason, "detail", rej.Value)
	}
	if len(res.Rejected) > 0 {
		a.logger.Warn("some rows were rejected", "file", path, "rejected", len(res.Rejected), "accepted", res.Accepted)
	}

	store := ledger.NewStore()
	store.Load(res.Operations)
	if store.Len() == 0 {
		return nil, fmt.Errorf("%s: no usable operations", path)
	}
	return store, nil
}

// session restores the carried cushion from --state when given.
func (a *app) session() (*analytics.Session, *state.State, error) {
	s := analytics.NewSession(a.cfg.AnalyticsOptions())
	if stateFile == "" {
		return s, nil, nil
	}
	st, err := state.Load(stateFile)
	if err != nil {
		return nil, nil, err
	}
	st.Restore(s)
	return s, st, nil
}

func (a *app) saveSession(s *analytics.Session, st *state.State) error {
	if st == nil {
		return nil
	}
	st.Capture(s)
	if err := st.Save(stateFile); err != nil {
		return err
	}
	a.logger.Debug("state saved", "file", stateFile)
	return nil
}
