package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/yurifrl/finsight/pkg/categorizer"
	"github.com/yurifrl/finsight/pkg/config"
	"github.com/yurifrl/finsight/pkg/server"
	"github.com/yurifrl/finsight/pkg/service"
)

func main() {
	flags := pflag.NewFlagSet("finsight-server", pflag.ExitOnError)
	cfgFile := flags.StringP("config", "c", "", "Config file (default is finsight.yaml)")
	flags.Int("port", 3000, "Server port")
	flags.String("log-level", "info", "Log level")
	flags.String("categorizer-url", "", "Category prediction service base URL")
	flags.Duration("session-ttl", 30*time.Minute, "Idle session lifetime")
	flags.Parse(os.Args[1:])

	cfg, err := config.Build(*cfgFile, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "finsight",
		Level:           cfg.Level(),
	})

	var predictor service.Predictor
	if cfg.Categorizer.URL != "" {
		client, err := categorizer.New(cfg.Categorizer.URL, cfg.Categorizer.Timeout, logger)
		if err != nil {
			logger.Fatal("categorizer setup failed", "err", err)
		}
		predictor = client
		logger.Info("category prediction enabled", "url", cfg.Categorizer.URL)
	}

	srv := server.New(cfg, logger, predictor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start returns as soon as Shutdown begins; done closes once in-flight
	// requests have drained.
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", "err", err)
		}
	}()

	addr := srv.Addr()
	logger.Info("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
	<-done
	logger.Info("server stopped")
}
