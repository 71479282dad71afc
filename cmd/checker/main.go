// Command checker runs the contract battery against a recommendation service.
//
// Exit status: 1 when the service cannot be reached, 2 when any assertion failed
// (unless -advisory is set), 0 otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/checker"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/config"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/httpclient"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/logging"
)

const (
	exitOK          = 0
	exitUnreachable = 1
	exitFailed      = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := config.LoadChecker()

	fs := flag.NewFlagSet("checker", flag.ContinueOnError)
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the recommendation service")
	fs.DurationVar(&cfg.Pace, "pace", cfg.Pace, "delay between requests")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout")
	fs.BoolVar(&cfg.Advisory, "advisory", cfg.Advisory, "report assertion failures without failing the exit status")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return exitFailed
	}

	logger := logging.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := checker.NewClient(cfg.BaseURL, httpclient.NewHTTPClient(httpclient.DefaultConfig(cfg.Timeout)))
	report, err := checker.New(client, logger, checker.WithPace(cfg.Pace)).Run(ctx)
	if errors.Is(err, checker.ErrServiceUnreachable) {
		logger.Error("make sure the recommendation service is running", zap.String("base_url", cfg.BaseURL))
		return exitUnreachable
	}
	if err != nil {
		logger.Error("run aborted", zap.Error(err))
		return exitFailed
	}

	for _, f := range report.Failures() {
		logger.Error("failed check",
			zap.String("scenario", f.Scenario),
			zap.String("step", f.Step),
			zap.Error(f.Err),
		)
	}
	if report.OK() {
		logger.Info("all contract checks passed", zap.Int("checks", report.Passed()))
		return exitOK
	}
	if cfg.Advisory {
		logger.Warn("contract checks failed, exiting 0 in advisory mode")
		return exitOK
	}
	return exitFailed
}
