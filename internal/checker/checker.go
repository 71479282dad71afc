// Package checker drives a fixed battery of HTTP calls against a running
// recommendation service and reports which structural assertions held.
package checker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type Result struct {
	Scenario string
	Step     string
	Err      error
	// Skipped is set for steps not run because an earlier step of a
	// StopOnFailure scenario failed.
	Skipped  bool
	Duration time.Duration
}

func (r Result) Passed() bool {
	return r.Err == nil && !r.Skipped
}

type Report struct {
	Service *ServiceInfo
	Results []Result
}

func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

func (r *Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}

func (r *Report) Skipped() int {
	n := 0
	for _, res := range r.Results {
		if res.Skipped {
			n++
		}
	}
	return n
}

// OK reports whether every step ran and passed.
func (r *Report) OK() bool {
	return len(r.Failures()) == 0 && r.Skipped() == 0
}

type Option func(*Checker)

// WithPace sleeps between consecutive requests.
func WithPace(d time.Duration) Option {
	return func(c *Checker) { c.pace = d }
}

func WithScenarios(scenarios ...Scenario) Option {
	return func(c *Checker) { c.scenarios = scenarios }
}

type Checker struct {
	client    *Client
	logger    *zap.Logger
	pace      time.Duration
	scenarios []Scenario
}

func New(client *Client, logger *zap.Logger, opts ...Option) *Checker {
	c := &Checker{
		client:    client,
		logger:    logger.Named("checker"),
		scenarios: DefaultScenarios(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run checks liveness and then every scenario in order. The returned error is
// non-nil only when liveness fails (wrapping ErrServiceUnreachable) or ctx ends;
// assertion failures are in the report.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	info, err := checkLiveness(ctx, c.client)
	if err != nil {
		c.logger.Error("cannot reach service",
			zap.String("base_url", c.client.BaseURL()),
			zap.Error(err),
		)
		return report, err
	}
	report.Service = info
	c.logger.Info("service is up",
		zap.String("service", info.Service),
		zap.String("status", info.Status),
		zap.Strings("endpoints", info.Endpoints),
	)

	for _, scenario := range c.scenarios {
		if err := c.runScenario(ctx, scenario, report); err != nil {
			return report, err
		}
	}

	c.logger.Info("run complete",
		zap.Int("passed", report.Passed()),
		zap.Int("failed", len(report.Failures())),
		zap.Int("skipped", report.Skipped()),
	)
	return report, nil
}

func (c *Checker) runScenario(ctx context.Context, scenario Scenario, report *Report) error {
	logger := c.logger.With(zap.String("scenario", scenario.Name))
	failed := false

	for _, step := range scenario.Steps {
		if failed && scenario.StopOnFailure {
			report.Results = append(report.Results, Result{Scenario: scenario.Name, Step: step.Name, Skipped: true})
			logger.Warn("SKIP", zap.String("step", step.Name))
			continue
		}

		if err := c.wait(ctx); err != nil {
			return err
		}

		start := time.Now()
		err := step.Run(ctx, c.client)
		res := Result{Scenario: scenario.Name, Step: step.Name, Err: err, Duration: time.Since(start)}
		report.Results = append(report.Results, res)

		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return ctxErr
		}
		if err != nil {
			failed = true
			logger.Error("FAIL", zap.String("step", step.Name), zap.Duration("duration", res.Duration), zap.Error(err))
			continue
		}
		logger.Info("PASS", zap.String("step", step.Name), zap.Duration("duration", res.Duration))
	}
	return nil
}

func (c *Checker) wait(ctx context.Context) error {
	if c.pace <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.pace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
