package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Togather-Foundation/refunds/internal/audit"
	"github.com/Togather-Foundation/refunds/internal/config"
	"github.com/Togather-Foundation/refunds/internal/domain/refunds"
	"github.com/Togather-Foundation/refunds/internal/metrics"
	"github.com/Togather-Foundation/refunds/internal/telemetry"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	workers     int
	failFast    bool
	strict      bool
	compact     bool
	metricsFile string
	audit       bool
}

func newValidateCommand(app *cli) *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <requests.json|->",
		Short: "Normalize and validate a batch of refund requests",
		Long: `Read refund requests from a JSON or YAML file (or "-" for stdin) and print a
JSON report with one outcome per request, in input order.

The input is either a list of requests or an object with a "requests" list.
A request that cannot be normalized is reported with its error and does not
stop the batch unless --fail-fast is set.

Examples:
  refunds validate requests.json
  refunds validate --fail-fast --workers 8 requests.yaml
  cat requests.json | refunds validate -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, app, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.workers, "workers", 0, "records processed concurrently (default: REFUNDS_BATCH_WORKERS)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "abort the batch on the first failing record")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit non-zero when any request is invalid or failed")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "print the report without indentation")
	cmd.Flags().BoolVar(&opts.audit, "audit", false, "log one audit record per decision to the log output")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file after the batch")
	return cmd
}

func runValidate(cmd *cobra.Command, app *cli, opts validateOptions, source string) error {
	logger := app.logger

	policy, err := config.LoadPolicy(app.cfg.PolicyFile)
	if err != nil {
		return err
	}

	data, err := readSource(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}
	requests, err := refunds.DecodeRequests(data)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitTracing(ctx, app.cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdown(cmd.Context()); err != nil {
			logger.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	metrics.Init(Version, GitCommit, BuildDate)

	workers := app.cfg.Batch.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}
	processorOpts := []refunds.ProcessorOption{
		refunds.WithWorkers(workers),
		refunds.WithFailFast(opts.failFast || app.cfg.Batch.FailFast),
		refunds.WithLogger(logger),
		refunds.WithObserver(metrics.Observer{}),
	}
	if opts.audit {
		processorOpts = append(processorOpts, refunds.WithObserver(audit.NewLogger(logger)))
	}
	processor := refunds.NewProcessor(policy, processorOpts...)

	report, err := processor.Process(ctx, requests)
	if err != nil {
		return err
	}

	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !opts.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if opts.strict && (report.Invalid > 0 || report.Failed > 0) {
		return fmt.Errorf("%d invalid and %d failed of %d requests", report.Invalid, report.Failed, len(report.Outcomes))
	}
	return nil
}

func readSource(stdin io.Reader, source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}
	return data, nil
}
