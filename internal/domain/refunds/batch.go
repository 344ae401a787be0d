package refunds

import (
	"context"
	"fmt"
	"time"

	"github.com/Togather-Foundation/refunds/internal/domain/ids"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/Togather-Foundation/refunds/internal/domain/refunds"

// DefaultWorkers bounds concurrent record processing when no limit is set.
const DefaultWorkers = 4

// Outcome is the result for the input record at Index. Exactly one of
// Result or Err is set.
type Outcome struct {
	Index      int                `json:"index"`
	RecordID   string             `json:"recordId"`
	Name       string             `json:"name"`
	Normalized *NormalizedRequest `json:"normalized,omitempty"`
	Result     *ValidationResult  `json:"result,omitempty"`
	Err        error              `json:"-"`
	ErrorKind  string             `json:"errorKind,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// BatchReport collects outcomes in input order.
type BatchReport struct {
	ID       string        `json:"id"`
	Outcomes []Outcome     `json:"outcomes"`
	Valid    int           `json:"valid"`
	Invalid  int           `json:"invalid"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Observer receives outcomes as a batch completes. Implementations must be
// safe for concurrent use.
type Observer interface {
	ObserveOutcome(Outcome)
	ObserveBatch(BatchReport)
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithWorkers sets the number of records processed concurrently.
func WithWorkers(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithFailFast makes Process abort on the first failing record instead of
// recording the failure and carrying on.
func WithFailFast(enabled bool) ProcessorOption {
	return func(p *Processor) {
		p.failFast = enabled
	}
}

// WithLogger sets the logger used for batch summaries.
func WithLogger(logger zerolog.Logger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger.With().Str("component", "refunds").Logger()
	}
}

// WithObserver registers an observer for outcomes and batch summaries.
// Observers are called in registration order.
func WithObserver(o Observer) ProcessorOption {
	return func(p *Processor) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// Processor maps the Normalizer then the Validator over a batch of raw
// requests. Records share no state, so they run concurrently.
type Processor struct {
	normalizer *Normalizer
	validator  *Validator
	workers    int
	failFast   bool
	logger     zerolog.Logger
	observers  []Observer
}

// NewProcessor builds a Processor with both components sharing policy.
func NewProcessor(policy Policy, opts ...ProcessorOption) *Processor {
	p := &Processor{
		normalizer: NewNormalizer(policy),
		validator:  NewValidator(policy),
		workers:    DefaultWorkers,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessOne normalizes and validates a single request.
func (p *Processor) ProcessOne(raw *RawRequest) (*NormalizedRequest, *ValidationResult, error) {
	normalized, err := p.normalizer.Normalize(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("normalize: %w", err)
	}
	result, err := p.validator.Validate(normalized)
	if err != nil {
		return nil, nil, fmt.Errorf("validate: %w", err)
	}
	return normalized, result, nil
}

// Process runs every request and returns outcomes in input order.
//
// By default a failing record is reported in its Outcome and the rest of
// the batch proceeds. With WithFailFast the first failure cancels the
// remaining work and is returned as the error. A cancelled ctx stops the
// batch between records.
func (p *Processor) Process(ctx context.Context, requests []RawRequest) (BatchReport, error) {
	started := time.Now()
	batchID, err := ids.NewULID()
	if err != nil {
		return BatchReport{}, fmt.Errorf("batch id: %w", err)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "refunds.Process")
	defer span.End()
	span.SetAttributes(
		attribute.String("batch.id", batchID),
		attribute.Int("batch.size", len(requests)),
		attribute.Bool("batch.fail_fast", p.failFast),
	)

	logger := p.logger.With().Str("batch_id", batchID).Logger()
	outcomes := make([]Outcome, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range requests {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome := p.process(i, &requests[i])
			outcomes[i] = outcome
			if outcome.Err != nil {
				logger.Debug().
					Int("index", i).
					Str("customer", outcome.Name).
					Str("kind", outcome.ErrorKind).
					Err(outcome.Err).
					Msg("refund request failed")
				if p.failFast {
					return fmt.Errorf("request %d: %w", i, outcome.Err)
				}
			}
			for _, o := range p.observers {
				o.ObserveOutcome(outcome)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn().Err(err).Msg("refund batch aborted")
		return BatchReport{ID: batchID}, err
	}

	report := BatchReport{
		ID:       batchID,
		Outcomes: outcomes,
		Duration: time.Since(started),
	}
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			report.Failed++
		case o.Result.Valid:
			report.Valid++
		default:
			report.Invalid++
		}
	}

	span.SetAttributes(
		attribute.Int("batch.valid", report.Valid),
		attribute.Int("batch.invalid", report.Invalid),
		attribute.Int("batch.failed", report.Failed),
	)
	for _, o := range p.observers {
		o.ObserveBatch(report)
	}
	logger.Info().
		Int("total", len(requests)).
		Int("valid", report.Valid).
		Int("invalid", report.Invalid).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("refund batch processed")

	return report, nil
}

func (p *Processor) process(index int, raw *RawRequest) Outcome {
	outcome := Outcome{
		Index:    index,
		RecordID: ids.NewRecordID(),
		Name:     raw.Name,
	}
	normalized, result, err := p.ProcessOne(raw)
	if err != nil {
		outcome.Err = err
		outcome.ErrorKind = ErrorKind(err)
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Normalized = normalized
	outcome.Result = result
	return outcome
}
