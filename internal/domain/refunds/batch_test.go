package refunds

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Togather-Foundation/refunds/internal/domain/ids"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
	batches  []BatchReport
}

func (o *recordingObserver) ObserveOutcome(out Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, out)
}

func (o *recordingObserver) ObserveBatch(report BatchReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.batches = append(o.batches, report)
}

func mixedBatch() []RawRequest {
	valid := gmtRequest()
	valid.Name = "valid"
	valid.RefundRequestDate = "21/04/2021"
	valid.RefundRequestTime = "10:00"

	late := gmtRequest()
	late.Name = "late"

	unknown := gmtRequest()
	unknown.Name = "unknown location"
	unknown.CustomerLocation = "Atlantis"

	badDate := gmtRequest()
	badDate.Name = "bad date"
	badDate.InvestmentDate = "2021-04-20"

	return []RawRequest{valid, late, unknown, badDate}
}

func TestProcessIsolatesFailingRecords(t *testing.T) {
	observer := &recordingObserver{}
	processor := NewProcessor(testPolicy(t), WithObserver(observer), WithWorkers(2))

	report, err := processor.Process(context.Background(), mixedBatch())
	require.NoError(t, err)

	require.NoError(t, ids.ValidateULID(report.ID))
	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, 1, report.Valid)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 2, report.Failed)

	for i, o := range report.Outcomes {
		assert.Equal(t, i, o.Index)
		require.NoError(t, ids.ValidateRecordID(o.RecordID))
	}

	assert.Equal(t, "valid", report.Outcomes[0].Name)
	require.NotNil(t, report.Outcomes[0].Result)
	assert.True(t, report.Outcomes[0].Result.Valid)
	require.NotNil(t, report.Outcomes[0].Normalized)

	require.NotNil(t, report.Outcomes[1].Result)
	assert.False(t, report.Outcomes[1].Result.Valid)

	assert.Nil(t, report.Outcomes[2].Result)
	assert.Nil(t, report.Outcomes[2].Normalized)
	assert.ErrorIs(t, report.Outcomes[2].Err, ErrConfigurationLookup)
	assert.Equal(t, "configuration_lookup", report.Outcomes[2].ErrorKind)

	assert.ErrorIs(t, report.Outcomes[3].Err, ErrParse)
	assert.Equal(t, "parse", report.Outcomes[3].ErrorKind)
	assert.Contains(t, report.Outcomes[3].Error, "2021-04-20")

	assert.Len(t, observer.outcomes, 4)
	require.Len(t, observer.batches, 1)
	assert.Equal(t, report.ID, observer.batches[0].ID)
}

func TestProcessKeepsInputOrder(t *testing.T) {
	requests := make([]RawRequest, 50)
	for i := range requests {
		r := gmtRequest()
		r.Name = fmt.Sprintf("customer-%02d", i)
		requests[i] = r
	}

	report, err := NewProcessor(testPolicy(t), WithWorkers(8)).Process(context.Background(), requests)
	require.NoError(t, err)

	require.Len(t, report.Outcomes, len(requests))
	for i, o := range report.Outcomes {
		assert.Equal(t, i, o.Index)
		assert.Equal(t, requests[i].Name, o.Name)
		require.NotNil(t, o.Normalized)
		assert.Equal(t, requests[i].Name, o.Normalized.Name)
	}
}

func TestProcessFailFast(t *testing.T) {
	processor := NewProcessor(testPolicy(t), WithFailFast(true), WithWorkers(1))

	report, err := processor.Process(context.Background(), mixedBatch())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigurationLookup)
	assert.Contains(t, err.Error(), "request 2")
	assert.Nil(t, report.Outcomes)
	assert.NotEmpty(t, report.ID)
}

func TestProcessHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProcessor(testPolicy(t)).Process(ctx, mixedBatch())
	require.ErrorIs(t, err, context.Canceled)
}

func TestProcessEmptyBatch(t *testing.T) {
	report, err := NewProcessor(testPolicy(t)).Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Zero(t, report.Valid+report.Invalid+report.Failed)
}

func TestProcessLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	report, err := NewProcessor(testPolicy(t), WithLogger(logger)).Process(context.Background(), mixedBatch())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"refund batch processed"`)
	assert.Contains(t, out, `"batch_id":"`+report.ID+`"`)
	assert.Contains(t, out, `"component":"refunds"`)
	assert.Contains(t, out, `"kind":"configuration_lookup"`)
}

func TestProcessOne(t *testing.T) {
	processor := NewProcessor(testPolicy(t))

	raw := gmtRequest()
	normalized, result, err := processor.ProcessOne(&raw)
	require.NoError(t, err)
	require.NotNil(t, normalized)
	require.NotNil(t, result)

	_, _, err = processor.ProcessOne(nil)
	require.ErrorIs(t, err, ErrMalformedInput)
}
