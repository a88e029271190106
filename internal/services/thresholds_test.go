package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/store/memory"
)

func intPtr(v int) *int { return &v }

func TestThresholdGet_CreatesTwinWithDefaults(t *testing.T) {
	st := memory.New()
	svc := NewThresholdService(st, 5)

	th, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Daily: 120, Night: 60}, th)

	// The twin row now exists.
	tw, err := st.Twins().Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, model.StateHealthy, tw.State)
}

func TestThresholdUpdate_PartialMergeKeepsOmittedFields(t *testing.T) {
	st := memory.New()
	svc := NewThresholdService(st, 5)
	ctx := context.Background()

	_, err := svc.Update(ctx, "bob", intPtr(150), intPtr(50))
	require.NoError(t, err)

	th, err := svc.Update(ctx, "bob", nil, intPtr(40))
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Daily: 150, Night: 40}, th)

	th, err = svc.Update(ctx, "bob", intPtr(90), nil)
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Daily: 90, Night: 40}, th)
}

func TestThresholdUpdate_CreatesTwinWhenAbsent(t *testing.T) {
	st := memory.New()
	svc := NewThresholdService(st, 5)

	th, err := svc.Update(context.Background(), "carol", nil, intPtr(90))
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Daily: 120, Night: 90}, th)
}

func TestThresholdUpdate_NoFieldsIsANoopMerge(t *testing.T) {
	st := memory.New()
	svc := NewThresholdService(st, 5)
	ctx := context.Background()

	_, err := svc.Update(ctx, "dave", intPtr(200), nil)
	require.NoError(t, err)

	th, err := svc.Update(ctx, "dave", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{Daily: 200, Night: 60}, th)
}

func TestThresholdUpdate_DoesNotTouchAggregates(t *testing.T) {
	st := memory.New()
	twinSvc := NewTwinService(st, clockAt(12, 0), 5)
	thSvc := NewThresholdService(st, 5)
	ctx := context.Background()

	_, err := twinSvc.ApplyEvent(ctx, event("erin", 70))
	require.NoError(t, err)

	_, err = thSvc.Update(ctx, "erin", intPtr(180), nil)
	require.NoError(t, err)

	tw, err := st.Twins().Get(ctx, "erin")
	require.NoError(t, err)
	assert.Equal(t, 70, tw.Aggregates.TodayMinutes)
	assert.Equal(t, model.StateModerate, tw.State)
	assert.Equal(t, 180, tw.Thresholds.Daily)
}

func TestThresholdOps_RejectEmptyUser(t *testing.T) {
	svc := NewThresholdService(memory.New(), 5)
	_, err := svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.Update(context.Background(), "", intPtr(10), nil)
	assert.ErrorIs(t, err, model.ErrValidation)
}
