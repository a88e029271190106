package services

import (
	"context"
	"fmt"

	"github.com/gametwin/gaming-twin/server/internal/model"
	"github.com/gametwin/gaming-twin/server/internal/store"
)

// ReportService serves read-only twin and report views. Absence of a twin is
// a normal outcome and surfaces as model.ErrNotFound, never a creation.
type ReportService struct {
	store store.Store
}

func NewReportService(s store.Store) *ReportService { return &ReportService{store: s} }

// GetTwin returns the raw twin record for userID.
func (s *ReportService) GetTwin(ctx context.Context, userID string) (*model.DigitalTwin, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", model.ErrValidation)
	}
	tw, err := s.store.Twins().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	tw.Thresholds = withDefaults(tw.Thresholds)
	return tw, nil
}

// Report returns the flattened dashboard view for userID.
func (s *ReportService) Report(ctx context.Context, userID string) (*model.Report, error) {
	tw, err := s.GetTwin(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Report{
		UserID:         tw.UserID,
		TodayMinutes:   tw.Aggregates.TodayMinutes,
		WeeklyMinutes:  tw.Aggregates.WeeklyMinutes,
		NightMinutes:   tw.Aggregates.NightMinutes,
		State:          tw.State,
		DailyThreshold: tw.Thresholds.Daily,
		NightThreshold: tw.Thresholds.Night,
	}, nil
}
