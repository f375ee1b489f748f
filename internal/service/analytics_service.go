package service

import (
	"context"
	"time"

	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/realtime"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
	"github.com/unclebandit/adsadmin-backend/internal/rpc"
)

type AnalyticsService struct {
	AnalyticsRepo repository.AnalyticsRepositoryInterface
	Events        EventPublisher
}

type CampaignIDInput struct {
	CampaignID string `json:"campaignId" validate:"required"`
}

// Counters are stored in 32-bit integer columns.
type CreateAnalyticsInput struct {
	CampaignID  string    `json:"campaignId" validate:"required"`
	Clicks      *int      `json:"clicks" validate:"omitempty,min=0,max=2147483647"`
	Impressions *int      `json:"impressions" validate:"omitempty,min=0,max=2147483647"`
	Conversions *int      `json:"conversions" validate:"omitempty,min=0,max=2147483647"`
	Revenue     *float64  `json:"revenue"`
	Date        time.Time `json:"date" validate:"required"`
}

type UpdateAnalyticsInput struct {
	ID          string     `json:"id" validate:"required"`
	CampaignID  *string    `json:"campaignId"`
	Clicks      *int       `json:"clicks" validate:"omitempty,min=0,max=2147483647"`
	Impressions *int       `json:"impressions" validate:"omitempty,min=0,max=2147483647"`
	Conversions *int       `json:"conversions" validate:"omitempty,min=0,max=2147483647"`
	Revenue     *float64   `json:"revenue"`
	Date        *time.Time `json:"date"`
}

func (s *AnalyticsService) Router() *rpc.Router {
	return rpc.NewRouter("analytics").
		Query("getAll", rpc.NoInput(s.GetAll)).
		Query("getByCampaign", rpc.Typed(s.GetByCampaign)).
		Query("getById", rpc.Typed(s.GetByID)).
		Mutation("create", rpc.Typed(s.Create)).
		Mutation("update", rpc.Typed(s.Update)).
		Mutation("delete", rpc.Typed(s.Delete))
}

func (s *AnalyticsService) GetAll(ctx context.Context) ([]model.Analytics, error) {
	return s.AnalyticsRepo.List(ctx)
}

func (s *AnalyticsService) GetByCampaign(ctx context.Context, in CampaignIDInput) ([]model.Analytics, error) {
	return s.AnalyticsRepo.ListByCampaign(ctx, in.CampaignID)
}

func (s *AnalyticsService) GetByID(ctx context.Context, in IDInput) (*model.Analytics, error) {
	return s.AnalyticsRepo.GetByID(ctx, in.ID)
}

// Create stores zero for any counter or revenue the caller left out.
func (s *AnalyticsService) Create(ctx context.Context, in CreateAnalyticsInput) (*model.Analytics, error) {
	a := &model.Analytics{
		CampaignID:  in.CampaignID,
		Clicks:      valueOr(in.Clicks, 0),
		Impressions: valueOr(in.Impressions, 0),
		Conversions: valueOr(in.Conversions, 0),
		Revenue:     valueOr(in.Revenue, 0),
		Date:        in.Date,
	}
	if err := s.AnalyticsRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeAnalyticsUpdate, realtime.ActionCreated, a.ID, a)
	return a, nil
}

func (s *AnalyticsService) Update(ctx context.Context, in UpdateAnalyticsInput) (*model.Analytics, error) {
	a, err := s.AnalyticsRepo.Update(ctx, in.ID, model.AnalyticsPatch{
		CampaignID:  in.CampaignID,
		Clicks:      in.Clicks,
		Impressions: in.Impressions,
		Conversions: in.Conversions,
		Revenue:     in.Revenue,
		Date:        in.Date,
	})
	if err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeAnalyticsUpdate, realtime.ActionUpdated, a.ID, a)
	return a, nil
}

func (s *AnalyticsService) Delete(ctx context.Context, in IDInput) (*model.Analytics, error) {
	a, err := s.AnalyticsRepo.Delete(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeAnalyticsUpdate, realtime.ActionDeleted, a.ID, nil)
	return a, nil
}

func valueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
