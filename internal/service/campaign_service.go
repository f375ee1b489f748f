package service

import (
	"context"
	"time"

	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/realtime"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
	"github.com/unclebandit/adsadmin-backend/internal/rpc"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Events       EventPublisher
}

type CreateCampaignInput struct {
	Name        string     `json:"name" validate:"required"`
	Description *string    `json:"description"`
	UserID      string     `json:"userId" validate:"required"`
	Budget      *float64   `json:"budget"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      *string    `json:"status"`
}

type UpdateCampaignInput struct {
	ID          string     `json:"id" validate:"required"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Budget      *float64   `json:"budget"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      *string    `json:"status"`
}

// Router exposes the campaign procedures.
func (s *CampaignService) Router() *rpc.Router {
	return rpc.NewRouter("campaigns").
		Query("getAll", rpc.NoInput(s.GetAll)).
		Query("getById", rpc.Typed(s.GetByID)).
		Mutation("create", rpc.Typed(s.Create)).
		Mutation("update", rpc.Typed(s.Update)).
		Mutation("delete", rpc.Typed(s.Delete))
}

func (s *CampaignService) GetAll(ctx context.Context) ([]model.Campaign, error) {
	return s.CampaignRepo.List(ctx)
}

// GetByID returns nil when the campaign does not exist.
func (s *CampaignService) GetByID(ctx context.Context, in IDInput) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, in.ID)
}

func (s *CampaignService) Create(ctx context.Context, in CreateCampaignInput) (*model.Campaign, error) {
	c := &model.Campaign{
		Name:        in.Name,
		Description: in.Description,
		UserID:      in.UserID,
		Budget:      in.Budget,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
	}
	if in.Status != nil {
		c.Status = *in.Status
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeCampaignUpdate, realtime.ActionCreated, c.ID, c)
	return c, nil
}

func (s *CampaignService) Update(ctx context.Context, in UpdateCampaignInput) (*model.Campaign, error) {
	c, err := s.CampaignRepo.Update(ctx, in.ID, model.CampaignPatch{
		Name:        in.Name,
		Description: in.Description,
		Budget:      in.Budget,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      in.Status,
	})
	if err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeCampaignUpdate, realtime.ActionUpdated, c.ID, c)
	return c, nil
}

func (s *CampaignService) Delete(ctx context.Context, in IDInput) (*model.Campaign, error) {
	c, err := s.CampaignRepo.Delete(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeCampaignUpdate, realtime.ActionDeleted, c.ID, nil)
	return c, nil
}
