package service

import (
	"context"

	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/realtime"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
	"github.com/unclebandit/adsadmin-backend/internal/rpc"
)

type ClientService struct {
	ClientRepo repository.ClientRepositoryInterface
	Events     EventPublisher
}

// Email uniqueness is a business rule the store does not enforce here.
type CreateClientInput struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}

type UpdateClientInput struct {
	ID      string  `json:"id" validate:"required"`
	Name    *string `json:"name"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
}

func (s *ClientService) Router() *rpc.Router {
	return rpc.NewRouter("clients").
		Query("getAll", rpc.NoInput(s.GetAll)).
		Query("getById", rpc.Typed(s.GetByID)).
		Mutation("create", rpc.Typed(s.Create)).
		Mutation("update", rpc.Typed(s.Update)).
		Mutation("delete", rpc.Typed(s.Delete))
}

func (s *ClientService) GetAll(ctx context.Context) ([]model.Client, error) {
	return s.ClientRepo.List(ctx)
}

func (s *ClientService) GetByID(ctx context.Context, in IDInput) (*model.Client, error) {
	return s.ClientRepo.GetByID(ctx, in.ID)
}

func (s *ClientService) Create(ctx context.Context, in CreateClientInput) (*model.Client, error) {
	c := &model.Client{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Company: in.Company,
	}
	if err := s.ClientRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeClientUpdate, realtime.ActionCreated, c.ID, c)
	return c, nil
}

func (s *ClientService) Update(ctx context.Context, in UpdateClientInput) (*model.Client, error) {
	c, err := s.ClientRepo.Update(ctx, in.ID, model.ClientPatch{
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Company: in.Company,
	})
	if err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeClientUpdate, realtime.ActionUpdated, c.ID, c)
	return c, nil
}

func (s *ClientService) Delete(ctx context.Context, in IDInput) (*model.Client, error) {
	c, err := s.ClientRepo.Delete(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	publishUpdate(ctx, s.Events, realtime.TypeClientUpdate, realtime.ActionDeleted, c.ID, nil)
	return c, nil
}
