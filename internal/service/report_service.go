package service

import (
	"context"

	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
	"github.com/unclebandit/adsadmin-backend/internal/rpc"
)

// ReportService publishes no realtime events; reports have no update channel.
type ReportService struct {
	ReportRepo repository.ReportRepositoryInterface
}

type CreateReportInput struct {
	Title   string  `json:"title" validate:"required"`
	Type    string  `json:"type" validate:"required"`
	Format  string  `json:"format" validate:"required"`
	UserID  string  `json:"userId" validate:"required"`
	Filters *string `json:"filters"`
	Data    *string `json:"data"`
}

type UpdateReportInput struct {
	ID      string  `json:"id" validate:"required"`
	Title   *string `json:"title"`
	Type    *string `json:"type"`
	Format  *string `json:"format"`
	Filters *string `json:"filters"`
	Data    *string `json:"data"`
}

func (s *ReportService) Router() *rpc.Router {
	return rpc.NewRouter("reports").
		Query("getAll", rpc.NoInput(s.GetAll)).
		Query("getById", rpc.Typed(s.GetByID)).
		Mutation("create", rpc.Typed(s.Create)).
		Mutation("update", rpc.Typed(s.Update)).
		Mutation("delete", rpc.Typed(s.Delete))
}

func (s *ReportService) GetAll(ctx context.Context) ([]model.Report, error) {
	return s.ReportRepo.List(ctx)
}

func (s *ReportService) GetByID(ctx context.Context, in IDInput) (*model.Report, error) {
	return s.ReportRepo.GetByID(ctx, in.ID)
}

func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*model.Report, error) {
	r := &model.Report{
		Title:   in.Title,
		Type:    in.Type,
		Format:  in.Format,
		UserID:  in.UserID,
		Filters: in.Filters,
		Data:    in.Data,
	}
	if err := s.ReportRepo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReportService) Update(ctx context.Context, in UpdateReportInput) (*model.Report, error) {
	return s.ReportRepo.Update(ctx, in.ID, model.ReportPatch{
		Title:   in.Title,
		Type:    in.Type,
		Format:  in.Format,
		Filters: in.Filters,
		Data:    in.Data,
	})
}

func (s *ReportService) Delete(ctx context.Context, in IDInput) (*model.Report, error) {
	return s.ReportRepo.Delete(ctx, in.ID)
}
