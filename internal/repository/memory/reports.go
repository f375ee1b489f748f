package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
)

type ReportRepository struct {
	s *Store
}

func (r *ReportRepository) List(ctx context.Context) ([]model.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	reports := sorted(r.s.reports, func(a, b model.Report) bool { return a.CreatedAt.After(b.CreatedAt) })
	for i := range reports {
		reports[i].User = r.s.userRef(reports[i].UserID)
	}
	return reports, nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*model.Report, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.reports[id]
	if !ok {
		return nil, nil
	}
	rep := e.val
	rep.User = r.s.userRef(rep.UserID)
	return &rep, nil
}

func (r *ReportRepository) Create(ctx context.Context, rep *model.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	rep.CreatedAt = r.s.now()
	row := *rep
	row.User = nil
	r.s.reports[rep.ID] = entry[model.Report]{seq: r.s.next(), val: row}
	return nil
}

func (r *ReportRepository) Update(ctx context.Context, id string, patch model.ReportPatch) (*model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.reports[id]
	if !ok {
		return nil, notFound("report", id)
	}
	patch.Apply(&e.val)
	r.s.reports[id] = e
	rep := e.val
	rep.User = r.s.userRef(rep.UserID)
	return &rep, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id string) (*model.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.reports[id]
	if !ok {
		return nil, notFound("report", id)
	}
	delete(r.s.reports, id)
	return &e.val, nil
}

var _ repository.ReportRepositoryInterface = (*ReportRepository)(nil)
