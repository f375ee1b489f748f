package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
)

type AnalyticsRepository struct {
	s *Store
}

func byDateDesc(a, b model.Analytics) bool { return a.Date.After(b.Date) }

func (r *AnalyticsRepository) List(ctx context.Context) ([]model.Analytics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sorted(r.s.analytics, byDateDesc), nil
}

func (r *AnalyticsRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.Analytics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.Analytics{}
	for _, a := range sorted(r.s.analytics, byDateDesc) {
		if a.CampaignID == campaignID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *AnalyticsRepository) GetByID(ctx context.Context, id string) (*model.Analytics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.analytics[id]
	if !ok {
		return nil, nil
	}
	return &e.val, nil
}

func (r *AnalyticsRepository) Create(ctx context.Context, a *model.Analytics) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	r.s.analytics[a.ID] = entry[model.Analytics]{seq: r.s.next(), val: *a}
	return nil
}

func (r *AnalyticsRepository) Update(ctx context.Context, id string, patch model.AnalyticsPatch) (*model.Analytics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.analytics[id]
	if !ok {
		return nil, notFound("analytics", id)
	}
	patch.Apply(&e.val)
	r.s.analytics[id] = e
	a := e.val
	return &a, nil
}

func (r *AnalyticsRepository) Delete(ctx context.Context, id string) (*model.Analytics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.analytics[id]
	if !ok {
		return nil, notFound("analytics", id)
	}
	delete(r.s.analytics, id)
	return &e.val, nil
}

var _ repository.AnalyticsRepositoryInterface = (*AnalyticsRepository)(nil)
