package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
)

type CampaignRepository struct {
	s *Store
}

// withRelations must be called with the lock held.
func (r *CampaignRepository) withRelations(c model.Campaign) model.Campaign {
	c.User = r.s.userRef(c.UserID)
	c.Ads = r.s.adsOf(c.ID)
	return c
}

func (r *CampaignRepository) List(ctx context.Context) ([]model.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	campaigns := sorted(r.s.campaigns, func(a, b model.Campaign) bool { return a.CreatedAt.After(b.CreatedAt) })
	for i := range campaigns {
		campaigns[i] = r.withRelations(campaigns[i])
	}
	return campaigns, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.campaigns[id]
	if !ok {
		return nil, nil
	}
	c := r.withRelations(e.val)
	return &c, nil
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignStatusActive
	}
	now := r.s.now()
	c.CreatedAt, c.UpdatedAt = now, now

	row := *c
	row.User, row.Ads = nil, nil
	r.s.campaigns[c.ID] = entry[model.Campaign]{seq: r.s.next(), val: row}
	return nil
}

func (r *CampaignRepository) Update(ctx context.Context, id string, patch model.CampaignPatch) (*model.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.campaigns[id]
	if !ok {
		return nil, notFound("campaign", id)
	}
	patch.Apply(&e.val)
	e.val.UpdatedAt = r.s.now()
	r.s.campaigns[id] = e

	c := r.withRelations(e.val)
	return &c, nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) (*model.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.campaigns[id]
	if !ok {
		return nil, notFound("campaign", id)
	}
	delete(r.s.campaigns, id)
	return &e.val, nil
}

var _ repository.CampaignRepositoryInterface = (*CampaignRepository)(nil)
