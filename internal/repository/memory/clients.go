package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
)

type ClientRepository struct {
	s *Store
}

func (r *ClientRepository) List(ctx context.Context) ([]model.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return sorted(r.s.clients, func(a, b model.Client) bool { return a.CreatedAt.After(b.CreatedAt) }), nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.clients[id]
	if !ok {
		return nil, nil
	}
	return &e.val, nil
}

func (r *ClientRepository) Create(ctx context.Context, c *model.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = r.s.now()
	r.s.clients[c.ID] = entry[model.Client]{seq: r.s.next(), val: *c}
	return nil
}

func (r *ClientRepository) Update(ctx context.Context, id string, patch model.ClientPatch) (*model.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.clients[id]
	if !ok {
		return nil, notFound("client", id)
	}
	patch.Apply(&e.val)
	r.s.clients[id] = e
	c := e.val
	return &c, nil
}

func (r *ClientRepository) Delete(ctx context.Context, id string) (*model.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.clients[id]
	if !ok {
		return nil, notFound("client", id)
	}
	delete(r.s.clients, id)
	return &e.val, nil
}

var _ repository.ClientRepositoryInterface = (*ClientRepository)(nil)
