// Package memory is an in-process Gateway used by tests and STORE_BACKEND=memory.
// It keeps no referential constraints: foreign keys are stored as given.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
)

type entry[T any] struct {
	seq uint64
	val T
}

// Store holds every table in maps guarded by one lock.
type Store struct {
	mu  sync.RWMutex
	seq uint64

	// Now is the clock used for createdAt/updatedAt. Defaults to time.Now.
	Now func() time.Time

	users     map[string]model.User
	ads       map[string]entry[model.Ad]
	campaigns map[string]entry[model.Campaign]
	clients   map[string]entry[model.Client]
	analytics map[string]entry[model.Analytics]
	reports   map[string]entry[model.Report]
}

func NewStore() *Store {
	return &Store{
		Now:       time.Now,
		users:     map[string]model.User{},
		ads:       map[string]entry[model.Ad]{},
		campaigns: map[string]entry[model.Campaign]{},
		clients:   map[string]entry[model.Client]{},
		analytics: map[string]entry[model.Analytics]{},
		reports:   map[string]entry[model.Report]{},
	}
}

// NewGateway wires a Gateway whose repositories all share s.
func NewGateway(s *Store) *repository.Gateway {
	return &repository.Gateway{
		Campaigns: &CampaignRepository{s: s},
		Clients:   &ClientRepository{s: s},
		Analytics: &AnalyticsRepository{s: s},
		Reports:   &ReportRepository{s: s},
		Pinger:    s,
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// AddUser inserts or replaces a user row.
func (s *Store) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// AddAd inserts or replaces an ad row, generating an id when empty.
func (s *Store) AddAd(a model.Ad) model.Ad {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.ads[a.ID] = entry[model.Ad]{seq: s.next(), val: a}
	return a
}

// next must be called with mu held.
func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

func (s *Store) now() time.Time {
	return s.Now().UTC()
}

func (s *Store) userRef(id string) *model.User {
	u, ok := s.users[id]
	if !ok {
		return nil
	}
	return &u
}

func (s *Store) adsOf(campaignID string) []model.Ad {
	var found []entry[model.Ad]
	for _, e := range s.ads {
		if e.val.CampaignID == campaignID {
			found = append(found, e)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].seq < found[j].seq })
	out := make([]model.Ad, 0, len(found))
	for _, e := range found {
		out = append(out, e.val)
	}
	return out
}

// sorted returns the values of m ordered by less, ties broken newest insert first.
func sorted[T any](m map[string]entry[T], less func(a, b T) bool) []T {
	entries := make([]entry[T], 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if less(a.val, b.val) {
			return true
		}
		if less(b.val, a.val) {
			return false
		}
		return a.seq > b.seq
	})
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.val)
	}
	return out
}

func notFound(entity, id string) error {
	return appErrors.NewNotFound(entity, id)
}
