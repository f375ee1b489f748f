package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/unclebandit/adsadmin-backend/internal/logging"
	"github.com/unclebandit/adsadmin-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// List returns every campaign, newest first, with user and ads populated.
	List(ctx context.Context) ([]model.Campaign, error)
	// GetByID returns (nil, nil) when the campaign does not exist.
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	Create(ctx context.Context, c *model.Campaign) error
	Update(ctx context.Context, id string, patch model.CampaignPatch) (*model.Campaign, error)
	Delete(ctx context.Context, id string) (*model.Campaign, error)
}

type ClientRepositoryInterface interface {
	List(ctx context.Context) ([]model.Client, error)
	GetByID(ctx context.Context, id string) (*model.Client, error)
	Create(ctx context.Context, c *model.Client) error
	Update(ctx context.Context, id string, patch model.ClientPatch) (*model.Client, error)
	Delete(ctx context.Context, id string) (*model.Client, error)
}

type AnalyticsRepositoryInterface interface {
	// List and ListByCampaign order by date, most recent first.
	List(ctx context.Context) ([]model.Analytics, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]model.Analytics, error)
	GetByID(ctx context.Context, id string) (*model.Analytics, error)
	Create(ctx context.Context, a *model.Analytics) error
	Update(ctx context.Context, id string, patch model.AnalyticsPatch) (*model.Analytics, error)
	Delete(ctx context.Context, id string) (*model.Analytics, error)
}

type ReportRepositoryInterface interface {
	// List returns reports newest first with user populated.
	List(ctx context.Context) ([]model.Report, error)
	GetByID(ctx context.Context, id string) (*model.Report, error)
	Create(ctx context.Context, r *model.Report) error
	Update(ctx context.Context, id string, patch model.ReportPatch) (*model.Report, error)
	Delete(ctx context.Context, id string) (*model.Report, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Gateway is the single persistence dependency handed to every router.
type Gateway struct {
	Campaigns CampaignRepositoryInterface
	Clients   ClientRepositoryInterface
	Analytics AnalyticsRepositoryInterface
	Reports   ReportRepositoryInterface
	Pinger    Pinger
}

// NewPostgresGateway builds a Gateway whose repositories share db.
func NewPostgresGateway(db *sql.DB) *Gateway {
	return &Gateway{
		Campaigns: &CampaignRepository{DB: db},
		Clients:   &ClientRepository{DB: db},
		Analytics: &AnalyticsRepository{DB: db},
		Reports:   &ReportRepository{DB: db},
		Pinger:    &PostgresPinger{DB: db},
	}
}

type PostgresPinger struct {
	DB *sql.DB
}

// Ping runs a trivial round-trip query.
func (p *PostgresPinger) Ping(ctx context.Context) error {
	var one int
	return p.DB.QueryRowContext(ctx, `SELECT 1`).Scan(&one)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// logStoreError annotates driver errors in the log and returns err untouched.
func logStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		logging.Warn().
			Str("op", op).
			Str("pg_code", string(pqErr.Code)).
			Str("pg_constraint", pqErr.Constraint).
			Msg(pqErr.Message)
	} else {
		logging.Warn().Str("op", op).Err(err).Msg("store error")
	}
	return err
}
