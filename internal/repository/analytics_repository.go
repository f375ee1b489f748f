package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
	"github.com/unclebandit/adsadmin-backend/internal/model"
)

const analyticsColumns = `id, campaign_id, clicks, impressions, conversions, revenue, date`

type AnalyticsRepository struct {
	DB *sql.DB
}

func scanAnalytics(row rowScanner) (*model.Analytics, error) {
	var a model.Analytics
	if err := row.Scan(&a.ID, &a.CampaignID, &a.Clicks, &a.Impressions, &a.Conversions, &a.Revenue, &a.Date); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AnalyticsRepository) query(ctx context.Context, op, query string, args ...any) ([]model.Analytics, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, logStoreError(op, err)
	}
	defer rows.Close()

	out := []model.Analytics{}
	for rows.Next() {
		a, err := scanAnalytics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AnalyticsRepository) List(ctx context.Context) ([]model.Analytics, error) {
	return r.query(ctx, "analytics.list",
		`SELECT `+analyticsColumns+` FROM analytics ORDER BY date DESC`)
}

func (r *AnalyticsRepository) ListByCampaign(ctx context.Context, campaignID string) ([]model.Analytics, error) {
	return r.query(ctx, "analytics.list_by_campaign",
		`SELECT `+analyticsColumns+` FROM analytics WHERE campaign_id=$1 ORDER BY date DESC`, campaignID)
}

func (r *AnalyticsRepository) GetByID(ctx context.Context, id string) (*model.Analytics, error) {
	a, err := scanAnalytics(r.DB.QueryRowContext(ctx, `SELECT `+analyticsColumns+` FROM analytics WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, logStoreError("analytics.get", err)
	}
	return a, nil
}

func (r *AnalyticsRepository) Create(ctx context.Context, a *model.Analytics) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	query := `
		INSERT INTO analytics (id, campaign_id, clicks, impressions, conversions, revenue, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, a.ID, a.CampaignID, a.Clicks, a.Impressions,
		a.Conversions, a.Revenue, a.Date).Scan(&a.ID)
	return logStoreError("analytics.create", err)
}

func (r *AnalyticsRepository) Update(ctx context.Context, id string, patch model.AnalyticsPatch) (*model.Analytics, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, appErrors.NewNotFound("analytics", id)
	}
	patch.Apply(a)

	query := `
		UPDATE analytics
		SET campaign_id=$1, clicks=$2, impressions=$3, conversions=$4, revenue=$5, date=$6
		WHERE id=$7
		RETURNING ` + analyticsColumns
	updated, err := scanAnalytics(r.DB.QueryRowContext(ctx, query, a.CampaignID, a.Clicks,
		a.Impressions, a.Conversions, a.Revenue, a.Date, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("analytics", id)
		}
		return nil, logStoreError("analytics.update", err)
	}
	return updated, nil
}

func (r *AnalyticsRepository) Delete(ctx context.Context, id string) (*model.Analytics, error) {
	a, err := scanAnalytics(r.DB.QueryRowContext(ctx, `DELETE FROM analytics WHERE id=$1 RETURNING `+analyticsColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("analytics", id)
		}
		return nil, logStoreError("analytics.delete", err)
	}
	return a, nil
}

var _ AnalyticsRepositoryInterface = (*AnalyticsRepository)(nil)
