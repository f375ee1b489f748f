package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
	"github.com/unclebandit/adsadmin-backend/internal/model"
)

const campaignColumns = `id, name, description, user_id, budget, start_date, end_date, status, created_at, updated_at`

type CampaignRepository struct {
	DB *sql.DB
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.UserID, &c.Budget,
		&c.StartDate, &c.EndDate, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) List(ctx context.Context) ([]model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, logStoreError("campaigns.list", err)
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.include(ctx, campaigns); err != nil {
		return nil, logStoreError("campaigns.include", err)
	}
	return campaigns, nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := r.getRow(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	one := []model.Campaign{*c}
	if err := r.include(ctx, one); err != nil {
		return nil, logStoreError("campaigns.include", err)
	}
	return &one[0], nil
}

func (r *CampaignRepository) getRow(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := scanCampaign(r.DB.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, logStoreError("campaigns.get", err)
	}
	return c, nil
}

// include populates User and Ads on every campaign in place.
func (r *CampaignRepository) include(ctx context.Context, campaigns []model.Campaign) error {
	userIDs := make([]string, 0, len(campaigns))
	campaignIDs := make([]string, 0, len(campaigns))
	for _, c := range campaigns {
		userIDs = append(userIDs, c.UserID)
		campaignIDs = append(campaignIDs, c.ID)
	}

	users, err := loadUsers(ctx, r.DB, uniqueIDs(userIDs))
	if err != nil {
		return err
	}
	ads, err := loadAds(ctx, r.DB, campaignIDs)
	if err != nil {
		return err
	}

	for i := range campaigns {
		campaigns[i].User = users[campaigns[i].UserID]
		campaigns[i].Ads = ads[campaigns[i].ID]
		if campaigns[i].Ads == nil {
			campaigns[i].Ads = []model.Ad{}
		}
	}
	return nil
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CampaignStatusActive
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO campaigns (id, name, description, user_id, budget, start_date, end_date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, c.ID, c.Name, c.Description, c.UserID, c.Budget,
		c.StartDate, c.EndDate, c.Status, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	return logStoreError("campaigns.create", err)
}

func (r *CampaignRepository) Update(ctx context.Context, id string, patch model.CampaignPatch) (*model.Campaign, error) {
	c, err := r.getRow(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, appErrors.NewNotFound("campaign", id)
	}
	patch.Apply(c)

	query := `
		UPDATE campaigns
		SET name=$1, description=$2, budget=$3, start_date=$4, end_date=$5, status=$6, updated_at=$7
		WHERE id=$8
		RETURNING ` + campaignColumns
	updated, err := scanCampaign(r.DB.QueryRowContext(ctx, query, c.Name, c.Description, c.Budget,
		c.StartDate, c.EndDate, c.Status, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("campaign", id)
		}
		return nil, logStoreError("campaigns.update", err)
	}
	one := []model.Campaign{*updated}
	if err := r.include(ctx, one); err != nil {
		return nil, logStoreError("campaigns.include", err)
	}
	return &one[0], nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) (*model.Campaign, error) {
	c, err := scanCampaign(r.DB.QueryRowContext(ctx,
		`DELETE FROM campaigns WHERE id=$1 RETURNING `+campaignColumns, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewNotFound("campaign", id)
		}
		return nil, logStoreError("campaigns.delete", err)
	}
	return c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
