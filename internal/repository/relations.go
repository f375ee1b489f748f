package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/unclebandit/adsadmin-backend/internal/model"
)

// loadUsers fetches users by id in one query, keyed by id.
func loadUsers(ctx context.Context, db *sql.DB, ids []string) (map[string]*model.User, error) {
	users := map[string]*model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, email, name, role FROM users WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role); err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

// loadAds fetches the ads of the given campaigns, grouped by campaign id.
func loadAds(ctx context.Context, db *sql.DB, campaignIDs []string) (map[string][]model.Ad, error) {
	ads := map[string][]model.Ad{}
	if len(campaignIDs) == 0 {
		return ads, nil
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, campaign_id, title, content, image_url, status
		FROM ads WHERE campaign_id = ANY($1)
		ORDER BY id`, pq.Array(campaignIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a model.Ad
		if err := rows.Scan(&a.ID, &a.CampaignID, &a.Title, &a.Content, &a.ImageURL, &a.Status); err != nil {
			return nil, err
		}
		ads[a.CampaignID] = append(ads[a.CampaignID], a)
	}
	return ads, rows.Err()
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
