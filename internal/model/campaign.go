// internal/model/campaign.go
package model

import "time"

// CampaignStatusActive is applied when create omits status.
const CampaignStatusActive = "active"

type Campaign struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	UserID      string     `db:"user_id" json:"userId"`
	Budget      *float64   `db:"budget" json:"budget,omitempty"`
	StartDate   *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"endDate,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`

	User *User `json:"user,omitempty"`
	Ads  []Ad  `json:"ads,omitempty"`
}

// CampaignPatch carries the fields an update supplied; nil means untouched.
type CampaignPatch struct {
	Name        *string
	Description *string
	Budget      *float64
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *string
}

// Apply merges the supplied fields onto c.
func (p CampaignPatch) Apply(c *Campaign) {
	setString(&c.Name, p.Name)
	setOptional(&c.Description, p.Description)
	setOptional(&c.Budget, p.Budget)
	setOptional(&c.StartDate, p.StartDate)
	setOptional(&c.EndDate, p.EndDate)
	setString(&c.Status, p.Status)
}

// Ad belongs to a campaign. Ads are read-only from this backend.
type Ad struct {
	ID         string  `db:"id" json:"id"`
	CampaignID string  `db:"campaign_id" json:"campaignId"`
	Title      string  `db:"title" json:"title"`
	Content    *string `db:"content" json:"content,omitempty"`
	ImageURL   *string `db:"image_url" json:"imageUrl,omitempty"`
	Status     string  `db:"status" json:"status"`
}

// User owns campaigns and reports. Users are read-only from this backend.
type User struct {
	ID    string  `db:"id" json:"id"`
	Email string  `db:"email" json:"email"`
	Name  *string `db:"name" json:"name,omitempty"`
	Role  string  `db:"role" json:"role"`
}
