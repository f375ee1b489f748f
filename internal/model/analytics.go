// internal/model/analytics.go
package model

import "time"

// Analytics is one day of performance counters for a campaign.
type Analytics struct {
	ID          string    `db:"id" json:"id"`
	CampaignID  string    `db:"campaign_id" json:"campaignId"`
	Clicks      int       `db:"clicks" json:"clicks"`
	Impressions int       `db:"impressions" json:"impressions"`
	Conversions int       `db:"conversions" json:"conversions"`
	Revenue     float64   `db:"revenue" json:"revenue"`
	Date        time.Time `db:"date" json:"date"`
}

type AnalyticsPatch struct {
	CampaignID  *string
	Clicks      *int
	Impressions *int
	Conversions *int
	Revenue     *float64
	Date        *time.Time
}

func (p AnalyticsPatch) Apply(a *Analytics) {
	setString(&a.CampaignID, p.CampaignID)
	if p.Clicks != nil {
		a.Clicks = *p.Clicks
	}
	if p.Impressions != nil {
		a.Impressions = *p.Impressions
	}
	if p.Conversions != nil {
		a.Conversions = *p.Conversions
	}
	if p.Revenue != nil {
		a.Revenue = *p.Revenue
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
}
