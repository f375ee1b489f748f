package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCampaignPatchChangesOnlySuppliedFields(t *testing.T) {
	budget := 500.0
	desc := "spring push"
	c := Campaign{ID: "c1", Name: "Q1", UserID: "u1", Budget: &budget, Description: &desc, Status: "active"}

	status := "paused"
	CampaignPatch{Status: &status}.Apply(&c)

	assert.Equal(t, "paused", c.Status)
	assert.Equal(t, "Q1", c.Name)
	assert.Equal(t, "u1", c.UserID)
	assert.Equal(t, 500.0, *c.Budget)
	assert.Equal(t, "spring push", *c.Description)
}

func TestPatchDoesNotAliasInput(t *testing.T) {
	var c Client
	phone := "555-0100"
	ClientPatch{Phone: &phone}.Apply(&c)
	phone = "changed"

	assert.Equal(t, "555-0100", *c.Phone)
}

func TestAnalyticsPatchKeepsZeroCountersUnlessSupplied(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := Analytics{ID: "a1", CampaignID: "c1", Clicks: 10, Impressions: 100, Date: day}

	zero := 0
	AnalyticsPatch{Clicks: &zero}.Apply(&a)

	assert.Equal(t, 0, a.Clicks)
	assert.Equal(t, 100, a.Impressions)
	assert.Equal(t, day, a.Date)
}

func TestReportPatch(t *testing.T) {
	created := time.Now()
	r := Report{ID: "r1", Title: "Weekly", Type: "performance", Format: "pdf", UserID: "u1", CreatedAt: created}

	format := "csv"
	ReportPatch{Format: &format}.Apply(&r)

	assert.Equal(t, "csv", r.Format)
	assert.Equal(t, "Weekly", r.Title)
	assert.Equal(t, created, r.CreatedAt)
}
