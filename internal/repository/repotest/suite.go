// Package repotest holds the behaviour every Gateway implementation must share.
// Both the in-memory store and the Postgres repositories run it.
package repotest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/adsadmin-backend/internal/errors"
	"github.com/unclebandit/adsadmin-backend/internal/model"
	"github.com/unclebandit/adsadmin-backend/internal/repository"
)

// Fixtures seeds the read-only tables the gateway never writes.
type Fixtures interface {
	AddUser(t *testing.T, u model.User)
	AddAd(t *testing.T, a model.Ad)
}

// Factory returns an empty gateway and its fixtures.
type Factory func(t *testing.T) (*repository.Gateway, Fixtures)

// createGap keeps successive created_at values distinct on stores with coarse clocks.
const createGap = 5 * time.Millisecond

// RunGatewaySuite runs the shared repository behaviour against newGateway.
func RunGatewaySuite(t *testing.T, newGateway Factory) {
	t.Run("Ping", func(t *testing.T) {
		gw, _ := newGateway(t)
		require.NoError(t, gw.Pinger.Ping(context.Background()))
	})
	t.Run("CampaignLifecycle", func(t *testing.T) { campaignLifecycle(t, newGateway) })
	t.Run("CampaignsNewestFirst", func(t *testing.T) { campaignsNewestFirst(t, newGateway) })
	t.Run("ClientLifecycle", func(t *testing.T) { clientLifecycle(t, newGateway) })
	t.Run("AnalyticsByDate", func(t *testing.T) { analyticsByDate(t, newGateway) })
	t.Run("ReportLifecycle", func(t *testing.T) { reportLifecycle(t, newGateway) })
	t.Run("MissingRows", func(t *testing.T) { missingRows(t, newGateway) })
}

func owner(t *testing.T, fx Fixtures) model.User {
	t.Helper()
	u := model.User{ID: "u1", Email: "owner@example.com", Role: "admin"}
	fx.AddUser(t, u)
	return u
}

func campaignLifecycle(t *testing.T, newGateway Factory) {
	ctx := context.Background()
	gw, fx := newGateway(t)
	u := owner(t, fx)

	budget := 1500.5
	c := &model.Campaign{Name: "Spring", UserID: u.ID, Budget: &budget}
	require.NoError(t, gw.Campaigns.Create(ctx, c))
	require.NotEmpty(t, c.ID)
	assert.Equal(t, model.CampaignStatusActive, c.Status)
	assert.False(t, c.CreatedAt.IsZero())

	fx.AddAd(t, model.Ad{ID: "ad-" + c.ID, CampaignID: c.ID, Title: "Banner", Status: "active"})

	got, err := gw.Campaigns.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Spring", got.Name)
	require.NotNil(t, got.Budget)
	assert.InDelta(t, 1500.5, *got.Budget, 0.0001)
	require.NotNil(t, got.User)
	assert.Equal(t, u.Email, got.User.Email)
	require.Len(t, got.Ads, 1)
	assert.Equal(t, "Banner", got.Ads[0].Title)

	name, status := "Summer", "paused"
	updated, err := gw.Campaigns.Update(ctx, c.ID, model.CampaignPatch{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Summer", updated.Name)
	assert.Equal(t, "paused", updated.Status)
	require.NotNil(t, updated.Budget)
	require.NotNil(t, updated.User)
	assert.Len(t, updated.Ads, 1)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func campaignsNewestFirst(t *testing.T, newGateway Factory) {
	ctx := context.Background()
	gw, fx := newGateway(t)
	u := owner(t, fx)

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, gw.Campaigns.Create(ctx, &model.Campaign{Name: name, UserID: u.ID}))
		time.Sleep(createGap)
	}

	all, err := gw.Campaigns.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Name)
	assert.Equal(t, "first", all[2].Name)
	for _, c := range all {
		require.NotNil(t, c.User)
		assert.NotNil(t, c.Ads)
	}
}

func clientLifecycle(t *testing.T, newGateway Factory) {
	ctx := context.Background()
	gw, _ := newGateway(t)

	empty, err := gw.Clients.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	phone := "555"
	cl := &model.Client{Name: "Acme", Email: "buyer@acme.test", Phone: &phone}
	require.NoError(t, gw.Clients.Create(ctx, cl))
	time.Sleep(createGap)
	require.NoError(t, gw.Clients.Create(ctx, &model.Client{Name: "Globex", Email: "ops@globex.test"}))

	all, err := gw.Clients.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Globex", all[0].Name)

	company := "Acme Group"
	updated, err := gw.Clients.Update(ctx, cl.ID, model.ClientPatch{Company: &company})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Name)
	require.NotNil(t, updated.Phone)
	assert.Equal(t, "555", *updated.Phone)
	require.NotNil(t, updated.Company)
	assert.Equal(t, "Acme Group", *updated.Company)

	deleted, err := gw.Clients.Delete(ctx, cl.ID)
	require.NoError(t, err)
	assert.Equal(t, cl.ID, deleted.ID)

	gone, err := gw.Clients.GetByID(ctx, cl.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func analyticsByDate(t *testing.T, newGateway Factory) {
	ctx := context.Background()
	gw, fx := newGateway(t)
	u := owner(t, fx)

	c1 := &model.Campaign{Name: "one", UserID: u.ID}
	c2 := &model.Campaign{Name: "two", UserID: u.ID}
	require.NoError(t, gw.Campaigns.Create(ctx, c1))
	require.NoError(t, gw.Campaigns.Create(ctx, c2))

	for _, d := range []int{3, 1, 2} {
		a := &model.Analytics{CampaignID: c1.ID, Clicks: d, Date: time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, gw.Analytics.Create(ctx, a))
	}
	other := &model.Analytics{CampaignID: c2.ID, Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, gw.Analytics.Create(ctx, other))

	all, err := gw.Analytics.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 9, all[0].Date.UTC().Day())

	byCampaign, err := gw.Analytics.ListByCampaign(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, byCampaign, 3)
	assert.Equal(t, 3, byCampaign[0].Date.UTC().Day())
	assert.Equal(t, 1, byCampaign[2].Date.UTC().Day())

	none, err := gw.Analytics.ListByCampaign(ctx, "no-such-campaign")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	revenue := 12.5
	updated, err := gw.Analytics.Update(ctx, other.ID, model.AnalyticsPatch{Revenue: &revenue})
	require.NoError(t, err)
	assert.InDelta(t, 12.5, updated.Revenue, 0.0001)
	assert.Equal(t, c2.ID, updated.CampaignID)

	_, err = gw.Analytics.Delete(ctx, other.ID)
	require.NoError(t, err)
	gone, err := gw.Analytics.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func reportLifecycle(t *testing.T, newGateway Factory) {
	ctx := context.Background()
	gw, fx := newGateway(t)
	u := owner(t, fx)

	filters := `{"range":"30d"}`
	for _, title := range []string{"first", "second"} {
		require.NoError(t, gw.Reports.Create(ctx, &model.Report{Title: title, Type: "performance", Format: "pdf", UserID: u.ID, Filters: &filters}))
		time.Sleep(createGap)
	}

	all, err := gw.Reports.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].Title)
	require.NotNil(t, all[0].User)

	title := "renamed"
	updated, err := gw.Reports.Update(ctx, all[1].ID, model.ReportPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	require.NotNil(t, updated.Filters)
	assert.Equal(t, filters, *updated.Filters)
	require.NotNil(t, updated.User)
	assert.Equal(t, u.Email, updated.User.Email)

	got, err := gw.Reports.GetByID(ctx, updated.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "renamed", got.Title)
}

func missingRows(t *testing.T, newGateway Factory) {
	ctx := context.Background()
	gw, _ := newGateway(t)

	c, err := gw.Campaigns.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, c)

	var nf *appErrors.NotFoundError

	name := "x"
	_, err = gw.Campaigns.Update(ctx, "missing", model.CampaignPatch{Name: &name})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "campaign", nf.Entity)

	_, err = gw.Reports.Update(ctx, "missing", model.ReportPatch{Title: &name})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "report", nf.Entity)

	_, err = gw.Clients.Delete(ctx, "missing")
	require.True(t, errors.As(err, &nf))

	_, err = gw.Analytics.Delete(ctx, "missing")
	require.True(t, errors.As(err, &nf))
}
