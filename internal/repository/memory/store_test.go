package memory

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
	"github.com/unclebandit/adsadmin-backend/internal/repository/repotest"
)

type storeFixtures struct{ s *Store }

func (f storeFixtures) AddUser(_ *testing.T, u model.User) { f.s.AddUser(u) }
func (f storeFixtures) AddAd(_ *testing.T, a model.Ad)     { f.s.AddAd(a) }

func TestGatewaySuite(t *testing.T) {
	repotest.RunGatewaySuite(t, func(t *testing.T) (*repository.Gateway, repotest.Fixtures) {
		s := NewStore()
		return NewGateway(s), storeFixtures{s: s}
	})
}

// tickingClock returns a clock that advances one minute per call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestCampaignCreateDefaultsAndIncludes(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddUser(model.User{ID: "u1", Email: "u1@example.com", Role: "admin"})
	gw := NewGateway(s)

	c := &model.Campaign{Name: "Q1", UserID: "u1"}
	require.NoError(t, gw.Campaigns.Create(ctx, c))
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, model.CampaignStatusActive, c.Status)
	assert.Nil(t, c.Budget)

	s.AddAd(model.Ad{CampaignID: c.ID, Title: "Banner", Status: "active"})

	got, err := gw.Campaigns.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "u1@example.com", got.User.Email)
	require.Len(t, got.Ads, 1)
	assert.Equal(t, "Banner", got.Ads[0].Title)
}

func TestDeleteThenGetAndDeleteAgain(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewStore())

	cl := &model.Client{Name: "Acme", Email: "buyer@acme.test"}
	require.NoError(t, gw.Clients.Create(ctx, cl))

	_, err := gw.Clients.Delete(ctx, cl.ID)
	require.NoError(t, err)

	got, err := gw.Clients.GetByID(ctx, cl.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = gw.Clients.Delete(ctx, cl.ID)
	var nf *appErrors.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewStore())

	name := "x"
	_, err := gw.Reports.Update(ctx, "missing", model.ReportPatch{Title: &name})
	var nf *appErrors.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "report", nf.Entity)
}

func TestReportsNewestFirstWithUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.Now = tickingClock()
	s.AddUser(model.User{ID: "u1", Email: "u1@example.com"})
	gw := NewGateway(s)

	for _, title := range []string{"first", "second", "third"} {
		require.NoError(t, gw.Reports.Create(ctx, &model.Report{Title: title, Type: "t", Format: "pdf", UserID: "u1"}))
	}

	reports, err := gw.Reports.List(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "third", reports[0].Title)
	assert.Equal(t, "first", reports[2].Title)
	for _, r := range reports {
		require.NotNil(t, r.User)
	}
}

func TestAnalyticsOrderedByDateDesc(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewStore())

	days := []int{3, 1, 2}
	for _, d := range days {
		a := &model.Analytics{CampaignID: "c1", Date: time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)}
		require.NoError(t, gw.Analytics.Create(ctx, a))
	}
	require.NoError(t, gw.Analytics.Create(ctx, &model.Analytics{CampaignID: "c2", Date: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}))

	all, err := gw.Analytics.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 9, all[0].Date.Day())

	byCampaign, err := gw.Analytics.ListByCampaign(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, byCampaign, 3)
	assert.Equal(t, 3, byCampaign[0].Date.Day())
	assert.Equal(t, 1, byCampaign[2].Date.Day())
}

func TestEmptyListsAreNotNil(t *testing.T) {
	ctx := context.Background()
	gw := NewGateway(NewStore())

	campaigns, err := gw.Campaigns.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, campaigns)

	byCampaign, err := gw.Analytics.ListByCampaign(ctx, "none")
	require.NoError(t, err)
	assert.NotNil(t, byCampaign)
}

func TestReportUpdateKeepsUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddUser(model.User{ID: "u1", Email: "u1@example.com"})
	gw := NewGateway(s)

	rep := &model.Report{Title: "weekly", Type: "t", Format: "csv", UserID: "u1"}
	require.NoError(t, gw.Reports.Create(ctx, rep))

	format := "pdf"
	updated, err := gw.Reports.Update(ctx, rep.ID, model.ReportPatch{Format: &format})
	require.NoError(t, err)
	assert.Equal(t, "pdf", updated.Format)
	require.NotNil(t, updated.User)
	assert.Equal(t, "u1@example.com", updated.User.Email)
}
