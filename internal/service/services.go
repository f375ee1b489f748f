// Package service implements the campaigns, clients, analytics and reports
// procedures on top of the persistence gateway.
package service

import (
	"github.com/unclebandit/adsadmin-backend/internal/repository"
	"github.com/unclebandit/adsadmin-backend/internal/rpc"
)

// Services bundles one service per router.
type Services struct {
	Campaigns *CampaignService
	Clients   *ClientService
	Analytics *AnalyticsService
	Reports   *ReportService
}

// New wires every service to gw. events may be nil.
func New(gw *repository.Gateway, events EventPublisher) *Services {
	return &Services{
		Campaigns: &CampaignService{CampaignRepo: gw.Campaigns, Events: events},
		Clients:   &ClientService{ClientRepo: gw.Clients, Events: events},
		Analytics: &AnalyticsService{AnalyticsRepo: gw.Analytics, Events: events},
		Reports:   &ReportService{ReportRepo: gw.Reports},
	}
}

// Registry registers every router.
func (s *Services) Registry() *rpc.Registry {
	return rpc.NewRegistry(
		s.Campaigns.Router(),
		s.Clients.Router(),
		s.Analytics.Router(),
		s.Reports.Router(),
	)
}
