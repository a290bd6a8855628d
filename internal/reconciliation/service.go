// Package reconciliation periodically compares locally tracked open orders
// with what the venue reports.
package reconciliation

import (
	"context"
	"log"
	"sync"
	"time"

	"venue-gateway/pkg/db"
	exchange "venue-gateway/pkg/exchanges/common"
)

// Service handles periodic order reconciliation for one market segment.
// Venue order types come back already normalized by the gateway, so
// comparisons are always in the unified taxonomy.
type Service struct {
	gateway  exchange.Gateway
	market   exchange.MarketType
	database *db.Database
	interval time.Duration
	autoSync bool
	mu       sync.Mutex
}

// Report contains one reconciliation pass's results.
type Report struct {
	Timestamp  time.Time
	Market     exchange.MarketType
	OrderDiffs []OrderDiff
	HasDiffs   bool
	Synced     int
}

// OrderDiff represents a divergence between a local order and the venue.
type OrderDiff struct {
	OrderID   string
	Symbol    string
	Kind      string // "MISSING_AT_VENUE", "TYPE_MISMATCH", "STATUS_DRIFT"
	Local     string
	Venue     string
	VenueType string // raw wire token, for audit
	Synced    bool
}

// NewService creates a reconciliation service for one segment's gateway.
func NewService(gw exchange.Gateway, market exchange.MarketType, database *db.Database, interval time.Duration) *Service {
	return &Service{
		gateway:  gw,
		market:   market,
		database: database,
		interval: interval,
		autoSync: true,
	}
}

// SetAutoSync enables or disables writing venue state back to the DB.
func (s *Service) SetAutoSync(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSync = enabled
	log.Printf("reconciliation auto-sync (%s): %v", s.market, enabled)
}

// Start begins periodic reconciliation.
func (s *Service) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				report, err := s.Reconcile(ctx)
				if err != nil {
					log.Printf("reconciliation error (%s): %v", s.market, err)
					continue
				}
				s.logReport(report)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("reconciliation service started (%s, interval: %v)", s.market, s.interval)
}

// Reconcile performs one reconciliation pass.
func (s *Service) Reconcile(ctx context.Context) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &Report{
		Timestamp: time.Now(),
		Market:    s.market,
	}
	if s.gateway == nil {
		return report, nil
	}

	local, err := s.database.GetOpenOrders(ctx)
	if err != nil {
		return nil, err
	}

	// The venue returns every resting order for the segment; types are
	// already in the unified taxonomy with the raw token alongside.
	venueOrders, err := s.gateway.GetOpenOrders(ctx, "")
	if err != nil {
		return nil, err
	}
	byClientID := make(map[string]exchange.OpenOrder, len(venueOrders))
	for _, vo := range venueOrders {
		byClientID[vo.ClientID] = vo
	}

	for _, lo := range local {
		if lo.Market != string(s.market) {
			continue
		}
		vo, found := byClientID[lo.ID]
		if !found {
			// Open locally, gone at the venue: it filled, was canceled,
			// or expired while we were not listening.
			diff := OrderDiff{
				OrderID: lo.ID,
				Symbol:  lo.Symbol,
				Kind:    "MISSING_AT_VENUE",
				Local:   lo.Status,
			}
			if s.autoSync {
				if err := s.database.UpdateOrderStatus(ctx, lo.ID, "UNKNOWN", ""); err == nil {
					diff.Synced = true
					report.Synced++
				}
			}
			report.OrderDiffs = append(report.OrderDiffs, diff)
			report.HasDiffs = true
			continue
		}

		if lo.OrderType != string(vo.Type) {
			diff := OrderDiff{
				OrderID:   lo.ID,
				Symbol:    lo.Symbol,
				Kind:      "TYPE_MISMATCH",
				Local:     lo.OrderType,
				Venue:     string(vo.Type),
				VenueType: vo.VenueType,
			}
			if s.autoSync {
				if err := s.database.RecordOrderVenueType(ctx, lo.ID, string(vo.Type), vo.VenueType); err == nil {
					diff.Synced = true
					report.Synced++
				}
			}
			report.OrderDiffs = append(report.OrderDiffs, diff)
			report.HasDiffs = true
		}

		if lo.Status != string(vo.Status) {
			diff := OrderDiff{
				OrderID: lo.ID,
				Symbol:  lo.Symbol,
				Kind:    "STATUS_DRIFT",
				Local:   lo.Status,
				Venue:   string(vo.Status),
			}
			if s.autoSync {
				if err := s.database.UpdateOrderStatus(ctx, lo.ID, string(vo.Status), vo.ExchangeOrderID); err == nil {
					diff.Synced = true
					report.Synced++
				}
			}
			report.OrderDiffs = append(report.OrderDiffs, diff)
			report.HasDiffs = true
		}
	}

	return report, nil
}

func (s *Service) logReport(report *Report) {
	if !report.HasDiffs {
		return
	}
	log.Printf("reconciliation (%s): %d differences, %d synced", report.Market, len(report.OrderDiffs), report.Synced)
	for _, diff := range report.OrderDiffs {
		log.Printf("  %s %s: %s local=%q venue=%q token=%q synced=%v",
			diff.OrderID, diff.Symbol, diff.Kind, diff.Local, diff.Venue, diff.VenueType, diff.Synced)
	}
}
