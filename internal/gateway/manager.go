// Package gateway manages the pool of venue segment gateways.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"venue-gateway/internal/events"
	exchange "venue-gateway/pkg/exchanges/common"
)

var (
	ErrSegmentNotFound  = errors.New("segment not registered")
	ErrGatewayUnhealthy = errors.New("gateway is unhealthy")
)

// cachedGateway holds a Gateway with health metadata.
type cachedGateway struct {
	gateway   exchange.Gateway
	segment   string
	market    exchange.MarketType
	createdAt time.Time
	healthyAt time.Time
	failures  int
}

// Config holds configuration for the Manager.
type Config struct {
	HealthInterval   time.Duration // Interval between health checks
	FailureThreshold int           // Number of failures before marking unhealthy
	CircuitTimeout   time.Duration // Time to wait before retrying unhealthy gateway
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		HealthInterval:   5 * time.Minute,
		FailureThreshold: 3,
		CircuitTimeout:   5 * time.Minute,
	}
}

// Manager holds one gateway per enabled venue segment, health checks them,
// and trips a circuit so a failing segment stops receiving orders.
type Manager struct {
	mu       sync.RWMutex
	gateways map[string]*cachedGateway // segment -> cached gateway

	config  Config
	factory Factory
	bus     *events.Bus

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewManager creates a Manager. The bus is optional; when set, a gateway
// crossing the failure threshold publishes a degraded event.
func NewManager(factory Factory, bus *events.Bus, cfg Config) *Manager {
	return &Manager{
		gateways: make(map[string]*cachedGateway),
		config:   cfg,
		factory:  factory,
		bus:      bus,
		stopCh:   make(chan struct{}),
	}
}

// Register creates and caches the gateway for a segment.
func (m *Manager) Register(segment, apiKey, apiSecret string, testnet bool) (exchange.Gateway, error) {
	market, err := SegmentMarket(segment)
	if err != nil {
		return nil, err
	}
	gw, err := m.factory(segment, apiKey, apiSecret, testnet)
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}

	now := time.Now()
	m.mu.Lock()
	m.gateways[segment] = &cachedGateway{
		gateway:   gw,
		segment:   segment,
		market:    market,
		createdAt: now,
		healthyAt: now,
	}
	m.mu.Unlock()
	return gw, nil
}

// Get returns the gateway for a segment, honoring the circuit breaker.
func (m *Manager) Get(segment string) (exchange.Gateway, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cached, ok := m.gateways[segment]
	if !ok {
		return nil, ErrSegmentNotFound
	}
	if cached.failures >= m.config.FailureThreshold &&
		time.Since(cached.healthyAt) < m.config.CircuitTimeout {
		return nil, ErrGatewayUnhealthy
	}
	return cached.gateway, nil
}

// Start begins the background health check goroutine.
func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.config.HealthInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-m.stopCh:
				return
			case <-ticker.C:
				m.healthCheckAll()
			}
		}
	}()
}

// Stop shuts down the manager.
func (m *Manager) Stop() {
	close(m.stopCh)
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cached := range m.gateways {
		if closer, ok := cached.gateway.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		delete(m.gateways, id)
	}
}

// RecordFailure records a failure for a segment's gateway.
func (m *Manager) RecordFailure(segment string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cached, ok := m.gateways[segment]
	if !ok {
		return
	}
	cached.failures++
	if cached.failures == m.config.FailureThreshold && m.bus != nil {
		m.bus.Publish(events.EventGatewayDegraded, segment)
	}
}

// RecordSuccess resets the failure counter.
func (m *Manager) RecordSuccess(segment string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cached, ok := m.gateways[segment]; ok {
		cached.failures = 0
		cached.healthyAt = time.Now()
	}
}

// SegmentStatus describes one segment in the pool.
type SegmentStatus struct {
	Segment  string              `json:"segment"`
	Market   exchange.MarketType `json:"market"`
	Healthy  bool                `json:"healthy"`
	Failures int                 `json:"failures"`
}

// Stats returns the status of every registered segment.
func (m *Manager) Stats() []SegmentStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SegmentStatus, 0, len(m.gateways))
	for _, cached := range m.gateways {
		out = append(out, SegmentStatus{
			Segment:  cached.segment,
			Market:   cached.market,
			Healthy:  cached.failures < m.config.FailureThreshold,
			Failures: cached.failures,
		})
	}
	return out
}

func (m *Manager) healthCheckAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.gateways))
	for id := range m.gateways {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.healthCheck(id)
	}
}

// healthCheck pings the venue through the client's server time endpoint.
func (m *Manager) healthCheck(segment string) {
	m.mu.RLock()
	cached, ok := m.gateways[segment]
	if !ok {
		m.mu.RUnlock()
		return
	}
	gw := cached.gateway
	m.mu.RUnlock()

	if timer, ok := gw.(interface{ GetServerTime() (int64, error) }); ok {
		if _, err := timer.GetServerTime(); err != nil {
			m.RecordFailure(segment)
		} else {
			m.RecordSuccess(segment)
		}
	}
}
