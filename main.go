package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venue-gateway/internal/api"
	"venue-gateway/internal/events"
	"venue-gateway/internal/gateway"
	"venue-gateway/internal/order"
	"venue-gateway/internal/reconciliation"
	"venue-gateway/pkg/config"
	"venue-gateway/pkg/db"
	"venue-gateway/pkg/exchanges/binance/futures_coin"
	"venue-gateway/pkg/exchanges/binance/futures_usdt"
	"venue-gateway/pkg/exchanges/binance/spot"
	exchange "venue-gateway/pkg/exchanges/common"
)

const buildVersion = "0.3.0"

// orderQueue is the common surface of the in-memory and WAL-backed queues.
type orderQueue interface {
	Enqueue(order.Order) bool
	Drain(ctx context.Context, handler func(order.Order))
	Len() int
	PendingNotional() float64
	Close()
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	log.Printf("venue gateway starting (port=%s, version=%s)", cfg.Port, buildVersion)
	log.Printf("using database at %s", cfg.DBPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Core services
	bus := events.NewBus()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}
	defer database.Close()
	if err := db.ApplyMigrations(database); err != nil {
		log.Fatalf("db migrations failed: %v", err)
	}

	// Gateway pool: one client per enabled segment, each with its own
	// order-type tables.
	pool := gateway.NewManager(gateway.DefaultFactory, bus, gateway.DefaultConfig())
	executor := order.NewExecutor(database, bus)

	type segmentCreds struct {
		segment string
		key     string
		secret  string
		enabled bool
	}
	segments := []segmentCreds{
		{gateway.SegmentBinanceSpot, cfg.SpotAPIKey, cfg.SpotAPISecret, cfg.EnableSpot},
		{gateway.SegmentBinanceUSDTFut, cfg.USDTKey, cfg.USDTSecret, cfg.EnableUSDTFutures},
		{gateway.SegmentBinanceCoinFut, cfg.CoinKey, cfg.CoinSecret, cfg.EnableCoinFutures},
	}

	var enabled []string
	gateways := make(map[string]exchange.Gateway)
	for _, sc := range segments {
		if !sc.enabled {
			continue
		}
		if sc.key == "" || sc.secret == "" {
			log.Printf("segment %s enabled but credentials missing; skipping", sc.segment)
			continue
		}
		gw, err := pool.Register(sc.segment, sc.key, sc.secret, cfg.BinanceTestnet)
		if err != nil {
			log.Fatalf("register segment %s: %v", sc.segment, err)
		}
		market, _ := gateway.SegmentMarket(sc.segment)
		executor.Register(market, gw)
		gateways[sc.segment] = gw
		enabled = append(enabled, sc.segment)
		if ts, ok := gw.(interface{ StartTimeSync(context.Context) }); ok {
			ts.StartTimeSync(ctx)
		}
		log.Printf("segment %s registered (testnet=%v)", sc.segment, cfg.BinanceTestnet)
	}
	pool.Start(ctx)
	defer pool.Stop()

	// Order queue, WAL-backed when configured.
	var queue orderQueue
	if cfg.EnableOrderWAL {
		pq, err := order.NewPersistentQueue(cfg.OrderWALPath, 1000)
		if err != nil {
			log.Fatalf("order WAL init failed: %v", err)
		}
		if err := pq.Recover(); err != nil {
			log.Fatalf("order WAL recovery failed: %v", err)
		}
		queue = pq
	} else {
		queue = order.NewQueue(1000)
	}
	defer queue.Close()

	go queue.Drain(ctx, func(o order.Order) {
		if err := executor.Handle(ctx, o); err != nil {
			log.Printf("order %s failed: %v", o.ID, err)
		}
	})

	// User data streams report fills with the venue's own tokens; each
	// stream normalizes through its segment's tables before persisting.
	if gw, ok := gateways[gateway.SegmentBinanceSpot]; ok {
		if client, ok := gw.(*spot.Client); ok {
			stream := order.NewSpotUserStream(client, database, bus, cfg.BinanceTestnet)
			stream.Start(ctx)
			defer stream.Stop()
		}
	}
	if gw, ok := gateways[gateway.SegmentBinanceUSDTFut]; ok {
		if client, ok := gw.(*futures_usdt.Client); ok {
			stream := order.NewFuturesUserStream(client, database, bus, cfg.BinanceTestnet, false)
			stream.Start(ctx)
			defer stream.Stop()
		}
	}
	if gw, ok := gateways[gateway.SegmentBinanceCoinFut]; ok {
		if client, ok := gw.(*futures_coin.Client); ok {
			stream := order.NewFuturesUserStream(client, database, bus, cfg.BinanceTestnet, true)
			stream.Start(ctx)
			defer stream.Stop()
		}
	}

	// Reconciliation: periodically sweep venue state back into the DB.
	for segment, gw := range gateways {
		market, _ := gateway.SegmentMarket(segment)
		recon := reconciliation.NewService(gw, market, database, 5*time.Minute)
		recon.Start(ctx)
	}

	// API
	server := api.NewServer(
		bus,
		database,
		pool,
		queue,
		executor.NewOrderID,
		api.SystemMeta{
			Venue:    "binance",
			Segments: enabled,
			Symbols:  cfg.Symbols,
			Testnet:  cfg.BinanceTestnet,
			Version:  buildVersion,
		},
		cfg.JWTSecret,
	)
	go func() {
		if err := server.Start(":" + cfg.Port); err != nil {
			log.Fatalf("api server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("shutting down")
}
