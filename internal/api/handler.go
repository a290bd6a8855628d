package api

import (
	"net/http"
	"time"

	"venue-gateway/internal/events"
	"venue-gateway/internal/gateway"
	"venue-gateway/internal/order"
	"venue-gateway/pkg/cache"
	"venue-gateway/pkg/db"

	"github.com/gin-gonic/gin"
)

// OrderQueue is what the API needs from the order pipeline.
type OrderQueue interface {
	Enqueue(order.Order) bool
	Len() int
	PendingNotional() float64
}

// Server wires HTTP endpoints around the gateway pool and event bus.
type Server struct {
	Router     *gin.Engine
	Bus        *events.Bus
	DB         *db.Database
	Pool       *gateway.Manager
	OrderQueue OrderQueue
	OrderCache *cache.OpenOrderCache
	NewOrderID func() string
	JWTSecret  string
	Meta       SystemMeta
}

// SystemMeta describes runtime status exposed to clients.
type SystemMeta struct {
	Venue    string
	Segments []string
	Symbols  []string
	Testnet  bool
	Version  string
}

func NewServer(bus *events.Bus, database *db.Database, pool *gateway.Manager, orderQueue OrderQueue, newOrderID func() string, meta SystemMeta, jwtSecret string) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger())
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(CORSMiddleware())

	s := &Server{
		Router:     r,
		Bus:        bus,
		DB:         database,
		Pool:       pool,
		OrderQueue: orderQueue,
		OrderCache: cache.NewOpenOrderCache(),
		NewOrderID: newOrderID,
		JWTSecret:  jwtSecret,
		Meta:       meta,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.GET("/system/status", s.getSystemStatus)
		api.GET("/queue/metrics", s.getQueueMetrics)

		// Auth endpoints (no auth required)
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.registerUser)
			auth.POST("/login", s.loginUser)
		}

		// Protected API
		protected := api.Group("")
		protected.Use(AuthMiddleware(s.JWTSecret))
		{
			protected.GET("/orders", s.getOrders)
			protected.GET("/orders/open", s.getOpenOrders)
			protected.GET("/orders/:id", s.getOrder)
			protected.POST("/orders", s.createOrder)
			protected.POST("/orders/:id/cancel", s.cancelOrder)

			protected.GET("/venues", s.getVenues)
			protected.GET("/venues/:segment/orders", s.getVenueOpenOrders)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
