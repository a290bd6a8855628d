package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"venue-gateway/internal/events"
	"venue-gateway/internal/gateway"
	"venue-gateway/internal/order"
	"venue-gateway/pkg/db"
	exchange "venue-gateway/pkg/exchanges/common"

	"github.com/gin-gonic/gin"
)

type createOrderRequest struct {
	Symbol          string  `json:"symbol" binding:"required,min=1"`
	Side            string  `json:"side" binding:"required,oneof=BUY SELL"`
	Type            string  `json:"type" binding:"required"`
	Market          string  `json:"market" binding:"required,oneof=SPOT USDT_FUTURES COIN_FUTURES"`
	Price           float64 `json:"price"`
	StopPrice       float64 `json:"stop_price"`
	Qty             float64 `json:"qty" binding:"gt=0"`
	TimeInForce     string  `json:"time_in_force"`
	ReduceOnly      bool    `json:"reduce_only"`
	PositionSide    string  `json:"position_side"`
	ActivationPrice float64 `json:"activation_price"`
	CallbackRate    float64 `json:"callback_rate"`
}

type listOrdersQuery struct {
	Limit int `form:"limit"`
}

func (q *listOrdersQuery) normalize() {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	if q.Limit > 500 {
		q.Limit = 500
	}
}

func respondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, gin.H{
		"code":  code,
		"error": msg,
	})
}

func marketSegment(market exchange.MarketType) (string, bool) {
	switch market {
	case exchange.MarketSpot:
		return gateway.SegmentBinanceSpot, true
	case exchange.MarketUSDTFut:
		return gateway.SegmentBinanceUSDTFut, true
	case exchange.MarketCoinFut:
		return gateway.SegmentBinanceCoinFut, true
	}
	return "", false
}

func (s *Server) getSystemStatus(c *gin.Context) {
	status := gin.H{
		"venue":       s.Meta.Venue,
		"segments":    s.Meta.Segments,
		"symbols":     s.Meta.Symbols,
		"testnet":     s.Meta.Testnet,
		"version":     s.Meta.Version,
		"server_time": time.Now().UTC(),
	}
	if s.Pool != nil {
		status["gateways"] = s.Pool.Stats()
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) getQueueMetrics(c *gin.Context) {
	if s.OrderQueue == nil {
		respondError(c, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "order queue not available")
		return
	}

	response := gin.H{
		"current_depth":    s.OrderQueue.Len(),
		"pending_notional": s.OrderQueue.PendingNotional(),
		"type":             "in-memory",
	}
	if pq, ok := s.OrderQueue.(*order.PersistentQueue); ok {
		metrics := pq.GetMetrics()
		response["written"] = metrics.Written
		response["recovered"] = metrics.Recovered
		response["completed"] = metrics.Completed
		response["failed"] = metrics.Failed
		response["type"] = "persistent"
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) getOrders(c *gin.Context) {
	var q listOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY", "invalid query parameters")
		return
	}
	q.normalize()

	orders, err := s.DB.GetOrders(c.Request.Context(), q.Limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	c.Header("X-Result-Limit", strconv.Itoa(q.Limit))
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOpenOrders(c *gin.Context) {
	orders, err := s.DB.GetOpenOrders(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) getOrder(c *gin.Context) {
	o, err := s.DB.GetOrder(c.Request.Context(), c.Param("id"))
	if errors.Is(err, db.ErrNotFound) {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) createOrder(c *gin.Context) {
	if s.OrderQueue == nil {
		respondError(c, http.StatusServiceUnavailable, "QUEUE_UNAVAILABLE", "order queue not available")
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request payload")
		return
	}

	id := req.Symbol + "-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	if s.NewOrderID != nil {
		id = s.NewOrderID()
	}

	o := order.Order{
		ID:              id,
		Symbol:          strings.ToUpper(req.Symbol),
		Side:            exchange.Side(strings.ToUpper(req.Side)),
		Type:            exchange.OrderType(strings.ToUpper(req.Type)),
		Price:           req.Price,
		StopPrice:       req.StopPrice,
		Qty:             req.Qty,
		TimeInForce:     exchange.TimeInForce(strings.ToUpper(req.TimeInForce)),
		ReduceOnly:      req.ReduceOnly,
		PositionSide:    strings.ToUpper(req.PositionSide),
		Market:          exchange.MarketType(req.Market),
		ActivationPrice: req.ActivationPrice,
		CallbackRate:    req.CallbackRate,
		Status:          "NEW",
		CreatedAt:       time.Now(),
	}

	// Only unified order types cross this boundary. A raw venue token
	// like STOP_LOSS is rejected here by name, never coerced.
	if err := o.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ORDER", err.Error())
		return
	}

	if !s.OrderQueue.Enqueue(o) {
		respondError(c, http.StatusServiceUnavailable, "QUEUE_FULL", "order queue is full")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":     o.ID,
		"symbol": o.Symbol,
		"side":   o.Side,
		"type":   o.Type,
		"market": o.Market,
		"price":  o.Price,
		"qty":    o.Qty,
		"status": o.Status,
	})
}

func (s *Server) cancelOrder(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	o, err := s.DB.GetOrder(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		respondError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}

	segment, ok := marketSegment(exchange.MarketType(o.Market))
	if !ok {
		respondError(c, http.StatusBadRequest, "UNSUPPORTED_MARKET", "order market has no segment")
		return
	}
	gw, err := s.Pool.Get(segment)
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "GATEWAY_UNAVAILABLE", err.Error())
		return
	}

	if err := gw.CancelOrder(ctx, o.Symbol, o.ExchangeOrderID); err != nil {
		log.Printf("cancel order %s: %v", id, err)
		respondError(c, http.StatusBadGateway, "CANCEL_FAILED", err.Error())
		return
	}
	if err := s.DB.UpdateOrderStatus(ctx, id, "CANCELED", ""); err != nil {
		log.Printf("cancel order %s: update status: %v", id, err)
	}
	if s.OrderCache != nil {
		s.OrderCache.Invalidate(segment, o.Symbol)
		s.OrderCache.Invalidate(segment, "")
	}
	if s.Bus != nil {
		s.Bus.Publish(events.EventOrderCanceled, id)
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "status": "CANCELED"})
}

func (s *Server) getVenues(c *gin.Context) {
	if s.Pool == nil {
		respondError(c, http.StatusServiceUnavailable, "POOL_UNAVAILABLE", "gateway pool not available")
		return
	}
	c.JSON(http.StatusOK, s.Pool.Stats())
}

// getVenueOpenOrders asks the venue for resting orders. The response
// carries the unified type plus the raw venue token for each order.
func (s *Server) getVenueOpenOrders(c *gin.Context) {
	if s.Pool == nil {
		respondError(c, http.StatusServiceUnavailable, "POOL_UNAVAILABLE", "gateway pool not available")
		return
	}
	segment := c.Param("segment")
	symbol := c.Query("symbol")

	if s.OrderCache != nil {
		if orders, ok := s.OrderCache.Get(segment, symbol, 2*time.Second); ok {
			c.Header("X-Cache", "HIT")
			c.JSON(http.StatusOK, orders)
			return
		}
	}

	gw, err := s.Pool.Get(segment)
	if errors.Is(err, gateway.ErrSegmentNotFound) {
		respondError(c, http.StatusNotFound, "SEGMENT_NOT_FOUND", "segment not registered")
		return
	}
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "GATEWAY_UNAVAILABLE", err.Error())
		return
	}

	orders, err := gw.GetOpenOrders(c.Request.Context(), symbol)
	if err != nil {
		respondError(c, http.StatusBadGateway, "VENUE_ERROR", err.Error())
		return
	}
	if s.OrderCache != nil {
		s.OrderCache.Set(segment, symbol, orders)
	}
	c.JSON(http.StatusOK, orders)
}
