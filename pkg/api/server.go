// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package api exposes the settlement engine over HTTP: the four trade
// operations, quotes, sale reads and the fee-configuration surface.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/luxfi/lpx/pkg/errs"
	"github.com/luxfi/lpx/pkg/fee"
	"github.com/luxfi/lpx/pkg/identity"
	"github.com/luxfi/lpx/pkg/log"
	"github.com/luxfi/lpx/pkg/metric"
	"github.com/luxfi/lpx/pkg/trade"
)

// CallerHeader names the header carrying the authenticated caller identity.
// Signature verification happens at the edge, upstream of this API.
const CallerHeader = "X-Lpx-User"

// Server wires the engine services into a gin router.
type Server struct {
	trades  *trade.Service
	fees    *fee.Service
	metrics *metric.Metrics
	feed    *Feed
	log     log.Logger
}

// NewServer builds the API server. Metrics may be nil.
func NewServer(trades *trade.Service, fees *fee.Service, metrics *metric.Metrics, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NoLog
	}
	return &Server{
		trades:  trades,
		fees:    fees,
		metrics: metrics,
		feed:    NewFeed(logger),
		log:     logger,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router(production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", CallerHeader}
	router.Use(cors.New(config))
	router.Use(s.callerMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "time": time.Now().Unix()})
	})

	v1 := router.Group("/v1")
	{
		v1.POST("/sales", s.createSale)
		v1.GET("/sales", s.listSales)
		v1.GET("/sales/:vault", s.getSale)

		v1.POST("/sales/:vault/buy-exact", s.buyExactTokens)
		v1.POST("/sales/:vault/buy-native", s.buyWithNative)
		v1.POST("/sales/:vault/sell-exact", s.sellExactTokens)
		v1.POST("/sales/:vault/sell-native", s.sellWithNative)
		v1.POST("/sales/:vault/quote", s.quote)
		v1.GET("/sales/:vault/trades", s.listTrades)

		v1.GET("/fee-config", s.getFeeConfig)
		v1.POST("/fee-config", s.setFeeConfig)
		v1.POST("/fee-config/authorities", s.updateAuthorities)

		v1.GET("/feed", s.feed.Handle)
	}

	return router
}

// callerMiddleware propagates the caller identity into the request context.
func (s *Server) callerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := c.GetHeader(CallerHeader); user != "" {
			c.Request = c.Request.WithContext(identity.WithCaller(c.Request.Context(), user))
		}
		c.Next()
	}
}

// statusFor maps engine error codes to HTTP statuses.
func statusFor(code errs.Code) int {
	switch code {
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Unauthorized:
		return http.StatusForbidden
	case errs.SlippageExceeded, errs.PreConditionFailed, errs.Conflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	code := errs.CodeOf(err)
	status := statusFor(code)
	if s.metrics != nil {
		s.metrics.RequestsProcessed.WithLabelValues(c.Request.Method, http.StatusText(status)).Inc()
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": string(code)})
}

func (s *Server) ok(c *gin.Context, status int, body any) {
	if s.metrics != nil {
		s.metrics.RequestsProcessed.WithLabelValues(c.Request.Method, http.StatusText(status)).Inc()
	}
	c.JSON(status, body)
}

func (s *Server) createSale(c *gin.Context) {
	var req trade.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errs.Validationf("malformed request: %s", err.Error()))
		return
	}
	sl, err := s.trades.CreateSale(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusCreated, sl)
}

func (s *Server) listSales(c *gin.Context) {
	sales, err := s.trades.ListSales(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, gin.H{"sales": sales})
}

func (s *Server) getSale(c *gin.Context) {
	sl, err := s.trades.FetchSale(c.Request.Context(), c.Param("vault"))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, sl)
}

func (s *Server) buyExactTokens(c *gin.Context) {
	var req trade.BuyExactTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errs.Validationf("malformed request: %s", err.Error()))
		return
	}
	req.VaultAddress = c.Param("vault")
	result, err := s.trades.BuyExactTokens(c.Request.Context(), req)
	s.finishTrade(c, result, err)
}

func (s *Server) buyWithNative(c *gin.Context) {
	var req trade.BuyWithNativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errs.Validationf("malformed request: %s", err.Error()))
		return
	}
	req.VaultAddress = c.Param("vault")
	result, err := s.trades.BuyWithNative(c.Request.Context(), req)
	s.finishTrade(c, result, err)
}

func (s *Server) sellExactTokens(c *gin.Context) {
	var req trade.SellExactTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errs.Validationf("malformed request: %s", err.Error()))
		return
	}
	req.VaultAddress = c.Param("vault")
	result, err := s.trades.SellExactTokens(c.Request.Context(), req)
	s.finishTrade(c, result, err)
}

func (s *Server) sellWithNative(c *gin.Context) {
	var req trade.SellWithNativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errs.Validationf("malformed request: %s", err.Error()))
		return
	}
	req.VaultAddress = c.Param("vault")
	result, err := s.trades.SellWithNative(c.Request.Context(), req)
	s.finishTrade(c, result, err)
}

func (s *Server) finishTrade(c *gin.Context, result *trade.Result, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}
	s.feed.Broadcast(result)
	s.ok(c, http.StatusOK, result)
}

type quoteRequest struct {
	Side     string          `json:"side" binding:"required"` // buy | sell
	Exact    string          `json:"exact" binding:"required"` // tokens | native
	Quantity decimal.Decimal `json:"quantity"`
	PreMint  bool            `json:"preMint"`
}

func (s *Server) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errs.Validationf("malformed request: %s", err.Error()))
		return
	}
	vault := c.Param("vault")
	ctx := c.Request.Context()

	var result *trade.CalculationResult
	var err error
	switch req.Side + "/" + req.Exact {
	case "buy/tokens":
		result, err = s.trades.QuoteBuyExactTokens(ctx, vault, req.Quantity, req.PreMint)
	case "buy/native":
		result, err = s.trades.QuoteBuyWithNative(ctx, vault, req.Quantity, req.PreMint)
	case "sell/tokens":
		result, err = s.trades.QuoteSellExactTokens(ctx, vault, req.Quantity)
	case "sell/native":
		result, err = s.trades.QuoteSellWithNative(ctx, vault, req.Quantity)
	default:
		err = errs.Validationf("unknown quote shape %s/%s", req.Side, req.Exact)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, result)
}

func (s *Server) listTrades(c *gin.Context) {
	day := time.Now().UTC()
	if raw := c.Query("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.fail(c, errs.Validationf("day must be YYYY-MM-DD, got %q", raw))
			return
		}
		day = parsed
	}
	receipts, err := s.trades.Receipts(c.Request.Context(), c.Param("vault"), day)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, gin.H{"trades": receipts})
}

func (s *Server) getFeeConfig(c *gin.Context) {
	cfg, err := s.fees.FetchRequired(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, cfg)
}

func (s *Server) setFeeConfig(c *gin.Context) {
	var cfg fee.Config
	if err := c.ShouldBindJSON(&cfg); err != nil {
		s.fail(c, errs.Validationf("malformed request: %s", err.Error()))
		return
	}
	if err := s.fees.Set(c.Request.Context(), cfg); err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, cfg)
}

func (s *Server) updateAuthorities(c *gin.Context) {
	var req struct {
		Authorities []string `json:"authorities" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errs.Validationf("malformed request: %s", err.Error()))
		return
	}
	cfg, err := s.fees.UpdateAuthorities(c.Request.Context(), req.Authorities)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.ok(c, http.StatusOK, cfg)
}
