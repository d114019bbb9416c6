// Package httpapi exposes the paper-trading ledger over HTTP and runs the
// background poller that fires pending conditional orders.
package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/papersim/papersim/internal/ledger"
	"github.com/papersim/papersim/internal/pricefeed"
)

type Config struct {
	OrderCheckInterval time.Duration
	// PriceFetchTimeout caps each quote batch the poller pulls; zero
	// falls back to 15s.
	PriceFetchTimeout time.Duration
}

type Server struct {
	cfg    Config
	store  *ledger.Store
	prices *pricefeed.Client

	bgCancel func()
	bgWG     sync.WaitGroup
}

func New(cfg Config, store *ledger.Store, prices *pricefeed.Client) *Server {
	s := &Server{cfg: cfg, store: store, prices: prices}
	s.startBackground()
	return s
}

// Close stops the background poller. The store is owned by the caller.
func (s *Server) Close() {
	if s.bgCancel != nil {
		s.bgCancel()
		s.bgWG.Wait()
	}
}

func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.wrap(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))

	api := r.Group("/api")

	api.POST("/wallet", s.wrap(s.handleWalletCreate))
	api.GET("/wallet", s.wrap(s.handleWalletGet))

	api.POST("/trade", s.wrap(s.handleTrade))

	orders := api.Group("/orders")
	orders.GET("", s.wrap(s.handleOrdersList))
	orders.POST("", s.wrap(s.handleOrderCreate))
	orders.POST("/check", s.wrap(s.handleOrdersCheck))
	orders.DELETE("/:orderID", s.wrap(s.handleOrderCancel))

	api.GET("/portfolio", s.wrap(s.handlePortfolio))
	api.GET("/crypto", s.wrap(s.handleCrypto))

	return r
}

type paramsKeyType string

const paramsKey paramsKeyType = "papersim_path_params"

// wrap adapts net/http handlers to gin, injecting path params into request context.
func (s *Server) wrap(h func(http.ResponseWriter, *http.Request)) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := map[string]string{}
		for _, p := range c.Params {
			m[p.Key] = p.Value
		}
		ctx := context.WithValue(c.Request.Context(), paramsKey, m)
		c.Request = c.Request.WithContext(ctx)
		h(c.Writer, c.Request)
	}
}
