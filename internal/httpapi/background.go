package httpapi

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/papersim/papersim/pkg/logger"
)

func (s *Server) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.orderCheckLoop(ctx, s.cfg.OrderCheckInterval)
	}()
}

func (s *Server) orderCheckLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.checkAllPendingOrders(ctx)
		}
	}
}

// checkAllPendingOrders walks every user with pending orders, fetches one
// quote batch per user and evaluates their triggers. A failure for one
// user never blocks the rest.
func (s *Server) checkAllPendingOrders(ctx context.Context) {
	fetchTimeout := s.cfg.PriceFetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}

	users, err := s.store.UsersWithPendingOrders(ctx)
	if err != nil {
		logger.Errorf("order check: list users: %v", err)
		return
	}

	for _, uid := range users {
		coins, err := s.store.PendingOrderCoins(ctx, uid)
		if err != nil {
			logger.WithField("user_id", uid).Errorf("order check: list coins: %v", err)
			continue
		}
		if len(coins) == 0 {
			continue
		}

		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		prices, err := s.prices.GetPrices(fetchCtx, coins)
		cancel()
		if err != nil {
			logger.WithField("user_id", uid).Warnf("order check: fetch prices: %v", err)
			continue
		}

		executed, err := s.store.EvaluateTriggers(ctx, uid, prices)
		if err != nil {
			logger.WithField("user_id", uid).Errorf("order check: evaluate: %v", err)
			continue
		}
		if len(executed) > 0 {
			logger.WithFields(logrus.Fields{
				"user_id":  uid,
				"executed": len(executed),
			}).Info("conditional orders executed")
		}
	}
}
