package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/papersim/papersim/internal/domain"
)

func TestPortfolioValuesHoldings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateWallet(ctx, "alice")
	require.NoError(t, err)
	_, err = s.ExecuteBuy(ctx, "alice", "bitcoin", "BTC", d("0.2"), d("25000"))
	require.NoError(t, err)
	_, err = s.ExecuteBuy(ctx, "alice", "ethereum", "ETH", d("2"), d("1500"))
	require.NoError(t, err)

	holdings, total, err := s.Portfolio(ctx, "alice", map[string]decimal.Decimal{
		"bitcoin":  d("30000"),
		"ethereum": d("1200"),
	})
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	byCoin := map[string]ValuedHolding{}
	for _, h := range holdings {
		byCoin[h.CoinID] = h
	}

	btc := byCoin["bitcoin"]
	require.True(t, btc.CurrentValue.Equal(d("6000")), "value %s", btc.CurrentValue)
	require.True(t, btc.ProfitLoss.Equal(d("1000")), "pl %s", btc.ProfitLoss)
	require.True(t, btc.ProfitLossPercentage.Equal(d("20")), "pl%% %s", btc.ProfitLossPercentage)

	eth := byCoin["ethereum"]
	require.True(t, eth.CurrentValue.Equal(d("2400")), "value %s", eth.CurrentValue)
	require.True(t, eth.ProfitLoss.Equal(d("-600")), "pl %s", eth.ProfitLoss)
	require.True(t, eth.ProfitLossPercentage.Equal(d("-20")), "pl%% %s", eth.ProfitLossPercentage)

	require.True(t, total.Equal(d("8400")), "total %s", total)
}

// A coin the price source does not know values at zero rather than failing
// the whole portfolio.
func TestPortfolioMissingPriceValuesZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateWallet(ctx, "alice")
	require.NoError(t, err)
	_, err = s.ExecuteBuy(ctx, "alice", "obscurecoin", "OBS", d("10"), d("5"))
	require.NoError(t, err)

	holdings, total, err := s.Portfolio(ctx, "alice", map[string]decimal.Decimal{})
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	require.True(t, holdings[0].CurrentPrice.IsZero())
	require.True(t, holdings[0].CurrentValue.IsZero())
	require.True(t, holdings[0].ProfitLoss.Equal(d("-50")), "pl %s", holdings[0].ProfitLoss)
	require.True(t, total.IsZero())
}

func TestHistoryNewestFirstAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateWallet(ctx, "alice")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = s.ExecuteBuy(ctx, "alice", "bitcoin", "BTC", d("0.01"), d("100"))
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	history, err := s.History(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i := 1; i < len(history); i++ {
		require.False(t, history[i-1].CreatedAt.Before(history[i].CreatedAt),
			"history must be newest first")
	}

	limited, err := s.History(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	require.Equal(t, history[0].ID, limited[0].ID)

	for _, txn := range history {
		require.Equal(t, domain.TradeBuy, txn.Type)
	}
}
