package domain

import "github.com/shopspring/decimal"

// Precision policy: currency amounts carry 2 decimal places, coin amounts 8.
// All intermediate math stays in decimal to avoid binary-float drift across
// repeated weighted-average recomputation.
const (
	MoneyPlaces = 2
	CoinPlaces  = 8
)

// DustThreshold is the smallest position amount worth keeping. A position
// reduced to this or below is removed entirely.
var DustThreshold = decimal.New(1, -8) // 1e-8

// RoundMoney rounds a currency value to cents.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// RoundCoin rounds a coin amount to 8 decimal places.
func RoundCoin(d decimal.Decimal) decimal.Decimal {
	return d.Round(CoinPlaces)
}
