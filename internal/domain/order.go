package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType selects the trigger direction of a conditional order.
type OrderType string

const (
	OrderStopLoss   OrderType = "STOP_LOSS"
	OrderTakeProfit OrderType = "TAKE_PROFIT"
)

// Valid reports whether t is a known order type.
func (t OrderType) Valid() bool {
	return t == OrderStopLoss || t == OrderTakeProfit
}

// OrderStatus is the lifecycle state of a conditional order.
// PENDING -> EXECUTED (trigger crossed) or PENDING -> CANCELLED (user
// cancel) are the only transitions; both targets are terminal.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderExecuted  OrderStatus = "EXECUTED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderExecuted || s == OrderCancelled
}

// Order is a conditional sell instruction tied to a position. Symbol, coin
// and amount are frozen at creation time; the referenced position may shrink
// or disappear through unrelated trades before the order triggers, and
// execution must tolerate that.
type Order struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	PositionID   string          `json:"position_id"`
	Symbol       string          `json:"symbol"`
	CoinID       string          `json:"coin_id"`
	OrderType    OrderType       `json:"order_type"`
	TriggerPrice decimal.Decimal `json:"trigger_price"`
	Amount       decimal.Decimal `json:"amount"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ExecutedAt   *time.Time      `json:"executed_at,omitempty"`
}

// ShouldTrigger reports whether the supplied market price crosses the
// order's trigger: stop-loss fires at or below, take-profit at or above.
func (o *Order) ShouldTrigger(price decimal.Decimal) bool {
	switch o.OrderType {
	case OrderStopLoss:
		return price.LessThanOrEqual(o.TriggerPrice)
	case OrderTakeProfit:
		return price.GreaterThanOrEqual(o.TriggerPrice)
	default:
		return false
	}
}
