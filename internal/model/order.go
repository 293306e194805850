package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a completed storefront order as delivered by the commerce
// platform. Total is already net of shipping, tax, discounts and refunds.
type Order struct {
	OrderID     string          `json:"order_id" db:"order_id"`
	BuyerUserID uuid.UUID       `json:"buyer_user_id" db:"buyer_user_id"`
	Total       decimal.Decimal `json:"total" db:"total"`
	ReceivedAt  time.Time       `json:"received_at" db:"received_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
}
