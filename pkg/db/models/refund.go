package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vancetran/medisupply-backend/pkg/enums"
)

// Refund records money returned against an order.
type Refund struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID              uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	PaymentTransactionID *uuid.UUID          `gorm:"column:payment_transaction_id;type:uuid" json:"payment_transaction_id,omitempty"`
	Amount               decimal.Decimal     `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Reason               *string             `gorm:"column:reason" json:"reason,omitempty"`
	Status               enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
