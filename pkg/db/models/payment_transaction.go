package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vancetran/medisupply-backend/pkg/enums"
)

// PaymentTransaction records one payment attempt against an order.
type PaymentTransaction struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	Provider    enums.PaymentProvider `gorm:"column:provider;type:text;not null" json:"provider"`
	RequestID   string                `gorm:"column:request_id;not null;uniqueIndex" json:"request_id"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(14,2);not null" json:"amount"`
	Currency    string                `gorm:"column:currency;not null;default:'VND'" json:"currency"`
	Status      enums.PaymentStatus   `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	ProviderRef *string               `gorm:"column:provider_ref" json:"provider_ref,omitempty"`
	FailReason  *string               `gorm:"column:fail_reason" json:"fail_reason,omitempty"`
	PaidAt      *time.Time            `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
