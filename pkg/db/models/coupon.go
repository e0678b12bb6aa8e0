package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vancetran/medisupply-backend/pkg/enums"
)

// Coupon is a redeemable discount code with optional usage limits and window.
type Coupon struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code             string           `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Type             enums.CouponType `gorm:"column:type;type:text;not null" json:"type"`
	Value            decimal.Decimal  `gorm:"column:value;type:numeric(14,2);not null" json:"value"`
	MinOrderAmount   *decimal.Decimal `gorm:"column:min_order_amount;type:numeric(14,2)" json:"min_order_amount,omitempty"`
	UsageLimit       *int             `gorm:"column:usage_limit" json:"usage_limit,omitempty"`
	PerCustomerLimit *int             `gorm:"column:per_customer_limit" json:"per_customer_limit,omitempty"`
	UsedCount        int              `gorm:"column:used_count;not null;default:0" json:"used_count"`
	StartsAt         *time.Time       `gorm:"column:starts_at" json:"starts_at,omitempty"`
	ExpiresAt        *time.Time       `gorm:"column:expires_at" json:"expires_at,omitempty"`
	IsActive         bool             `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
