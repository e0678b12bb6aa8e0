package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vancetran/medisupply-backend/pkg/enums"
)

// Order is the customer-facing sales document. Monetary columns are decimals
// in the store currency; GrandTotal = Subtotal - DiscountTotal + TaxTotal + ShippingFee.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber     string                `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	CustomerID      uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null;default:'pending'" json:"status"`
	PaymentStatus   enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null;default:'pending'" json:"payment_status"`
	PaymentMethod   enums.PaymentProvider `gorm:"column:payment_method;type:text;not null;default:'cash'" json:"payment_method"`
	Subtotal        decimal.Decimal       `gorm:"column:subtotal;type:numeric(14,2);not null" json:"subtotal"`
	DiscountTotal   decimal.Decimal       `gorm:"column:discount_total;type:numeric(14,2);not null;default:0" json:"discount_total"`
	TaxTotal        decimal.Decimal       `gorm:"column:tax_total;type:numeric(14,2);not null;default:0" json:"tax_total"`
	ShippingFee     decimal.Decimal       `gorm:"column:shipping_fee;type:numeric(14,2);not null;default:0" json:"shipping_fee"`
	GrandTotal      decimal.Decimal       `gorm:"column:grand_total;type:numeric(14,2);not null" json:"grand_total"`
	CouponID        *uuid.UUID            `gorm:"column:coupon_id;type:uuid" json:"coupon_id,omitempty"`
	CouponCode      *string               `gorm:"column:coupon_code" json:"coupon_code,omitempty"`
	ShippingAddress *string               `gorm:"column:shipping_address" json:"shipping_address,omitempty"`
	BillingAddress  *string               `gorm:"column:billing_address" json:"billing_address,omitempty"`
	Notes           *string               `gorm:"column:notes" json:"notes,omitempty"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	ConfirmedAt     *time.Time            `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
	ShippedAt       *time.Time            `gorm:"column:shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time            `gorm:"column:delivered_at" json:"delivered_at,omitempty"`
	CancelledAt     *time.Time            `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
