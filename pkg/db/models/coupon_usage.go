package models

import (
	"time"

	"github.com/google/uuid"
)

// CouponUsage records one redemption; written inside the order transaction.
type CouponUsage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CouponID   uuid.UUID `gorm:"column:coupon_id;type:uuid;not null;index" json:"coupon_id"`
	CustomerID uuid.UUID `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
