package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries loyalty and lifetime spend aggregates maintained inside the
// order transaction.
type Customer struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        *uuid.UUID      `gorm:"column:user_id;type:uuid;uniqueIndex" json:"user_id,omitempty"`
	FullName      string          `gorm:"column:full_name;not null" json:"full_name"`
	Email         *string         `gorm:"column:email;uniqueIndex" json:"email,omitempty"`
	Phone         *string         `gorm:"column:phone;index" json:"phone,omitempty"`
	Address       *string         `gorm:"column:address" json:"address,omitempty"`
	LoyaltyPoints int             `gorm:"column:loyalty_points;not null;default:0" json:"loyalty_points"`
	OrderCount    int             `gorm:"column:order_count;not null;default:0" json:"order_count"`
	LifetimeSpend decimal.Decimal `gorm:"column:lifetime_spend;type:numeric(16,2);not null;default:0" json:"lifetime_spend"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
