package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots the variant at purchase time so later catalog edits do
// not rewrite order history.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	VariantID   uuid.UUID       `gorm:"column:variant_id;type:uuid;not null;index" json:"variant_id"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	VariantName string          `gorm:"column:variant_name;not null" json:"variant_name"`
	SKU         string          `gorm:"column:sku;not null" json:"sku"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null" json:"unit_price"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(14,2);not null;default:0" json:"discount"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	LineTotal   decimal.Decimal `gorm:"column:line_total;type:numeric(14,2);not null" json:"line_total"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
