package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is a specific SKU of a product (size/packaging) with its own
// price and stock. StockQuantity is a denormalized sum across warehouses and is
// only ever recomputed from inventory rows.
type ProductVariant struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID         uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	SKU               string           `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name              string           `gorm:"column:name;not null" json:"name"`
	Barcode           *string          `gorm:"column:barcode;index" json:"barcode,omitempty"`
	Price             decimal.Decimal  `gorm:"column:price;type:numeric(14,2);not null" json:"price"`
	CostPrice         *decimal.Decimal `gorm:"column:cost_price;type:numeric(14,2)" json:"cost_price,omitempty"`
	StockQuantity     int              `gorm:"column:stock_quantity;not null;default:0" json:"stock_quantity"`
	ReservedQuantity  int              `gorm:"column:reserved_quantity;not null;default:0" json:"reserved_quantity"`
	LowStockThreshold int              `gorm:"column:low_stock_threshold;not null;default:10" json:"low_stock_threshold"`
	IsActive          bool             `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
