package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory holds the on-hand and reserved quantity for one variant in one
// warehouse. The (warehouse, variant) pair is unique.
type Inventory struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WarehouseID      uuid.UUID `gorm:"column:warehouse_id;type:uuid;not null;uniqueIndex:idx_inventory_warehouse_variant" json:"warehouse_id"`
	VariantID        uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:idx_inventory_warehouse_variant" json:"variant_id"`
	Quantity         int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	ReservedQuantity int       `gorm:"column:reserved_quantity;not null;default:0" json:"reserved_quantity"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
