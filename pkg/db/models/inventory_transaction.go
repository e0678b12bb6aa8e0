package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vancetran/medisupply-backend/pkg/enums"
)

// InventoryTransaction is the append-only movement log. Rows are never updated.
type InventoryTransaction struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WarehouseID    uuid.UUID            `gorm:"column:warehouse_id;type:uuid;not null;index" json:"warehouse_id"`
	VariantID      uuid.UUID            `gorm:"column:variant_id;type:uuid;not null;index" json:"variant_id"`
	UserID         uuid.UUID            `gorm:"column:user_id;type:uuid;not null" json:"user_id"`
	Type           enums.AdjustmentType `gorm:"column:type;type:text;not null" json:"type"`
	Quantity       int                  `gorm:"column:quantity;not null" json:"quantity"`
	QuantityBefore int                  `gorm:"column:quantity_before;not null" json:"quantity_before"`
	QuantityAfter  int                  `gorm:"column:quantity_after;not null" json:"quantity_after"`
	Reference      *string              `gorm:"column:reference" json:"reference,omitempty"`
	Note           *string              `gorm:"column:note" json:"note,omitempty"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
