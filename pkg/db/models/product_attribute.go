package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductAttribute is a free-form name/value pair attached to a product.
type ProductAttribute struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Value     string    `gorm:"column:value;not null" json:"value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
