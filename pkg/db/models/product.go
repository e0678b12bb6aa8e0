package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a sellable catalog entry; stock lives on its variants.
type Product struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU         string             `gorm:"column:sku;not null;uniqueIndex" json:"sku"`
	Name        string             `gorm:"column:name;not null" json:"name"`
	Slug        string             `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description *string            `gorm:"column:description" json:"description,omitempty"`
	Brand       *string            `gorm:"column:brand" json:"brand,omitempty"`
	CategoryID  *uuid.UUID         `gorm:"column:category_id;type:uuid" json:"category_id,omitempty"`
	Category    *Category          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IsActive    bool               `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsFeatured  bool               `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	Variants    []ProductVariant   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"variants,omitempty"`
	Images      []ProductImage     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Attributes  []ProductAttribute `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"attributes,omitempty"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
