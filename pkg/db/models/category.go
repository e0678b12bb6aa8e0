package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the self-referencing catalog tree.
type Category struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string     `gorm:"column:name;not null" json:"name"`
	Slug         string     `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description  *string    `gorm:"column:description" json:"description,omitempty"`
	ParentID     *uuid.UUID `gorm:"column:parent_id;type:uuid;index" json:"parent_id,omitempty"`
	DisplayOrder int        `gorm:"column:display_order;not null;default:0" json:"display_order"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Children     []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"children,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
