package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog captures before/after state for auditable mutations such as
// order status transitions.
type ActivityLog struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EntityType string    `gorm:"column:entity_type;not null;index:idx_activity_entity" json:"entity_type"`
	EntityID   uuid.UUID `gorm:"column:entity_id;type:uuid;not null;index:idx_activity_entity" json:"entity_id"`
	Action     string    `gorm:"column:action;not null" json:"action"`
	ActorID    uuid.UUID `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`
	FromState  *string   `gorm:"column:from_state" json:"from_state,omitempty"`
	ToState    *string   `gorm:"column:to_state" json:"to_state,omitempty"`
	Note       *string   `gorm:"column:note" json:"note,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
