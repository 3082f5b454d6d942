package models

import (
	"time"

	"gorm.io/datatypes"
)

type EntityType string

const (
	EntityProject    EntityType = "project"
	EntityRequest    EntityType = "request"
	EntityTask       EntityType = "task"
	EntitySubmission EntityType = "submission"
)

// ActivityEvent records one state change made by a service call or cascade step.
type ActivityEvent struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	EntityType EntityType     `gorm:"type:varchar(20);not null;index:idx_activity_entity" json:"entity_type"`
	EntityID   uint64         `gorm:"not null;index:idx_activity_entity" json:"entity_id"`
	ProjectID  uint64         `gorm:"not null;index" json:"project_id"`
	ActorID    uint64         `gorm:"not null" json:"actor_id"`
	Action     string         `gorm:"type:varchar(50);not null" json:"action"`
	Payload    datatypes.JSON `json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}
