package models

import "time"

// SoftDelete marks a row as deleted without removing it. Reads must filter on
// IsDeleted through database.NotDeleted.
type SoftDelete struct {
	IsDeleted bool       `gorm:"not null;default:false;index" json:"-"`
	DeletedAt *time.Time `json:"-"`
}

// MarkDeleted flags the row as deleted at the given time.
func (s *SoftDelete) MarkDeleted(at time.Time) {
	s.IsDeleted = true
	s.DeletedAt = &at
}
