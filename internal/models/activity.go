package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is an append-only audit record. Actor name and role are
// snapshotted at write time so the entry still reads correctly after the
// actor is renamed or deleted; UserID is a weak reference for the same reason.
// There is no UpdatedAt: entries are never mutated, only bulk-expired.
type ActivityLog struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      *uint             `gorm:"index" json:"user_id"`
	UserName    string            `gorm:"size:255" json:"user_name"`
	UserRole    string            `gorm:"size:32" json:"user_role"`
	Action      string            `gorm:"size:64;not null;index" json:"action"`
	Description string            `gorm:"size:512;not null" json:"description"`
	SubjectType string            `gorm:"size:64;index:idx_activity_subject" json:"subject_type"`
	SubjectID   *uint             `gorm:"index:idx_activity_subject" json:"subject_id"`
	Properties  datatypes.JSONMap `gorm:"type:json" json:"properties"`
	IPAddress   string            `gorm:"size:64" json:"ip_address"`
	UserAgent   string            `gorm:"size:512" json:"user_agent"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}
