package models

import (
	"time"

	"gorm.io/gorm"
)

// Post statuses.
const (
	PostStatusDraft     = "Draft"
	PostStatusPublished = "Published"
	PostStatusArchived  = "Archived"
)

// Post is a single bulletin entry. Author is free text rather than a foreign
// key, and PinnedBy is a weak reference: the post outlives the pinning user.
type Post struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Author    string         `gorm:"size:255;not null" json:"author"`
	Category  string         `gorm:"size:128;not null;index" json:"category"`
	Status    string         `gorm:"size:32;not null;index" json:"status"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	IsPinned  bool           `gorm:"index;default:false" json:"is_pinned"`
	PinnedAt  *time.Time     `json:"pinned_at,omitempty"`
	PinnedBy  *uint          `json:"pinned_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
