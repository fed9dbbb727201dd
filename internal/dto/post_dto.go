package dto

import (
	"time"

	"github.com/bulletin-app/bulletin-api/internal/models"
)

// PostCreateRequest captures the payload for creating a post.
type PostCreateRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Author   string `json:"author" validate:"required,max=255"`
	Category string `json:"category" validate:"required,max=128"`
	Status   string `json:"status" validate:"required,oneof=Draft Published Archived"`
	Content  string `json:"content" validate:"required"`
}

// PostUpdateRequest captures the payload for updating a post. All fields are
// required, matching the create contract.
type PostUpdateRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	Author   string `json:"author" validate:"required,max=255"`
	Category string `json:"category" validate:"required,max=128"`
	Status   string `json:"status" validate:"required,oneof=Draft Published Archived"`
	Content  string `json:"content" validate:"required"`
}

// PostResponse serializes a post for API responses.
type PostResponse struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	Category  string     `json:"category"`
	Status    string     `json:"status"`
	Content   string     `json:"content"`
	IsPinned  bool       `json:"is_pinned"`
	PinnedAt  *time.Time `json:"pinned_at,omitempty"`
	PinnedBy  *uint      `json:"pinned_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PostListResponse wraps a paginated page of posts.
type PostListResponse struct {
	Data        []PostResponse `json:"data"`
	Total       int64          `json:"total"`
	CurrentPage int            `json:"current_page"`
	LastPage    int            `json:"last_page"`
}

// NewPostResponse converts a post model into a DTO.
func NewPostResponse(post models.Post) PostResponse {
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Author:    post.Author,
		Category:  post.Category,
		Status:    post.Status,
		Content:   post.Content,
		IsPinned:  post.IsPinned,
		PinnedAt:  post.PinnedAt,
		PinnedBy:  post.PinnedBy,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}
