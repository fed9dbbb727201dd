package dto

import (
	"time"

	"github.com/bulletin-app/bulletin-api/internal/models"
)

// ActivityListRequest defines filters for listing activity log entries.
type ActivityListRequest struct {
	Action      string `query:"action"`
	SubjectType string `query:"subject_type"`
	UserID      uint   `query:"user_id"`
	DateFrom    string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo      string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	PerPage     int    `query:"per_page" validate:"omitempty,min=1,max=200"`
	Page        int    `query:"page" validate:"omitempty,min=1"`
}

// ActivityResponse serializes an activity log entry.
type ActivityResponse struct {
	ID          uint                   `json:"id"`
	UserID      *uint                  `json:"user_id"`
	UserName    string                 `json:"user_name"`
	UserRole    string                 `json:"user_role"`
	Action      string                 `json:"action"`
	Description string                 `json:"description"`
	SubjectType string                 `json:"subject_type"`
	SubjectID   *uint                  `json:"subject_id"`
	Properties  map[string]interface{} `json:"properties"`
	IPAddress   string                 `json:"ip_address"`
	UserAgent   string                 `json:"user_agent"`
	CreatedAt   time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a paginated page of activity log entries.
type ActivityListResponse struct {
	Data        []ActivityResponse `json:"data"`
	Total       int64              `json:"total"`
	CurrentPage int                `json:"current_page"`
	LastPage    int                `json:"last_page"`
}

// ActorCount ranks an actor by the number of actions recorded against their
// name snapshot.
type ActorCount struct {
	UserName    string `json:"user_name"`
	ActionCount int64  `json:"action_count"`
}

// ActivityStatsResponse summarises audit activity within a time range.
type ActivityStatsResponse struct {
	TimeRange       string       `json:"time_range"`
	TotalActions    int64        `json:"total_actions"`
	PostsCreated    int64        `json:"posts_created"`
	PostsUpdated    int64        `json:"posts_updated"`
	PostsDeleted    int64        `json:"posts_deleted"`
	UsersCreated    int64        `json:"users_created"`
	Logins          int64        `json:"logins"`
	FailedLogins    int64        `json:"failed_logins"`
	MostActiveUsers []ActorCount `json:"most_active_users"`
}

// CleanupResponse reports the outcome of a retention purge.
type CleanupResponse struct {
	DeletedCount int64 `json:"deleted_count"`
	DaysKept     int   `json:"days_kept"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	properties := map[string]interface{}(entry.Properties)
	if properties == nil {
		properties = map[string]interface{}{}
	}

	return ActivityResponse{
		ID:          entry.ID,
		UserID:      entry.UserID,
		UserName:    entry.UserName,
		UserRole:    entry.UserRole,
		Action:      entry.Action,
		Description: entry.Description,
		SubjectType: entry.SubjectType,
		SubjectID:   entry.SubjectID,
		Properties:  properties,
		IPAddress:   entry.IPAddress,
		UserAgent:   entry.UserAgent,
		CreatedAt:   entry.CreatedAt,
	}
}
