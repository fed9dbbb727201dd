package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/models"
	"github.com/bulletin-app/bulletin-api/internal/observability"
	"github.com/bulletin-app/bulletin-api/internal/repository"
)

// Actor is the authenticated identity performing an action. A nil *Actor
// means the action was system-initiated or anonymous.
type Actor struct {
	ID   uint
	Name string
	Role string
}

// RequestMeta carries the caller details snapshotted onto every audit entry.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// ActivityEntry captures the details required to persist one audit entry.
type ActivityEntry struct {
	Actor       *Actor
	Action      string
	Description string
	SubjectType string
	SubjectID   *uint
	Properties  map[string]interface{}
	Request     RequestMeta
}

// ActivityRecorder appends audit entries. Record is fire and forget: a failed
// write is logged as a warning and never surfaces to the caller, so the
// business operation it documents always stands.
type ActivityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry)
	LogAuth(ctx context.Context, action string, user *models.User, properties map[string]interface{}, meta RequestMeta)
	LogPost(ctx context.Context, action string, post models.Post, actor *Actor, extra map[string]interface{}, meta RequestMeta)
	LogUser(ctx context.Context, action string, target models.User, actor *Actor, extra map[string]interface{}, meta RequestMeta)
	LogExport(ctx context.Context, exportType string, filters map[string]interface{}, actor *Actor, meta RequestMeta)
}

// ActivityService exposes the recorder plus the audit query surface.
type ActivityService interface {
	ActivityRecorder
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
	ListForSubject(ctx context.Context, subjectType string, subjectID uint) ([]dto.ActivityResponse, error)
	ListRecent(ctx context.Context, limit int) ([]dto.ActivityResponse, error)
	Stats(ctx context.Context, timeRange string) (dto.ActivityStatsResponse, error)
	Cleanup(ctx context.Context, days int, actor *Actor, meta RequestMeta) (dto.CleanupResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
	now    func() time.Time
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
		now:    time.Now,
	}
}

func (s *activityService) Record(ctx context.Context, entry ActivityEntry) {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		s.logger.Warn().Msg("dropping activity entry without action")
		return
	}

	model := models.ActivityLog{
		Action:      action,
		Description: entry.Description,
		SubjectType: entry.SubjectType,
		SubjectID:   entry.SubjectID,
		Properties:  toJSONMap(entry.Properties),
		IPAddress:   entry.Request.IP,
		UserAgent:   entry.Request.UserAgent,
	}

	if entry.Actor != nil {
		id := entry.Actor.ID
		model.UserID = &id
		model.UserName = entry.Actor.Name
		model.UserRole = entry.Actor.Role
	} else if !strings.HasPrefix(action, "auth.") {
		model.UserName = "System"
		model.UserRole = "system"
	}

	if err := s.repo.Create(ctx, &model); err != nil {
		observability.AuditFailures().Inc()
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to persist activity log entry")
		return
	}

	observability.AuditEntries().WithLabelValues(actionNamespace(action)).Inc()
}

var postActionDescriptions = map[string]string{
	"created":  "created post",
	"updated":  "updated post",
	"deleted":  "deleted post",
	"pinned":   "pinned post",
	"unpinned": "unpinned post",
}

func (s *activityService) LogPost(ctx context.Context, action string, post models.Post, actor *Actor, extra map[string]interface{}, meta RequestMeta) {
	verb, ok := postActionDescriptions[action]
	if !ok {
		verb = action
	}

	properties := map[string]interface{}{
		"title":    post.Title,
		"category": post.Category,
		"status":   post.Status,
	}
	for key, value := range extra {
		properties[key] = value
	}

	id := post.ID
	s.Record(ctx, ActivityEntry{
		Actor:       actor,
		Action:      "post." + action,
		Description: fmt.Sprintf("%s '%s'", verb, post.Title),
		SubjectType: "post",
		SubjectID:   &id,
		Properties:  properties,
		Request:     meta,
	})
}

var userActionDescriptions = map[string]string{
	"created":      "created user account for",
	"updated":      "updated user",
	"deleted":      "deleted user",
	"role_changed": "changed role for user",
}

func (s *activityService) LogUser(ctx context.Context, action string, target models.User, actor *Actor, extra map[string]interface{}, meta RequestMeta) {
	verb, ok := userActionDescriptions[action]
	if !ok {
		verb = action
	}

	properties := map[string]interface{}{
		"user_email": target.Email,
		"user_role":  target.Role,
	}
	for key, value := range extra {
		properties[key] = value
	}

	id := target.ID
	s.Record(ctx, ActivityEntry{
		Actor:       actor,
		Action:      "user." + action,
		Description: fmt.Sprintf("%s '%s'", verb, target.Name),
		SubjectType: "user",
		SubjectID:   &id,
		Properties:  properties,
		Request:     meta,
	})
}

var authActionDescriptions = map[string]string{
	"registered":            "registered a new account",
	"login":                 "logged in",
	"login_failed":          "failed login attempt",
	"logout":                "logged out",
	"password_changed":      "changed their password",
	"password_reset_failed": "failed password reset attempt",
}

func (s *activityService) LogAuth(ctx context.Context, action string, user *models.User, properties map[string]interface{}, meta RequestMeta) {
	verb, ok := authActionDescriptions[action]
	if !ok {
		verb = action
	}

	var actor *Actor
	var subjectID *uint
	subject := "Someone"
	if user != nil {
		actor = &Actor{ID: user.ID, Name: user.Name, Role: user.Role}
		id := user.ID
		subjectID = &id
		subject = user.Name
	}

	s.Record(ctx, ActivityEntry{
		Actor:       actor,
		Action:      "auth." + action,
		Description: subject + " " + verb,
		SubjectType: "auth",
		SubjectID:   subjectID,
		Properties:  properties,
		Request:     meta,
	})
}

func (s *activityService) LogExport(ctx context.Context, exportType string, filters map[string]interface{}, actor *Actor, meta RequestMeta) {
	s.Record(ctx, ActivityEntry{
		Actor:       actor,
		Action:      "system.export",
		Description: fmt.Sprintf("Exported %s data to PDF", exportType),
		SubjectType: "export",
		Properties: map[string]interface{}{
			"export_type": exportType,
			"filters":     filters,
		},
		Request: meta,
	})
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	filter := repository.ActivityLogFilter{
		Action:      strings.TrimSpace(req.Action),
		SubjectType: strings.TrimSpace(req.SubjectType),
		Page:        page,
		PerPage:     perPage,
	}
	if req.UserID > 0 {
		userID := req.UserID
		filter.UserID = &userID
	}

	from, to, err := parseDateRange(req.DateFrom, req.DateTo)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}
	filter.DateFrom = from
	filter.DateTo = to

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	return dto.ActivityListResponse{
		Data:        responses,
		Total:       total,
		CurrentPage: page,
		LastPage:    dto.LastPage(total, perPage),
	}, nil
}

func (s *activityService) ListForSubject(ctx context.Context, subjectType string, subjectID uint) ([]dto.ActivityResponse, error) {
	entries, err := s.repo.ListForSubject(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	return responses, nil
}

func (s *activityService) ListRecent(ctx context.Context, limit int) ([]dto.ActivityResponse, error) {
	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	return responses, nil
}

func (s *activityService) Stats(ctx context.Context, timeRange string) (dto.ActivityStatsResponse, error) {
	now := s.now()
	var since time.Time
	switch timeRange {
	case "today":
		since = startOfDay(now)
	case "week":
		since = startOfWeek(now)
	case "month":
		since = startOfMonth(now)
	default:
		timeRange = "30_days"
		since = now.AddDate(0, 0, -30)
	}

	stats := dto.ActivityStatsResponse{TimeRange: timeRange}

	var err error
	if stats.TotalActions, err = s.repo.CountSince(ctx, since); err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	actionCounts := []struct {
		action string
		target *int64
	}{
		{"post.created", &stats.PostsCreated},
		{"post.updated", &stats.PostsUpdated},
		{"post.deleted", &stats.PostsDeleted},
		{"user.created", &stats.UsersCreated},
		{"auth.login", &stats.Logins},
		{"auth.login_failed", &stats.FailedLogins},
	}
	for _, count := range actionCounts {
		if *count.target, err = s.repo.CountActionSince(ctx, count.action, since); err != nil {
			return dto.ActivityStatsResponse{}, err
		}
	}

	actors, err := s.repo.TopActors(ctx, since, 5)
	if err != nil {
		return dto.ActivityStatsResponse{}, err
	}

	stats.MostActiveUsers = make([]dto.ActorCount, 0, len(actors))
	for _, actor := range actors {
		stats.MostActiveUsers = append(stats.MostActiveUsers, dto.ActorCount{
			UserName:    actor.UserName,
			ActionCount: actor.ActionCount,
		})
	}

	return stats, nil
}

func (s *activityService) Cleanup(ctx context.Context, days int, actor *Actor, meta RequestMeta) (dto.CleanupResponse, error) {
	if days <= 0 {
		days = 90
	}

	cutoff := s.now().AddDate(0, 0, -days)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return dto.CleanupResponse{}, err
	}

	s.Record(ctx, ActivityEntry{
		Actor:       actor,
		Action:      "system.cleanup",
		Description: fmt.Sprintf("Cleaned up activity logs older than %d days", days),
		SubjectType: "system",
		Properties: map[string]interface{}{
			"deleted_count": deleted,
			"days_kept":     days,
		},
		Request: meta,
	})

	return dto.CleanupResponse{DeletedCount: deleted, DaysKept: days}, nil
}

func toJSONMap(properties map[string]interface{}) datatypes.JSONMap {
	if properties == nil {
		return datatypes.JSONMap{}
	}

	converted := datatypes.JSONMap{}
	for key, value := range properties {
		converted[key] = value
	}
	return converted
}

func actionNamespace(action string) string {
	if idx := strings.IndexByte(action, '.'); idx > 0 {
		return action[:idx]
	}
	return action
}
