package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bulletin-app/bulletin-api/internal/models"
)

// ActivityLogFilter narrows activity log queries. Action matches by substring,
// mirroring how the audit trail is browsed (e.g. "post." finds every post event).
type ActivityLogFilter struct {
	Action      string
	SubjectType string
	UserID      *uint
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PerPage     int
}

// ActorActionCount aggregates actions per actor-name snapshot.
type ActorActionCount struct {
	UserName    string
	ActionCount int64
}

// ActivityLogRepository persists and queries the append-only audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
	ListForSubject(ctx context.Context, subjectType string, subjectID uint) ([]models.ActivityLog, error)
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountActionSince(ctx context.Context, action string, since time.Time) (int64, error)
	TopActors(ctx context.Context, since time.Time, limit int) ([]ActorActionCount, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ActivityLog{})

	if filter.Action != "" {
		query = query.Where("action LIKE ?", "%"+strings.TrimSpace(filter.Action)+"%")
	}

	if filter.SubjectType != "" {
		query = query.Where("subject_type = ?", filter.SubjectType)
	}

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}

	if filter.DateTo != nil {
		query = query.Where("created_at < ?", *filter.DateTo)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PerPage > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PerPage
		query = query.Offset(offset).Limit(filter.PerPage)
	}

	var entries []models.ActivityLog
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) ListForSubject(ctx context.Context, subjectType string, subjectID uint) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("subject_type = ?", subjectType).
		Where("subject_id = ?", subjectID).
		Order("created_at DESC").
		Find(&entries).Error
	return entries, err
}

func (r *activityLogRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 20
	}

	var entries []models.ActivityLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *activityLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *activityLogRepository) CountActionSince(ctx context.Context, action string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Where("action = ?", action).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (r *activityLogRepository) TopActors(ctx context.Context, since time.Time, limit int) ([]ActorActionCount, error) {
	if limit <= 0 {
		limit = 5
	}

	var actors []ActorActionCount
	err := r.db.WithContext(ctx).
		Model(&models.ActivityLog{}).
		Select("user_name, COUNT(*) AS action_count").
		Where("created_at >= ?", since).
		Where("user_id IS NOT NULL").
		Group("user_name").
		Order("action_count DESC").
		Limit(limit).
		Scan(&actors).Error
	return actors, err
}

func (r *activityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityLog{})
	return result.RowsAffected, result.Error
}
