package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bulletin-app/bulletin-api/internal/models"
)

// KPIFilter narrows KPI aggregation queries. Status applies to posts, Role to
// users; the unused field is ignored by the respective methods.
type KPIFilter struct {
	Search   string
	Category string
	Status   string
	Role     string
}

// KPISample is a lightweight row projection used for in-memory bucketing:
// the creation timestamp plus the grouping value (post status or user role).
type KPISample struct {
	CreatedAt time.Time
	Group     string `gorm:"column:group_value"`
}

// KPIRepository supplies windowed counts and row samples for KPI summaries.
// Windows are half-open intervals [start, end).
type KPIRepository interface {
	CountPosts(ctx context.Context, filter KPIFilter, start, end time.Time) (int64, error)
	ListPostSamples(ctx context.Context, filter KPIFilter, start, end time.Time) ([]KPISample, error)
	OldestPostCreatedAt(ctx context.Context, filter KPIFilter) (*time.Time, error)
	CountUsers(ctx context.Context, filter KPIFilter, start, end time.Time) (int64, error)
	ListUserSamples(ctx context.Context, filter KPIFilter, start, end time.Time) ([]KPISample, error)
	OldestUserCreatedAt(ctx context.Context, filter KPIFilter) (*time.Time, error)
}

type kpiRepository struct {
	db *gorm.DB
}

// NewKPIRepository constructs the KPI repository.
func NewKPIRepository(db *gorm.DB) KPIRepository {
	return &kpiRepository{db: db}
}

func (r *kpiRepository) postQuery(ctx context.Context, filter KPIFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Post{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ? OR LOWER(category) LIKE ?", like, like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	return query
}

func (r *kpiRepository) userQuery(ctx context.Context, filter KPIFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}

	return query
}

func (r *kpiRepository) CountPosts(ctx context.Context, filter KPIFilter, start, end time.Time) (int64, error) {
	var count int64
	err := r.postQuery(ctx, filter).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *kpiRepository) ListPostSamples(ctx context.Context, filter KPIFilter, start, end time.Time) ([]KPISample, error) {
	var samples []KPISample
	err := r.postQuery(ctx, filter).
		Select("created_at, status AS group_value").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Scan(&samples).Error
	return samples, err
}

func (r *kpiRepository) OldestPostCreatedAt(ctx context.Context, filter KPIFilter) (*time.Time, error) {
	var post models.Post
	err := r.postQuery(ctx, filter).Order("created_at ASC").First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &post.CreatedAt, nil
}

func (r *kpiRepository) CountUsers(ctx context.Context, filter KPIFilter, start, end time.Time) (int64, error) {
	var count int64
	err := r.userQuery(ctx, filter).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *kpiRepository) ListUserSamples(ctx context.Context, filter KPIFilter, start, end time.Time) ([]KPISample, error) {
	var samples []KPISample
	err := r.userQuery(ctx, filter).
		Select("created_at, role AS group_value").
		Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Scan(&samples).Error
	return samples, err
}

func (r *kpiRepository) OldestUserCreatedAt(ctx context.Context, filter KPIFilter) (*time.Time, error) {
	var user models.User
	err := r.userQuery(ctx, filter).Order("created_at ASC").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user.CreatedAt, nil
}
