package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bulletin-app/bulletin-api/internal/models"
)

// PostFilter narrows post listing queries. Filters combine conjunctively;
// the search term alone fans out with OR across the text columns.
type PostFilter struct {
	Search    string
	Category  string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// PostRepository exposes persistence helpers for posts.
type PostRepository interface {
	List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	ListAll(ctx context.Context, filter PostFilter, limit int) ([]models.Post, error)
	GetByID(ctx context.Context, id uint) (models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Post, error)
	SetPinned(ctx context.Context, id uint, pinned bool, pinnedBy *uint, pinnedAt *time.Time) (models.Post, error)
	SoftDelete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository constructs the post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// sortColumns maps the accepted sort_by values onto real columns. Anything
// else falls back to creation date.
var sortColumns = map[string]string{
	"date":   "created_at",
	"title":  "title",
	"author": "author",
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("is_pinned DESC, pinned_at DESC").Order(orderClause(filter))

	if filter.PerPage > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PerPage
		query = query.Limit(filter.PerPage).Offset(offset)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) ListAll(ctx context.Context, filter PostFilter, limit int) ([]models.Post, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter)
	query = query.Order("is_pinned DESC, pinned_at DESC").Order(orderClause(filter))
	if limit > 0 {
		query = query.Limit(limit)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) applyFilter(query *gorm.DB, filter PostFilter) *gorm.DB {
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

	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}

	if filter.DateTo != nil {
		query = query.Where("created_at < ?", *filter.DateTo)
	}

	return query
}

func orderClause(filter PostFilter) string {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}

	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	return column + " " + direction
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return models.Post{}, err
	}

	return post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Post, error) {
	tx := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id)
	result := tx.Updates(updates)
	if result.Error != nil {
		return models.Post{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Post{}, gorm.ErrRecordNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *postRepository) SetPinned(ctx context.Context, id uint, pinned bool, pinnedBy *uint, pinnedAt *time.Time) (models.Post, error) {
	updates := map[string]interface{}{
		"is_pinned": pinned,
		"pinned_at": pinnedAt,
		"pinned_by": pinnedBy,
	}

	return r.Update(ctx, id, updates)
}

func (r *postRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
