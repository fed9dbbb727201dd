package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/models"
	"github.com/bulletin-app/bulletin-api/internal/repository"
)

// ErrPostNotFound indicates the requested post does not exist or was soft-deleted.
var ErrPostNotFound = errors.New("post not found")

const defaultPostPageSize = 10

// PostService orchestrates post management use cases.
type PostService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.PostListResponse, error)
	Get(ctx context.Context, id uint) (dto.PostResponse, error)
	Create(ctx context.Context, payload dto.PostCreateRequest, actor *Actor, meta RequestMeta) (dto.PostResponse, error)
	Update(ctx context.Context, id uint, payload dto.PostUpdateRequest, actor *Actor, meta RequestMeta) (dto.PostResponse, error)
	Delete(ctx context.Context, id uint, actor *Actor, meta RequestMeta) error
	SetPinned(ctx context.Context, id uint, pinned bool, actor *Actor, meta RequestMeta) (dto.PostResponse, error)
}

type postService struct {
	repo      repository.PostRepository
	validator *validator.Validate
	activity  ActivityRecorder
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPostService constructs the post service.
func NewPostService(repo repository.PostRepository, validator *validator.Validate, activity ActivityRecorder, logger zerolog.Logger) PostService {
	return &postService{
		repo:      repo,
		validator: validator,
		activity:  activity,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "post_service").Logger(),
		now:       time.Now,
	}
}

func (s *postService) List(ctx context.Context, query dto.ListQuery) (dto.PostListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.PostListResponse{}, err
	}

	perPage := query.PerPage
	if perPage <= 0 {
		perPage = defaultPostPageSize
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}

	from, to, err := parseDateRange(query.DateFrom, query.DateTo)
	if err != nil {
		return dto.PostListResponse{}, err
	}

	filter := repository.PostFilter{
		Search:    strings.TrimSpace(query.Search),
		Category:  strings.TrimSpace(query.Category),
		Status:    query.Status,
		DateFrom:  from,
		DateTo:    to,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Page:      page,
		PerPage:   perPage,
	}

	posts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.PostListResponse{}, err
	}

	responses := make([]dto.PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, dto.NewPostResponse(post))
	}

	return dto.PostListResponse{
		Data:        responses,
		Total:       total,
		CurrentPage: page,
		LastPage:    dto.LastPage(total, perPage),
	}, nil
}

func (s *postService) Get(ctx context.Context, id uint) (dto.PostResponse, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, ErrPostNotFound
		}
		return dto.PostResponse{}, err
	}

	return dto.NewPostResponse(post), nil
}

func (s *postService) Create(ctx context.Context, payload dto.PostCreateRequest, actor *Actor, meta RequestMeta) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}

	post := models.Post{
		Title:    strings.TrimSpace(payload.Title),
		Author:   strings.TrimSpace(payload.Author),
		Category: strings.TrimSpace(payload.Category),
		Status:   payload.Status,
		Content:  s.sanitizer.Sanitize(payload.Content),
	}

	if err := s.repo.Create(ctx, &post); err != nil {
		return dto.PostResponse{}, err
	}

	s.activity.LogPost(ctx, "created", post, actor, nil, meta)

	return dto.NewPostResponse(post), nil
}

func (s *postService) Update(ctx context.Context, id uint, payload dto.PostUpdateRequest, actor *Actor, meta RequestMeta) (dto.PostResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PostResponse{}, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, ErrPostNotFound
		}
		return dto.PostResponse{}, err
	}

	updates := map[string]interface{}{
		"title":    strings.TrimSpace(payload.Title),
		"author":   strings.TrimSpace(payload.Author),
		"category": strings.TrimSpace(payload.Category),
		"status":   payload.Status,
		"content":  s.sanitizer.Sanitize(payload.Content),
	}

	changedFields := make([]string, 0, len(updates))
	previous := map[string]interface{}{
		"title":    existing.Title,
		"author":   existing.Author,
		"category": existing.Category,
		"status":   existing.Status,
		"content":  existing.Content,
	}
	for field, value := range updates {
		if previous[field] != value {
			changedFields = append(changedFields, field)
		}
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, ErrPostNotFound
		}
		return dto.PostResponse{}, err
	}

	if len(changedFields) > 0 {
		s.activity.LogPost(ctx, "updated", updated, actor, map[string]interface{}{
			"changed_fields": changedFields,
		}, meta)
	}

	return dto.NewPostResponse(updated), nil
}

func (s *postService) Delete(ctx context.Context, id uint, actor *Actor, meta RequestMeta) error {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	s.activity.LogPost(ctx, "deleted", post, actor, nil, meta)

	return nil
}

func (s *postService) SetPinned(ctx context.Context, id uint, pinned bool, actor *Actor, meta RequestMeta) (dto.PostResponse, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, ErrPostNotFound
		}
		return dto.PostResponse{}, err
	}

	var pinnedAt *time.Time
	var pinnedBy *uint
	if pinned {
		now := s.now()
		pinnedAt = &now
		if actor != nil {
			actorID := actor.ID
			pinnedBy = &actorID
		}
	}

	updated, err := s.repo.SetPinned(ctx, id, pinned, pinnedBy, pinnedAt)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PostResponse{}, ErrPostNotFound
		}
		return dto.PostResponse{}, err
	}

	action := "pinned"
	if !pinned {
		action = "unpinned"
	}
	s.activity.LogPost(ctx, action, updated, actor, nil, meta)

	return dto.NewPostResponse(updated), nil
}
