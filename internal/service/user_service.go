package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/bulletin-app/bulletin-api/internal/auth"
	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/models"
	"github.com/bulletin-app/bulletin-api/internal/repository"
)

// User management errors surfaced to the handler boundary.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrCannotDeleteSelf = errors.New("cannot delete own account")
)

const defaultUserPageSize = 10

// UserService orchestrates admin user management use cases.
type UserService interface {
	List(ctx context.Context, query dto.ListQuery) (dto.UserListResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	Create(ctx context.Context, payload dto.UserCreateRequest, actor *Actor, meta RequestMeta) (dto.UserResponse, error)
	Update(ctx context.Context, id uint, payload dto.UserUpdateRequest, actor *Actor, meta RequestMeta) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actor *Actor, meta RequestMeta) error
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	hasher    *auth.PasswordHasher
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo repository.UserRepository, validator *validator.Validate, hasher *auth.PasswordHasher, activity ActivityRecorder, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		hasher:    hasher,
		activity:  activity,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) List(ctx context.Context, query dto.ListQuery) (dto.UserListResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.UserListResponse{}, err
	}

	perPage := query.PerPage
	if perPage <= 0 {
		perPage = defaultUserPageSize
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}

	from, to, err := parseDateRange(query.DateFrom, query.DateTo)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	filter := repository.UserFilter{
		Search:    strings.TrimSpace(query.Search),
		Role:      query.Role,
		DateFrom:  from,
		DateTo:    to,
		SortOrder: query.SortOrder,
		Page:      page,
		PerPage:   perPage,
	}

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.NewUserResponse(user))
	}

	return dto.UserListResponse{
		Data:        responses,
		Total:       total,
		CurrentPage: page,
		LastPage:    dto.LastPage(total, perPage),
	}, nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, payload dto.UserCreateRequest, actor *Actor, meta RequestMeta) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	taken, err := s.repo.EmailTaken(ctx, email, 0)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if taken {
		return dto.UserResponse{}, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	user := models.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    email,
		Password: hashed,
		Role:     payload.Role,
	}

	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.activity.LogUser(ctx, "created", user, actor, nil, meta)

	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id uint, payload dto.UserUpdateRequest, actor *Actor, meta RequestMeta) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	taken, err := s.repo.EmailTaken(ctx, email, id)
	if err != nil {
		return dto.UserResponse{}, err
	}
	if taken {
		return dto.UserResponse{}, ErrEmailTaken
	}

	updates := map[string]interface{}{
		"name":  strings.TrimSpace(payload.Name),
		"email": email,
		"role":  payload.Role,
	}

	changedFields := make([]string, 0, len(updates))
	if existing.Name != updates["name"] {
		changedFields = append(changedFields, "name")
	}
	if existing.Email != updates["email"] {
		changedFields = append(changedFields, "email")
	}
	roleChanged := existing.Role != payload.Role
	if roleChanged {
		changedFields = append(changedFields, "role")
	}

	updated, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	if roleChanged {
		s.activity.LogUser(ctx, "role_changed", updated, actor, map[string]interface{}{
			"old_role": existing.Role,
			"new_role": updated.Role,
		}, meta)
	} else if len(changedFields) > 0 {
		s.activity.LogUser(ctx, "updated", updated, actor, map[string]interface{}{
			"changed_fields": changedFields,
		}, meta)
	}

	return dto.NewUserResponse(updated), nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor *Actor, meta RequestMeta) error {
	// The self-delete guard is independent of role: even an admin cannot
	// remove their own account.
	if actor != nil && actor.ID == id {
		return ErrCannotDeleteSelf
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.activity.LogUser(ctx, "deleted", user, actor, nil, meta)

	return nil
}
