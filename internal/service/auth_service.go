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

// ErrInvalidCredentials covers both unknown email and wrong password: login
// failures are indistinguishable to the caller and to the audit trail.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles registration, login and the session lifecycle.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest, meta RequestMeta) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest, meta RequestMeta) (dto.AuthResponse, error)
	Logout(ctx context.Context, token string, actor *Actor, meta RequestMeta) error
	Me(ctx context.Context, userID uint) (dto.UserResponse, error)
	ForgotPassword(ctx context.Context, payload dto.ForgotPasswordRequest, meta RequestMeta) error
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	hasher    *auth.PasswordHasher
	tokens    *auth.TokenIssuer
	denylist  auth.TokenDenylist
	activity  ActivityRecorder
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service. The denylist may be nil, in
// which case logout only records the event without revoking the token.
func NewAuthService(
	users repository.UserRepository,
	validator *validator.Validate,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenIssuer,
	denylist auth.TokenDenylist,
	activity ActivityRecorder,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		users:     users,
		validator: validator,
		hasher:    hasher,
		tokens:    tokens,
		denylist:  denylist,
		activity:  activity,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest, meta RequestMeta) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	taken, err := s.users.EmailTaken(ctx, email, 0)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	if taken {
		return dto.AuthResponse{}, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	role := payload.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Name:     strings.TrimSpace(payload.Name),
		Email:    email,
		Password: hashed,
		Role:     role,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.activity.LogAuth(ctx, "registered", &user, nil, meta)

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest, meta RequestMeta) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))

	// The account is always resolved first, but a failed attempt is recorded
	// identically whether the email exists or the password is wrong: no actor
	// on the entry, attempted email in the properties. The audit trail must
	// not act as an account-existence oracle.
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) || !s.hasher.Verify(user.Password, payload.Password) {
		s.activity.LogAuth(ctx, "login_failed", nil, map[string]interface{}{"email": email}, meta)
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.activity.LogAuth(ctx, "login", &user, nil, meta)

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Logout(ctx context.Context, token string, actor *Actor, meta RequestMeta) error {
	if s.denylist != nil && token != "" {
		expiry, err := s.tokens.Expiry(token)
		if err != nil {
			s.logger.Warn().Err(err).Msg("could not determine token expiry, skipping revocation")
		} else if err := s.denylist.Revoke(ctx, token, expiry); err != nil {
			s.logger.Warn().Err(err).Msg("failed to revoke token")
		}
	}

	var user *models.User
	if actor != nil {
		user = &models.User{ID: actor.ID, Name: actor.Name, Role: actor.Role}
	}
	s.activity.LogAuth(ctx, "logout", user, nil, meta)

	return nil
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrUserNotFound
		}
		return dto.UserResponse{}, err
	}

	return dto.NewUserResponse(user), nil
}

func (s *authService) ForgotPassword(ctx context.Context, payload dto.ForgotPasswordRequest, meta RequestMeta) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.activity.LogAuth(ctx, "password_reset_failed", nil, map[string]interface{}{"email": email}, meta)
			return ErrUserNotFound
		}
		return err
	}

	hashed, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return err
	}

	if _, err := s.users.Update(ctx, user.ID, map[string]interface{}{"password": hashed}); err != nil {
		return err
	}

	s.activity.LogAuth(ctx, "password_changed", &user, nil, meta)

	return nil
}
