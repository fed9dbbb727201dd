package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/service"
	"github.com/bulletin-app/bulletin-api/internal/utils"
)

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register wires the auth routes flat under the base group. Account lookup
// and logout need a valid token; everything else is public. The throttle runs
// on every auth route, attached per route so it never touches sibling routes
// on the shared group.
func (h *AuthHandler) Register(router fiber.Router, throttle, authRequired fiber.Handler) {
	router.Post("/register", throttle, h.register)
	router.Post("/login", throttle, h.login)
	router.Post("/forgot-password", throttle, h.forgotPassword)

	router.Get("/me", throttle, authRequired, h.me)
	router.Post("/logout", throttle, authRequired, h.logout)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Register(c.Context(), payload, requestMeta(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrEmailTaken):
			return utils.SendError(c, fiber.StatusUnprocessableEntity, "This email is already registered.")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to register user")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to register user")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "account registered", result)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var payload dto.LoginRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Login(c.Context(), payload, requestMeta(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrInvalidCredentials):
			return utils.SendError(c, fiber.StatusUnauthorized, "Invalid credentials")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to log in")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to log in")
		}
	}

	return utils.SendSuccess(c, "logged in", result)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	if err := h.service.Logout(c.Context(), bearerTokenFromContext(c), actorFromContext(c), requestMeta(c)); err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to log out")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to log out")
	}

	return utils.SendSuccess(c, "logged out", nil)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	user, err := h.service.Me(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusUnauthorized, "account no longer exists")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load current user")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load current user")
	}

	return utils.SendSuccess(c, "current user", user)
}

func (h *AuthHandler) forgotPassword(c *fiber.Ctx) error {
	var payload dto.ForgotPasswordRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.ForgotPassword(c.Context(), payload, requestMeta(c)); err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrUserNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "Email not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to reset password")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to reset password")
		}
	}

	return utils.SendSuccess(c, "password updated successfully", nil)
}
