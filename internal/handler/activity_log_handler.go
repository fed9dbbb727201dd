package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/service"
	"github.com/bulletin-app/bulletin-api/internal/utils"
)

// ActivityLogHandler exposes the audit trail endpoints.
type ActivityLogHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityLogHandler constructs the handler.
func NewActivityLogHandler(service service.ActivityService, logger zerolog.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_log_handler").Logger(),
	}
}

// Register wires the audit trail routes. Reads are open to any authenticated
// user; the retention purge is admin only.
func (h *ActivityLogHandler) Register(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/recent", h.recent)
	router.Get("/stats", h.stats)
	router.Get("/:type/:id", h.forSubject)
	router.Delete("/cleanup", adminOnly, h.cleanup)
}

func (h *ActivityLogHandler) list(c *fiber.Ctx) error {
	var req dto.ActivityListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.List(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity logs")
	}

	return utils.SendSuccess(c, "activity logs retrieved", result)
}

func (h *ActivityLogHandler) recent(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	entries, err := h.service.ListRecent(c.Context(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list recent activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list recent activity")
	}

	return utils.SendSuccess(c, "recent activity retrieved", entries)
}

func (h *ActivityLogHandler) stats(c *fiber.Ctx) error {
	timeRange := c.Query("time_range")

	stats, err := h.service.Stats(c.Context(), timeRange)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute activity stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute activity stats")
	}

	return utils.SendSuccess(c, "activity stats computed", stats)
}

func (h *ActivityLogHandler) forSubject(c *fiber.Ctx) error {
	subjectType := c.Params("type")
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}

	entries, err := h.service.ListForSubject(c.Context(), subjectType, id)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list subject activity")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list subject activity")
	}

	return utils.SendSuccess(c, "subject activity retrieved", entries)
}

func (h *ActivityLogHandler) cleanup(c *fiber.Ctx) error {
	days, err := parseQueryInt(c, "days")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
	}

	result, err := h.service.Cleanup(c.Context(), days, actorFromContext(c), requestMeta(c))
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to clean up activity logs")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clean up activity logs")
	}

	return utils.SendSuccess(c, "Old activity logs cleaned up", result)
}
