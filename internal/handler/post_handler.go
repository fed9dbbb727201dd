package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/bulletin-app/bulletin-api/internal/dto"
	"github.com/bulletin-app/bulletin-api/internal/service"
	"github.com/bulletin-app/bulletin-api/internal/utils"
)

// PostHandler exposes the post endpoints.
type PostHandler struct {
	service service.PostService
	export  service.ExportService
	kpi     service.KPIService
	logger  zerolog.Logger
}

// NewPostHandler constructs the handler.
func NewPostHandler(service service.PostService, export service.ExportService, kpi service.KPIService, logger zerolog.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		export:  export,
		kpi:     kpi,
		logger:  logger.With().Str("component", "post_handler").Logger(),
	}
}

// Register wires the post routes. Reads are public; mutations sit behind the
// supplied gates. The static /kpi and /export paths must precede the /:id
// parameter routes.
func (h *PostHandler) Register(router fiber.Router, authRequired, editorOnly, adminOnly fiber.Handler) {
	router.Get("", h.list)
	router.Get("/kpi", h.postKPI)
	router.Get("/export", authRequired, adminOnly, h.exportPDF)
	router.Get("/:id", h.get)

	router.Post("", authRequired, editorOnly, h.create)
	router.Put("/:id", authRequired, editorOnly, h.update)
	router.Delete("/:id", authRequired, adminOnly, h.remove)

	router.Post("/:id/pin", authRequired, h.pin)
	router.Post("/:id/unpin", authRequired, h.unpin)
}

func (h *PostHandler) list(c *fiber.Ctx) error {
	var query dto.ListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.List(c.Context(), query)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list posts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list posts")
	}

	return utils.SendSuccess(c, "posts retrieved", result)
}

func (h *PostHandler) get(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	post, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load post")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load post")
	}

	return utils.SendSuccess(c, "post retrieved", post)
}

func (h *PostHandler) create(c *fiber.Ctx) error {
	var payload dto.PostCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.service.Create(c.Context(), payload, actorFromContext(c), requestMeta(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to create post")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create post")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Post created successfully!", post)
}

func (h *PostHandler) update(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	var payload dto.PostUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	post, err := h.service.Update(c.Context(), id, payload, actorFromContext(c), requestMeta(c))
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendValidationError(c, err)
		case errors.Is(err, service.ErrPostNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to update post")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update post")
		}
	}

	return utils.SendSuccess(c, "Post updated successfully", post)
}

func (h *PostHandler) remove(c *fiber.Ctx) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	if err := h.service.Delete(c.Context(), id, actorFromContext(c), requestMeta(c)); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete post")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete post")
	}

	return utils.SendSuccess(c, "Post deleted successfully", nil)
}

func (h *PostHandler) pin(c *fiber.Ctx) error {
	return h.setPinned(c, true)
}

func (h *PostHandler) unpin(c *fiber.Ctx) error {
	return h.setPinned(c, false)
}

func (h *PostHandler) setPinned(c *fiber.Ctx, pinned bool) error {
	id, err := parseIDParam(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid post id")
	}

	post, err := h.service.SetPinned(c.Context(), id, pinned, actorFromContext(c), requestMeta(c))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "post not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to change pin state")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to change pin state")
	}

	message := "Post pinned"
	if !pinned {
		message = "Post unpinned"
	}
	return utils.SendSuccess(c, message, post)
}

func (h *PostHandler) exportPDF(c *fiber.Ctx) error {
	var query dto.ListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	document, filename, err := h.export.ExportPosts(c.Context(), query, actorFromContext(c), requestMeta(c))
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export posts")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export posts")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(document)
}

func (h *PostHandler) postKPI(c *fiber.Ctx) error {
	var req dto.KPIRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.kpi.PostKPI(c.Context(), req)
	if err != nil {
		if isValidationError(err) {
			return utils.SendValidationError(c, err)
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute post kpi")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute post kpi")
	}

	return utils.SendSuccess(c, "post kpi computed", result)
}
