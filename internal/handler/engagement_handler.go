package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edulens/engagement-api/internal/analytics"
	"github.com/edulens/engagement-api/internal/dto"
	"github.com/edulens/engagement-api/internal/service"
	"github.com/edulens/engagement-api/internal/utils"
)

// defaultSummaryWindow is used when a summary request names no explicit
// window.
const defaultSummaryWindow = 90 * 24 * time.Hour

// EngagementHandler exposes the engagement scoring endpoints.
type EngagementHandler struct {
	service  service.EngagementService
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewEngagementHandler creates a new handler instance.
func NewEngagementHandler(service service.EngagementService, validate *validator.Validate, logger zerolog.Logger) *EngagementHandler {
	return &EngagementHandler{
		service:  service,
		validate: validate,
		logger:   logger.With().Str("component", "engagement_handler").Logger(),
	}
}

// Register attaches the engagement endpoints.
func (h *EngagementHandler) Register(router fiber.Router) {
	router.Post("/scores", h.computeScore)
	router.Get("/courses/:courseID/users/:userID/summary", h.courseSummary)
}

func (h *EngagementHandler) computeScore(c *fiber.Ctx) error {
	var req dto.EngagementScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Evaluate(c.Context(), req)
	if err != nil {
		if analytics.IsUnknownKind(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		logger := h.logger.Error().Err(err).
			Uint("course_id", req.CourseID).
			Str("kind", req.Kind).
			Str("indicator", req.Indicator)
		if analytics.IsConfigError(err) {
			logger.Msg("scoring configuration defect")
			return utils.SendError(c, fiber.StatusInternalServerError, "scoring configuration error")
		}
		logger.Msg("failed to evaluate engagement score")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to evaluate engagement score")
	}

	return utils.SendSuccess(c, "engagement score evaluated", response)
}

func (h *EngagementHandler) courseSummary(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}
	userID, err := parseUintParam(c, "userID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	window, err := parseWindow(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	summary, err := h.service.CourseSummary(c.Context(), courseID, userID, window)
	if err != nil {
		h.logger.Error().Err(err).
			Uint("course_id", courseID).
			Uint("user_id", userID).
			Msg("failed to build course engagement summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build engagement summary")
	}

	return utils.SendSuccess(c, "engagement summary retrieved", summary)
}

func parseWindow(c *fiber.Ctx) (analytics.Window, error) {
	end := time.Now().UTC()
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return analytics.Window{}, fiber.NewError(fiber.StatusBadRequest, "end must be RFC3339")
		}
		end = parsed
	}

	start := end.Add(-defaultSummaryWindow)
	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return analytics.Window{}, fiber.NewError(fiber.StatusBadRequest, "start must be RFC3339")
		}
		start = parsed
	}

	if !end.After(start) {
		return analytics.Window{}, fiber.NewError(fiber.StatusBadRequest, "end must be after start")
	}

	return analytics.Window{Start: start, End: end}, nil
}
