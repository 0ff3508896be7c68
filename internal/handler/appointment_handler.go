package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/navalhaclub/loyalty-api/internal/model"
	"github.com/navalhaclub/loyalty-api/internal/service"
)

// AppointmentServiceInterface defines the interface for appointment business logic.
type AppointmentServiceInterface interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Appointment, error)
	Search(ctx context.Context, email, phone string) ([]model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error)
	Rate(ctx context.Context, id string, rating int, review string) (*model.Appointment, error)
}

// AppointmentHandler handles HTTP requests for bookings.
type AppointmentHandler struct {
	service   AppointmentServiceInterface
	validator *validator.Validate
}

// NewAppointmentHandler creates a new AppointmentHandler with the given service and validator.
func NewAppointmentHandler(svc AppointmentServiceInterface, v *validator.Validate) *AppointmentHandler {
	return &AppointmentHandler{service: svc, validator: v}
}

// Create handles POST /api/appointments requests.
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	var req model.CreateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	appt, err := h.service.Create(c.Context(), &req)
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("service", req.Service).
			Msg("failed to create appointment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(appt)
}

// ListByUser handles GET /api/appointments/user/:userId requests.
func (h *AppointmentHandler) ListByUser(c *fiber.Ctx) error {
	appointments, err := h.service.ListByUser(c.Context(), c.Params("userId"))
	if err != nil {
		log.Error().Err(err).Str("user_id", c.Params("userId")).Msg("failed to list appointments")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(appointments)
}

// Search handles GET /api/appointments/search?email=&phone= requests, used by
// guests who booked without an account.
func (h *AppointmentHandler) Search(c *fiber.Ctx) error {
	email := c.Query("email")
	phone := c.Query("phone")

	appointments, err := h.service.Search(c.Context(), email, phone)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: email or phone is required"})
		}
		log.Error().Err(err).Msg("failed to search appointments")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(appointments)
}

// UpdateStatus handles PATCH /api/appointments/:id/status requests.
func (h *AppointmentHandler) UpdateStatus(c *fiber.Ctx) error {
	var req model.UpdateAppointmentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	appt, err := h.service.UpdateStatus(c.Context(), c.Params("id"), model.AppointmentStatus(req.Status))
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "appointment not found"})
		}
		if errors.Is(err, service.ErrInvalidStatusTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "invalid status transition"})
		}
		log.Error().
			Err(err).
			Str("appointment_id", c.Params("id")).
			Str("status", req.Status).
			Msg("failed to update appointment status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(appt)
}

// Rate handles PATCH /api/appointments/:id/rating requests.
func (h *AppointmentHandler) Rate(c *fiber.Ctx) error {
	var req model.RateAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	appt, err := h.service.Rate(c.Context(), c.Params("id"), req.Rating, req.Review)
	if err != nil {
		if errors.Is(err, service.ErrAppointmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "appointment not found"})
		}
		if errors.Is(err, service.ErrAppointmentNotCompleted) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "appointment not completed"})
		}
		log.Error().Err(err).Str("appointment_id", c.Params("id")).Msg("failed to rate appointment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(appt)
}
