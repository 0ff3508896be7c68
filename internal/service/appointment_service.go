package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/navalhaclub/loyalty-api/internal/model"
)

// AppointmentRepositoryInterface defines the interface for appointment data access.
type AppointmentRepositoryInterface interface {
	Insert(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]model.Appointment, error)
	ListByContact(ctx context.Context, email, phone string) ([]model.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (bool, error)
	UpdateRating(ctx context.Context, id string, rating int, review string) (bool, error)
}

// appointmentTransitions mirrors the order state machine for bookings.
// completed and cancelled are terminal.
var appointmentTransitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentScheduled: {model.AppointmentConfirmed, model.AppointmentCancelled},
	model.AppointmentConfirmed: {model.AppointmentCompleted, model.AppointmentCancelled},
	model.AppointmentCompleted: {},
	model.AppointmentCancelled: {},
}

// AppointmentService manages bookings for customers and guests.
type AppointmentService struct {
	repo AppointmentRepositoryInterface
}

// NewAppointmentService creates a new AppointmentService.
func NewAppointmentService(repo AppointmentRepositoryInterface) *AppointmentService {
	return &AppointmentService{repo: repo}
}

// Create books a new appointment in scheduled state.
func (s *AppointmentService) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	appt := &model.Appointment{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Service:       model.ServiceType(req.Service),
		Date:          req.Date,
		Time:          req.Time,
		Status:        model.AppointmentScheduled,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, appt); err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return appt, nil
}

// ListByUser returns all appointments of a registered customer.
func (s *AppointmentService) ListByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Search finds appointments by contact details, for guests without an account.
// At least one of email or phone must be given.
func (s *AppointmentService) Search(ctx context.Context, email, phone string) ([]model.Appointment, error) {
	if email == "" && phone == "" {
		return nil, ErrInvalidRequest
	}
	return s.repo.ListByContact(ctx, email, phone)
}

// UpdateStatus moves an appointment through its lifecycle.
// Returns ErrInvalidStatusTransition for backwards or terminal moves.
func (s *AppointmentService) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}

	allowed := false
	for _, next := range appointmentTransitions[appt.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	if !updated {
		return nil, ErrAppointmentNotFound
	}

	appt.Status = status
	return appt, nil
}

// Rate attaches a rating and optional review to a completed appointment.
// Returns ErrAppointmentNotCompleted for any other state.
func (s *AppointmentService) Rate(ctx context.Context, id string, rating int, review string) (*model.Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.Status != model.AppointmentCompleted {
		return nil, ErrAppointmentNotCompleted
	}

	updated, err := s.repo.UpdateRating(ctx, id, rating, review)
	if err != nil {
		return nil, fmt.Errorf("update appointment rating: %w", err)
	}
	if !updated {
		return nil, ErrAppointmentNotFound
	}

	appt.Rating = rating
	appt.Review = review
	return appt, nil
}
