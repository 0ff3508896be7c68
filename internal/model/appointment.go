package model

import "time"

// ServiceType is a bookable barbershop service.
type ServiceType string

const (
	ServiceHaircut   ServiceType = "corte"
	ServiceBeard     ServiceType = "barba"
	ServiceCombo     ServiceType = "combo"
	ServiceTreatment ServiceType = "tratamento"
)

// AppointmentStatus is the lifecycle state of a booking.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment is a booking made by a registered customer or a guest.
// Guests are identified by contact details; UserID is empty for them.
type Appointment struct {
	ID            string            `json:"id"`
	UserID        string            `json:"user_id,omitempty"`
	Service       ServiceType       `json:"service"`
	Date          string            `json:"date"` // YYYY-MM-DD
	Time          string            `json:"time"` // HH:MM
	Status        AppointmentStatus `json:"status"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email"`
	CustomerPhone string            `json:"customer_phone"`
	Rating        int               `json:"rating,omitempty"`
	Review        string            `json:"review,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// CreateAppointmentRequest is the DTO for POST /api/appointments.
type CreateAppointmentRequest struct {
	UserID        string `json:"user_id" validate:"max=255"`
	Service       string `json:"service" validate:"required,oneof=corte barba combo tratamento"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required,datetime=15:04"`
	CustomerName  string `json:"customer_name" validate:"required,notblank,max=255"`
	CustomerEmail string `json:"customer_email" validate:"required,email,max=255"`
	CustomerPhone string `json:"customer_phone" validate:"max=30"`
}

// UpdateAppointmentStatusRequest is the DTO for PATCH /api/appointments/:id/status.
type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed completed cancelled"`
}

// RateAppointmentRequest is the DTO for PATCH /api/appointments/:id/rating.
type RateAppointmentRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review string `json:"review" validate:"max=500"`
}
