package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/navalhaclub/loyalty-api/internal/model"
)

// AppointmentRepository provides data access for appointments using pgx.
type AppointmentRepository struct {
	pool PoolInterface
}

// NewAppointmentRepository creates a new AppointmentRepository with the given pool.
func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// NewAppointmentRepositoryWithPool creates a new AppointmentRepository with a custom pool interface.
// This is primarily used for testing.
func NewAppointmentRepositoryWithPool(pool PoolInterface) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

const appointmentColumns = `id, COALESCE(user_id, ''), service, date, time, status,
	customer_name, customer_email, customer_phone, COALESCE(rating, 0), COALESCE(review, ''), created_at`

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID, &a.UserID, &a.Service, &a.Date, &a.Time, &a.Status,
		&a.CustomerName, &a.CustomerEmail, &a.CustomerPhone,
		&a.Rating, &a.Review, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Insert persists a new appointment.
func (r *AppointmentRepository) Insert(ctx context.Context, appt *model.Appointment) error {
	query := `INSERT INTO appointments
		(id, user_id, service, date, time, status, customer_name, customer_email, customer_phone, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		appt.ID, appt.UserID, appt.Service, appt.Date, appt.Time, appt.Status,
		appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone, appt.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

// GetByID retrieves an appointment by its ID.
// Returns nil, nil if not found (service layer handles this).
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id %s: %w", id, err)
	}
	return appt, nil
}

// ListByUser returns a registered customer's appointments, upcoming first.
func (r *AppointmentRepository) ListByUser(ctx context.Context, userID string) ([]model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE user_id = $1 ORDER BY date DESC, time DESC`

	return r.list(ctx, query, userID)
}

// ListByContact returns appointments matching an email or phone, for guests.
func (r *AppointmentRepository) ListByContact(ctx context.Context, email, phone string) ([]model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments
		WHERE ($1 <> '' AND lower(customer_email) = lower($1))
		   OR ($2 <> '' AND regexp_replace(customer_phone, '\D', '', 'g') = regexp_replace($2, '\D', '', 'g'))
		ORDER BY date DESC, time DESC`

	return r.list(ctx, query, email, phone)
}

// UpdateStatus sets the lifecycle status of an appointment.
// Returns false when the appointment doesn't exist.
func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (bool, error) {
	query := `UPDATE appointments SET status = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return false, fmt.Errorf("update status for appointment %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateRating attaches a rating and review to an appointment.
// Returns false when the appointment doesn't exist.
func (r *AppointmentRepository) UpdateRating(ctx context.Context, id string, rating int, review string) (bool, error) {
	query := `UPDATE appointments SET rating = $2, review = NULLIF($3, '') WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, rating, review)
	if err != nil {
		return false, fmt.Errorf("update rating for appointment %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AppointmentRepository) list(ctx context.Context, query string, args ...any) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	appointments := []model.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments rows: %w", err)
	}
	return appointments, nil
}
