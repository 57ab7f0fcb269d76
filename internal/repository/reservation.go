package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pawcare-app/booking-engine/internal/model"
)

const uniqueViolationCode = "23505"

// ReservationRepository persists reservation rows. Mutations happen only
// inside the booking transaction, after loading the row with a lock, so two
// actors never race on the same reservation.
type ReservationRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, reservation *model.Reservation) error
	GetOwnedForUpdate(ctx context.Context, tx *sqlx.Tx, id string, identity model.Identity) (*model.Reservation, error)
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Reservation, error)
	FindBookedAt(ctx context.Context, tx *sqlx.Tx, identity model.Identity, instants []time.Time) (*time.Time, error)
	List(ctx context.Context, identity model.Identity, scope model.ListScope, status *model.ReservationStatus, now time.Time) ([]model.Reservation, error)
	UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, status model.ReservationStatus, cancelledAt *time.Time) error
}

type ReservationRepositoryImpl struct {
	db *DB
}

func NewReservationRepository(db *DB) *ReservationRepositoryImpl {
	return &ReservationRepositoryImpl{db: db}
}

const reservationColumns = `
	id, user_id, guest_id, location_id, service_type, service_option_key,
	service_name_en, service_name_ar, option_name_en, option_name_ar,
	room_type, starts_at, ends_at, status, cancelled_at,
	service_price, currency, owner_name, owner_phone,
	pet_name, pet_type, pet_age, pet_gender, comment,
	created_at, updated_at`

// Create inserts a reservation as part of the booking transaction. A unique
// violation on the booked-identity-instant index means the actor already
// holds a BOOKED reservation at that instant; it surfaces as a capacity
// conflict, the same way the in-transaction existence check does.
func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx *sqlx.Tx, reservation *model.Reservation) error {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationRepository.Create")
	defer seg.Close(nil)

	query := `
		INSERT INTO reservations (
			id, user_id, guest_id, location_id, service_type, service_option_key,
			service_name_en, service_name_ar, option_name_en, option_name_ar,
			room_type, starts_at, ends_at, status, cancelled_at,
			service_price, currency, owner_name, owner_phone,
			pet_name, pet_type, pet_age, pet_gender, comment,
			created_at, updated_at
		) VALUES (
			:id, :user_id, :guest_id, :location_id, :service_type, :service_option_key,
			:service_name_en, :service_name_ar, :option_name_en, :option_name_ar,
			:room_type, :starts_at, :ends_at, :status, :cancelled_at,
			:service_price, :currency, :owner_name, :owner_phone,
			:pet_name, :pet_type, :pet_age, :pet_gender, :comment,
			:created_at, :updated_at
		)
	`

	if _, err := tx.NamedExecContext(ctx, query, reservation); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			conflictErr := model.NewCapacityConflictError("you already have a booking", "")
			seg.Close(conflictErr)
			return conflictErr
		}
		seg.Close(err)
		return fmt.Errorf("failed to create reservation: %w", err)
	}
	return nil
}

// GetOwnedForUpdate loads a reservation scoped to the caller's identity with
// a row lock. Ownership is the filter itself: a reservation belonging to
// someone else is simply not found.
func (r *ReservationRepositoryImpl) GetOwnedForUpdate(ctx context.Context, tx *sqlx.Tx, id string, identity model.Identity) (*model.Reservation, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationRepository.GetOwnedForUpdate")
	defer seg.Close(nil)

	column := "user_id"
	if identity.IsGuest() {
		column = "guest_id"
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE id = $1
		AND %s = $2
		FOR UPDATE`, reservationColumns, column)

	var reservation model.Reservation
	if err := tx.GetContext(ctx, &reservation, query, id, identity.Key()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound := model.NewNotFoundError("reservation", id)
			seg.Close(notFound)
			return nil, notFound
		}
		seg.Close(err)
		return nil, fmt.Errorf("failed to load reservation %s: %w", id, err)
	}
	return &reservation, nil
}

// GetForUpdate loads a reservation with a row lock regardless of owner.
// Admin status transitions use it.
func (r *ReservationRepositoryImpl) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Reservation, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationRepository.GetForUpdate")
	defer seg.Close(nil)

	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE id = $1
		FOR UPDATE`, reservationColumns)

	var reservation model.Reservation
	if err := tx.GetContext(ctx, &reservation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound := model.NewNotFoundError("reservation", id)
			seg.Close(notFound)
			return nil, notFound
		}
		seg.Close(err)
		return nil, fmt.Errorf("failed to load reservation %s: %w", id, err)
	}
	return &reservation, nil
}

// FindBookedAt returns the earliest instant among instants at which the
// identity already holds a BOOKED reservation, or nil. Runs inside the
// booking transaction so the check and the insert are atomic.
func (r *ReservationRepositoryImpl) FindBookedAt(ctx context.Context, tx *sqlx.Tx, identity model.Identity, instants []time.Time) (*time.Time, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationRepository.FindBookedAt")
	defer seg.Close(nil)

	column := "user_id"
	if identity.IsGuest() {
		column = "guest_id"
	}
	query := fmt.Sprintf(`
		SELECT starts_at
		FROM reservations
		WHERE %s = $1
		AND status = $2
		AND starts_at = ANY($3)
		ORDER BY starts_at ASC
		LIMIT 1`, column)

	var clash time.Time
	err := tx.QueryRowContext(ctx, query, identity.Key(), model.StatusBooked, pq.Array(instants)).Scan(&clash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to check existing bookings: %w", err)
	}
	return &clash, nil
}

// List returns the identity's reservations for the given scope, newest
// first, optionally filtered by status.
func (r *ReservationRepositoryImpl) List(ctx context.Context, identity model.Identity, scope model.ListScope, status *model.ReservationStatus, now time.Time) ([]model.Reservation, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationRepository.List")
	defer seg.Close(nil)

	column := "user_id"
	if identity.IsGuest() {
		column = "guest_id"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM reservations
		WHERE %s = $1`, reservationColumns, column)
	args := []interface{}{identity.Key()}

	switch scope {
	case model.ScopeUpcoming:
		args = append(args, now)
		query += fmt.Sprintf(" AND starts_at >= $%d", len(args))
	case model.ScopePast:
		args = append(args, now)
		query += fmt.Sprintf(" AND starts_at < $%d", len(args))
	}

	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query += " ORDER BY starts_at DESC"

	var reservations []model.Reservation
	if err := r.db.SelectContext(ctx, &reservations, query, args...); err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// UpdateStatus sets the reservation's status inside the transaction that
// loaded it with a lock.
func (r *ReservationRepositoryImpl) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, status model.ReservationStatus, cancelledAt *time.Time) error {
	ctx, seg := xray.BeginSubsegment(ctx, "ReservationRepository.UpdateStatus")
	defer seg.Close(nil)

	query := `
		UPDATE reservations
		SET status = $1,
			cancelled_at = $2,
			updated_at = NOW()
		WHERE id = $3
	`

	result, err := tx.ExecContext(ctx, query, status, cancelledAt, id)
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		notFound := model.NewNotFoundError("reservation", id)
		seg.Close(notFound)
		return notFound
	}
	return nil
}
