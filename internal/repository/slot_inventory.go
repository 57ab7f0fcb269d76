package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pawcare-app/booking-engine/internal/model"
)

// SlotInventoryRepository manages the per-slot capacity counters. Counters
// are only ever mutated through the conditional writes below, inside the
// booking transaction; they are never read-modified-written.
type SlotInventoryRepository interface {
	ReserveUnit(ctx context.Context, tx *sqlx.Tx, key model.SlotKey, capacity int) error
	ReleaseUnit(ctx context.Context, tx *sqlx.Tx, key model.SlotKey) error
	BookedCounts(ctx context.Context, locationID string, roomType model.RoomType, slots []time.Time) (map[time.Time]int, error)
}

type SlotInventoryRepositoryImpl struct {
	db *DB
}

func NewSlotInventoryRepository(db *DB) *SlotInventoryRepositoryImpl {
	return &SlotInventoryRepositoryImpl{db: db}
}

// ReserveUnit takes one unit of capacity for the slot, or fails with a
// capacity conflict. Insert-or-increment with one retry:
//
//  1. Conditionally increment booked_count where it is still below capacity,
//     refreshing the stored capacity in the same write so admin capacity
//     changes take effect immediately.
//  2. If no row was touched, insert the first booking for the slot. A
//     conflicting concurrent insert is detected via ON CONFLICT DO NOTHING.
//  3. On conflict, retry the increment exactly once; if that also touches
//     nothing the slot is full.
//
// The increment is conditional rather than read-then-write, so two racing
// bookings for the last unit resolve deterministically: one wins, the other
// gets the conflict error.
func (r *SlotInventoryRepositoryImpl) ReserveUnit(ctx context.Context, tx *sqlx.Tx, key model.SlotKey, capacity int) error {
	ctx, seg := xray.BeginSubsegment(ctx, "SlotInventoryRepository.ReserveUnit")
	defer seg.Close(nil)

	if capacity < 1 {
		return model.NewCapacityConflictError("no capacity configured for this room type", "")
	}

	ok, err := r.tryIncrement(ctx, tx, key, capacity)
	if err != nil {
		seg.Close(err)
		return err
	}
	if ok {
		return nil
	}

	inserted, err := r.tryInsertFirst(ctx, tx, key, capacity)
	if err != nil {
		seg.Close(err)
		return err
	}
	if inserted {
		return nil
	}

	// A concurrent request created the row between the increment and the
	// insert. Retry the increment once against the now-existing row.
	ok, err = r.tryIncrement(ctx, tx, key, capacity)
	if err != nil {
		seg.Close(err)
		return err
	}
	if ok {
		return nil
	}

	return model.NewCapacityConflictError("slot is fully booked", "")
}

func (r *SlotInventoryRepositoryImpl) tryIncrement(ctx context.Context, tx *sqlx.Tx, key model.SlotKey, capacity int) (bool, error) {
	query := `
		UPDATE slot_inventory
		SET booked_count = booked_count + 1,
			capacity = $4,
			updated_at = NOW()
		WHERE location_id = $1
		AND room_type = $2
		AND slot_start = $3
		AND booked_count < $4
	`

	result, err := tx.ExecContext(ctx, query, key.LocationID, key.RoomType, key.SlotStart, capacity)
	if err != nil {
		return false, fmt.Errorf("failed to increment slot inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

func (r *SlotInventoryRepositoryImpl) tryInsertFirst(ctx context.Context, tx *sqlx.Tx, key model.SlotKey, capacity int) (bool, error) {
	query := `
		INSERT INTO slot_inventory (
			location_id, room_type, slot_start, capacity, booked_count, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, 1, NOW(), NOW()
		)
		ON CONFLICT (location_id, room_type, slot_start) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, query, key.LocationID, key.RoomType, key.SlotStart, capacity)
	if err != nil {
		return false, fmt.Errorf("failed to insert slot inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// ReleaseUnit gives one unit of capacity back. The decrement is guarded by
// booked_count > 0, so releasing an already-released slot is a no-op;
// cancellation retries must stay safe.
func (r *SlotInventoryRepositoryImpl) ReleaseUnit(ctx context.Context, tx *sqlx.Tx, key model.SlotKey) error {
	ctx, seg := xray.BeginSubsegment(ctx, "SlotInventoryRepository.ReleaseUnit")
	defer seg.Close(nil)

	query := `
		UPDATE slot_inventory
		SET booked_count = booked_count - 1,
			updated_at = NOW()
		WHERE location_id = $1
		AND room_type = $2
		AND slot_start = $3
		AND booked_count > 0
	`

	if _, err := tx.ExecContext(ctx, query, key.LocationID, key.RoomType, key.SlotStart); err != nil {
		seg.Close(err)
		return fmt.Errorf("failed to release slot inventory: %w", err)
	}
	return nil
}

// BookedCounts returns the booked count per slot start for the given slots.
// Slots with no inventory row are absent from the map; absence means zero
// bookings. Read-only and lock-free.
func (r *SlotInventoryRepositoryImpl) BookedCounts(ctx context.Context, locationID string, roomType model.RoomType, slots []time.Time) (map[time.Time]int, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "SlotInventoryRepository.BookedCounts")
	defer seg.Close(nil)

	query := `
		SELECT slot_start, booked_count
		FROM slot_inventory
		WHERE location_id = $1
		AND room_type = $2
		AND slot_start = ANY($3)
	`

	rows, err := r.db.QueryxContext(ctx, query, locationID, roomType, pq.Array(slots))
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to query slot inventory: %w", err)
	}
	defer rows.Close()

	counts := make(map[time.Time]int)
	for rows.Next() {
		var slotStart time.Time
		var booked int
		if err := rows.Scan(&slotStart, &booked); err != nil {
			seg.Close(err)
			return nil, fmt.Errorf("failed to scan slot inventory row: %w", err)
		}
		counts[slotStart.UTC()] = booked
	}

	if err := rows.Err(); err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("error iterating slot inventory rows: %w", err)
	}

	return counts, nil
}
