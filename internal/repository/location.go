package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/pawcare-app/booking-engine/internal/model"
)

// LocationRepository reads service locations. Locations are managed by the
// admin CRUD elsewhere; the booking engine only ever reads them. Capacity is
// deliberately re-read on every booking so admin capacity changes apply
// without a migration.
type LocationRepository interface {
	GetByID(ctx context.Context, id string) (*model.ServiceLocation, error)
}

type LocationRepositoryImpl struct {
	db *DB
}

func NewLocationRepository(db *DB) *LocationRepositoryImpl {
	return &LocationRepositoryImpl{db: db}
}

// GetByID fetches one location.
func (r *LocationRepositoryImpl) GetByID(ctx context.Context, id string) (*model.ServiceLocation, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "LocationRepository.GetByID")
	defer seg.Close(nil)

	query := `
		SELECT id, name, grooming_room_capacity, clinic_room_capacity,
			is_active, created_at, updated_at
		FROM service_locations
		WHERE id = $1
	`

	var location model.ServiceLocation
	if err := r.db.GetContext(ctx, &location, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			notFound := model.NewNotFoundError("location", id)
			seg.Close(notFound)
			return nil, notFound
		}
		seg.Close(err)
		return nil, fmt.Errorf("failed to get location %s: %w", id, err)
	}
	return &location, nil
}
