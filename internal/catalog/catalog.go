// Package catalog resolves service/option selections against the static
// service catalog. The catalog itself is maintained elsewhere; the booking
// engine only looks prices and display names up.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/repository"
)

// Selection is a resolved service/option pair with the display names and
// price that get snapshotted onto the reservation.
type Selection struct {
	ServiceType  model.ServiceType `db:"service_type"`
	OptionKey    string            `db:"option_key"`
	NameEn       string            `db:"name_en"`
	NameAr       string            `db:"name_ar"`
	OptionNameEn string            `db:"option_name_en"`
	OptionNameAr string            `db:"option_name_ar"`
	Price        float64           `db:"price"`
	Currency     string            `db:"currency"`
}

// Resolver resolves a service type and option key, or fails when the
// selection is invalid.
type Resolver interface {
	ResolveSelection(ctx context.Context, serviceType model.ServiceType, optionKey string) (*Selection, error)
}

// SQLResolver reads the service_options table.
type SQLResolver struct {
	db *repository.DB
}

func NewSQLResolver(db *repository.DB) *SQLResolver {
	return &SQLResolver{db: db}
}

// ResolveSelection fetches one catalog entry. An unknown pair is a
// validation error naming both fields.
func (r *SQLResolver) ResolveSelection(ctx context.Context, serviceType model.ServiceType, optionKey string) (*Selection, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "CatalogResolver.ResolveSelection")
	defer seg.Close(nil)

	query := `
		SELECT service_type, option_key, name_en, name_ar,
			option_name_en, option_name_ar, price, currency
		FROM service_options
		WHERE service_type = $1
		AND option_key = $2
	`

	var selection Selection
	if err := r.db.GetContext(ctx, &selection, query, serviceType, optionKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			invalid := model.NewValidationError(
				fmt.Sprintf("invalid selection %s/%s", serviceType, optionKey),
				"serviceType", "serviceOptionKey")
			seg.Close(invalid)
			return nil, invalid
		}
		seg.Close(err)
		return nil, fmt.Errorf("failed to resolve selection %s/%s: %w", serviceType, optionKey, err)
	}
	return &selection, nil
}
