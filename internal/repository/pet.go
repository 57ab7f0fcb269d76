package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/pawcare-app/booking-engine/internal/model"
)

// PetRepository reads saved pet profiles for registered users.
type PetRepository interface {
	FindDefaultOrLatestPet(ctx context.Context, userID string) (*model.PetProfile, error)
}

type PetRepositoryImpl struct {
	db *DB
}

func NewPetRepository(db *DB) *PetRepositoryImpl {
	return &PetRepositoryImpl{db: db}
}

// FindDefaultOrLatestPet returns the user's default pet, or the most
// recently added one when no default is marked. Nil without error when the
// user has no saved pets; the booking then relies on inline snapshot data.
func (r *PetRepositoryImpl) FindDefaultOrLatestPet(ctx context.Context, userID string) (*model.PetProfile, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "PetRepository.FindDefaultOrLatestPet")
	defer seg.Close(nil)

	query := `
		SELECT id, user_id, name, type, gender, birth_date, age,
			owner_name, phone, is_default, created_at
		FROM pets
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
		LIMIT 1
	`

	var pet model.PetProfile
	if err := r.db.GetContext(ctx, &pet, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		seg.Close(err)
		return nil, fmt.Errorf("failed to find pet for user %s: %w", userID, err)
	}
	return &pet, nil
}
