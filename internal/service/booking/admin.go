package booking

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	"github.com/pawcare-app/booking-engine/internal/model"
)

// AdminSetStatus transitions a reservation out of BOOKED on behalf of an
// admin. CANCELLED releases the slot's inventory unit with no 24-hour
// cutoff; COMPLETED, IN_PROGRESS and NO_SHOW leave inventory untouched.
// Setting the current status again is a no-op success.
func (s *Service) AdminSetStatus(ctx context.Context, reservationID string, next model.ReservationStatus) (*model.Reservation, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "BookingService.AdminSetStatus")
	defer seg.Close(nil)

	if !next.Valid() || next == model.StatusBooked {
		return nil, model.NewValidationError(
			"status must be one of CANCELLED, COMPLETED, IN_PROGRESS, NO_SHOW", "status")
	}

	var updated *model.Reservation
	var noop bool
	err := s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		reservation, err := s.reservationRepo.GetForUpdate(ctx, tx, reservationID)
		if err != nil {
			return err
		}

		if reservation.Status == next {
			noop = true
			updated = reservation
			return nil
		}
		if !reservation.Status.CanTransitionTo(next) {
			return model.NewStateConflictError(
				fmt.Sprintf("cannot transition reservation from %s to %s", reservation.Status, next))
		}

		now := s.clock.Now()
		cancelTime := reservation.CancelledAt
		if next == model.StatusCancelled {
			cancelTime = &now
		}
		if err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, next, cancelTime); err != nil {
			return err
		}

		if next == model.StatusCancelled {
			if err := s.inventoryRepo.ReleaseUnit(ctx, tx, model.SlotKey{
				LocationID: reservation.LocationID,
				RoomType:   reservation.RoomType,
				SlotStart:  reservation.StartsAt,
			}); err != nil {
				return err
			}
		}

		reservation.Status = next
		reservation.CancelledAt = cancelTime
		updated = reservation
		return nil
	})
	if err != nil {
		seg.Close(err)
		return nil, err
	}

	if !noop {
		s.dispatchStatusChange(updated)
	}
	return updated, nil
}
