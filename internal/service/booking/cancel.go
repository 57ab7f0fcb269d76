package booking

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/jmoiron/sqlx"
	"github.com/pawcare-app/booking-engine/internal/model"
	"github.com/pawcare-app/booking-engine/internal/schedule"
)

// CancelCutoff is how long before the slot start an owner may still cancel.
const CancelCutoff = 24 * schedule.SlotDuration

// Cancel cancels the caller's own BOOKED reservation and releases its
// inventory unit. Cancelling an already-cancelled reservation is a no-op
// success, so client retries stay safe. Refused once fewer than 24 hours
// remain before the slot starts.
func (s *Service) Cancel(ctx context.Context, reservationID string, identity model.Identity) (*model.Reservation, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "BookingService.Cancel")
	defer seg.Close(nil)

	if err := identity.Validate(); err != nil {
		return nil, err
	}

	var cancelled *model.Reservation
	var alreadyCancelled bool
	err := s.tx.RunInTx(ctx, func(tx *sqlx.Tx) error {
		reservation, err := s.reservationRepo.GetOwnedForUpdate(ctx, tx, reservationID, identity)
		if err != nil {
			return err
		}

		if reservation.Status == model.StatusCancelled {
			alreadyCancelled = true
			cancelled = reservation
			return nil
		}
		if reservation.Status != model.StatusBooked {
			return model.NewStateConflictError(
				fmt.Sprintf("reservation is %s and cannot be cancelled", reservation.Status))
		}

		now := s.clock.Now()
		if reservation.StartsAt.Sub(now) < CancelCutoff {
			return model.NewStateConflictError(
				"cancellation is only possible up to 24 hours before the appointment")
		}

		if err := s.reservationRepo.UpdateStatus(ctx, tx, reservation.ID, model.StatusCancelled, &now); err != nil {
			return err
		}
		if err := s.inventoryRepo.ReleaseUnit(ctx, tx, model.SlotKey{
			LocationID: reservation.LocationID,
			RoomType:   reservation.RoomType,
			SlotStart:  reservation.StartsAt,
		}); err != nil {
			return err
		}

		reservation.Status = model.StatusCancelled
		reservation.CancelledAt = &now
		cancelled = reservation
		return nil
	})
	if err != nil {
		seg.Close(err)
		return nil, err
	}

	if !alreadyCancelled {
		s.dispatchStatusChange(cancelled)
	}
	return cancelled, nil
}
