package booking

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pawcare-app/booking-engine/internal/catalog"
	"github.com/pawcare-app/booking-engine/internal/model"
)

// fixedClock pins the current time for window and cutoff checks.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// fakeTxRunner serializes transactions and restores the stateful fakes'
// snapshots when the function fails, mimicking a rollback. The fakes ignore
// the tx argument, the same way the repository mocks in this codebase
// always have.
type fakeTxRunner struct {
	mu           sync.Mutex
	inventory    *fakeInventoryRepo
	reservations *fakeReservationRepo
}

func (f *fakeTxRunner) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	invSnap := f.inventory.snapshot()
	resSnap := f.reservations.snapshot()
	if err := fn(nil); err != nil {
		f.inventory.restore(invSnap)
		f.reservations.restore(resSnap)
		return err
	}
	return nil
}

type fakeLocationRepo struct {
	locations map[string]*model.ServiceLocation
}

func (f *fakeLocationRepo) GetByID(ctx context.Context, id string) (*model.ServiceLocation, error) {
	location, ok := f.locations[id]
	if !ok {
		return nil, model.NewNotFoundError("location", id)
	}
	copied := *location
	return &copied, nil
}

type slotRow struct {
	capacity int
	booked   int
}

// fakeInventoryRepo reproduces the conditional insert-or-increment
// semantics under a mutex, so concurrency tests exercise the same win/lose
// behavior the database provides.
type fakeInventoryRepo struct {
	mu   sync.Mutex
	rows map[model.SlotKey]*slotRow
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{rows: make(map[model.SlotKey]*slotRow)}
}

func normalizeKey(key model.SlotKey) model.SlotKey {
	key.SlotStart = key.SlotStart.UTC()
	return key
}

func (f *fakeInventoryRepo) ReserveUnit(ctx context.Context, tx *sqlx.Tx, key model.SlotKey, capacity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if capacity < 1 {
		return model.NewCapacityConflictError("no capacity configured for this room type", "")
	}

	k := normalizeKey(key)
	row, ok := f.rows[k]
	if !ok {
		f.rows[k] = &slotRow{capacity: capacity, booked: 1}
		return nil
	}
	if row.booked < capacity {
		row.booked++
		row.capacity = capacity
		return nil
	}
	return model.NewCapacityConflictError("slot is fully booked", "")
}

func (f *fakeInventoryRepo) ReleaseUnit(ctx context.Context, tx *sqlx.Tx, key model.SlotKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if row, ok := f.rows[normalizeKey(key)]; ok && row.booked > 0 {
		row.booked--
	}
	return nil
}

func (f *fakeInventoryRepo) BookedCounts(ctx context.Context, locationID string, roomType model.RoomType, slots []time.Time) (map[time.Time]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[time.Time]int)
	for _, slot := range slots {
		key := model.SlotKey{LocationID: locationID, RoomType: roomType, SlotStart: slot.UTC()}
		if row, ok := f.rows[key]; ok {
			counts[slot.UTC()] = row.booked
		}
	}
	return counts, nil
}

func (f *fakeInventoryRepo) bookedAt(locationID string, roomType model.RoomType, slot time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := model.SlotKey{LocationID: locationID, RoomType: roomType, SlotStart: slot.UTC()}
	if row, ok := f.rows[key]; ok {
		return row.booked
	}
	return 0
}

func (f *fakeInventoryRepo) snapshot() map[model.SlotKey]slotRow {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := make(map[model.SlotKey]slotRow, len(f.rows))
	for key, row := range f.rows {
		snap[key] = *row
	}
	return snap
}

func (f *fakeInventoryRepo) restore(snap map[model.SlotKey]slotRow) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rows = make(map[model.SlotKey]*slotRow, len(snap))
	for key, row := range snap {
		copied := row
		f.rows[key] = &copied
	}
}

func (f *fakeInventoryRepo) seed(locationID string, roomType model.RoomType, slot time.Time, capacity, booked int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := model.SlotKey{LocationID: locationID, RoomType: roomType, SlotStart: slot.UTC()}
	f.rows[key] = &slotRow{capacity: capacity, booked: booked}
}

// fakeReservationRepo keeps reservations in memory and enforces the
// booked-only uniqueness of identity and instant, like the partial index
// does.
type fakeReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation

	// failCreateAt makes the Nth Create call fail with createErr.
	failCreateAt int
	createErr    error
	createCalls  int
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{reservations: make(map[string]*model.Reservation)}
}

func (f *fakeReservationRepo) Create(ctx context.Context, tx *sqlx.Tx, reservation *model.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls++
	if f.failCreateAt != 0 && f.createCalls == f.failCreateAt {
		return f.createErr
	}

	for _, existing := range f.reservations {
		if existing.Status == model.StatusBooked &&
			existing.Identity().Key() == reservation.Identity().Key() &&
			existing.StartsAt.Equal(reservation.StartsAt) {
			return model.NewCapacityConflictError("you already have a booking", "")
		}
	}
	copied := *reservation
	f.reservations[reservation.ID] = &copied
	return nil
}

func (f *fakeReservationRepo) GetOwnedForUpdate(ctx context.Context, tx *sqlx.Tx, id string, identity model.Identity) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok || reservation.Identity().Key() != identity.Key() {
		return nil, model.NewNotFoundError("reservation", id)
	}
	copied := *reservation
	return &copied, nil
}

func (f *fakeReservationRepo) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id string) (*model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok {
		return nil, model.NewNotFoundError("reservation", id)
	}
	copied := *reservation
	return &copied, nil
}

func (f *fakeReservationRepo) FindBookedAt(ctx context.Context, tx *sqlx.Tx, identity model.Identity, instants []time.Time) (*time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var clash *time.Time
	for _, reservation := range f.reservations {
		if reservation.Status != model.StatusBooked || reservation.Identity().Key() != identity.Key() {
			continue
		}
		for _, instant := range instants {
			if reservation.StartsAt.Equal(instant) {
				t := reservation.StartsAt
				if clash == nil || t.Before(*clash) {
					clash = &t
				}
			}
		}
	}
	return clash, nil
}

func (f *fakeReservationRepo) List(ctx context.Context, identity model.Identity, scope model.ListScope, status *model.ReservationStatus, now time.Time) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Reservation
	for _, reservation := range f.reservations {
		if reservation.Identity().Key() != identity.Key() {
			continue
		}
		if scope == model.ScopeUpcoming && reservation.StartsAt.Before(now) {
			continue
		}
		if scope == model.ScopePast && !reservation.StartsAt.Before(now) {
			continue
		}
		if status != nil && reservation.Status != *status {
			continue
		}
		out = append(out, *reservation)
	}
	return out, nil
}

func (f *fakeReservationRepo) UpdateStatus(ctx context.Context, tx *sqlx.Tx, id string, status model.ReservationStatus, cancelledAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	reservation, ok := f.reservations[id]
	if !ok {
		return model.NewNotFoundError("reservation", id)
	}
	reservation.Status = status
	reservation.CancelledAt = cancelledAt
	return nil
}

func (f *fakeReservationRepo) snapshot() map[string]model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := make(map[string]model.Reservation, len(f.reservations))
	for id, reservation := range f.reservations {
		snap[id] = *reservation
	}
	return snap
}

func (f *fakeReservationRepo) restore(snap map[string]model.Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reservations = make(map[string]*model.Reservation, len(snap))
	for id, reservation := range snap {
		copied := reservation
		f.reservations[id] = &copied
	}
}

func (f *fakeReservationRepo) add(reservation *model.Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *reservation
	f.reservations[reservation.ID] = &copied
}

func (f *fakeReservationRepo) get(id string) *model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()

	if reservation, ok := f.reservations[id]; ok {
		copied := *reservation
		return &copied
	}
	return nil
}

func (f *fakeReservationRepo) countBooked() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, reservation := range f.reservations {
		if reservation.Status == model.StatusBooked {
			count++
		}
	}
	return count
}

type fakePetRepo struct {
	profile *model.PetProfile
	err     error
}

func (f *fakePetRepo) FindDefaultOrLatestPet(ctx context.Context, userID string) (*model.PetProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeCatalog struct {
	selections map[string]*catalog.Selection
}

func (f *fakeCatalog) ResolveSelection(ctx context.Context, serviceType model.ServiceType, optionKey string) (*catalog.Selection, error) {
	selection, ok := f.selections[string(serviceType)+"/"+optionKey]
	if !ok {
		return nil, model.NewValidationError("invalid selection", "serviceType", "serviceOptionKey")
	}
	copied := *selection
	return &copied, nil
}

// recordingDispatcher collects dispatched events on a channel so tests can
// wait for the fire-and-forget goroutine.
type recordingDispatcher struct {
	events chan model.StatusChangeEvent
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{events: make(chan model.StatusChangeEvent, 32)}
}

func (d *recordingDispatcher) DispatchStatusChange(ctx context.Context, event model.StatusChangeEvent) error {
	d.events <- event
	return nil
}

func (d *recordingDispatcher) waitForEvent(timeout time.Duration) (model.StatusChangeEvent, bool) {
	select {
	case event := <-d.events:
		return event, true
	case <-time.After(timeout):
		return model.StatusChangeEvent{}, false
	}
}
