package schedule

import (
	"context"
	"time"

	"github.com/frostair/ac-booking/internal/model"
)

// fakeRoster serves a fixed technician list, optionally failing.
type fakeRoster struct {
	techs []Technician
	err   error
}

func (f *fakeRoster) ListTechnicians(ctx context.Context) ([]Technician, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Technician, len(f.techs))
	copy(out, f.techs)
	return out, nil
}

// fakeStore keeps bookings in memory and mimics the storage-level
// uniqueness constraints the real repository relies on.
type fakeStore struct {
	bookings []*model.Booking
	nextID   uint64

	queryErr  error
	createErr error
	// failTaken makes the next n Create calls fail with ErrSlotTaken
	// regardless of contents, to simulate losing a concurrent race.
	failTaken int
}

func (f *fakeStore) ClaimsForDate(ctx context.Context, day time.Time) ([]Claim, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []Claim
	for _, b := range f.bookings {
		if !b.Date.Equal(day) || model.ReleasesCapacity(b.Status) {
			continue
		}
		c := Claim{TimeSlot: b.TimeSlot}
		if b.AssignedTechnicianID != nil {
			c.TechnicianID = *b.AssignedTechnicianID
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) ClaimsForSlot(ctx context.Context, day time.Time, slot string) ([]Claim, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []Claim
	for _, b := range f.bookings {
		if !b.Date.Equal(day) || b.TimeSlot != slot || model.ReleasesCapacity(b.Status) {
			continue
		}
		if b.AssignedTechnicianID == nil {
			continue
		}
		out = append(out, Claim{TimeSlot: slot, TechnicianID: *b.AssignedTechnicianID})
	}
	return out, nil
}

func (f *fakeStore) Create(ctx context.Context, b *model.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.failTaken > 0 {
		f.failTaken--
		return ErrSlotTaken
	}
	for _, existing := range f.bookings {
		if existing.ReferenceNumber == b.ReferenceNumber {
			return ErrDuplicateReference
		}
		if model.ReleasesCapacity(existing.Status) {
			continue
		}
		if existing.Date.Equal(b.Date) && existing.TimeSlot == b.TimeSlot &&
			existing.AssignedTechnicianID != nil && b.AssignedTechnicianID != nil &&
			*existing.AssignedTechnicianID == *b.AssignedTechnicianID {
			return ErrSlotTaken
		}
	}
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	clone := *b
	f.bookings = append(f.bookings, &clone)
	return nil
}

// seed inserts a booking directly, bypassing the allocator.
func (f *fakeStore) seed(day time.Time, slot string, techID uint64, status string) *model.Booking {
	f.nextID++
	b := &model.Booking{
		ID:              f.nextID,
		ReferenceNumber: "AC900000",
		ServiceType:     model.ServiceRepair,
		Date:            day,
		TimeSlot:        slot,
		Status:          status,
	}
	if techID != 0 {
		id := techID
		b.AssignedTechnicianID = &id
	}
	f.bookings = append(f.bookings, b)
	return b
}

var (
	tech1 = Technician{ID: 1, FirstName: "Maria", LastName: "Lindqvist", Email: "maria@example.com"}
	tech2 = Technician{ID: 2, FirstName: "Jonas", LastName: "Berg", Email: "jonas@example.com"}
	tech3 = Technician{ID: 3, FirstName: "Elif", LastName: "Demir", Email: "elif@example.com"}
)

func testDay() time.Time {
	return time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)
}
