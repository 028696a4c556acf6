package schedule

import (
	"context"
	"time"

	"github.com/frostair/ac-booking/internal/model"
)

// Technician is a read-only roster entry.  The roster is owned by the
// user-management side; the scheduler never mutates it.
type Technician struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// RosterProvider returns the technicians eligible for assignment.  The
// result must reflect roster membership at call time; the scheduler
// assumes no caching contract and re-fetches on every operation.
type RosterProvider interface {
	ListTechnicians(ctx context.Context) ([]Technician, error)
}

// Claim is the projection of one persisted booking that capacity logic
// needs: which slot it occupies and which technician holds it.
// TechnicianID is zero for unassigned bookings.
type Claim struct {
	TimeSlot     string
	TechnicianID uint64
}

// BookingStore is the persistence surface the scheduler depends on.
// Day arguments are always midnight-UTC values produced by DayOf.
type BookingStore interface {
	// ClaimsForDate returns one Claim per non-cancelled booking on the
	// given day, assigned or not.
	ClaimsForDate(ctx context.Context, day time.Time) ([]Claim, error)
	// ClaimsForSlot returns the non-cancelled bookings in the exact
	// day+slot that have an assigned technician.
	ClaimsForSlot(ctx context.Context, day time.Time, slot string) ([]Claim, error)
	// Create persists a new booking, filling in the generated ID and
	// timestamps.  It must report a reference-number uniqueness
	// violation as ErrDuplicateReference and a capacity constraint
	// violation as ErrSlotTaken.
	Create(ctx context.Context, b *model.Booking) error
}

// Availability computes slot-level and technician-level availability
// views.  Both operations are read-only and recompute from current
// roster and store state on every call; nothing is cached across
// requests.
type Availability struct {
	Roster RosterProvider
	Store  BookingStore
}

// NewAvailability constructs an Availability over the given collaborators.
func NewAvailability(roster RosterProvider, store BookingStore) *Availability {
	if roster == nil || store == nil {
		panic("nil collaborator passed to NewAvailability")
	}
	return &Availability{Roster: roster, Store: store}
}

// SlotAvailability is the per-date view: which slots still have spare
// technician capacity and how many bookings each slot already holds.
type SlotAvailability struct {
	AvailableSlots   []string       `json:"available_time_slots"`
	TotalTechnicians int            `json:"total_technicians"`
	BookingsPerSlot  map[string]int `json:"bookings_per_slot"`
}

// AvailableSlots reports, for the day containing date, every catalog
// slot whose booking count is strictly below the roster size.  Counts
// are per booking row: each non-cancelled booking occupies one unit of
// the slot's capacity.  With an empty roster no slot is ever available.
func (a *Availability) AvailableSlots(ctx context.Context, date time.Time) (*SlotAvailability, error) {
	day := DayOf(date)
	techs, err := a.Roster.ListTechnicians(ctx)
	if err != nil {
		return nil, upstream("list technicians", err)
	}
	claims, err := a.Store.ClaimsForDate(ctx, day)
	if err != nil {
		return nil, upstream("load bookings", err)
	}

	counts := make(map[string]int, len(timeSlots))
	for _, s := range timeSlots {
		counts[s] = 0
	}
	for _, c := range claims {
		if _, ok := counts[c.TimeSlot]; ok {
			counts[c.TimeSlot]++
		}
	}

	total := len(techs)
	available := make([]string, 0, len(timeSlots))
	for _, s := range timeSlots {
		if counts[s] < total {
			available = append(available, s)
		}
	}
	return &SlotAvailability{
		AvailableSlots:   available,
		TotalTechnicians: total,
		BookingsPerSlot:  counts,
	}, nil
}

// TechnicianAvailability is the per-date+slot view: which roster
// members are still free for that exact window.
type TechnicianAvailability struct {
	AvailableTechnicians []Technician `json:"available_technicians"`
	TotalTechnicians     int          `json:"total_technicians"`
	BookedCount          int          `json:"booked_count"`
}

// AvailableTechnicians reports the roster members without a
// non-cancelled assigned booking in the day+slot, preserving roster
// order so repeated calls with no intervening writes are identical.
// An unknown slot label fails with ErrInvalidInput.
func (a *Availability) AvailableTechnicians(ctx context.Context, date time.Time, slot string) (*TechnicianAvailability, error) {
	if !ValidTimeSlot(slot) {
		return nil, ErrInvalidInput
	}
	day := DayOf(date)
	techs, err := a.Roster.ListTechnicians(ctx)
	if err != nil {
		return nil, upstream("list technicians", err)
	}
	claims, err := a.Store.ClaimsForSlot(ctx, day, slot)
	if err != nil {
		return nil, upstream("load bookings", err)
	}
	free, booked := subtractBooked(techs, claims)
	return &TechnicianAvailability{
		AvailableTechnicians: free,
		TotalTechnicians:     len(techs),
		BookedCount:          booked,
	}, nil
}

// subtractBooked removes the technicians named by claims from the
// roster, keeping roster order.  Duplicate claims for one technician
// collapse: the capacity invariant forbids them, but a stray duplicate
// must count as booked once rather than break the computation.
func subtractBooked(roster []Technician, claims []Claim) (free []Technician, booked int) {
	taken := make(map[uint64]struct{}, len(claims))
	for _, c := range claims {
		if c.TechnicianID != 0 {
			taken[c.TechnicianID] = struct{}{}
		}
	}
	free = make([]Technician, 0, len(roster))
	for _, t := range roster {
		if _, ok := taken[t.ID]; !ok {
			free = append(free, t)
		}
	}
	return free, len(taken)
}
