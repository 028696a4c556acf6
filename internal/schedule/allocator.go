package schedule

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/frostair/ac-booking/internal/model"
)

// PreferAny is the sentinel a client sends to ask for automatic
// technician assignment.  An empty preference means the same thing.
const PreferAny = "any"

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// CreateInput carries a booking submission.  Date and
// PreferredTechnician arrive as raw strings so that every malformed
// field can be reported together in one ValidationError instead of
// failing at the transport layer one field at a time.
type CreateInput struct {
	ServiceType         string
	MaintenancePlan     string
	Date                string
	TimeSlot            string
	Name                string
	Email               string
	Phone               string
	Address             string
	Description         string
	PreferredTechnician string
}

// Allocator is the only component that creates bookings.  It
// re-validates technician availability at write time and relies on the
// store's uniqueness constraint as the backstop for the remaining
// read-then-write race window.
type Allocator struct {
	roster RosterProvider
	store  BookingStore

	mu  sync.Mutex
	rng *rand.Rand
}

// NewAllocator constructs an Allocator.  rng drives the uniform-random
// fallback selection and reference-number generation; pass nil for a
// time-seeded source.  Tests inject a fixed seed for determinism.
func NewAllocator(roster RosterProvider, store BookingStore, rng *rand.Rand) *Allocator {
	if roster == nil || store == nil {
		panic("nil collaborator passed to NewAllocator")
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Allocator{roster: roster, store: store, rng: rng}
}

// Create validates the submission, resolves a technician for the
// requested date and slot, and persists the booking with status
// pending.
//
// A preferred technician must still exist in the roster and still be
// free at write time, otherwise ErrTechnicianUnavailable.  Without a
// preference (or with the "any" sentinel) a technician is drawn
// uniformly at random from the free set so that load spreads across
// the roster; an empty free set fails with ErrNoCapacity.
//
// If the insert loses the race on the (date, slot, technician)
// uniqueness constraint, the fallback path is re-run exactly once; an
// explicit preference is not retried because the requested technician
// is gone.  A reference-number collision regenerates and retries once.
func (al *Allocator) Create(ctx context.Context, in CreateInput) (*model.Booking, error) {
	day, prefID, verr := al.validate(in)
	if verr != nil {
		return nil, verr
	}

	assigned, err := al.resolveTechnician(ctx, day, in.TimeSlot, prefID)
	if err != nil {
		return nil, err
	}

	b := al.buildBooking(in, day, prefID, assigned)
	if err := al.persist(ctx, b); err == nil {
		return b, nil
	} else if !errors.Is(err, ErrSlotTaken) {
		return nil, err
	}

	// Lost the race to a concurrent insert.
	if prefID != 0 {
		return nil, ErrTechnicianUnavailable
	}
	assigned, err = al.resolveTechnician(ctx, day, in.TimeSlot, 0)
	if err != nil {
		return nil, err
	}
	b = al.buildBooking(in, day, prefID, assigned)
	if err := al.persist(ctx, b); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			return nil, ErrNoCapacity
		}
		return nil, err
	}
	return b, nil
}

// validate checks every required field and collects all failures.  It
// returns the normalized day and the parsed preferred-technician ID
// (zero when none or "any").
func (al *Allocator) validate(in CreateInput) (time.Time, uint64, error) {
	var fields []FieldError
	add := func(field, msg string) {
		fields = append(fields, FieldError{Field: field, Message: msg})
	}

	switch {
	case strings.TrimSpace(in.ServiceType) == "":
		add("serviceType", "Service type is required")
	case !model.ValidServiceType(in.ServiceType):
		add("serviceType", "Unknown service type")
	}
	if !model.ValidMaintenancePlan(in.MaintenancePlan) {
		add("maintenancePlan", "Unknown maintenance plan")
	}

	var day time.Time
	if strings.TrimSpace(in.Date) == "" {
		add("date", "Valid date is required")
	} else if d, err := ParseDate(in.Date); err != nil {
		add("date", "Valid date is required")
	} else {
		day = d
	}

	switch {
	case strings.TrimSpace(in.TimeSlot) == "":
		add("timeSlot", "Time slot is required")
	case !ValidTimeSlot(in.TimeSlot):
		add("timeSlot", "Unknown time slot")
	}

	if strings.TrimSpace(in.Name) == "" {
		add("name", "Name is required")
	}
	if !emailPattern.MatchString(in.Email) {
		add("email", "Valid email is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		add("phone", "Phone number is required")
	}
	if strings.TrimSpace(in.Address) == "" {
		add("address", "Address is required")
	}

	var prefID uint64
	pref := strings.TrimSpace(in.PreferredTechnician)
	if pref != "" && pref != PreferAny {
		id, err := strconv.ParseUint(pref, 10, 64)
		if err != nil || id == 0 {
			add("preferredTechnician", "Invalid technician id")
		} else {
			prefID = id
		}
	}

	if len(fields) > 0 {
		return time.Time{}, 0, &ValidationError{Fields: fields}
	}
	return day, prefID, nil
}

// resolveTechnician picks the technician for (day, slot) at write time.
// prefID zero means automatic assignment.
func (al *Allocator) resolveTechnician(ctx context.Context, day time.Time, slot string, prefID uint64) (uint64, error) {
	techs, err := al.roster.ListTechnicians(ctx)
	if err != nil {
		return 0, upstream("list technicians", err)
	}
	claims, err := al.store.ClaimsForSlot(ctx, day, slot)
	if err != nil {
		return 0, upstream("load bookings", err)
	}

	if prefID != 0 {
		inRoster := false
		for _, t := range techs {
			if t.ID == prefID {
				inRoster = true
				break
			}
		}
		if !inRoster {
			return 0, ErrTechnicianUnavailable
		}
		for _, c := range claims {
			if c.TechnicianID == prefID {
				return 0, ErrTechnicianUnavailable
			}
		}
		return prefID, nil
	}

	free, _ := subtractBooked(techs, claims)
	if len(free) == 0 {
		return 0, ErrNoCapacity
	}
	al.mu.Lock()
	pick := free[al.rng.Intn(len(free))]
	al.mu.Unlock()
	return pick.ID, nil
}

func (al *Allocator) buildBooking(in CreateInput, day time.Time, prefID, assigned uint64) *model.Booking {
	b := &model.Booking{
		ReferenceNumber: al.newReference(),
		ServiceType:     in.ServiceType,
		MaintenancePlan: in.MaintenancePlan,
		Date:            day,
		TimeSlot:        in.TimeSlot,
		CustomerName:    strings.TrimSpace(in.Name),
		CustomerEmail:   strings.TrimSpace(in.Email),
		CustomerPhone:   strings.TrimSpace(in.Phone),
		CustomerAddress: strings.TrimSpace(in.Address),
		Description:     in.Description,
		Status:          model.StatusPending,
	}
	if b.Description == "" {
		b.Description = "No description provided"
	}
	if prefID != 0 {
		p := prefID
		b.PreferredTechnicianID = &p
	}
	a := assigned
	b.AssignedTechnicianID = &a
	return b
}

// persist inserts the booking, regenerating the reference number and
// retrying once if it collides.  Capacity violations pass through as
// ErrSlotTaken for Create to handle; anything else wraps as upstream.
func (al *Allocator) persist(ctx context.Context, b *model.Booking) error {
	err := al.store.Create(ctx, b)
	if errors.Is(err, ErrDuplicateReference) {
		b.ReferenceNumber = al.newReference()
		err = al.store.Create(ctx, b)
	}
	if err == nil || errors.Is(err, ErrSlotTaken) {
		return err
	}
	return upstream("create booking", err)
}

// newReference produces a customer-facing booking reference: the "AC"
// prefix plus six decimal digits.  Uniqueness is enforced by the store;
// collisions are regenerated, not avoided.
func (al *Allocator) newReference() string {
	al.mu.Lock()
	n := 100000 + al.rng.Intn(900000)
	al.mu.Unlock()
	return fmt.Sprintf("AC%06d", n)
}
