package schedule

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostair/ac-booking/internal/model"
)

func validInput() CreateInput {
	return CreateInput{
		ServiceType: model.ServiceRepair,
		Date:        "2026-03-12",
		TimeSlot:    "8:00 - 10:00",
		Name:        "Karin Holm",
		Email:       "karin@example.com",
		Phone:       "+46 70 123 45 67",
		Address:     "Storgatan 1, Umeå",
		Description: "Unit blows warm air",
	}
}

func newTestAllocator(roster *fakeRoster, store *fakeStore, seed int64) *Allocator {
	return NewAllocator(roster, store, rand.New(rand.NewSource(seed)))
}

func TestCreateWithPreferredTechnician(t *testing.T) {
	store := &fakeStore{}
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2}}, store, 1)

	in := validInput()
	in.PreferredTechnician = "2"
	b, err := al.Create(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, b.AssignedTechnicianID)
	assert.Equal(t, tech2.ID, *b.AssignedTechnicianID)
	require.NotNil(t, b.PreferredTechnicianID)
	assert.Equal(t, tech2.ID, *b.PreferredTechnicianID)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, testDay(), b.Date)
	assert.NotZero(t, b.ID)
}

func TestCreatePreferredTechnicianTaken(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusPending)
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2}}, store, 1)

	in := validInput()
	in.PreferredTechnician = "1"
	_, err := al.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrTechnicianUnavailable)
	assert.Len(t, store.bookings, 1)
}

func TestCreatePreferredTechnicianNotInRoster(t *testing.T) {
	// The technician may have been removed after the client fetched the
	// roster; the write-time check must reject the stale choice.
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1}}, &fakeStore{}, 1)

	in := validInput()
	in.PreferredTechnician = "42"
	_, err := al.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrTechnicianUnavailable)
}

func TestCreatePreferredCancelledBookingIgnored(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusCancelled)
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1}}, store, 1)

	in := validInput()
	in.PreferredTechnician = "1"
	b, err := al.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, tech1.ID, *b.AssignedTechnicianID)
}

func TestCreateAnySentinelWithSingleFreeTechnician(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusPending)
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2}}, store, 7)

	in := validInput()
	in.PreferredTechnician = PreferAny
	b, err := al.Create(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, b.AssignedTechnicianID)
	assert.Equal(t, tech2.ID, *b.AssignedTechnicianID)
	assert.Nil(t, b.PreferredTechnicianID)
}

func TestCreateNoPreferencePicksFromFreeSet(t *testing.T) {
	// Whatever the seed, the random pick must land inside the free set.
	for seed := int64(0); seed < 20; seed++ {
		store := &fakeStore{}
		store.seed(testDay(), "8:00 - 10:00", tech2.ID, model.StatusPending)
		al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2, tech3}}, store, seed)

		b, err := al.Create(context.Background(), validInput())
		require.NoError(t, err)
		require.NotNil(t, b.AssignedTechnicianID)
		assert.Contains(t, []uint64{tech1.ID, tech3.ID}, *b.AssignedTechnicianID)
	}
}

func TestCreateFallbackSpreadsLoad(t *testing.T) {
	// Uniform selection over three free technicians should hit each of
	// them over enough independent attempts.
	seen := map[uint64]bool{}
	for seed := int64(0); seed < 30; seed++ {
		store := &fakeStore{}
		al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2, tech3}}, store, seed)
		b, err := al.Create(context.Background(), validInput())
		require.NoError(t, err)
		seen[*b.AssignedTechnicianID] = true
	}
	assert.Len(t, seen, 3)
}

func TestCreateExhaustionNoCapacity(t *testing.T) {
	roster := &fakeRoster{techs: []Technician{tech1, tech2}}
	store := &fakeStore{}
	al := newTestAllocator(roster, store, 3)

	// Fill the slot: explicit booking for T1, then "any" must take T2.
	in := validInput()
	in.PreferredTechnician = "1"
	_, err := al.Create(context.Background(), in)
	require.NoError(t, err)

	in.PreferredTechnician = PreferAny
	b, err := al.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, tech2.ID, *b.AssignedTechnicianID)

	// Third request has nobody left.
	in.PreferredTechnician = ""
	_, err = al.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.Len(t, store.bookings, 2)

	// And the slot view now excludes the exhausted window.
	av := NewAvailability(roster, store)
	slots, err := av.AvailableSlots(context.Background(), testDay())
	require.NoError(t, err)
	assert.NotContains(t, slots.AvailableSlots, "8:00 - 10:00")
}

func TestAvailabilityThenBookingConsistency(t *testing.T) {
	// A technician reported free must be immediately bookable by
	// explicit preference, absent concurrent writes.
	roster := &fakeRoster{techs: []Technician{tech1, tech2, tech3}}
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusPending)

	av := NewAvailability(roster, store)
	free, err := av.AvailableTechnicians(context.Background(), testDay(), "8:00 - 10:00")
	require.NoError(t, err)
	require.NotEmpty(t, free.AvailableTechnicians)

	al := newTestAllocator(roster, store, 11)
	for _, tech := range free.AvailableTechnicians {
		in := validInput()
		in.PreferredTechnician = strconv.FormatUint(tech.ID, 10)
		b, err := al.Create(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, tech.ID, *b.AssignedTechnicianID)
	}
}

func TestCreateValidationAggregatesAllFields(t *testing.T) {
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1}}, &fakeStore{}, 1)

	_, err := al.Create(context.Background(), CreateInput{
		ServiceType:         "warp-drive",
		Date:                "not-a-date",
		TimeSlot:            "02:00 - 04:00",
		Email:               "not-an-email",
		PreferredTechnician: "minus-one",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make(map[string]bool)
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{
		"serviceType", "date", "timeSlot", "name", "email", "phone",
		"address", "preferredTechnician",
	} {
		assert.True(t, fields[want], "missing field error for %s", want)
	}
}

func TestCreateDefaultsDescription(t *testing.T) {
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1}}, &fakeStore{}, 1)

	in := validInput()
	in.Description = ""
	b, err := al.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "No description provided", b.Description)
}

func TestReferenceNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^AC[1-9]\d{5}$`)
	store := &fakeStore{}
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2, tech3}}, store, 5)

	for _, slot := range TimeSlots() {
		in := validInput()
		in.TimeSlot = slot
		b, err := al.Create(context.Background(), in)
		require.NoError(t, err)
		assert.Regexp(t, pattern, b.ReferenceNumber)
	}
}

func TestCreateRetriesDuplicateReferenceOnce(t *testing.T) {
	store := &fakeStore{}
	// Pre-compute what the seeded generator will produce first and park
	// a booking on that reference to force one collision.  The explicit
	// preference keeps the fallback path from consuming a random draw,
	// so the probe and the allocator stay in lockstep.
	probe := newTestAllocator(&fakeRoster{techs: []Technician{tech1}}, &fakeStore{}, 9)
	clash := probe.newReference()

	taken := store.seed(testDay().AddDate(0, 0, 5), "8:00 - 10:00", tech1.ID, model.StatusPending)
	taken.ReferenceNumber = clash

	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1}}, store, 9)
	in := validInput()
	in.PreferredTechnician = "1"
	b, err := al.Create(context.Background(), in)
	require.NoError(t, err)
	assert.NotEqual(t, clash, b.ReferenceNumber)
}

func TestCreateRaceLostFallbackRetries(t *testing.T) {
	// When the insert hits the slot-uniqueness constraint, the "any"
	// path re-runs fallback once and succeeds if capacity remains.
	store := &fakeStore{failTaken: 1}
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2}}, store, 2)

	b, err := al.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.NotNil(t, b.AssignedTechnicianID)
	assert.Len(t, store.bookings, 1)
}

func TestCreateRaceLostTwiceIsNoCapacity(t *testing.T) {
	store := &fakeStore{failTaken: 2}
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2}}, store, 2)

	_, err := al.Create(context.Background(), validInput())
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.Empty(t, store.bookings)
}

func TestCreateRaceLostPreferredIsUnavailable(t *testing.T) {
	store := &fakeStore{failTaken: 1}
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1, tech2}}, store, 2)

	in := validInput()
	in.PreferredTechnician = "1"
	_, err := al.Create(context.Background(), in)
	assert.ErrorIs(t, err, ErrTechnicianUnavailable)
	assert.Empty(t, store.bookings)
}

func TestCreateUpstreamFailureNothingPersisted(t *testing.T) {
	boom := errors.New("broken pipe")
	store := &fakeStore{createErr: boom}
	al := newTestAllocator(&fakeRoster{techs: []Technician{tech1}}, store, 2)

	_, err := al.Create(context.Background(), validInput())
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.bookings)
}
