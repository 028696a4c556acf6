package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frostair/ac-booking/internal/model"
)

func TestTimeSlotsCatalog(t *testing.T) {
	slots := TimeSlots()
	require.Equal(t, []string{
		"8:00 - 10:00",
		"10:00 - 12:00",
		"12:00 - 14:00",
		"14:00 - 16:00",
		"16:00 - 18:00",
	}, slots)

	// Mutating the returned slice must not touch the catalog.
	slots[0] = "corrupted"
	assert.Equal(t, "8:00 - 10:00", TimeSlots()[0])

	assert.True(t, ValidTimeSlot("12:00 - 14:00"))
	assert.False(t, ValidTimeSlot("18:00 - 20:00"))
	assert.False(t, ValidTimeSlot(""))
}

func TestDayOfNormalizesAcrossZones(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	late := time.Date(2026, time.March, 12, 23, 30, 0, 0, est) // 04:30 next day UTC
	assert.Equal(t, time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC), DayOf(late))

	noon := time.Date(2026, time.March, 12, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, testDay(), DayOf(noon))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-12")
	require.NoError(t, err)
	assert.Equal(t, testDay(), d)

	d, err = ParseDate("2026-03-12T09:15:00Z")
	require.NoError(t, err)
	assert.Equal(t, testDay(), d)

	_, err = ParseDate("12/03/2026")
	assert.Error(t, err)
}

func TestAvailableSlotsEmptyStore(t *testing.T) {
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1, tech2}}, &fakeStore{})

	got, err := av.AvailableSlots(context.Background(), testDay())
	require.NoError(t, err)
	assert.Equal(t, TimeSlots(), got.AvailableSlots)
	assert.Equal(t, 2, got.TotalTechnicians)
	for _, s := range TimeSlots() {
		assert.Equal(t, 0, got.BookingsPerSlot[s])
	}
}

func TestAvailableSlotsExcludesFullSlot(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusPending)
	store.seed(testDay(), "8:00 - 10:00", tech2.ID, model.StatusConfirmed)
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1, tech2}}, store)

	got, err := av.AvailableSlots(context.Background(), testDay())
	require.NoError(t, err)
	assert.NotContains(t, got.AvailableSlots, "8:00 - 10:00")
	assert.Len(t, got.AvailableSlots, 4)
	assert.Equal(t, 2, got.BookingsPerSlot["8:00 - 10:00"])
}

func TestAvailableSlotsCancelledDoesNotCount(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusCancelled)
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1}}, store)

	got, err := av.AvailableSlots(context.Background(), testDay())
	require.NoError(t, err)
	assert.Contains(t, got.AvailableSlots, "8:00 - 10:00")
	assert.Equal(t, 0, got.BookingsPerSlot["8:00 - 10:00"])
}

func TestAvailableSlotsEmptyRoster(t *testing.T) {
	av := NewAvailability(&fakeRoster{}, &fakeStore{})

	got, err := av.AvailableSlots(context.Background(), testDay())
	require.NoError(t, err)
	assert.Empty(t, got.AvailableSlots)
	assert.Equal(t, 0, got.TotalTechnicians)
}

func TestAvailableSlotsOtherDayIgnored(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay().AddDate(0, 0, 1), "8:00 - 10:00", tech1.ID, model.StatusPending)
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1}}, store)

	got, err := av.AvailableSlots(context.Background(), testDay())
	require.NoError(t, err)
	assert.Equal(t, 0, got.BookingsPerSlot["8:00 - 10:00"])
	assert.Len(t, got.AvailableSlots, 5)
}

func TestAvailableTechniciansSubtraction(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusPending)
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1, tech2}}, store)

	got, err := av.AvailableTechnicians(context.Background(), testDay(), "8:00 - 10:00")
	require.NoError(t, err)
	require.Len(t, got.AvailableTechnicians, 1)
	assert.Equal(t, tech2.ID, got.AvailableTechnicians[0].ID)
	assert.Equal(t, 2, got.TotalTechnicians)
	assert.Equal(t, 1, got.BookedCount)
}

func TestAvailableTechniciansRosterOrder(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay(), "10:00 - 12:00", tech2.ID, model.StatusPending)
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1, tech2, tech3}}, store)

	got, err := av.AvailableTechnicians(context.Background(), testDay(), "10:00 - 12:00")
	require.NoError(t, err)
	require.Len(t, got.AvailableTechnicians, 2)
	assert.Equal(t, tech1.ID, got.AvailableTechnicians[0].ID)
	assert.Equal(t, tech3.ID, got.AvailableTechnicians[1].ID)
}

func TestAvailableTechniciansDuplicateClaimsCollapse(t *testing.T) {
	// The capacity invariant forbids duplicates, but a stray pair must
	// count as one booked technician rather than crash or double-count.
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusPending)
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusConfirmed)
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1, tech2}}, store)

	got, err := av.AvailableTechnicians(context.Background(), testDay(), "8:00 - 10:00")
	require.NoError(t, err)
	assert.Equal(t, 1, got.BookedCount)
	require.Len(t, got.AvailableTechnicians, 1)
	assert.Equal(t, tech2.ID, got.AvailableTechnicians[0].ID)
}

func TestAvailableTechniciansUnknownSlot(t *testing.T) {
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1}}, &fakeStore{})

	_, err := av.AvailableTechnicians(context.Background(), testDay(), "20:00 - 22:00")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAvailabilityUpstreamFailures(t *testing.T) {
	boom := errors.New("connection refused")

	av := NewAvailability(&fakeRoster{err: boom}, &fakeStore{})
	_, err := av.AvailableSlots(context.Background(), testDay())
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.ErrorIs(t, err, boom)

	av = NewAvailability(&fakeRoster{techs: []Technician{tech1}}, &fakeStore{queryErr: boom})
	_, err = av.AvailableTechnicians(context.Background(), testDay(), "8:00 - 10:00")
	require.ErrorAs(t, err, &ue)
}

func TestReadsAreDeterministic(t *testing.T) {
	store := &fakeStore{}
	store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusPending)
	store.seed(testDay(), "14:00 - 16:00", tech2.ID, model.StatusInProgress)
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1, tech2, tech3}}, store)

	first, err := av.AvailableSlots(context.Background(), testDay())
	require.NoError(t, err)
	second, err := av.AvailableSlots(context.Background(), testDay())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	t1, err := av.AvailableTechnicians(context.Background(), testDay(), "8:00 - 10:00")
	require.NoError(t, err)
	t2, err := av.AvailableTechnicians(context.Background(), testDay(), "8:00 - 10:00")
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
}

func TestCancellationFreesCapacity(t *testing.T) {
	store := &fakeStore{}
	b := store.seed(testDay(), "8:00 - 10:00", tech1.ID, model.StatusPending)
	av := NewAvailability(&fakeRoster{techs: []Technician{tech1, tech2}}, store)

	before, err := av.AvailableTechnicians(context.Background(), testDay(), "8:00 - 10:00")
	require.NoError(t, err)
	require.Len(t, before.AvailableTechnicians, 1)

	b.Status = model.StatusCancelled

	after, err := av.AvailableTechnicians(context.Background(), testDay(), "8:00 - 10:00")
	require.NoError(t, err)
	require.Len(t, after.AvailableTechnicians, 2)
	assert.Equal(t, tech1.ID, after.AvailableTechnicians[0].ID)
}
