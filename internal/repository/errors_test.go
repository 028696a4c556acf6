package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDupKeyName(t *testing.T) {
	err := errors.New("Error 1062 (23000): Duplicate entry 'AC123456' for key 'bookings.uq_bookings_reference'")
	assert.Equal(t, uqBookingReference, dupKeyName(err))

	err = errors.New("Error 1062 (23000): Duplicate entry '2026-03-12-8:00 - 10:00-3-1' for key 'bookings.uq_bookings_slot_technician'")
	assert.Equal(t, uqBookingSlotTech, dupKeyName(err))

	// Older server builds omit the table prefix.
	err = errors.New("Error 1062: Duplicate entry 'x' for key 'uq_bookings_reference'")
	assert.Equal(t, uqBookingReference, dupKeyName(err))

	assert.Equal(t, "", dupKeyName(errors.New("Error 1213: Deadlock found")))
	assert.Equal(t, "", dupKeyName(nil))
}
