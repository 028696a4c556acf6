package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusPending, StatusConfirmed},
		{StatusConfirmed, StatusInProgress},
		{StatusInProgress, StatusCompleted},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
		{StatusInProgress, StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc[0], tc[1]), "%s -> %s should be allowed", tc[0], tc[1])
	}

	denied := [][2]string{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCompleted},
		{StatusConfirmed, StatusCompleted},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusCompleted, StatusConfirmed},
		{StatusInProgress, StatusPending},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc[0], tc[1]), "%s -> %s should be denied", tc[0], tc[1])
	}
}

func TestReleasesCapacity(t *testing.T) {
	assert.True(t, ReleasesCapacity(StatusCancelled))
	for _, s := range []string{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted} {
		assert.False(t, ReleasesCapacity(s))
	}
}

func TestValidServiceType(t *testing.T) {
	assert.True(t, ValidServiceType("maintenance-plan"))
	assert.False(t, ValidServiceType("window-cleaning"))
	assert.False(t, ValidServiceType(""))
}
