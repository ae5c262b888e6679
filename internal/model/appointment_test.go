package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatusTransitions(t *testing.T) {
	tests := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusPending, AppointmentStatusCompleted, false},
		{AppointmentStatusPending, AppointmentStatusNoShow, false},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusNoShow, true},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusNoShow, AppointmentStatusConfirmed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestAppointmentStatusIsTerminal(t *testing.T) {
	assert.False(t, AppointmentStatusPending.IsTerminal())
	assert.False(t, AppointmentStatusConfirmed.IsTerminal())
	assert.True(t, AppointmentStatusCancelled.IsTerminal())
	assert.True(t, AppointmentStatusCompleted.IsTerminal())
	assert.True(t, AppointmentStatusNoShow.IsTerminal())
}
