package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuebook/venue-booking-api/internal/model"
)

func TestStateMachineConfirm(t *testing.T) {
	var m ReservationStateMachine

	tests := []struct {
		name     string
		status   string
		active   bool
		wantKind Kind
	}{
		{name: "pending active confirms", status: model.StatusPending, active: true},
		{name: "already confirmed", status: model.StatusConfirmed, active: true, wantKind: KindInvalidTransition},
		{name: "completed", status: model.StatusCompleted, active: true, wantKind: KindInvalidTransition},
		{name: "soft deleted", status: model.StatusCancelled, active: false, wantKind: KindAlreadyCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &model.Reservation{ID: 7, Status: tt.status, IsActive: tt.active}
			tr, err := m.Confirm(res)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.StatusConfirmed, tr.Status)
			assert.True(t, tr.IsActive)
			assert.Equal(t, EventConfirmed, tr.Effect)
		})
	}
}

func TestStateMachineCancel(t *testing.T) {
	var m ReservationStateMachine

	tests := []struct {
		name     string
		status   string
		active   bool
		wantKind Kind
	}{
		{name: "pending cancels", status: model.StatusPending, active: true},
		{name: "confirmed cancels", status: model.StatusConfirmed, active: true},
		{name: "completed cannot cancel", status: model.StatusCompleted, active: true, wantKind: KindInvalidTransition},
		{name: "already inactive", status: model.StatusCancelled, active: false, wantKind: KindAlreadyCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &model.Reservation{ID: 7, Status: tt.status, IsActive: tt.active}
			tr, err := m.Cancel(res)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.StatusCancelled, tr.Status)
			assert.False(t, tr.IsActive)
			assert.Equal(t, EventCancelled, tr.Effect)
		})
	}
}

func TestStateMachineComplete(t *testing.T) {
	var m ReservationStateMachine

	// Completion is allowed from any active status.
	for _, status := range []string{model.StatusPending, model.StatusConfirmed, model.StatusCompleted} {
		tr, err := m.Complete(&model.Reservation{ID: 1, Status: status, IsActive: true})
		require.NoError(t, err, status)
		assert.Equal(t, model.StatusCompleted, tr.Status)
	}

	_, err := m.Complete(&model.Reservation{ID: 1, Status: model.StatusCancelled, IsActive: false})
	assert.Equal(t, KindAlreadyCancelled, KindOf(err))
}

func TestStateMachineReactivate(t *testing.T) {
	var m ReservationStateMachine

	tr, err := m.Reactivate(&model.Reservation{ID: 3, Status: model.StatusCancelled, IsActive: false})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, tr.Status)
	assert.True(t, tr.IsActive)

	_, err = m.Reactivate(&model.Reservation{ID: 3, Status: model.StatusPending, IsActive: true})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(model.StatusPending))
	assert.True(t, ValidStatus(model.StatusCompleted))
	assert.False(t, ValidStatus("UNKNOWN"))
	assert.False(t, ValidStatus(""))
}
