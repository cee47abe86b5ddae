package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateService_RentAndSettle(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newTestService(t)
	gates := NewGateService(svc)

	err := gates.HandleGateCommand(ctx, `{"command_id":"c1","device_id":"gate-1","action":"rent","timestamp":"2024-03-01T08:00:00Z",
		"plate_number":"abc 123","floor":"B1","spot_id":"B1_1","vehicle_type":"Car","gate":1}`)
	require.NoError(t, err)
	require.Len(t, svc.Rentals(), 1)
	assert.Equal(t, t0, svc.Rentals()[0].RentalStart.Time)

	err = gates.HandleGateCommand(ctx, `{"command_id":"c2","device_id":"gate-2","action":"settle","timestamp":"2024-03-01T10:00:00Z",
		"plate_number":"ABC123","gate":2}`)
	require.NoError(t, err)
	assert.Empty(t, svc.Rentals())

	events := notifier.types()
	require.NotEmpty(t, events)
	last := notifier.events[len(notifier.events)-1]
	assert.Equal(t, 2, last.Gate)
	require.NotNil(t, last.Amount)
	assert.True(t, dec("4").Equal(*last.Amount))
}

func TestGateService_UsesClockWithoutTimestamp(t *testing.T) {
	svc, _, _ := newTestService(t)
	gates := NewGateService(svc)
	gates.clock = func() time.Time { return t0 }

	err := gates.HandleGateCommand(context.Background(), `{"action":"rent","plate_number":"ABC123","floor":"B1","spot_id":"B1_1","vehicle_type":"Car","gate":1}`)
	require.NoError(t, err)
	assert.Equal(t, t0, svc.Rentals()[0].RentalStart.Time)
}

func TestGateService_PermanentErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	gates := NewGateService(svc)

	tests := []struct {
		body     string
		expected error
	}{
		{body: `not json`, expected: ErrMalformedCommand},
		{body: `{"action":"dance","plate_number":"ABC123"}`, expected: ErrMalformedCommand},
		{body: `{"action":"rent","timestamp":"yesterday","plate_number":"ABC123"}`, expected: ErrMalformedCommand},
		{body: `{"action":"settle","plate_number":"ABC123","gate":1}`, expected: ErrCustomerNotFound},
		{body: `{"action":"rent","plate_number":"ABC123","floor":"B1","spot_id":"B1_5","vehicle_type":"Car","gate":1}`, expected: ErrSpotNotFound},
	}

	for _, test := range tests {
		err := gates.HandleGateCommand(context.Background(), test.body)
		assert.ErrorIs(t, err, test.expected, test.body)
		assert.True(t, IsPermanent(err), test.body)
	}

	assert.False(t, IsPermanent(errors.New("connection reset")))
}

func TestGateService_SettleBeforeEntryIsPermanent(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	gates := NewGateService(svc)

	require.NoError(t, gates.HandleGateCommand(ctx, `{"action":"rent","timestamp":"2024-03-01T10:00:00Z",
		"plate_number":"ABC123","floor":"B1","spot_id":"B1_1","vehicle_type":"Car","gate":1}`))

	err := gates.HandleGateCommand(ctx, `{"action":"settle","timestamp":"2024-03-01T08:00:00Z","plate_number":"ABC123","gate":2}`)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.True(t, IsPermanent(err))
	assert.Len(t, svc.Rentals(), 1)
}
