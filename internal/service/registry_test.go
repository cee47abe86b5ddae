package service

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_rental/internal/domain"
)

func newTestRegistry(t *testing.T) *SpotRegistry {
	t.Helper()
	elig := domain.EligibilityTable{}
	elig.Set("Compact", []domain.VehicleType{"Car"})
	elig.Set("Large", []domain.VehicleType{"Car", "Van"})
	r := NewSpotRegistry(nil, elig)
	for _, add := range []struct {
		floor string
		pt    domain.ParkingType
	}{
		{"B1", "Compact"}, {"B1", "Large"}, {"B2", "Compact"}, {"B1", "Compact"},
	} {
		_, err := r.AddSpot(add.floor, add.pt)
		require.NoError(t, err)
	}
	return r
}

func spotIDs(spots []domain.Spot) []string {
	ids := make([]string, len(spots))
	for i, s := range spots {
		ids[i] = s.ID
	}
	return ids
}

func TestSpotRegistry_AddSpotAssignsSequentialIDs(t *testing.T) {
	r := newTestRegistry(t)

	b1, ok := r.Spots("B1")
	require.True(t, ok)
	assert.Equal(t, []string{"B1_1", "B1_2", "B1_3"}, spotIDs(b1))

	_, err := r.AddSpot("B1", "Tiny")
	assert.ErrorIs(t, err, ErrUnknownParkingType)
}

func TestSpotRegistry_Available(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		floor    string
		vt       domain.VehicleType
		expected []string
	}{
		{floor: "", vt: "", expected: []string{"B1_1", "B1_2", "B1_3", "B2_1"}},
		{floor: "", vt: "Van", expected: []string{"B1_2"}},
		{floor: "B2", vt: "Car", expected: []string{"B2_1"}},
		{floor: "B3", vt: "Car", expected: []string{}},
		{floor: "", vt: "Truck", expected: []string{}},
	}

	for _, test := range tests {
		got := spotIDs(slices.Collect(r.Available(test.floor, test.vt)))
		assert.Equal(t, test.expected, got, "floor=%q vt=%q", test.floor, test.vt)
	}
}

func TestSpotRegistry_AvailableIsRestartableAndStopsEarly(t *testing.T) {
	r := newTestRegistry(t)
	seq := r.Available("", "Car")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)

	var seen int
	for range seq {
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestSpotRegistry_OccupyAndRelease(t *testing.T) {
	r := newTestRegistry(t)
	spot, ok := r.FindSpot("B1", "B1_1")
	require.True(t, ok)

	require.NoError(t, r.Occupy(spot, "Car", "ABC123", 1, t0))
	assert.Equal(t, domain.SpotOccupied, spot.Status)
	assert.Equal(t, "ABC123", spot.OccupantPlate)
	assert.True(t, spot.RentalStart.Valid)
	assert.NotContains(t, spotIDs(slices.Collect(r.Available("", ""))), "B1_1")

	assert.ErrorIs(t, r.Occupy(spot, "Car", "XYZ789", 1, t0), ErrInvalidState)

	van, _ := r.FindSpot("B1", "B1_3")
	assert.ErrorIs(t, r.Occupy(van, "Van", "XYZ789", 1, t0), ErrInvalidState)

	released, ok := r.Release("ABC123")
	require.True(t, ok)
	assert.Equal(t, "B1_1", released.ID)
	assert.Equal(t, domain.SpotAvailable, spot.Status)
	assert.Empty(t, spot.OccupantPlate)
	assert.Empty(t, spot.AssignedVehicleType)
	assert.False(t, spot.RentalStart.Valid)

	_, ok = r.Release("ABC123")
	assert.False(t, ok)
}

func TestSpotRegistry_RemoveKeepsIDSlot(t *testing.T) {
	r := newTestRegistry(t)

	removed, err := r.RemoveSpot("B1", "B1_2")
	require.NoError(t, err)
	assert.Equal(t, domain.SpotRemoved, removed.Status)
	assert.NotContains(t, spotIDs(slices.Collect(r.Available("", ""))), "B1_2")

	_, err = r.RemoveSpot("B1", "B1_2")
	assert.ErrorIs(t, err, ErrSpotNotFound)

	added, err := r.AddSpot("B1", "Compact")
	require.NoError(t, err)
	assert.Equal(t, "B1_4", added.ID)

	restored, err := r.SetSpotType("B1", "B1_2", "Compact")
	require.NoError(t, err)
	assert.Equal(t, domain.SpotAvailable, restored.Status)
	assert.Equal(t, domain.ParkingType("Compact"), restored.ParkingType)
}

func TestSpotRegistry_OccupiedSpotCannotBeEdited(t *testing.T) {
	r := newTestRegistry(t)
	spot, _ := r.FindSpot("B2", "B2_1")
	require.NoError(t, r.Occupy(spot, "Car", "ABC123", 2, t0))

	_, err := r.RemoveSpot("B2", "B2_1")
	assert.ErrorIs(t, err, ErrAlreadyOccupied)
	_, err = r.SetSpotType("B2", "B2_1", "Large")
	assert.ErrorIs(t, err, ErrAlreadyOccupied)

	cleared, plate, err := r.ClearSpot("B2", "B2_1")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", plate)
	assert.Equal(t, domain.SpotAvailable, cleared.Status)
}
