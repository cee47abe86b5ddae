package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking_rental/internal/domain"
	"parking_rental/internal/repository"
)

func TestLotStore_LoadEmpty(t *testing.T) {
	_, err := NewLotStore().Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLotStore_SaveIsolatesCaller(t *testing.T) {
	store := NewLotStore()
	snap := &domain.LotSnapshot{
		Floors:      []domain.Floor{{Name: "B1", NextSeq: 2, Spots: []domain.Spot{{Floor: "B1", ID: "B1_1", ParkingType: "Compact", Status: domain.SpotAvailable}}}},
		Rates:       domain.NewRateTable(decimal.NewFromInt(50)),
		Eligibility: domain.EligibilityTable{},
	}
	require.NoError(t, store.Save(context.Background(), snap))

	snap.Floors[0].Spots[0].Status = domain.SpotOccupied

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.SpotAvailable, loaded.Floors[0].Spots[0].Status)
	assert.Equal(t, 1, store.Saves())
}
