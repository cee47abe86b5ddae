package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRentalLedger_GetOrCreate(t *testing.T) {
	l := NewRentalLedger(nil)

	rec, created := l.GetOrCreate("ABC123")
	assert.True(t, created)
	assert.Equal(t, "ABC123", rec.PlateNumber)
	assert.False(t, rec.RentalStart.Valid)
	assert.True(t, rec.Payment.IsZero())

	again, created := l.GetOrCreate("ABC123")
	assert.False(t, created)
	assert.Same(t, rec, again)
	assert.Equal(t, 1, l.Len())
}

func TestRentalLedger_CloseRental(t *testing.T) {
	l := NewRentalLedger(nil)

	_, err := l.CloseRental("ABC123")
	assert.ErrorIs(t, err, ErrCustomerNotFound)

	l.GetOrCreate("ABC123")
	_, err = l.CloseRental("ABC123")
	assert.ErrorIs(t, err, ErrCustomerNotFound, "a record without a rental cannot be settled")

	l.StartRental("ABC123", "Compact", "Car", 3, t0)
	rec, err := l.CloseRental("ABC123")
	require.NoError(t, err)
	assert.Equal(t, t0, rec.RentalStart.Time)
	assert.Equal(t, 3, rec.Entrance)
	assert.False(t, rec.RentalEnd.Valid)

	l.Remove("ABC123")
	_, ok := l.Get("ABC123")
	assert.False(t, ok)
}

func TestRentalLedger_RecordsSortedByPlate(t *testing.T) {
	l := NewRentalLedger(nil)
	l.GetOrCreate("ZZZ999")
	l.StartRental("AAA111", "Compact", "Car", 1, t0)

	records := l.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "AAA111", records[0].PlateNumber)
	assert.Equal(t, "ZZZ999", records[1].PlateNumber)

	records[0].Entrance = 42
	rec, _ := l.Get("AAA111")
	assert.Equal(t, 1, rec.Entrance)
}
