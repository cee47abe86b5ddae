package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeCharge(t *testing.T) {
	tests := []struct {
		name     string
		elapsed  time.Duration
		rate     string
		dailyMax string
		expected string
	}{
		{name: "one second bills an hour", elapsed: time.Second, rate: "2", dailyMax: "1000", expected: "2"},
		{name: "one second capped", elapsed: time.Second, rate: "70", dailyMax: "50", expected: "50"},
		{name: "exact hours", elapsed: 2 * time.Hour, rate: "2", dailyMax: "50", expected: "4"},
		{name: "partial hour rounds up", elapsed: 2*time.Hour + time.Minute, rate: "2", dailyMax: "50", expected: "6"},
		{name: "five hours no block", elapsed: 5 * time.Hour, rate: "2", dailyMax: "1000", expected: "10"},
		{name: "one block", elapsed: 6 * time.Hour, rate: "2", dailyMax: "1000", expected: "14.4"},
		{name: "one block plus remainder", elapsed: 7 * time.Hour, rate: "2", dailyMax: "1000", expected: "16.8"},
		{name: "four blocks plus remainder", elapsed: 25 * time.Hour, rate: "2", dailyMax: "1000", expected: "75.6"},
		{name: "zero rate", elapsed: 30 * time.Hour, rate: "0", dailyMax: "50", expected: "0"},
		{name: "zero elapsed", elapsed: 0, rate: "2", dailyMax: "50", expected: "0"},
		{name: "negative elapsed", elapsed: -time.Hour, rate: "2", dailyMax: "50", expected: "0"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := ComputeCharge(t0, t0.Add(test.elapsed), dec(test.rate), dec(test.dailyMax))
			assert.True(t, dec(test.expected).Equal(got), "expected %s, got %s", test.expected, got)
		})
	}
}

func TestComputeCharge_NeverExceedsDailyMax(t *testing.T) {
	dailyMax := dec("50")
	for _, elapsed := range []time.Duration{time.Hour, 24 * time.Hour, 24 * 365 * time.Hour, 200 * 24 * 365 * time.Hour} {
		got := ComputeCharge(t0, t0.Add(elapsed), dec("3.5"), dailyMax)
		assert.True(t, got.LessThanOrEqual(dailyMax), "elapsed %s charged %s", elapsed, got)
		assert.False(t, got.IsNegative())
	}
}

func TestChargeBreakdown(t *testing.T) {
	charge := ChargeBreakdown(t0, t0.Add(25*time.Hour), dec("2"), dec("1000"))

	assert.Equal(t, int64(25), charge.Hours)
	assert.Equal(t, int64(4), charge.Blocks)
	assert.True(t, dec("50").Equal(charge.Base))
	assert.True(t, dec("25.6").Equal(charge.Surcharge))
	assert.True(t, dec("75.6").Equal(charge.Amount))
	assert.False(t, charge.Capped)

	capped := ChargeBreakdown(t0, t0.Add(25*time.Hour), dec("2"), dec("50"))
	assert.True(t, capped.Capped)
	assert.True(t, dec("50").Equal(capped.Amount))
}
