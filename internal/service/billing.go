package service

import (
	"time"

	"github.com/shopspring/decimal"
)

const blockHours = 6

var (
	blockSurchargeRate = decimal.New(2, -1) // 20%
	hoursPerBlock      = decimal.NewFromInt(blockHours)
)

// Charge is the itemised result of a billing run.
type Charge struct {
	Hours     int64
	Blocks    int64
	Base      decimal.Decimal
	Surcharge decimal.Decimal
	Amount    decimal.Decimal
	Capped    bool
}

// ComputeCharge returns the fee for a rental that started at start and ends
// at now. It never exceeds dailyMax and is never negative.
func ComputeCharge(start, now time.Time, hourlyRate, dailyMax decimal.Decimal) decimal.Decimal {
	return ChargeBreakdown(start, now, hourlyRate, dailyMax).Amount
}

// ChargeBreakdown bills every started hour at hourlyRate. Each complete
// six-hour block i adds 6*rate*0.2*i, and the hours past the last complete
// block add rate*0.2*blocks each. The total is capped at dailyMax.
func ChargeBreakdown(start, now time.Time, hourlyRate, dailyMax decimal.Decimal) Charge {
	hours := billableHours(now.Sub(start))
	blocks := hours / blockHours
	remainder := hours - blocks*blockHours

	blockUnit := hoursPerBlock.Mul(hourlyRate).Mul(blockSurchargeRate)
	// 1 + 2 + ... + blocks
	triangular := decimal.NewFromInt(blocks * (blocks + 1) / 2)
	surcharge := blockUnit.Mul(triangular)
	surcharge = surcharge.Add(decimal.NewFromInt(remainder).
		Mul(hourlyRate).
		Mul(blockSurchargeRate).
		Mul(decimal.NewFromInt(blocks)))

	base := decimal.NewFromInt(hours).Mul(hourlyRate)
	charge := Charge{
		Hours:     hours,
		Blocks:    blocks,
		Base:      base,
		Surcharge: surcharge,
		Amount:    base.Add(surcharge),
	}
	if charge.Amount.GreaterThan(dailyMax) {
		charge.Amount = dailyMax
		charge.Capped = true
	}
	if charge.Amount.IsNegative() {
		charge.Amount = decimal.Zero
	}
	return charge
}

// billableHours rounds elapsed up to whole hours.
func billableHours(elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return 0
	}
	hours := int64(elapsed / time.Hour)
	if elapsed%time.Hour != 0 {
		hours++
	}
	return hours
}
