package domain

import "slices"

// LotSnapshot is the full persisted state of the lot: every table the
// service owns. Stores read and write it as a whole.
type LotSnapshot struct {
	Floors      []Floor          `json:"floors"`
	Rentals     []RentalRecord   `json:"rentals"`
	Rates       RateTable        `json:"rates"`
	Eligibility EligibilityTable `json:"-"`
}

// Clone returns a deep copy.
func (s *LotSnapshot) Clone() *LotSnapshot {
	c := &LotSnapshot{
		Floors:      make([]Floor, len(s.Floors)),
		Rentals:     slices.Clone(s.Rentals),
		Rates:       s.Rates.Clone(),
		Eligibility: s.Eligibility.Clone(),
	}
	for i, f := range s.Floors {
		c.Floors[i] = Floor{Name: f.Name, NextSeq: f.NextSeq, Spots: slices.Clone(f.Spots)}
	}
	return c
}
