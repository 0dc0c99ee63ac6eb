package services

import "testing"

func TestApplyFloor(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		amount    int64
		wantNext  int64
		wantDelta int64
	}{
		{name: "simple credit", total: 100, amount: 50, wantNext: 150, wantDelta: 50},
		{name: "simple debit", total: 100, amount: -40, wantNext: 60, wantDelta: -40},
		{name: "debit floors at zero", total: 30, amount: -50, wantNext: 0, wantDelta: -30},
		{name: "debit from zero applies nothing", total: 0, amount: -10, wantNext: 0, wantDelta: 0},
		{name: "zero amount", total: 75, amount: 0, wantNext: 75, wantDelta: 0},
		{name: "credit from zero", total: 0, amount: 25, wantNext: 25, wantDelta: 25},
	}
	for _, tc := range tests {
		next, delta := applyFloor(tc.total, tc.amount)
		if next != tc.wantNext || delta != tc.wantDelta {
			t.Fatalf("%s: applyFloor(%d, %d) = (%d, %d), want (%d, %d)",
				tc.name, tc.total, tc.amount, next, delta, tc.wantNext, tc.wantDelta)
		}
	}
}

func TestApplyFloorNeverNegative(t *testing.T) {
	totals := []int64{0, 1, 10, 1000}
	amounts := []int64{-1, -10, -999, -100000}
	for _, total := range totals {
		for _, amount := range amounts {
			next, delta := applyFloor(total, amount)
			if next < 0 {
				t.Fatalf("applyFloor(%d, %d) produced negative total %d", total, amount, next)
			}
			if next != total+delta {
				t.Fatalf("applyFloor(%d, %d): next %d != total+delta %d", total, amount, next, total+delta)
			}
		}
	}
}
