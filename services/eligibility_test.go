package services

import (
	"testing"
	"time"

	"gamer-network-system/models"
)

func TestOGCount(t *testing.T) {
	tests := []struct {
		members int
		want    int
	}{
		{members: 0, want: 0},
		{members: 1, want: 1},
		{members: 2, want: 1},
		{members: 3, want: 1},
		{members: 4, want: 1},
		{members: 5, want: 2},
		{members: 8, want: 2},
		{members: 9, want: 3},
		{members: 100, want: 25},
		{members: 101, want: 26},
	}
	for _, tc := range tests {
		if got := OGCount(tc.members); got != tc.want {
			t.Fatalf("OGCount(%d) = %d, want %d", tc.members, got, tc.want)
		}
	}
}

func memberAt(id string, joined time.Time) models.User {
	return models.User{ID: id, NetworkJoinedAt: joined}
}

func TestOGSetPicksEarliestJoiners(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	members := []models.User{
		memberAt("u3", t0.Add(2*time.Hour)),
		memberAt("u1", t0),
		memberAt("u5", t0.Add(4*time.Hour)),
		memberAt("u2", t0.Add(1*time.Hour)),
		memberAt("u4", t0.Add(3*time.Hour)),
	}

	og := OGSet(members)
	if len(og) != 2 {
		t.Fatalf("expected 2 OG members for 5, got %d", len(og))
	}
	if !og["u1"] || !og["u2"] {
		t.Fatalf("expected u1 and u2 to be OG, got %v", og)
	}
}

func TestOGSetSingleMember(t *testing.T) {
	og := OGSet([]models.User{memberAt("solo", time.Now())})
	if len(og) != 1 || !og["solo"] {
		t.Fatalf("a lone member must always be OG, got %v", og)
	}
}

func TestOGSetTieBreaksOnID(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	members := []models.User{
		memberAt("b", t0),
		memberAt("a", t0),
		memberAt("c", t0.Add(time.Hour)),
	}

	og := OGSet(members)
	if len(og) != 1 || !og["a"] {
		t.Fatalf("tie on joined_at should favor lower id, got %v", og)
	}
}

func TestOGSetShiftsAfterMembershipChange(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	members := []models.User{
		memberAt("u1", t0),
		memberAt("u2", t0.Add(time.Hour)),
		memberAt("u3", t0.Add(2*time.Hour)),
		memberAt("u4", t0.Add(3*time.Hour)),
		memberAt("u5", t0.Add(4*time.Hour)),
	}
	if og := OGSet(members); !og["u2"] {
		t.Fatalf("expected u2 OG with 5 members")
	}

	// u1 leaves: with 4 members only the earliest remains eligible.
	og := OGSet(members[1:])
	if len(og) != 1 || !og["u2"] {
		t.Fatalf("expected only u2 OG with 4 members, got %v", og)
	}
}
