package domain

import (
	"math"
	"testing"
	"time"
)

func TestTicketRecord_IsOpen(t *testing.T) {
	created := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	closed := created.Add(5 * time.Hour)

	open := TicketRecord{Number: "100001", CreatedAt: created}
	if !open.IsOpen() {
		t.Error("Expected ticket without close timestamp to be open")
	}

	done := TicketRecord{Number: "100002", CreatedAt: created, ClosedAt: &closed}
	if done.IsOpen() {
		t.Error("Expected ticket with close timestamp to be closed")
	}
}

func TestTicketRecord_ResolutionTime(t *testing.T) {
	created := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	closed := created.Add(90 * time.Minute)

	rec := TicketRecord{Number: "100001", CreatedAt: created, ClosedAt: &closed}
	d, ok := rec.ResolutionTime()
	if !ok {
		t.Fatal("Expected resolution time for closed ticket")
	}
	if d != 90*time.Minute {
		t.Errorf("Expected 90m resolution time, got %s", d)
	}

	open := TicketRecord{Number: "100002", CreatedAt: created}
	if _, ok := open.ResolutionTime(); ok {
		t.Error("Expected no resolution time for open ticket")
	}
}

func TestTicketRecord_Validate(t *testing.T) {
	created := time.Date(2025, 8, 20, 9, 0, 0, 0, time.UTC)
	before := created.Add(-time.Hour)
	after := created.Add(time.Hour)

	valid := TicketRecord{Number: "100001", CreatedAt: created, ClosedAt: &after}
	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}

	missingNumber := TicketRecord{CreatedAt: created}
	if err := missingNumber.Validate(); err != ErrMissingTicketNumber {
		t.Errorf("Expected ErrMissingTicketNumber, got %v", err)
	}

	inverted := TicketRecord{Number: "100002", CreatedAt: created, ClosedAt: &before}
	if err := inverted.Validate(); err != ErrClosedBeforeCreated {
		t.Errorf("Expected ErrClosedBeforeCreated, got %v", err)
	}
}

func TestParseAgeHours(t *testing.T) {
	tests := []struct {
		age      string
		expected float64
	}{
		{"2 h 10 m", 2.0 + 10.0/60.0},
		{"1 d 12 h", 36},
		{"3 d", 72},
		{"45 m", 0.75},
		{"1 D 2 H", 26},
		{"", 0},
		{"n/a", 0},
	}

	for _, tt := range tests {
		got := ParseAgeHours(tt.age)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("ParseAgeHours(%q) = %f, expected %f", tt.age, got, tt.expected)
		}
	}
}

func TestTicketRecord_AgeHours(t *testing.T) {
	ref := time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC)

	withAge := TicketRecord{Number: "1", Age: "1 d 1 h", CreatedAt: ref.Add(-2 * time.Hour)}
	if got := withAge.AgeHours(ref); got != 25 {
		t.Errorf("Expected Age column to win, got %f", got)
	}

	derived := TicketRecord{Number: "2", CreatedAt: ref.Add(-30 * time.Hour)}
	if got := derived.AgeHours(ref); got != 30 {
		t.Errorf("Expected derived age 30h, got %f", got)
	}
}

func TestIsClosedState(t *testing.T) {
	tests := []struct {
		state    string
		expected bool
	}{
		{"closed successful", true},
		{"Closed", true},
		{"resolved", true},
		{"open", false},
		{"pending reminder", false},
		{"new", false},
	}

	for _, tt := range tests {
		if got := IsClosedState(tt.state); got != tt.expected {
			t.Errorf("IsClosedState(%q) = %v, expected %v", tt.state, got, tt.expected)
		}
	}
}

func TestPriorityRank(t *testing.T) {
	tests := []struct {
		priority string
		expected int
	}{
		{"1 very high", 1},
		{"2 high", 2},
		{"3 normal", 3},
		{"5 very low", 5},
		{" 4 low", 4},
		{"urgent", 999},
		{"", 999},
	}

	for _, tt := range tests {
		if got := PriorityRank(tt.priority); got != tt.expected {
			t.Errorf("PriorityRank(%q) = %d, expected %d", tt.priority, got, tt.expected)
		}
	}
}
