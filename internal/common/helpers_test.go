package common

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPluralizeSpins(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "спинов"},
		{1, "спин"},
		{2, "спина"},
		{4, "спина"},
		{5, "спинов"},
		{11, "спинов"},
		{12, "спинов"},
		{21, "спин"},
		{22, "спина"},
		{111, "спинов"},
		{-3, "спина"},
	}
	for _, tt := range tests {
		if got := PluralizeSpins(tt.n); got != tt.want {
			t.Errorf("PluralizeSpins(%d): expected %q, got %q", tt.n, tt.want, got)
		}
	}
}

func TestFormatSpinsLeft(t *testing.T) {
	tests := map[int]string{
		0:  "спинов не осталось",
		1:  "остался 1 спин",
		3:  "осталось 3 спина",
		21: "остался 21 спин",
		5:  "осталось 5 спинов",
	}
	for n, want := range tests {
		if got := FormatSpinsLeft(n); got != want {
			t.Errorf("FormatSpinsLeft(%d): expected %q, got %q", n, want, got)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1 000",
		2350:    "2 350",
		1000001: "1 000 001",
		-4500:   "-4 500",
	}
	for n, want := range tests {
		if got := FormatNumber(n); got != want {
			t.Errorf("FormatNumber(%d): expected %q, got %q", n, want, got)
		}
	}
}

func TestFormatDecimal(t *testing.T) {
	tests := map[string]string{
		"100":    "100",
		"1250.5": "1 250.5",
		"0.25":   "0.25",
		"-30":    "-30",
	}
	for in, want := range tests {
		if got := FormatDecimal(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatDecimal(%s): expected %q, got %q", in, want, got)
		}
	}
}

func TestDateIn(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	// 22:30 UTC = 01:30 MSK следующего дня
	ts := time.Date(2024, 6, 1, 22, 30, 0, 0, time.UTC)
	got := DateIn(ts, msk)
	if got.Day() != 2 || got.Hour() != 0 {
		t.Errorf("Expected 2nd of June midnight MSK, got %v", got)
	}
	if left := UntilNextDay(ts, msk); left != 22*time.Hour+30*time.Minute {
		t.Errorf("Expected 22h30m until midnight, got %v", left)
	}
}
