package services

import (
	"testing"

	"liquidity/internal/core"
)

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		frequency core.Frequency
		want      string
	}{
		{name: "weekly adds seven days", current: "2024-01-01", frequency: core.Weekly, want: "2024-01-08"},
		{name: "weekly crosses year", current: "2024-12-30", frequency: core.Weekly, want: "2025-01-06"},
		{name: "monthly same day", current: "2024-01-15", frequency: core.Monthly, want: "2024-02-15"},
		{name: "monthly clamps to leap february", current: "2024-01-31", frequency: core.Monthly, want: "2024-02-29"},
		{name: "monthly clamps to short february", current: "2023-01-31", frequency: core.Monthly, want: "2023-02-28"},
		{name: "monthly keeps clamped day", current: "2024-02-29", frequency: core.Monthly, want: "2024-03-29"},
		{name: "monthly december rolls year", current: "2024-12-31", frequency: core.Monthly, want: "2025-01-31"},
		{name: "quarterly clamps", current: "2024-11-30", frequency: core.Quarterly, want: "2025-02-28"},
		{name: "quarterly plain", current: "2024-01-15", frequency: core.Quarterly, want: "2024-04-15"},
		{name: "yearly leap day", current: "2024-02-29", frequency: core.Yearly, want: "2025-02-28"},
		{name: "yearly plain", current: "2024-06-01", frequency: core.Yearly, want: "2025-06-01"},
		{name: "unknown falls back to monthly", current: "2024-01-10", frequency: core.Frequency("daily"), want: "2024-02-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(core.MustParseDate(tt.current), tt.frequency)
			if got.String() != tt.want {
				t.Errorf("NextOccurrence(%s, %s) = %s, want %s", tt.current, tt.frequency, got, tt.want)
			}
		})
	}
}

func TestGetStepper(t *testing.T) {
	for _, f := range []core.Frequency{core.Weekly, core.Monthly, core.Quarterly, core.Yearly} {
		if _, err := GetStepper(f); err != nil {
			t.Errorf("GetStepper(%s) error = %v", f, err)
		}
	}
	if _, err := GetStepper(core.Frequency("hourly")); err == nil {
		t.Error("GetStepper(hourly) expected error")
	}
}
