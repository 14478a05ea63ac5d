package store

import (
	"testing"

	"github.com/hyperengineering/aequiflow/internal/types"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   string
	}{
		{"billions", 45_800_000_000, "₱45.80B"},
		{"exactly one billion", 1_000_000_000, "₱1.00B"},
		{"just below one billion", 999_999_999, "₱1000.00M"},
		{"millions", 2_500_000, "₱2.50M"},
		{"exactly one million", 1_000_000, "₱1.00M"},
		{"just below one million", 999_999, "₱999,999"},
		{"thousands", 1_834, "₱1,834"},
		{"small", 127, "₱127"},
		{"zero", 0, "₱0"},
		{"fraction rounds", 1_834.6, "₱1,835"},
		{"million tie rounds up", 1_125_000, "₱1.13M"},
		{"billion tie rounds up", 3_375_000_000, "₱3.38B"},
		{"million below tie rounds down", 1_124_999, "₱1.12M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.amount); got != tt.want {
				t.Errorf("FormatCurrency(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestDisbursementPercent(t *testing.T) {
	tests := []struct {
		name      string
		disbursed float64
		budget    float64
		want      int
	}{
		{"nothing disbursed", 0, 450_000_000, 0},
		{"fully disbursed", 450_000_000, 450_000_000, 100},
		{"seventy percent", 315_000_000, 450_000_000, 70},
		{"rounds half up", 518_500_000, 520_000_000, 100},
		{"rounds down", 28_650_000_000, 45_800_000_000, 63},
		{"zero budget", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisbursementPercent(tt.disbursed, tt.budget); got != tt.want {
				t.Errorf("DisbursementPercent(%v, %v) = %d, want %d", tt.disbursed, tt.budget, got, tt.want)
			}
		})
	}
}

func TestStatusColor(t *testing.T) {
	tests := map[types.ProjectStatus]string{
		types.ProjectOngoing:   "primary",
		types.ProjectDelayed:   "warning",
		types.ProjectCompleted: "success",
		"unknown":              "secondary",
	}

	for status, want := range tests {
		if got := StatusColor(status); got != want {
			t.Errorf("StatusColor(%q) = %q, want %q", status, got, want)
		}
	}
}
