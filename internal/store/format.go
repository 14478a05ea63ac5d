package store

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/hyperengineering/aequiflow/internal/types"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "₱"

const (
	million = 1_000_000
	billion = 1_000_000_000
)

// FormatCurrency renders amount in pesos with a B or M suffix at two decimals
// from 1e9 and 1e6 upwards, and as a comma-grouped integer below that.
// Ties at the second decimal round up.
func FormatCurrency(amount float64) string {
	switch {
	case amount >= billion:
		return fmt.Sprintf("%s%.2fB", CurrencySymbol, roundHalfUp2(amount/billion))
	case amount >= million:
		return fmt.Sprintf("%s%.2fM", CurrencySymbol, roundHalfUp2(amount/million))
	default:
		return CurrencySymbol + humanize.Comma(int64(math.Round(amount)))
	}
}

// roundHalfUp2 rounds v to two decimals with ties away from zero for
// non-negative v. %.2f alone rounds exact binary ties to even.
func roundHalfUp2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// DisbursementPercent returns round(disbursed/budget*100), or 0 for a zero budget.
func DisbursementPercent(disbursed, budget float64) int {
	if budget <= 0 {
		return 0
	}
	return int(math.Round(disbursed / budget * 100))
}

// StatusColor maps a project status to its display variant.
func StatusColor(status types.ProjectStatus) string {
	switch status {
	case types.ProjectOngoing:
		return "primary"
	case types.ProjectDelayed:
		return "warning"
	case types.ProjectCompleted:
		return "success"
	default:
		return "secondary"
	}
}
