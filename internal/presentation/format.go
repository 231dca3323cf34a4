// Package presentation turns pipeline results into the strings and chart specs the
// dashboard renders.
package presentation

import (
	"fmt"
	"strconv"
	"strings"

	"mtapulse/pkg/contracts/domain"
)

const titleSeparator = " | "

// FormatValue renders a stat-card figure: millions as "2.3M", thousands as "1.5K",
// anything smaller as the plain integer.
func FormatValue(x int64) string {
	v := float64(x)
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return strconv.FormatInt(x, 10)
	}
}

// formatTotal renders a per-mode total for the area chart title.
func formatTotal(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

// FormatTitle joins "Mode: total" pairs in the order of modes, e.g.
// "Subways: 1.2B | Buses: 310.4M".
func FormatTitle(modes []domain.Mode, totals map[domain.Mode]float64) string {
	parts := make([]string, 0, len(modes))
	for _, m := range modes {
		parts = append(parts, m.Label()+": "+formatTotal(totals[m]))
	}
	return strings.Join(parts, titleSeparator)
}

// FormatPercentageTitle joins "Mode: 64.2%" pairs in the order of modes.
func FormatPercentageTitle(modes []domain.Mode, means map[domain.Mode]float64) string {
	parts := make([]string, 0, len(modes))
	for _, m := range modes {
		parts = append(parts, fmt.Sprintf("%s: %.1f%%", m.Label(), means[m]))
	}
	return strings.Join(parts, titleSeparator)
}

// StatCard renders "avg: A, min: B, max: C".
func StatCard(s domain.Stat) string {
	return fmt.Sprintf("avg: %s, min: %s, max: %s",
		FormatValue(s.Mean), FormatValue(s.Min), FormatValue(s.Max))
}
