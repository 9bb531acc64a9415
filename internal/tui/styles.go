package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/cbdemo/pkg/domain"
	"github.com/naveenspark/cbdemo/pkg/timebomb"
)

// Shimmer animation for the header wordmark.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders the spaced wordmark as a wave of light running
// from deep navy (#1a2a4a) to ledger blue (#60a5fa).
func renderShimmerLogo(frame int) string {
	const text = "CBDEMO"
	n := len(text)
	t := float64(frame)

	var b strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0 + math.Sin(t*0.023)*2.0

		v := math.Pow(math.Sin(phase)*0.5+0.5, 1.3)
		v = v*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		v = math.Max(0.05, math.Min(1, v))

		r := clampByte(26 + v*(96-26))
		g := clampByte(42 + v*(165-42))
		bl := clampByte(74 + v*(250-74))

		b.WriteString(lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl))).
			Render(string(text[i])))
		if i < n-1 {
			b.WriteString("  ")
		}
	}
	return b.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0")).
			Width(10)

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60a5fa"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#34d474"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844")).
			Bold(true)

	// Timer classes
	timerNewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	timerArmedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24"))

	timerExpiredStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f87171")).
				Strikethrough(true)
)

// timerStyle returns the style for a decoded timebomb's display class.
func timerStyle(c timebomb.Class) lipgloss.Style {
	switch c {
	case timebomb.ClassArmed:
		return timerArmedStyle
	case timebomb.ClassExpired:
		return timerExpiredStyle
	default:
		return timerNewStyle
	}
}

// lifeStyle colors a lifecycle state: green while usable, amber while
// waiting, red once it is over.
func lifeStyle(s domain.LifeState) lipgloss.Style {
	switch {
	case s == domain.LifeInUse || s >= domain.LifeProvisioned:
		return okStyle
	case s == domain.LifePendingPairing || s == domain.LifePendingValidation:
		return warnStyle
	default:
		return errorStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// row renders a "label value" line of a detail view.
func row(label, value string) string {
	return " " + labelStyle.Render(label) + " " + value + "\n"
}
