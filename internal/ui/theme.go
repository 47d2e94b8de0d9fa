package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Habit Galaxy admin theme.

const (
	IconGalaxy = "🌌"
	IconRocket = "🚀"
	IconGem    = "💎"
	IconCoin   = "🪙"
	IconTrophy = "🏆"
	IconFire   = "🔥"
	IconBox    = "📦"
	IconDice   = "🎲"
	IconOK     = "✅"
	IconWarn   = "⚠️"
	IconError  = "🧨"
	IconShield = "🛡️"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// Rank colors the top three places.
func Rank(n int) string {
	s := fmt.Sprintf("#%d", n)
	switch n {
	case 1:
		return Gold.Render(s)
	case 2, 3:
		return H2.Render(s)
	default:
		return Muted.Render(s)
	}
}

// Percent renders p in [0, 1] as a percentage.
func Percent(p float64) string {
	return fmt.Sprintf("%5.1f%%", p*100)
}

// Bar draws a fixed-width progress bar for value out of max.
func Bar(value, max, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if max > 0 {
		filled = value * width / max
	}
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return Good.Render(strings.Repeat("█", filled)) + Muted.Render(strings.Repeat("░", width-filled))
}
