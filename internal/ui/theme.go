package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	ThemeClassic = "classic"
	ThemeNeon    = "neon"
	ThemeMono    = "mono"
)

// Themes lists the theme names in cycling order.
var Themes = []string{ThemeClassic, ThemeNeon, ThemeMono}

// Theme bundles styles, symbols and the panel border.
// All UI helpers pull from `current`.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Warn, Pending lipgloss.Style
	Selected, Done, Help                                lipgloss.Style

	BoxUnchecked, BoxChecked string
	SymOK, SymFail, SymWarn  string
	Border                   lipgloss.Border
	BorderColor              lipgloss.TerminalColor
}

var current = build(ThemeClassic)

// SetTheme switches the current theme. Unknown names select classic.
func SetTheme(name string) Theme {
	current = build(name)
	return current
}

func Current() Theme { return current }

// NextTheme returns the theme after name in Themes, wrapping around.
func NextTheme(name string) string {
	i := slices.Index(Themes, strings.ToLower(name))
	return Themes[(i+1)%len(Themes)]
}

var asciiBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
}

func build(name string) Theme {
	plain := lipgloss.NewStyle()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ThemeNeon:
		return Theme{
			Name:     ThemeNeon,
			Title:    plain.Bold(true).Foreground(lipgloss.Color("201")),
			Muted:    plain.Foreground(lipgloss.Color("245")),
			Accent:   plain.Foreground(lipgloss.Color("51")),
			Success:  plain.Foreground(lipgloss.Color("46")),
			Error:    plain.Foreground(lipgloss.Color("196")).Bold(true),
			Warn:     plain.Foreground(lipgloss.Color("226")),
			Pending:  plain.Foreground(lipgloss.Color("226")),
			Selected: plain.Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("51")),
			Done:     plain.Faint(true).Strikethrough(true),
			Help:     plain.Foreground(lipgloss.Color("245")),

			BoxUnchecked: "◻", BoxChecked: "◼",
			SymOK: "✔", SymFail: "✖", SymWarn: "▲",
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("201"),
		}
	case ThemeMono:
		return Theme{
			Name:     ThemeMono,
			Title:    plain.Bold(true),
			Muted:    plain,
			Accent:   plain,
			Success:  plain,
			Error:    plain,
			Warn:     plain,
			Pending:  plain,
			Selected: plain.Reverse(true),
			Done:     plain,
			Help:     plain,

			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			SymOK: "ok", SymFail: "error:", SymWarn: "warning:",
			Border:      asciiBorder,
			BorderColor: lipgloss.NoColor{},
		}
	default:
		return Theme{
			Name:     ThemeClassic,
			Title:    plain.Bold(true),
			Muted:    plain.Faint(true),
			Accent:   plain.Foreground(lipgloss.Color("12")),
			Success:  plain.Foreground(lipgloss.Color("42")),
			Error:    plain.Foreground(lipgloss.Color("9")).Bold(true),
			Warn:     plain.Foreground(lipgloss.Color("214")),
			Pending:  plain.Foreground(lipgloss.Color("214")),
			Selected: plain.Bold(true).Reverse(true),
			Done:     plain.Faint(true).Strikethrough(true),
			Help:     plain.Faint(true),

			BoxUnchecked: "☐", BoxChecked: "☑",
			SymOK: "✔", SymFail: "✖", SymWarn: "!",
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.Color("8"),
		}
	}
}
