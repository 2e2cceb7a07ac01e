package tui

import "github.com/charmbracelet/lipgloss"

// Theme is the palette of the feed UI, in ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBorder lipgloss.Color
	Border         lipgloss.Color

	Header lipgloss.Color
	Error  lipgloss.Color
	Warn   lipgloss.Color
	OK     lipgloss.Color
}

var DefaultTheme = Theme{
	NormalText:     lipgloss.Color("252"),
	FaintText:      lipgloss.Color("243"),
	SelectedBorder: lipgloss.Color("205"),
	Border:         lipgloss.Color("238"),
	Header:         lipgloss.Color("63"),
	Error:          lipgloss.Color("196"),
	Warn:           lipgloss.Color("214"),
	OK:             lipgloss.Color("42"),
}

type styles struct {
	header   lipgloss.Style
	card     lipgloss.Style
	selected lipgloss.Style
	title    lipgloss.Style
	faint    lipgloss.Style
	errText  lipgloss.Style
	warnText lipgloss.Style
	okText   lipgloss.Style
	modal    lipgloss.Style
}

func newStyles(t Theme) styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.NormalText).
		Padding(0, 1)

	return styles{
		header:   lipgloss.NewStyle().Bold(true).Foreground(t.Header),
		card:     card,
		selected: card.BorderForeground(t.SelectedBorder),
		title:    lipgloss.NewStyle().Bold(true),
		faint:    lipgloss.NewStyle().Foreground(t.FaintText),
		errText:  lipgloss.NewStyle().Foreground(t.Error),
		warnText: lipgloss.NewStyle().Foreground(t.Warn),
		okText:   lipgloss.NewStyle().Foreground(t.OK),
		modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(t.SelectedBorder).
			Padding(1, 2),
	}
}
