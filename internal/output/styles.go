package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// Palette.
const (
	ColorGreen  = "42"
	ColorBlue   = "39"
	ColorPurple = "141"
	ColorYellow = "220"
	ColorRed    = "196"
	ColorGray   = "245"
	ColorWhite  = "255"
)

// Styles holds the text styles for terminal output.
type Styles struct {
	Header  lipgloss.Style
	Source  lipgloss.Style
	Term    lipgloss.Style
	Dim     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	media map[referer.Medium]lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Source:  lipgloss.NewStyle().Bold(true),
		Term:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		media: map[referer.Medium]lipgloss.Style{
			referer.MediumSearch:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
			referer.MediumSocial:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBlue)),
			referer.MediumEmail:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPurple)),
			referer.MediumInternal: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWhite)),
			referer.MediumUnknown:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		},
	}
}

// NoColorStyles returns unstyled components for plain output.
func NoColorStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Header:  plain,
		Source:  plain,
		Term:    plain,
		Dim:     plain,
		Success: plain,
		Warning: plain,
		Error:   plain,
	}
}

// Medium returns the style for m.
func (s Styles) Medium(m referer.Medium) lipgloss.Style {
	if st, ok := s.media[m]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
