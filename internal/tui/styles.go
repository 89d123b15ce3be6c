package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/elishgi/moneyPlusMinus/internal/core"
)

// The accent colors reuse the segment palette so the legend, the bar
// and the chrome stay on one scheme.
var (
	colorAccent  = lipgloss.Color(core.Palette[0])
	colorWarm    = lipgloss.Color(core.Palette[1])
	colorTeal    = lipgloss.Color(core.Palette[2])
	colorMuted   = lipgloss.Color("#878580")
	colorDim     = lipgloss.Color("#575653")
	colorText    = lipgloss.Color("#FFFCF0")
	colorDanger  = lipgloss.Color("#D14D41")
	colorSuccess = lipgloss.Color("#879A39")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTeal)

	helperStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(lipgloss.Color("#282726")).
			Bold(true)

	rowStyle = lipgloss.NewStyle().
			Foreground(colorText)

	detailRowStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			PaddingLeft(4)

	amountStyle = lipgloss.NewStyle().
			Foreground(colorWarm)

	positiveStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	negativeStyle = lipgloss.NewStyle().
			Foreground(colorDanger).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorDanger)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(1, 2)
)

// remainderStyle colors the balance line by its sign.
func remainderStyle(v float64) lipgloss.Style {
	if v < 0 {
		return negativeStyle
	}
	return positiveStyle
}
