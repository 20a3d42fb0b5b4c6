package popup

import "github.com/charmbracelet/lipgloss"

const barWidth = 30

var (
	colorDim    = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorBorder = lipgloss.AdaptiveColor{Light: "#DBDBDB", Dark: "#383838"}
	colorTitle  = lipgloss.AdaptiveColor{Light: "#1A237E", Dark: "#9FA8DA"}

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorTitle)

	scoreStyle = lipgloss.NewStyle().
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Italic(true)

	detailsStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)
)
