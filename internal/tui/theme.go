package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent    = lipgloss.Color("62")
	colorMuted     = lipgloss.Color("241")
	colorError     = lipgloss.Color("203")
	colorPublished = lipgloss.Color("36")
	colorDone      = lipgloss.Color("78")
	colorRedFlag   = lipgloss.Color("196")
	colorYellow    = lipgloss.Color("220")
	colorSelBg     = lipgloss.Color("237")
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleError = lipgloss.NewStyle().Foreground(colorError)

	styleHeader   = lipgloss.NewStyle().Bold(true).Foreground(colorMuted).Underline(true)
	styleSelected = lipgloss.NewStyle().Background(colorSelBg)

	stylePublishedRow = lipgloss.NewStyle().Foreground(colorPublished)
	styleEditing      = lipgloss.NewStyle().Foreground(colorYellow)

	styleStageDone    = lipgloss.NewStyle().Foreground(colorDone)
	styleStageCurrent = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleStagePublish = lipgloss.NewStyle().Bold(true).Foreground(colorPublished)

	styleModalBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	styleBtn = lipgloss.NewStyle().Padding(0, 1).Background(colorSelBg)
	styleBtnActive = lipgloss.NewStyle().Padding(0, 1).
			Background(colorAccent).Foreground(lipgloss.Color("230")).Bold(true)
)

// colorDot renders the status-color flag as a single glyph.
func colorDot(c string) string {
	switch c {
	case "red":
		return lipgloss.NewStyle().Foreground(colorRedFlag).Render("●")
	case "yellow":
		return lipgloss.NewStyle().Foreground(colorYellow).Render("●")
	default:
		return styleMuted.Render("○")
	}
}
