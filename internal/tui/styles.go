package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})

	focusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorWhite)

	unfocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)
)

// Tab styles.
var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Status badge styles.
var (
	badgeIdleStyle    = lipgloss.NewStyle().Foreground(colorDim)
	badgeRunningStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	badgeErrorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// Log line styles, one per tone.
var (
	logNormalStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	logErrorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	logWarnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	logSuccessStyle = lipgloss.NewStyle().Foreground(colorGreen)
	logClockStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// Mission panel styles.
var (
	sectionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	selectedItemStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})
)

// History status styles.
var (
	historyDoneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	historyActiveStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	historyFailedStyle  = lipgloss.NewStyle().Foreground(colorRed)
	historyPendingStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// Overlay styles.
var (
	overlayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorWhite).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite).
				MarginBottom(1)

	overlayDimStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)
