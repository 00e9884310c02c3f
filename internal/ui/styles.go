package ui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#0969DA")
	accentColor  = lipgloss.Color("#2DA44E")
	warningColor = lipgloss.Color("#D29922")
	errorColor   = lipgloss.Color("#CF222E")
	dimColor     = lipgloss.Color("#6E7681")
	linkColor    = lipgloss.Color("#58A6FF")
	newColor     = lipgloss.Color("#1F6FEB")
	industryCol  = lipgloss.Color("#8250DF")
	sourceColor  = lipgloss.Color("#FFA657")
	tickerColor  = lipgloss.Color("#39D353")

	HeaderStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true)

	SummaryStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TimeStyle = lipgloss.NewStyle().
			Foreground(dimColor).
			Italic(true)

	LinkStyle = lipgloss.NewStyle().
			Foreground(linkColor).
			Underline(true)

	TickerStyle = lipgloss.NewStyle().
			Foreground(tickerColor).
			Bold(true)

	SourceStyle = lipgloss.NewStyle().
			Foreground(sourceColor)

	IndustryStyle = lipgloss.NewStyle().
			Foreground(industryCol).
			Bold(true)

	NewStyle = lipgloss.NewStyle().
			Foreground(newColor).
			Bold(true)

	RecentStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	OKStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	WarnStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	CardStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(dimColor)

	NewCardStyle = CardStyle.
			BorderForeground(newColor)
)
