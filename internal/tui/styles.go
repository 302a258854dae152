package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mr1hm/surgery-dashboard/internal/models"
	"github.com/mr1hm/surgery-dashboard/internal/notify"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2B4570")).
			Padding(0, 1)

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#C0392B")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5C6B8A")).
			Padding(0, 1).
			Width(22)

	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A94A6"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5F7FA"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).MarginTop(1)
)

var severityColors = map[models.AlertSeverity]lipgloss.Color{
	models.AlertSeverityCritical: lipgloss.Color("#E74C3C"),
	models.AlertSeverityHigh:     lipgloss.Color("#E67E22"),
	models.AlertSeverityModerate: lipgloss.Color("#F1C40F"),
	models.AlertSeverityLow:      lipgloss.Color("#2ECC71"),
}

var noticeColors = map[notify.Level]lipgloss.Color{
	notify.LevelInfo:    lipgloss.Color("#3498DB"),
	notify.LevelSuccess: lipgloss.Color("#2ECC71"),
	notify.LevelError:   lipgloss.Color("#E74C3C"),
}

func severityStyle(sev models.AlertSeverity) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(severityColors[sev])
}

func noticeStyle(level notify.Level) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(noticeColors[level])
}
