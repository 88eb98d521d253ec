package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

// Terminal styles for CLI output. lipgloss drops the colors when stdout is
// not a terminal. Table cells stay unstyled so tabwriter can align them.
var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)
