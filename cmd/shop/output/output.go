// Package output prints styled status lines for the shop CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Writer is where messages go. Errors always go to stderr.
var Writer io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...any) {
	fmt.Fprintln(Writer, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	fmt.Fprintln(Writer, warningStyle.Render("⚠ ")+fmt.Sprintf(format, args...))
}

// Error prints an error message
func Error(format string, args ...any) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

// Info prints an info message
func Info(format string, args ...any) {
	fmt.Fprintln(Writer, infoStyle.Render("ℹ ")+fmt.Sprintf(format, args...))
}

// Muted prints a muted message
func Muted(format string, args ...any) {
	fmt.Fprintln(Writer, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	fmt.Fprintln(Writer)
	fmt.Fprintln(Writer, primaryStyle.Render(title))
	fmt.Fprintln(Writer, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// StatusIcon returns a colored icon for an order status.
func StatusIcon(status string) string {
	switch status {
	case "completed", "shipped":
		return successStyle.Render("✓")
	case "pending", "awaiting fulfillment", "awaiting shipment":
		return warningStyle.Render("○")
	case "cancelled", "refunded":
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("•")
	}
}
