package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFB74D"}).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E57373"}).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6A1B9A", Dark: "#CE93D8"}).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#616161", Dark: "#9E9E9E"})
	nameStyle    = lipgloss.NewStyle().Bold(true)
)

func setOutput(out, errOut io.Writer) {
	stdout = out
	stderr = errOut
}

// styled renders s with style unless colors are disabled.
func styled(style lipgloss.Style, s string) string {
	if globalNoColor {
		return s
	}
	return style.Render(s)
}

// printInfo prints an informational message
func printInfo(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintln(stdout, msg)
}

// printSuccess prints a success message
func printSuccess(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "%s %s\n", styled(successStyle, "✓"), msg)
}

// printWarning prints a warning message
func printWarning(msg string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stderr, "%s %s\n", styled(warningStyle, "⚠"), msg)
}

// printErrorMsg prints an error message. It is not affected by --quiet.
func printErrorMsg(msg string) {
	fmt.Fprintf(stderr, "%s %s\n", styled(errorStyle, "✗"), msg)
}

func printHint(msg string) {
	fmt.Fprintf(stderr, "  %s\n", styled(mutedStyle, msg))
}

// printHeader prints a section header
func printHeader(title string) {
	if globalQuiet {
		return
	}
	fmt.Fprintf(stdout, "\n%s\n", styled(headerStyle, title))
}
