package output

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the terminal styles used by the renderer.
// Colors are dropped when the writer is not a terminal or NO_COLOR is set.
type Styles struct {
	Warning lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles creates styles for output written to w.
func NewStyles(w io.Writer) *Styles {
	r := lipgloss.NewRenderer(w, termenv.WithColorCache(true))
	if termenv.EnvNoColor() {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Styles{
		Warning: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		Success: r.NewStyle().Foreground(lipgloss.Color("2")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
