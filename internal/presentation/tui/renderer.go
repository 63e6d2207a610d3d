package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer that picks a light or dark style
// from the terminal background.
func NewRenderer() (Renderer, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// Plain returns markdown unchanged.
func Plain(markdown string) (string, error) {
	return markdown, nil
}

// ForFile picks the glamour renderer when f is a terminal and Plain
// otherwise, so piped output stays raw markdown.
func ForFile(f *os.File) Renderer {
	if !term.IsTerminal(int(f.Fd())) {
		return Plain
	}
	r, err := NewRenderer()
	if err != nil {
		return Plain
	}
	return r
}
