package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the draftwiz banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"     _            __ _            _     ", "#818cf8"},
		{"  __| |_ __ __ _ / _| |___      _(_)____", "#a78bfa"},
		{" / _` | '__/ _` | |_| __\\ \\ /\\ / / |_  /", "#c084fc"},
		{"| (_| | | | (_| |  _| |_ \\ V  V /| |/ / ", "#e879f9"},
		{" \\__,_|_|  \\__,_|_|  \\__| \\_/\\_/ |_/___|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
