package stats

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode selects how grades are highlighted.
type ColorMode int

// Color modes.
const (
	ColorNone ColorMode = iota
	ColorTerminal
	ColorHTML
)

// ColorEnv is the environment variable that forces a color mode ("ON" or "HTML").
const ColorEnv = "CELESTAT_COLOR"

// ResolveColorMode picks the color mode from a setting (auto, always, never,
// html), the environment and whether stdout is a terminal.
func ResolveColorMode(setting string, lookupEnv func(string) (string, bool), isTTY bool) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "", "auto":
	case "always":
		return ColorTerminal, nil
	case "never":
		return ColorNone, nil
	case "html":
		return ColorHTML, nil
	default:
		return ColorNone, fmt.Errorf("unknown color mode %q (want auto, always, never or html)", setting)
	}
	if v, ok := lookupEnv(ColorEnv); ok {
		switch v {
		case "ON":
			return ColorTerminal, nil
		case "HTML":
			return ColorHTML, nil
		}
	}
	if _, ok := lookupEnv("NO_COLOR"); !ok && isTTY {
		return ColorTerminal, nil
	}
	return ColorNone, nil
}

type painter interface {
	paint(g Grade, s string) string
	header(s string) string
	bar() string
}

type plainPainter struct{}

func (plainPainter) paint(_ Grade, s string) string { return s }
func (plainPainter) header(s string) string         { return s }
func (plainPainter) bar() string                    { return "|" }

type ansiPainter struct {
	grades    map[Grade]lipgloss.Style
	headerSty lipgloss.Style
	barSty    lipgloss.Style
}

func newANSIPainter(w io.Writer) ansiPainter {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.ANSI256)
	return ansiPainter{
		grades: map[Grade]lipgloss.Style{
			GradeIrrelevant: r.NewStyle().Foreground(lipgloss.Color("8")),
			GradeSubpar:     r.NewStyle().Foreground(lipgloss.Color("1")),
			GradeNormal:     r.NewStyle().Foreground(lipgloss.Color("15")),
			GradeGood:       r.NewStyle().Foreground(lipgloss.Color("13")),
			GradeBest:       r.NewStyle().Foreground(lipgloss.Color("11")),
		},
		headerSty: r.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("15")),
		barSty:    r.NewStyle().Background(lipgloss.Color("8")),
	}
}

func (p ansiPainter) paint(g Grade, s string) string { return p.grades[g].Render(s) }
func (p ansiPainter) header(s string) string         { return p.headerSty.Render(s) }
func (p ansiPainter) bar() string                    { return p.barSty.Render(" ") }

type htmlPainter struct{}

func (htmlPainter) paint(g Grade, s string) string {
	return fmt.Sprintf(`<span class="%s">%s</span>`, g, html.EscapeString(s))
}

func (htmlPainter) header(s string) string {
	return fmt.Sprintf(`<span class="header">%s</span>`, html.EscapeString(s))
}

func (htmlPainter) bar() string { return `<span class="bar"> </span>` }
