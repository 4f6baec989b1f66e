package layouts

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Palette holds the CSS custom properties shared by every page.
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
}

func DefaultPalette() Palette {
	return Palette{
		Primary:   "#1f5f3a",
		Secondary: "#f4f1e8",
		Accent:    "#c8a951",
	}
}

func paletteCSSVars(p Palette) string {
	defaults := DefaultPalette()
	return fmt.Sprintf(
		":root{--color-primary:%s;--color-secondary:%s;--color-accent:%s;}",
		colorOrDefault(p.Primary, defaults.Primary),
		colorOrDefault(p.Secondary, defaults.Secondary),
		colorOrDefault(p.Accent, defaults.Accent),
	)
}

func colorOrDefault(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if !isHexColor(trimmed) {
		return fallback
	}
	return trimmed
}

func isHexColor(value string) bool {
	if len(value) != 7 || value[0] != '#' {
		return false
	}
	for _, c := range value[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// Base wraps body in the HTML document shell.
func Base(appName, title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := fmt.Sprintf(
			`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s | %s</title><link rel="stylesheet" href="/static/css/main.css"><style>%s</style></head><body class="min-h-screen bg-[var(--color-secondary)]"><main class="mx-auto max-w-4xl p-6">`,
			html.EscapeString(title),
			html.EscapeString(appName),
			paletteCSSVars(DefaultPalette()),
		)
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
