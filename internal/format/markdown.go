package format

import (
	"bytes"
	"html/template"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Raw HTML in model output is not passed through: goldmark escapes it
// unless html.WithUnsafe is set.
var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts markdown to HTML for the web pages. On a conversion
// error the source is shown escaped.
func Markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}

// Terminal renders markdown for a terminal of the given width. style is
// a glamour standard style name ("dark", "light", "notty"); empty picks
// one from the terminal.
func Terminal(source string, width int, style string) (string, error) {
	if width <= 0 {
		width = 100
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", err
	}
	return r.Render(source)
}

// FuncMap exposes the formatters to html/template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":       Money,
		"signedMoney": SignedMoney,
		"percent":     Percent,
		"number":      Number,
		"direction":   Direction,
		"tone":        Tone,
		"markdown":    Markdown,
		"currency":    CurrencyFor,
	}
}
