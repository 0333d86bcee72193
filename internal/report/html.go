package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; color: #111827; margin: 2rem; }
h1 { color: #1d4ed8; }
table { border-collapse: collapse; width: 100%%; margin: 1rem 0; }
th, td { border-bottom: 1px solid #e5e7eb; padding: .4rem .6rem; text-align: left; }
th { background: #f9fafb; }
blockquote { border-left: 4px solid #f59e0b; margin: 1rem 0; padding: .2rem 1rem; background: #fffbeb; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
%s
</body>
</html>
`

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML converts markdown into a standalone printable page.
func HTML(markdown, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return []byte(fmt.Sprintf(pageTemplate, html.EscapeString(title), body.String())), nil
}
