// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// Encoding identifies one export format.
type Encoding string

const (
	EncodingMarkdown Encoding = "md"
	EncodingHTML     Encoding = "html"
	EncodingPDF      Encoding = "pdf"
)

// AllEncodings is the default export set.
var AllEncodings = []Encoding{EncodingMarkdown, EncodingHTML, EncodingPDF}

// ParseEncodings parses a comma-separated format list ("md,html,pdf").
func ParseEncodings(s string) ([]Encoding, error) {
	if strings.TrimSpace(s) == "" {
		return AllEncodings, nil
	}
	var encodings []Encoding
	for _, part := range strings.Split(s, ",") {
		switch e := Encoding(strings.TrimSpace(strings.ToLower(part))); e {
		case EncodingMarkdown, EncodingHTML, EncodingPDF:
			encodings = append(encodings, e)
		default:
			return nil, fmt.Errorf("%w: unknown report format %q", types.ErrInvalidInput, part)
		}
	}
	return encodings, nil
}

// ExportResult reports one encoding's outcome. Encodings succeed or fail
// independently; one failure never blocks the others.
type ExportResult struct {
	Encoding Encoding
	Path     string
	Err      error
}

// Exporter writes the canonical report to the requested encodings.
type Exporter struct {
	pdf PDFBackend
	md  goldmark.Markdown
	log zerolog.Logger
}

// NewExporter returns an Exporter. pdf may be nil when no PDF backend is
// installed; PDF exports then fail with a RenderError while other
// encodings proceed.
func NewExporter(pdf PDFBackend, log zerolog.Logger) *Exporter {
	return &Exporter{
		pdf: pdf,
		md:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		log: log,
	}
}

// Export writes the canonical markdown to each target encoding under the
// run directory and returns per-encoding results in target order.
func (e *Exporter) Export(ctx context.Context, canonical, title string, dir run.Dir, targets []Encoding) []ExportResult {
	results := make([]ExportResult, 0, len(targets))

	var htmlDoc string
	var htmlErr error
	needHTML := false
	for _, t := range targets {
		if t == EncodingHTML || t == EncodingPDF {
			needHTML = true
		}
	}
	if needHTML {
		htmlDoc, htmlErr = e.renderHTML(canonical, title)
	}

	for _, target := range targets {
		path := dir.ReportPath(string(target))
		var err error
		switch target {
		case EncodingMarkdown:
			err = os.WriteFile(path, []byte(canonical), 0o644)
		case EncodingHTML:
			if htmlErr != nil {
				err = htmlErr
			} else {
				err = os.WriteFile(path, []byte(htmlDoc), 0o644)
			}
		case EncodingPDF:
			err = e.exportPDF(ctx, htmlDoc, htmlErr, dir, path)
		}

		if err != nil {
			err = &types.RenderError{Encoding: string(target), Err: err}
			e.log.Error().Str("encoding", string(target)).Err(err).Msg("export failed")
		} else {
			e.log.Info().Str("encoding", string(target)).Str("path", path).Msg("export written")
		}
		results = append(results, ExportResult{Encoding: target, Path: path, Err: err})
	}
	return results
}

// exportPDF renders the HTML document to PDF through the external backend.
// The HTML is written to the report.html location if not already present so
// the backend has a file to read.
func (e *Exporter) exportPDF(ctx context.Context, htmlDoc string, htmlErr error, dir run.Dir, pdfPath string) error {
	if htmlErr != nil {
		return htmlErr
	}
	if e.pdf == nil {
		return fmt.Errorf("no PDF backend available (install wkhtmltopdf or weasyprint)")
	}

	htmlPath := dir.ReportPath(string(EncodingHTML))
	if _, err := os.Stat(htmlPath); err != nil {
		if err := os.WriteFile(htmlPath, []byte(htmlDoc), 0o644); err != nil {
			return fmt.Errorf("writing intermediate HTML: %w", err)
		}
	}
	if err := e.pdf.Render(ctx, htmlPath, pdfPath); err != nil {
		return fmt.Errorf("%s: %w", e.pdf.Name(), err)
	}
	return nil
}

// renderHTML converts the canonical markdown to a standalone styled page.
func (e *Exporter) renderHTML(canonical, title string) (string, error) {
	var body bytes.Buffer
	if err := e.md.Convert([]byte(canonical), &body); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	var page bytes.Buffer
	err := htmlShell.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return "", fmt.Errorf("rendering HTML shell: %w", err)
	}
	return page.String(), nil
}

// htmlShell wraps the converted report body in a self-contained page.
var htmlShell = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, "Times New Roman", serif; max-width: 52rem; margin: 2rem auto; padding: 0 1.25rem; color: #1d2733; line-height: 1.65; }
h1, h2, h3 { font-family: "Helvetica Neue", Arial, sans-serif; color: #102a43; line-height: 1.25; }
h1 { border-bottom: 3px solid #334e68; padding-bottom: .4rem; }
h2 { border-bottom: 1px solid #bcccdc; padding-bottom: .25rem; margin-top: 2.2rem; }
a { color: #2b6cb0; text-decoration: none; }
a:hover { text-decoration: underline; }
code { background: #f0f4f8; padding: .1rem .35rem; border-radius: 3px; font-size: .92em; }
table { border-collapse: collapse; width: 100%; font-size: .92em; }
th, td { border: 1px solid #d9e2ec; padding: .4rem .6rem; text-align: left; }
th { background: #f0f4f8; }
blockquote { border-left: 4px solid #bcccdc; margin-left: 0; padding-left: 1rem; color: #486581; }
hr { border: 0; border-top: 1px solid #d9e2ec; margin: 2rem 0; }
@media print { body { max-width: none; margin: 0; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{.Body}}
</body>
</html>
`))
