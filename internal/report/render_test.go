// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-digest/internal/run"
	"github.com/pdiddy/arxiv-digest/pkg/types"
)

type fakePDFBackend struct {
	err    error
	called bool
}

func (f *fakePDFBackend) Name() string    { return "fake" }
func (f *fakePDFBackend) Available() bool { return true }

func (f *fakePDFBackend) Render(_ context.Context, _, pdfPath string) error {
	f.called = true
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644)
}

func exportDir(t *testing.T) run.Dir {
	t.Helper()
	dir, err := run.New(t.TempDir(), "export test", time.Now())
	require.NoError(t, err)
	return dir
}

func TestParseEncodings(t *testing.T) {
	all, err := ParseEncodings("")
	require.NoError(t, err)
	assert.Equal(t, AllEncodings, all)

	got, err := ParseEncodings("md, HTML")
	require.NoError(t, err)
	assert.Equal(t, []Encoding{EncodingMarkdown, EncodingHTML}, got)

	_, err = ParseEncodings("md,docx")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestExport_MarkdownAndHTMLCarrySameContent(t *testing.T) {
	dir := exportDir(t)
	canonical := "## **Paper Catalog**\n\n**Total Papers Analyzed**: 2\n\nBody text here.\n"

	e := NewExporter(nil, zerolog.Nop())
	results := e.Export(context.Background(), canonical, "Export Test Report", dir,
		[]Encoding{EncodingMarkdown, EncodingHTML})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}

	md, err := os.ReadFile(dir.ReportPath("md"))
	require.NoError(t, err)
	assert.Equal(t, canonical, string(md))

	html, err := os.ReadFile(dir.ReportPath("html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>Export Test Report</title>")
	assert.Contains(t, string(html), "Total Papers Analyzed")
	assert.Contains(t, string(html), "Body text here.")
}

func TestExport_PDFThroughBackend(t *testing.T) {
	dir := exportDir(t)
	backend := &fakePDFBackend{}

	e := NewExporter(backend, zerolog.Nop())
	results := e.Export(context.Background(), "content\n", "t", dir, AllEncodings)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.NoError(t, r.Err, string(r.Encoding))
	}
	assert.True(t, backend.called)

	pdf, err := os.ReadFile(dir.ReportPath("pdf"))
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestExport_PDFFailureDoesNotBlockOthers(t *testing.T) {
	dir := exportDir(t)
	backend := &fakePDFBackend{err: errors.New("renderer crashed")}

	e := NewExporter(backend, zerolog.Nop())
	results := e.Export(context.Background(), "content\n", "t", dir, AllEncodings)
	require.Len(t, results, 3)

	byEncoding := map[Encoding]ExportResult{}
	for _, r := range results {
		byEncoding[r.Encoding] = r
	}

	assert.NoError(t, byEncoding[EncodingMarkdown].Err)
	assert.NoError(t, byEncoding[EncodingHTML].Err)

	pdfErr := byEncoding[EncodingPDF].Err
	require.Error(t, pdfErr)
	var renderErr *types.RenderError
	assert.ErrorAs(t, pdfErr, &renderErr)
	assert.Equal(t, "pdf", renderErr.Encoding)

	// The other encodings still landed on disk.
	_, err := os.Stat(dir.ReportPath("md"))
	assert.NoError(t, err)
	_, err = os.Stat(dir.ReportPath("html"))
	assert.NoError(t, err)
}

func TestExport_PDFWithoutBackendFails(t *testing.T) {
	dir := exportDir(t)

	e := NewExporter(nil, zerolog.Nop())
	results := e.Export(context.Background(), "content\n", "t", dir, []Encoding{EncodingPDF})
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "no PDF backend")
}

func TestExport_PDFOnlyWritesIntermediateHTML(t *testing.T) {
	dir := exportDir(t)
	backend := &fakePDFBackend{}

	e := NewExporter(backend, zerolog.Nop())
	results := e.Export(context.Background(), "content\n", "t", dir, []Encoding{EncodingPDF})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	// The backend needs an HTML file to read even when html was not requested.
	_, err := os.Stat(dir.ReportPath("html"))
	assert.NoError(t, err)
}
