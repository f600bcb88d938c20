// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"os/exec"
)

// PDFBackend renders an HTML file to PDF through an external tool.
type PDFBackend interface {
	// Name returns the backend identifier ("wkhtmltopdf" or "weasyprint").
	Name() string

	// Available reports whether the backend binary exists on PATH.
	Available() bool

	// Render converts the HTML file at htmlPath into a PDF at pdfPath.
	Render(ctx context.Context, htmlPath, pdfPath string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, name string, args ...string) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w (output: %s)", name, err, string(out))
	}
	return nil
}

// cmdBackend is a PDFBackend implemented by invoking a binary with
// (htmlPath, pdfPath) appended to fixed arguments.
type cmdBackend struct {
	name string
	args []string
	exec executor
}

func (b *cmdBackend) Name() string { return b.name }

func (b *cmdBackend) Available() bool {
	_, err := b.exec.LookPath(b.name)
	return err == nil
}

func (b *cmdBackend) Render(ctx context.Context, htmlPath, pdfPath string) error {
	args := append(append([]string(nil), b.args...), htmlPath, pdfPath)
	return b.exec.Run(ctx, b.name, args...)
}

// NewWkhtmltopdfBackend renders through wkhtmltopdf.
func NewWkhtmltopdfBackend() PDFBackend {
	return &cmdBackend{
		name: "wkhtmltopdf",
		args: []string{"--quiet", "--enable-local-file-access"},
		exec: osExecutor{},
	}
}

// NewWeasyprintBackend renders through weasyprint.
func NewWeasyprintBackend() PDFBackend {
	return &cmdBackend{
		name: "weasyprint",
		exec: osExecutor{},
	}
}

// DetectPDFBackend returns the first available backend, preferring
// wkhtmltopdf, or nil when none is installed. A nil backend is not an
// error here: PDF export fails per-encoding at render time while the
// remaining encodings still succeed.
func DetectPDFBackend() PDFBackend {
	for _, b := range []PDFBackend{NewWkhtmltopdfBackend(), NewWeasyprintBackend()} {
		if b.Available() {
			return b
		}
	}
	return nil
}
