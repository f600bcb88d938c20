// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	lookPathErr error
	runErr      error

	ranName string
	ranArgs []string
}

func (f *fakeExecutor) LookPath(string) (string, error) {
	return "/usr/bin/fake", f.lookPathErr
}

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) error {
	f.ranName = name
	f.ranArgs = args
	return f.runErr
}

func TestCmdBackend_Available(t *testing.T) {
	onPath := &cmdBackend{name: "wkhtmltopdf", exec: &fakeExecutor{}}
	assert.True(t, onPath.Available())

	missing := &cmdBackend{name: "wkhtmltopdf", exec: &fakeExecutor{lookPathErr: errors.New("not found")}}
	assert.False(t, missing.Available())
}

func TestCmdBackend_RenderArgumentOrder(t *testing.T) {
	exec := &fakeExecutor{}
	b := &cmdBackend{name: "wkhtmltopdf", args: []string{"--quiet"}, exec: exec}

	require.NoError(t, b.Render(context.Background(), "in.html", "out.pdf"))
	assert.Equal(t, "wkhtmltopdf", exec.ranName)
	assert.Equal(t, []string{"--quiet", "in.html", "out.pdf"}, exec.ranArgs)
}

func TestCmdBackend_RenderPropagatesError(t *testing.T) {
	b := &cmdBackend{name: "weasyprint", exec: &fakeExecutor{runErr: errors.New("exit status 1")}}

	err := b.Render(context.Background(), "in.html", "out.pdf")
	assert.Error(t, err)
}
