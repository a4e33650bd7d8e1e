package presenter

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newTestPresenter() (*TerminalPresenter, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewWithOptions(&out, &errOut, ColorNever), &out, &errOut
}

func TestError(t *testing.T) {
	p, out, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "loading config")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "[ERROR] loading config: boom")
}

func TestErrorWithoutContext(t *testing.T) {
	p, _, errOut := newTestPresenter()

	p.Error(errors.New("boom"), "")

	assert.Equal(t, "[ERROR] boom\n", errOut.String())
}

func TestErrorNilIsSilent(t *testing.T) {
	p, _, errOut := newTestPresenter()

	p.Error(nil, "context")

	assert.Empty(t, errOut.String())
}

func TestSuccess(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Success("done")

	assert.Equal(t, "✓ done\n", out.String())
}

func TestWarning(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Warning("careful")

	assert.Equal(t, "⚠ careful\n", out.String())
}

func TestInfo(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Info("hello")

	assert.Equal(t, "hello\n", out.String())
}

func TestSection(t *testing.T) {
	p, out, _ := newTestPresenter()

	p.Section("Results")

	assert.Equal(t, "Results\n-------\n", out.String())
}

func TestQuietSuppressesOutput(t *testing.T) {
	p, out, errOut := newTestPresenter()
	p.SetQuiet(true)

	p.Success("done")
	p.Warning("careful")
	p.Info("hello")
	p.Section("Results")
	p.Separator()

	assert.Empty(t, out.String())
	assert.True(t, p.IsQuiet())

	// Errors are never suppressed.
	p.Error(errors.New("boom"), "")
	assert.Contains(t, errOut.String(), "boom")
}
