package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"client-report-engine/internal/common/config"
	"client-report-engine/internal/common/errors"
	"client-report-engine/internal/common/logger"
)

// stubBackend is a scriptable Backend for dispatch tests.
type stubBackend struct {
	name      string
	available bool
	fail      error
	output    []byte
	blockCtx  bool
	calls     int
}

func (s *stubBackend) Name() string    { return s.name }
func (s *stubBackend) Available() bool { return s.available }

func (s *stubBackend) Convert(ctx context.Context, inputPath, outputPath string) error {
	s.calls++
	if s.blockCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.fail != nil {
		return s.fail
	}
	return os.WriteFile(outputPath, s.output, 0o644)
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.docx")
	require.NoError(t, os.WriteFile(path, []byte("docx bytes"), 0o644))
	return path
}

func newConverter(t *testing.T, timeout time.Duration, backends ...Backend) *Converter {
	t.Helper()
	return NewWithBackends(backends, timeout, logger.NewTestLogger(t))
}

func TestConvertFirstBackendWins(t *testing.T) {
	first := &stubBackend{name: "first", available: true, output: []byte("%PDF-1.7")}
	second := &stubBackend{name: "second", available: true, output: []byte("%PDF-1.7")}
	c := newConverter(t, time.Second, first, second)

	input := writeInput(t)
	out, err := c.Convert(context.Background(), input, "")
	require.NoError(t, err)

	assert.Equal(t, strings.TrimSuffix(input, ".docx")+".pdf", out)
	assert.FileExists(t, out)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls, "second backend must not run when the first succeeds")
}

func TestConvertFallsThroughToNextBackend(t *testing.T) {
	first := &stubBackend{name: "first", available: true, fail: fmt.Errorf("exit status 77")}
	second := &stubBackend{name: "second", available: true, output: []byte("%PDF-1.7")}
	c := newConverter(t, time.Second, first, second)

	out, err := c.Convert(context.Background(), writeInput(t), "")
	require.NoError(t, err)
	assert.FileExists(t, out)
	assert.Equal(t, 1, second.calls)
}

func TestConvertSkipsUnavailableBackend(t *testing.T) {
	first := &stubBackend{name: "first", available: false}
	second := &stubBackend{name: "second", available: true, output: []byte("%PDF-1.7")}
	c := newConverter(t, time.Second, first, second)

	_, err := c.Convert(context.Background(), writeInput(t), "")
	require.NoError(t, err)
	assert.Zero(t, first.calls)
}

func TestConvertAllBackendsFail(t *testing.T) {
	first := &stubBackend{name: "soffice", available: true, fail: fmt.Errorf("exit status 1: no office found")}
	second := &stubBackend{name: "word", available: true, fail: fmt.Errorf("osascript: Word not installed")}
	c := newConverter(t, time.Second, first, second)

	_, err := c.Convert(context.Background(), writeInput(t), "")
	require.Error(t, err)
	assert.True(t, errors.IsConversion(err))
	assert.Equal(t, errors.ErrCodeConversionFailed, errors.CodeOf(err))

	// The error must name each backend and what it reported.
	msg := err.Error()
	assert.Contains(t, msg, "soffice")
	assert.Contains(t, msg, "exit status 1")
	assert.Contains(t, msg, "word")
}

func TestConvertNoBackendAvailable(t *testing.T) {
	first := &stubBackend{name: "soffice", available: false}
	second := &stubBackend{name: "word", available: false}
	c := newConverter(t, time.Second, first, second)

	_, err := c.Convert(context.Background(), writeInput(t), "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNoBackendAvailable, errors.CodeOf(err))
}

func TestConvertEmptyOutputRejected(t *testing.T) {
	b := &stubBackend{name: "soffice", available: true, output: nil}
	c := newConverter(t, time.Second, b)

	_, err := c.Convert(context.Background(), writeInput(t), "")
	require.Error(t, err)
	assert.True(t, errors.IsConversion(err))
	assert.Contains(t, err.Error(), "empty output file")
}

func TestConvertTimeout(t *testing.T) {
	b := &stubBackend{name: "soffice", available: true, blockCtx: true}
	c := newConverter(t, 50*time.Millisecond, b)

	start := time.Now()
	_, err := c.Convert(context.Background(), writeInput(t), "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConversionTimeout, errors.CodeOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestConvertMissingInput(t *testing.T) {
	b := &stubBackend{name: "soffice", available: true, output: []byte("%PDF-1.7")}
	c := newConverter(t, time.Second, b)

	_, err := c.Convert(context.Background(), filepath.Join(t.TempDir(), "missing.docx"), "")
	require.Error(t, err)
	assert.True(t, errors.IsConversion(err))
	assert.Zero(t, b.calls)
}

func TestConvertExplicitOutputPath(t *testing.T) {
	b := &stubBackend{name: "soffice", available: true, output: []byte("%PDF-1.7")}
	c := newConverter(t, time.Second, b)

	target := filepath.Join(t.TempDir(), "final.pdf")
	out, err := c.Convert(context.Background(), writeInput(t), target)
	require.NoError(t, err)
	assert.Equal(t, target, out)
	assert.FileExists(t, target)
}

func TestNewSelectsBackendsFromConfig(t *testing.T) {
	c := New(config.ConvertConfig{Backend: "libreoffice", TimeoutSeconds: 1}, logger.NewNoOpLogger())
	require.Len(t, c.backends, 1)
	assert.Equal(t, "libreoffice", c.backends[0].Name())

	c = New(config.ConvertConfig{Backend: "auto", TimeoutSeconds: 1}, logger.NewNoOpLogger())
	require.Len(t, c.backends, 2)
	assert.Equal(t, "libreoffice", c.backends[0].Name())
	assert.Equal(t, "word", c.backends[1].Name())
}
