// Package convert turns rendered DOCX reports into PDF artifacts by
// delegating to an external conversion backend. Backends are tried in
// order until one succeeds; a single Convert call never retries a backend.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"client-report-engine/internal/common/config"
	"client-report-engine/internal/common/errors"
	"client-report-engine/internal/common/logger"
)

// Backend is one candidate conversion implementation.
type Backend interface {
	Name() string
	// Available reports whether the backend can run on this host.
	Available() bool
	// Convert writes a PDF for inputPath at outputPath. It must respect
	// ctx cancellation and kill any spawned process on deadline.
	Convert(ctx context.Context, inputPath, outputPath string) error
}

type Converter struct {
	backends []Backend
	timeout  time.Duration
	log      logger.Logger
}

// New builds a converter from config: "auto" tries LibreOffice first and
// Word automation second; the named modes pin a single backend.
func New(cfg config.ConvertConfig, log logger.Logger) *Converter {
	var backends []Backend
	switch cfg.Backend {
	case "libreoffice":
		backends = []Backend{NewLibreOffice(cfg.SofficeBinary)}
	case "word":
		backends = []Backend{NewWordAutomation()}
	default:
		backends = []Backend{NewLibreOffice(cfg.SofficeBinary), NewWordAutomation()}
	}
	return NewWithBackends(backends, time.Duration(cfg.TimeoutSeconds)*time.Second, log)
}

func NewWithBackends(backends []Backend, timeout time.Duration, log logger.Logger) *Converter {
	return &Converter{
		backends: backends,
		timeout:  timeout,
		log:      log.WithFields(map[string]interface{}{"component": "converter"}),
	}
}

// Convert produces a PDF for inputPath. An empty outputPath derives the
// same-stem .pdf name next to the input. On success the output file exists
// and is non-empty.
func (c *Converter) Convert(ctx context.Context, inputPath, outputPath string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", errors.NewConversionError(errors.ErrCodeConversionFailed,
			"conversion input missing", inputPath).WithCause(err)
	}

	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = strings.TrimSuffix(inputPath, ext) + ".pdf"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var attempts []string
	for _, backend := range c.backends {
		if !backend.Available() {
			attempts = append(attempts, fmt.Sprintf("%s: unavailable", backend.Name()))
			continue
		}

		start := time.Now()
		err := backend.Convert(ctx, inputPath, outputPath)
		if err == nil {
			if verifyErr := verifyOutput(outputPath); verifyErr != nil {
				attempts = append(attempts, fmt.Sprintf("%s: %v", backend.Name(), verifyErr))
				continue
			}
			c.log.Info("conversion complete", map[string]interface{}{
				"backend":  backend.Name(),
				"output":   outputPath,
				"duration": time.Since(start).String(),
			})
			return outputPath, nil
		}

		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewConversionError(errors.ErrCodeConversionTimeout,
				"conversion timed out",
				fmt.Sprintf("%s: exceeded %s", backend.Name(), c.timeout)).WithCause(err)
		}

		c.log.Warn("conversion backend failed", map[string]interface{}{
			"backend": backend.Name(),
			"error":   err.Error(),
		})
		attempts = append(attempts, fmt.Sprintf("%s: %v", backend.Name(), err))
	}

	if len(attempts) == 0 {
		return "", errors.NewConversionError(errors.ErrCodeNoBackendAvailable,
			"no conversion backend configured", "")
	}

	code := errors.ErrCodeConversionFailed
	if allUnavailable(attempts) {
		code = errors.ErrCodeNoBackendAvailable
	}
	return "", errors.NewConversionError(code,
		"conversion failed", strings.Join(attempts, "; "))
}

func verifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("produced no output file")
	}
	if info.Size() == 0 {
		return fmt.Errorf("produced an empty output file")
	}
	return nil
}

func allUnavailable(attempts []string) bool {
	for _, a := range attempts {
		if !strings.HasSuffix(a, ": unavailable") {
			return false
		}
	}
	return true
}
