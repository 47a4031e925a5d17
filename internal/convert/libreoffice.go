package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// LibreOffice converts via `soffice --headless --convert-to pdf`. It is
// the preferred backend since it runs on every platform.
type LibreOffice struct {
	binary string
}

func NewLibreOffice(binary string) *LibreOffice {
	if binary == "" {
		binary = "soffice"
	}
	return &LibreOffice{binary: binary}
}

func (l *LibreOffice) Name() string { return "libreoffice" }

func (l *LibreOffice) Available() bool {
	_, err := exec.LookPath(l.binary)
	return err == nil
}

func (l *LibreOffice) Convert(ctx context.Context, inputPath, outputPath string) error {
	outDir := filepath.Dir(outputPath)

	cmd := exec.CommandContext(ctx, l.binary,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", outDir,
		inputPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("soffice: %w: %s", err, excerpt(stderr.String()))
	}

	// soffice always names the output after the input stem; rename when
	// the caller asked for something else.
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(outDir, stem+".pdf")
	if produced != outputPath {
		if err := os.Rename(produced, outputPath); err != nil {
			return fmt.Errorf("soffice: move output: %w", err)
		}
	}
	return nil
}

// excerpt truncates stderr so error messages stay diagnosable but bounded.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 400 {
		return s[:400] + "..."
	}
	return s
}
