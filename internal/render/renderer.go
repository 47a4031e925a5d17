// Package render produces DOCX reports from DOCX templates. A template is
// a regular DOCX package whose document body (and headers/footers) contain
// Go text/template markup; rendering executes that markup against the
// request's context map. Missing keys fail the render rather than
// producing silent blanks.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"client-report-engine/internal/common/errors"
	"client-report-engine/internal/common/logger"
)

type Renderer struct {
	templateDir string
	outputDir   string
	log         logger.Logger
}

func New(templateDir, outputDir string, log logger.Logger) *Renderer {
	return &Renderer{
		templateDir: templateDir,
		outputDir:   outputDir,
		log:         log.WithFields(map[string]interface{}{"component": "renderer"}),
	}
}

// OutputDir returns the directory rendered reports are written to.
func (r *Renderer) OutputDir() string {
	return r.outputDir
}

// TemplateExists reports whether templateName resolves to a template file.
func (r *Renderer) TemplateExists(templateName string) bool {
	if !validTemplateName(templateName) {
		return false
	}
	info, err := os.Stat(filepath.Join(r.templateDir, templateName))
	return err == nil && info.Mode().IsRegular()
}

// ListTemplates returns the DOCX template file names found in the template
// directory, sorted.
func (r *Renderer) ListTemplates() ([]string, error) {
	entries, err := os.ReadDir(r.templateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".docx") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Render executes templateName against context and writes the result into
// the output directory. An empty outputName derives a collision-free name
// from the template stem; an explicit outputName must be a plain file name
// (no separators, no leading dot) and overwrites any existing file at that
// path (last-writer-wins). On success the returned path names a fully
// written, closed file.
func (r *Renderer) Render(templateName string, context map[string]interface{}, outputName string) (string, error) {
	if !validTemplateName(templateName) {
		return "", errors.NewRenderError(errors.ErrCodeTemplateNotFound,
			"invalid template name", templateName)
	}

	templatePath := filepath.Join(r.templateDir, templateName)
	if _, err := os.Stat(templatePath); err != nil {
		return "", errors.NewRenderError(errors.ErrCodeTemplateNotFound,
			"template not found", templateName).WithCause(err)
	}

	if outputName == "" {
		outputName = UniqueName(strings.TrimSuffix(templateName, ".docx"))
	} else if !validOutputName(outputName) {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"invalid output filename", outputName)
	}
	if filepath.Ext(outputName) == "" {
		outputName += ".docx"
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outputPath := filepath.Join(r.outputDir, outputName)

	if err := renderPackage(templatePath, outputPath, context); err != nil {
		return "", err
	}

	r.log.Info("report rendered", map[string]interface{}{
		"template": templateName,
		"output":   outputPath,
	})
	return outputPath, nil
}

// UniqueName builds an output file name from stem plus a timestamp and a
// short random suffix so repeated renders never collide.
func UniqueName(stem string) string {
	ts := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.docx", stem, ts, uuid.NewString()[:8])
}

// validTemplateName rejects names that would escape the template directory.
func validTemplateName(name string) bool {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return false
	}
	return name == filepath.Base(name) && name != "." && name != ".."
}

// validOutputName rejects names that would escape the output directory.
// Output names are plain file names: no separators, no leading dot.
func validOutputName(name string) bool {
	if name == "" || strings.ContainsAny(name, "/\\") || strings.HasPrefix(name, ".") {
		return false
	}
	return name == filepath.Base(name)
}
