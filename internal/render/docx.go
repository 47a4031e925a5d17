package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"client-report-engine/internal/common/errors"
)

// renderPackage copies the DOCX zip at srcPath to dstPath, executing the
// template markup in the document body, header, and footer parts. The
// output is staged in a temp file and renamed into place so a failed
// render leaves no partial artifact behind.
func renderPackage(srcPath, dstPath string, context map[string]interface{}) error {
	reader, err := zip.OpenReader(srcPath)
	if err != nil {
		return errors.NewRenderError(errors.ErrCodeTemplateInvalid,
			"not a valid document template", filepath.Base(srcPath)).WithCause(err)
	}
	defer reader.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".render-*.docx")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	writer := zip.NewWriter(tmp)
	for _, file := range reader.File {
		if err := writePart(writer, file, context); err != nil {
			cleanup()
			return err
		}
	}

	if err := writer.Close(); err != nil {
		cleanup()
		return fmt.Errorf("finalize output package: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close output package: %w", err)
	}
	if err := os.Rename(tmpName, dstPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

func writePart(writer *zip.Writer, file *zip.File, context map[string]interface{}) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open package part %s: %w", file.Name, err)
	}
	defer src.Close()

	header := file.FileHeader
	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return fmt.Errorf("create package part %s: %w", file.Name, err)
	}

	if !isTemplatePart(file.Name) {
		if _, err := io.Copy(dst, src); err != nil {
			return fmt.Errorf("copy package part %s: %w", file.Name, err)
		}
		return nil
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("read package part %s: %w", file.Name, err)
	}

	rendered, err := executePart(file.Name, raw, context)
	if err != nil {
		return err
	}
	if _, err := dst.Write(rendered); err != nil {
		return fmt.Errorf("write package part %s: %w", file.Name, err)
	}
	return nil
}

func executePart(name string, raw []byte, context map[string]interface{}) ([]byte, error) {
	tpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, errors.NewRenderError(errors.ErrCodeRenderFailed,
			"template parse failed", fmt.Sprintf("%s: %v", name, err)).WithCause(err)
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, context); err != nil {
		return nil, errors.NewRenderError(errors.ErrCodeRenderFailed,
			"template execution failed", fmt.Sprintf("%s: %v", name, err)).WithCause(err)
	}
	return buf.Bytes(), nil
}

// isTemplatePart selects the parts of the DOCX package that carry
// placeholder markup: the document body plus headers and footers.
func isTemplatePart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}
