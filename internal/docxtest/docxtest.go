// Package docxtest builds and inspects minimal DOCX packages for tests.
package docxtest

import (
	"archive/zip"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteDocument creates a minimal DOCX package at path whose
// word/document.xml part holds body.
func WriteDocument(t testing.TB, path, body string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0"?><Types/>`},
		{"word/document.xml", body},
		{"word/styles.xml", `<?xml version="1.0"?><styles/>`},
	}
	for _, p := range parts {
		part, err := w.Create(p.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

// DocumentBody extracts the word/document.xml part from the package at path.
func DocumentBody(t testing.TB, path string) string {
	t.Helper()

	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	for _, file := range r.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatal("word/document.xml not found in package")
	return ""
}
