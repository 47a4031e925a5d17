package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"client-report-engine/internal/brandstore"
	"client-report-engine/internal/common/config"
	"client-report-engine/internal/common/errors"
	"client-report-engine/internal/common/logger"
	"client-report-engine/internal/docxtest"
	"client-report-engine/internal/models"
	"client-report-engine/internal/render"
	"client-report-engine/internal/report"
)

type apiConverter struct {
	fail  error
	calls int
}

func (c *apiConverter) Convert(ctx context.Context, inputPath, outputPath string) (string, error) {
	c.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.fail != nil {
		return "", c.fail
	}
	out := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".pdf"
	if err := os.WriteFile(out, []byte("%PDF-1.7"), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

type testAPI struct {
	server    *Server
	store     *brandstore.Store
	converter *apiConverter
	outputDir string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	dir := t.TempDir()
	templateDir := filepath.Join(dir, "templates")
	outputDir := filepath.Join(dir, "output")
	require.NoError(t, os.MkdirAll(templateDir, 0o755))

	docxtest.WriteDocument(t, filepath.Join(templateDir, "monthly.docx"),
		`<w:t>{{.client_name}}</w:t>{{range .metrics}}<w:t>{{.name}}: {{.value}}</w:t>{{end}}`)

	log := logger.NewTestLogger(t)
	store, err := brandstore.New(filepath.Join(dir, "brands.json"), filepath.Join(dir, "logos"), log)
	require.NoError(t, err)

	renderer := render.New(templateDir, outputDir, log)
	converter := &apiConverter{}
	generator := report.NewGenerator(store, renderer, converter, nil, log)

	cfg := &config.Config{}
	cfg.App.Version = "1.0.0"
	cfg.Server.MaxUploadBytes = 1 << 20

	return &testAPI{
		server:    NewServer(cfg, store, renderer, generator, log),
		store:     store,
		converter: converter,
		outputDir: outputDir,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.server.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartUpload(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestClientCRUD(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/clients", models.BrandRecord{
		ClientID:     "Acme Corp",
		DisplayName:  "Acme Corp",
		PrimaryColor: "#004481",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var stored models.BrandRecord
	decodeBody(t, rec, &stored)
	assert.Equal(t, "acme_corp", stored.ClientID)

	rec = a.do(t, http.MethodGet, "/clients/acme_corp", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/clients", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.BrandRecord
	decodeBody(t, rec, &list)
	require.Len(t, list, 1)

	rec = a.do(t, http.MethodDelete, "/clients/acme_corp", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(t, http.MethodGet, "/clients/acme_corp", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodDelete, "/clients/acme_corp", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpsertRequiresClientID(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodPost, "/clients", models.BrandRecord{DisplayName: "No ID"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoUpload(t *testing.T) {
	a := newTestAPI(t)
	_, err := a.store.Upsert(models.BrandRecord{ClientID: "acme", DisplayName: "Acme"})
	require.NoError(t, err)

	t.Run("valid image", func(t *testing.T) {
		req := multipartUpload(t, "/clients/acme/logo", "logo.png", pngBytes(t))
		rec := httptest.NewRecorder()
		a.server.Router().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var updated models.BrandRecord
		decodeBody(t, rec, &updated)
		assert.NotEmpty(t, updated.LogoPath)
		assert.FileExists(t, updated.LogoPath)
	})

	t.Run("not an image", func(t *testing.T) {
		req := multipartUpload(t, "/clients/acme/logo", "logo.txt", []byte("plain text"))
		rec := httptest.NewRecorder()
		a.server.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown client", func(t *testing.T) {
		req := multipartUpload(t, "/clients/ghost/logo", "logo.png", pngBytes(t))
		rec := httptest.NewRecorder()
		a.server.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListTemplates(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodGet, "/templates", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	decodeBody(t, rec, &body)
	assert.Equal(t, []string{"monthly.docx"}, body["templates"])
}

func TestGenerateReport(t *testing.T) {
	a := newTestAPI(t)
	_, err := a.store.Upsert(models.BrandRecord{ClientID: "acme", DisplayName: "Acme Corp"})
	require.NoError(t, err)

	rec := a.do(t, http.MethodPost, "/reports/generate", models.ReportRequest{
		ClientID:     "acme",
		TemplateName: "monthly.docx",
		Metrics: []models.MetricItem{
			{Name: "Revenue", Value: "$1M", Change: "+10%", Status: "positive"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var artifacts models.GeneratedArtifacts
	decodeBody(t, rec, &artifacts)
	assert.NotEmpty(t, artifacts.DocxPath)
	assert.Empty(t, artifacts.PDFPath)
	assert.FileExists(t, artifacts.DocxPath)
}

func TestGenerateReportValidationFailures(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{
			name: "unknown template",
			body: models.ReportRequest{TemplateName: "nope.docx"},
			code: string(errors.ErrCodeUnknownTemplate),
		},
		{
			name: "unknown client",
			body: models.ReportRequest{ClientID: "ghost", TemplateName: "monthly.docx"},
			code: string(errors.ErrCodeUnknownClient),
		},
		{
			name: "schema violation",
			body: map[string]interface{}{
				"template_name": "monthly.docx",
				"metrics":       []map[string]interface{}{{"name": "x", "value": "1", "status": "amazing"}},
			},
			code: string(errors.ErrCodeInvalidRequest),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, http.MethodPost, "/reports/generate", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body errorBody
			decodeBody(t, rec, &body)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestGenerateReportConversionFailure(t *testing.T) {
	a := newTestAPI(t)
	a.converter.fail = errors.NewConversionError(errors.ErrCodeConversionFailed,
		"conversion failed", "libreoffice: exit status 1")

	rec := a.do(t, http.MethodPost, "/reports/generate", models.ReportRequest{
		TemplateName: "monthly.docx",
		GeneratePDF:  true,
		ExtraContext: map[string]interface{}{"client_name": "Acme"},
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, string(errors.ErrCodeConversionFailed), body.Code)
	assert.Contains(t, body.Details, "libreoffice")
}

func TestGenerateReportRejectsEscapingOutputFilename(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/reports/generate", models.ReportRequest{
		TemplateName:   "monthly.docx",
		OutputFilename: "../escaped.docx",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, string(errors.ErrCodeInvalidRequest), body.Code)

	// Nothing may appear above the output directory.
	assert.NoFileExists(t, filepath.Join(filepath.Dir(a.outputDir), "escaped.docx"))
}

func TestGenerateReportSurvivesClientDisconnect(t *testing.T) {
	a := newTestAPI(t)

	payload, err := json.Marshal(models.ReportRequest{
		TemplateName: "monthly.docx",
		GeneratePDF:  true,
		ExtraContext: map[string]interface{}{"client_name": "Acme"},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/reports/generate", bytes.NewReader(payload)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.server.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, a.converter.calls)

	var artifacts models.GeneratedArtifacts
	decodeBody(t, rec, &artifacts)
	assert.FileExists(t, artifacts.PDFPath)
}

func TestDownloadReport(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/reports/generate", models.ReportRequest{
		TemplateName:   "monthly.docx",
		OutputFilename: "quarterly.docx",
		ExtraContext:   map[string]interface{}{"client_name": "Acme"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/reports/download/quarterly.docx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "wordprocessingml")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotZero(t, rec.Body.Len())
}

func TestDownloadReportNotFound(t *testing.T) {
	a := newTestAPI(t)
	rec := a.do(t, http.MethodGet, "/reports/download/missing.pdf", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadReportRejectsTraversal(t *testing.T) {
	a := newTestAPI(t)

	// Plant a file outside the output directory and try to reach it.
	secret := filepath.Join(filepath.Dir(a.outputDir), "secret.docx")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o644))

	for _, name := range []string{"..%2Fsecret.docx", "%2e%2e%2fsecret.docx", ".hidden"} {
		rec := a.do(t, http.MethodGet, fmt.Sprintf("/reports/download/%s", name), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, name)
	}
}

func TestGenerateEndToEndSubstitution(t *testing.T) {
	a := newTestAPI(t)

	rec := a.do(t, http.MethodPost, "/reports/generate", map[string]interface{}{
		"template_name": "monthly.docx",
		"metrics":       []map[string]interface{}{{"name": "Revenue", "value": "$1M"}},
		"extra_context": map[string]interface{}{"client_name": "Acme"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var artifacts models.GeneratedArtifacts
	decodeBody(t, rec, &artifacts)

	body := docxtest.DocumentBody(t, artifacts.DocxPath)
	assert.Contains(t, body, "Acme")
	assert.Contains(t, body, "Revenue: $1M")
}
