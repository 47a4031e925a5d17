package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"client-report-engine/internal/common/errors"
	"client-report-engine/internal/common/validation"
	"client-report-engine/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": s.cfg.App.Version,
	})
}

// ============ Brand/Client Endpoints ============

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpsertClient(w http.ResponseWriter, r *http.Request) {
	var rec models.BrandRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"invalid request body", err.Error()))
		return
	}
	if strings.TrimSpace(rec.ClientID) == "" {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"client_id is required", ""))
		return
	}

	stored, err := s.store.Upsert(rec)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.store.Exists(id) {
		s.writeError(w, r, errors.NewNotFoundError(errors.ErrCodeClientNotFound, "client", id))
		return
	}

	if err := r.ParseMultipartForm(s.cfg.Server.MaxUploadBytes); err != nil {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"invalid multipart upload", err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"file field is required", err.Error()))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.Server.MaxUploadBytes))
	if err != nil {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"failed to read upload", err.Error()))
		return
	}

	if !isImage(data) {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidLogoImage,
			"uploaded file is not an image", header.Filename))
		return
	}

	rec, err := s.store.AttachLogo(id, data, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// ============ Template & Report Endpoints ============

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := s.renderer.ListTemplates()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"templates": names})
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"failed to read request body", err.Error()))
		return
	}

	if err := validation.ValidateReportRequest(body); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req models.ReportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"invalid request body", err.Error()))
		return
	}

	// A client disconnect must not abort an in-flight render or
	// conversion; the request context contributes values only.
	artifacts, err := s.generator.Generate(context.WithoutCancel(r.Context()), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, artifacts)
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	// Constrain the lookup to the output directory; reject anything that
	// could traverse out of it.
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		s.writeError(w, r, errors.NewNotFoundError(errors.ErrCodeReportNotFound, "report file", filename))
		return
	}

	path := filepath.Join(s.renderer.OutputDir(), filename)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		s.writeError(w, r, errors.NewNotFoundError(errors.ErrCodeReportNotFound, "report file", filename))
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(filename))
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}

func contentTypeFor(filename string) string {
	if strings.HasSuffix(filename, ".pdf") {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
