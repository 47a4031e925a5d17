// Package brandstore persists client brand records in a single JSON file.
// The whole table is loaded at construction and rewritten on every mutation
// via a temp file and atomic rename. Writes are serialized by a
// process-wide mutex; concurrent writers from other processes are not
// protected against (single-writer assumption).
package brandstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"client-report-engine/internal/common/errors"
	"client-report-engine/internal/common/logger"
	"client-report-engine/internal/common/metrics"
	"client-report-engine/internal/models"
)

type Store struct {
	path    string
	logoDir string
	log     logger.Logger

	mu      sync.RWMutex
	records map[string]models.BrandRecord
}

func New(path, logoDir string, log logger.Logger) (*Store, error) {
	s := &Store{
		path:    path,
		logoDir: logoDir,
		log:     log.WithFields(map[string]interface{}{"component": "brandstore"}),
		records: make(map[string]models.BrandRecord),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create brands dir: %w", err)
	}
	if err := os.MkdirAll(logoDir, 0o755); err != nil {
		return nil, fmt.Errorf("create logo dir: %w", err)
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read brands file: %w", err)
	}

	if err := json.Unmarshal(data, &s.records); err != nil {
		// A corrupt file should not brick the service; start empty and
		// let the next persist overwrite it.
		s.log.Warn("brands file unreadable, starting empty",
			map[string]interface{}{"path": s.path, "error": err.Error()})
		s.records = make(map[string]models.BrandRecord)
	}
	return nil
}

// persistLocked rewrites the full backing file. Callers must hold s.mu.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal brands: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".brands-*.json")
	if err != nil {
		return fmt.Errorf("create temp brands file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp brands file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp brands file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace brands file: %w", err)
	}

	metrics.BrandStoreWrites.Inc()
	return nil
}

// Upsert inserts or fully overwrites the record keyed by its normalized
// identifier. CreatedAt is preserved across updates; there is no
// partial-field merge. LogoPath is server-managed: only AttachLogo sets
// it, and any caller-supplied value is discarded in favor of the stored
// one.
func (s *Store) Upsert(rec models.BrandRecord) (models.BrandRecord, error) {
	rec.ClientID = models.NormalizeClientID(rec.ClientID)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[rec.ClientID]; ok {
		rec.CreatedAt = existing.CreatedAt
		rec.LogoPath = existing.LogoPath
	} else {
		rec.CreatedAt = now
		rec.LogoPath = ""
	}
	rec.UpdatedAt = now

	s.records[rec.ClientID] = rec
	if err := s.persistLocked(); err != nil {
		return models.BrandRecord{}, err
	}

	s.log.Info("brand upserted", map[string]interface{}{"clientId": rec.ClientID})
	return rec, nil
}

// Get returns the record for id or a NotFound error.
func (s *Store) Get(id string) (models.BrandRecord, error) {
	id = models.NormalizeClientID(id)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return models.BrandRecord{}, errors.NewNotFoundError(errors.ErrCodeClientNotFound, "client", id)
	}
	return rec, nil
}

// Exists reports whether id resolves to a stored record.
func (s *Store) Exists(id string) bool {
	_, err := s.Get(id)
	return err == nil
}

// List returns all records. Order carries no meaning; records are sorted
// by identifier so the output is stable.
func (s *Store) List() []models.BrandRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.BrandRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientID < out[j].ClientID })
	return out
}

// Delete removes the record and any associated logo file.
func (s *Store) Delete(id string) error {
	id = models.NormalizeClientID(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return errors.NewNotFoundError(errors.ErrCodeClientNotFound, "client", id)
	}

	delete(s.records, id)
	if err := s.persistLocked(); err != nil {
		return err
	}

	// Only files inside the logo directory are removed; anything else in
	// the record is left untouched.
	if rec.LogoPath != "" && insideLogoDir(s.logoDir, rec.LogoPath) {
		if err := os.Remove(rec.LogoPath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove logo file",
				map[string]interface{}{"clientId": id, "path": rec.LogoPath, "error": err.Error()})
		}
	}

	s.log.Info("brand deleted", map[string]interface{}{"clientId": id})
	return nil
}

// insideLogoDir reports whether path is a direct child of dir.
func insideLogoDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel == filepath.Base(rel) && rel != "." && rel != ".."
}

// AttachLogo writes the uploaded bytes under a deterministic name derived
// from the client id and the original extension, then updates the record.
func (s *Store) AttachLogo(id string, data []byte, filename string) (models.BrandRecord, error) {
	id = models.NormalizeClientID(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return models.BrandRecord{}, errors.NewNotFoundError(errors.ErrCodeClientNotFound, "client", id)
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	logoPath := filepath.Join(s.logoDir, fmt.Sprintf("%s_logo%s", id, ext))
	if err := os.WriteFile(logoPath, data, 0o644); err != nil {
		return models.BrandRecord{}, fmt.Errorf("write logo file: %w", err)
	}

	rec.LogoPath = logoPath
	rec.UpdatedAt = time.Now().UTC()
	s.records[id] = rec
	if err := s.persistLocked(); err != nil {
		return models.BrandRecord{}, err
	}

	s.log.Info("logo attached", map[string]interface{}{"clientId": id, "path": logoPath})
	return rec, nil
}
