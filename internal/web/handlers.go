package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/flatluna/twinfx/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleHealth responds to liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readUploadBody reads the raw request body, capped at the configured
// maximum. The multipart decoding happens in the service layer, which
// needs the full body as a byte slice.
func (s *Server) readUploadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, core.ErrFileTooLarge
		}
		return nil, err
	}
	return body, nil
}

// handleAttachReceipt attaches a receipt file to a diary entry.
func (s *Server) handleAttachReceipt(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")
	entryID := chi.URLParam(r, "entryID")

	body, err := s.readUploadBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	receipt, err := s.service.AttachReceipt(r.Context(), twinID, entryID, body, r.Header.Get("Content-Type"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, receipt)
}

// handleListReceipts lists receipts attached to a diary entry.
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")
	entryID := chi.URLParam(r, "entryID")

	receipts, err := s.service.ListReceipts(r.Context(), twinID, entryID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, receipts)
}

// handleUploadDocument stores a document in the twin's vault.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")

	body, err := s.readUploadBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	doc, err := s.service.UploadDocument(r.Context(), twinID, body, r.Header.Get("Content-Type"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, doc)
}

// handleListDocuments lists all documents for a twin.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")

	docs, err := s.service.ListDocuments(r.Context(), twinID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, docs)
}

// handleUploadStatement stores a mortgage statement. Only PDF files
// are accepted.
func (s *Server) handleUploadStatement(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")

	body, err := s.readUploadBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	stmt, err := s.service.UploadMortgageStatement(r.Context(), twinID, body, r.Header.Get("Content-Type"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, stmt)
}

// handleListStatements lists all mortgage statements for a twin.
func (s *Server) handleListStatements(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")

	stmts, err := s.service.ListMortgageStatements(r.Context(), twinID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, stmts)
}

// skillRequest is the JSON body for adding a skill.
type skillRequest struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// handleAddSkill records a skill for a twin.
func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")

	var req skillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, core.ErrMissingField)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		s.respondError(w, r, core.ErrMissingField)
		return
	}

	skill, err := s.service.AddSkill(r.Context(), twinID, req.Name, req.Level)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, skill)
}

// handleListSkills lists all skills for a twin.
func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")

	skills, err := s.service.ListSkills(r.Context(), twinID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, skills)
}

// handleDeleteSkill removes a skill by ID.
func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	twinID := chi.URLParam(r, "twinID")
	skillID := chi.URLParam(r, "skillID")

	if err := s.service.DeleteSkill(r.Context(), twinID, skillID); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
