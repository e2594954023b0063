// Package core provides the business logic for the personal-data backend:
// diary receipts, documents, mortgage statements and skills. It has no HTTP
// dependencies and can be driven by any frontend.
package core

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/flatluna/twinfx/internal/config"
	"github.com/flatluna/twinfx/internal/formdata"
	"github.com/flatluna/twinfx/internal/logging"
	"github.com/flatluna/twinfx/internal/storage"
	"github.com/google/uuid"
)

// Service provides upload and query operations for one backend instance.
// All dependencies are injected once at construction; nothing is built
// per request.
type Service struct {
	repo  storage.Repository
	blobs storage.BlobStore
	cfg   *config.Config
}

// NewService creates a Service with its injected dependencies.
func NewService(repo storage.Repository, blobs storage.BlobStore, cfg *config.Config) *Service {
	return &Service{
		repo:  repo,
		blobs: blobs,
		cfg:   cfg,
	}
}

// parseUpload decodes a buffered multipart body and returns the parsed form
// plus the first file part matching one of the given field names.
func parseUpload(body []byte, contentType string, fieldNames ...string) (formdata.Form, formdata.Part, error) {
	boundary := formdata.BoundaryFromContentType(contentType)
	if boundary == "" {
		return nil, formdata.Part{}, ErrNotMultipart
	}
	form := formdata.Parse(body, boundary)
	for _, name := range fieldNames {
		if part, ok := form.File(name); ok {
			return form, part, nil
		}
	}
	return form, formdata.Part{}, ErrNoFilePart
}

// storageExt returns the extension to store a file under: the filename's
// own extension when it has one, otherwise the sniffed kind.
func storageExt(part formdata.Part) string {
	if ext := strings.ToLower(path.Ext(part.FileName)); ext != "" {
		return ext
	}
	return string(formdata.DetectKind(part.Data))
}

// AttachReceipt stores a receipt file for a diary entry. The form must
// contain a part named "file"; an optional "receiptType" text field is
// recorded alongside. The permissive format check applies: any image or
// PDF extension is accepted even when the magic bytes are unrecognized.
func (s *Service) AttachReceipt(ctx context.Context, twinID, entryID string, body []byte, contentType string) (storage.Receipt, error) {
	form, part, err := parseUpload(body, contentType, "file", "receipt")
	if err != nil {
		return storage.Receipt{}, err
	}

	if int64(len(part.Data)) > s.cfg.Upload.MaxFileSize {
		return storage.Receipt{}, ErrFileTooLarge
	}
	if !formdata.AllowedReceiptFile(part.FileName, part.Data) {
		return storage.Receipt{}, ErrInvalidFileFormat
	}

	receiptType, _ := form.Value("receiptType")

	id := uuid.NewString()
	key := path.Join(twinID, "diary", entryID, id+storageExt(part))
	if _, err := s.blobs.Put(ctx, key, part.Data); err != nil {
		return storage.Receipt{}, fmt.Errorf("store receipt blob: %w", err)
	}

	rec := storage.Receipt{
		ID:          id,
		TwinID:      twinID,
		EntryID:     entryID,
		ReceiptType: receiptType,
		FileName:    part.FileName,
		ContentType: part.ContentType,
		BlobKey:     key,
		Size:        int64(len(part.Data)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.SaveReceipt(ctx, rec); err != nil {
		return storage.Receipt{}, err
	}

	logging.FromContext(ctx).Info("receipt stored",
		"twin_id", twinID,
		"entry_id", entryID,
		"receipt_id", id,
		"receipt_type", receiptType,
		"size", rec.Size,
	)
	return rec, nil
}

// ListReceipts returns the receipts attached to a diary entry.
func (s *Service) ListReceipts(ctx context.Context, twinID, entryID string) ([]storage.Receipt, error) {
	return s.repo.ListReceipts(ctx, twinID, entryID)
}

// UploadDocument stores a file in the twin's document vault. The file part
// may be named "document" or "file". The stored kind comes from the magic
// bytes, not the claimed extension.
func (s *Service) UploadDocument(ctx context.Context, twinID string, body []byte, contentType string) (storage.Document, error) {
	_, part, err := parseUpload(body, contentType, "document", "file")
	if err != nil {
		return storage.Document{}, err
	}

	if int64(len(part.Data)) > s.cfg.Upload.MaxFileSize {
		return storage.Document{}, ErrFileTooLarge
	}
	if !formdata.AllowedReceiptFile(part.FileName, part.Data) {
		return storage.Document{}, ErrInvalidFileFormat
	}

	id := uuid.NewString()
	key := path.Join(twinID, "documents", id+storageExt(part))
	if _, err := s.blobs.Put(ctx, key, part.Data); err != nil {
		return storage.Document{}, fmt.Errorf("store document blob: %w", err)
	}

	doc := storage.Document{
		ID:          id,
		TwinID:      twinID,
		FileName:    part.FileName,
		ContentType: part.ContentType,
		Kind:        string(formdata.DetectKind(part.Data)),
		BlobKey:     key,
		Size:        int64(len(part.Data)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.SaveDocument(ctx, doc); err != nil {
		return storage.Document{}, err
	}

	logging.FromContext(ctx).Info("document stored",
		"twin_id", twinID,
		"document_id", id,
		"kind", doc.Kind,
		"size", doc.Size,
	)
	return doc, nil
}

// ListDocuments returns the twin's document vault contents.
func (s *Service) ListDocuments(ctx context.Context, twinID string) ([]storage.Document, error) {
	return s.repo.ListDocuments(ctx, twinID)
}

// UploadMortgageStatement stores a mortgage statement. Statements are
// PDF-only and fail closed: the filename must end in .pdf and the content
// must start with the PDF magic bytes.
func (s *Service) UploadMortgageStatement(ctx context.Context, twinID string, body []byte, contentType string) (storage.Statement, error) {
	_, part, err := parseUpload(body, contentType, "file", "statement")
	if err != nil {
		return storage.Statement{}, err
	}

	if int64(len(part.Data)) > s.cfg.Upload.MaxFileSize {
		return storage.Statement{}, ErrFileTooLarge
	}
	if !formdata.ValidPDF(part.FileName, part.Data) {
		return storage.Statement{}, ErrInvalidFileFormat
	}

	id := uuid.NewString()
	key := path.Join(twinID, "mortgage", id+".pdf")
	if _, err := s.blobs.Put(ctx, key, part.Data); err != nil {
		return storage.Statement{}, fmt.Errorf("store statement blob: %w", err)
	}

	st := storage.Statement{
		ID:        id,
		TwinID:    twinID,
		FileName:  part.FileName,
		BlobKey:   key,
		Size:      int64(len(part.Data)),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveStatement(ctx, st); err != nil {
		return storage.Statement{}, err
	}

	logging.FromContext(ctx).Info("mortgage statement stored",
		"twin_id", twinID,
		"statement_id", id,
		"size", st.Size,
	)
	return st, nil
}

// ListMortgageStatements returns the twin's uploaded statements.
func (s *Service) ListMortgageStatements(ctx context.Context, twinID string) ([]storage.Statement, error) {
	return s.repo.ListStatements(ctx, twinID)
}

// AddSkill records a skill for a twin. Name is required.
func (s *Service) AddSkill(ctx context.Context, twinID, name, level string) (storage.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Skill{}, ErrMissingField
	}

	skill := storage.Skill{
		ID:        uuid.NewString(),
		TwinID:    twinID,
		Name:      name,
		Level:     strings.TrimSpace(level),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveSkill(ctx, skill); err != nil {
		return storage.Skill{}, err
	}
	return skill, nil
}

// ListSkills returns the twin's skills.
func (s *Service) ListSkills(ctx context.Context, twinID string) ([]storage.Skill, error) {
	return s.repo.ListSkills(ctx, twinID)
}

// DeleteSkill removes a skill; returns ErrNotFound when it does not exist.
func (s *Service) DeleteSkill(ctx context.Context, twinID, skillID string) error {
	return s.repo.DeleteSkill(ctx, twinID, skillID)
}
