package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Receipt describes a file attached to a diary entry.
type Receipt struct {
	ID          string    `json:"id"`
	TwinID      string    `json:"twinId"`
	EntryID     string    `json:"entryId"`
	ReceiptType string    `json:"receiptType,omitempty"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType,omitempty"`
	BlobKey     string    `json:"blobKey"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Document describes a file in a twin's document vault.
type Document struct {
	ID          string    `json:"id"`
	TwinID      string    `json:"twinId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType,omitempty"`
	Kind        string    `json:"kind"`
	BlobKey     string    `json:"blobKey"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Statement describes an uploaded mortgage statement PDF.
type Statement struct {
	ID        string    `json:"id"`
	TwinID    string    `json:"twinId"`
	FileName  string    `json:"fileName"`
	BlobKey   string    `json:"blobKey"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Skill is one entry in a twin's skills list.
type Skill struct {
	ID        string    `json:"id"`
	TwinID    string    `json:"twinId"`
	Name      string    `json:"name"`
	Level     string    `json:"level,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository persists upload metadata and skills.
// Implemented by Postgres (pgx) and Memory (go-memdb).
type Repository interface {
	SaveReceipt(ctx context.Context, r Receipt) error
	ListReceipts(ctx context.Context, twinID, entryID string) ([]Receipt, error)

	SaveDocument(ctx context.Context, d Document) error
	ListDocuments(ctx context.Context, twinID string) ([]Document, error)

	SaveStatement(ctx context.Context, s Statement) error
	ListStatements(ctx context.Context, twinID string) ([]Statement, error)

	SaveSkill(ctx context.Context, s Skill) error
	ListSkills(ctx context.Context, twinID string) ([]Skill, error)
	DeleteSkill(ctx context.Context, twinID, skillID string) error
}
