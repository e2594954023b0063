package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Postgres is a Repository backed by PostgreSQL via pgx.
type Postgres struct {
	db DBTX
}

// NewPostgres creates a Postgres repository on the given connection.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Init creates the metadata tables if they do not exist.
func (p *Postgres) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS diary_receipts (
			id           UUID PRIMARY KEY,
			twin_id      TEXT NOT NULL,
			entry_id     TEXT NOT NULL,
			receipt_type TEXT,
			file_name    TEXT NOT NULL,
			content_type TEXT,
			blob_key     TEXT NOT NULL,
			size_bytes   BIGINT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_diary_receipts_entry ON diary_receipts (twin_id, entry_id)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id           UUID PRIMARY KEY,
			twin_id      TEXT NOT NULL,
			file_name    TEXT NOT NULL,
			content_type TEXT,
			kind         TEXT NOT NULL,
			blob_key     TEXT NOT NULL,
			size_bytes   BIGINT NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_twin ON documents (twin_id)`,
		`CREATE TABLE IF NOT EXISTS mortgage_statements (
			id         UUID PRIMARY KEY,
			twin_id    TEXT NOT NULL,
			file_name  TEXT NOT NULL,
			blob_key   TEXT NOT NULL,
			size_bytes BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_mortgage_statements_twin ON mortgage_statements (twin_id)`,
		`CREATE TABLE IF NOT EXISTS skills (
			id         UUID PRIMARY KEY,
			twin_id    TEXT NOT NULL,
			name       TEXT NOT NULL,
			level      TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skills_twin ON skills (twin_id)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) SaveReceipt(ctx context.Context, r Receipt) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO diary_receipts (id, twin_id, entry_id, receipt_type, file_name, content_type, blob_key, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		r.ID, r.TwinID, r.EntryID, r.ReceiptType, r.FileName, r.ContentType, r.BlobKey, r.Size, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("save receipt: %w", err)
	}
	return nil
}

func (p *Postgres) ListReceipts(ctx context.Context, twinID, entryID string) ([]Receipt, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, twin_id, entry_id, receipt_type, file_name, content_type, blob_key, size_bytes, created_at
		 FROM diary_receipts WHERE twin_id = $1 AND entry_id = $2 ORDER BY created_at`,
		twinID, entryID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		var r Receipt
		if err := rows.Scan(&r.ID, &r.TwinID, &r.EntryID, &r.ReceiptType, &r.FileName,
			&r.ContentType, &r.BlobKey, &r.Size, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveDocument(ctx context.Context, d Document) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO documents (id, twin_id, file_name, content_type, kind, blob_key, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.TwinID, d.FileName, d.ContentType, d.Kind, d.BlobKey, d.Size, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (p *Postgres) ListDocuments(ctx context.Context, twinID string) ([]Document, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, twin_id, file_name, content_type, kind, blob_key, size_bytes, created_at
		 FROM documents WHERE twin_id = $1 ORDER BY created_at`,
		twinID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.TwinID, &d.FileName, &d.ContentType, &d.Kind,
			&d.BlobKey, &d.Size, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveStatement(ctx context.Context, s Statement) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO mortgage_statements (id, twin_id, file_name, blob_key, size_bytes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.TwinID, s.FileName, s.BlobKey, s.Size, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("save statement: %w", err)
	}
	return nil
}

func (p *Postgres) ListStatements(ctx context.Context, twinID string) ([]Statement, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, twin_id, file_name, blob_key, size_bytes, created_at
		 FROM mortgage_statements WHERE twin_id = $1 ORDER BY created_at`,
		twinID)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	var out []Statement
	for rows.Next() {
		var s Statement
		if err := rows.Scan(&s.ID, &s.TwinID, &s.FileName, &s.BlobKey, &s.Size, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveSkill(ctx context.Context, s Skill) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO skills (id, twin_id, name, level, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.TwinID, s.Name, s.Level, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("save skill: %w", err)
	}
	return nil
}

func (p *Postgres) ListSkills(ctx context.Context, twinID string) ([]Skill, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, twin_id, name, level, created_at
		 FROM skills WHERE twin_id = $1 ORDER BY created_at`,
		twinID)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var out []Skill
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.TwinID, &s.Name, &s.Level, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteSkill(ctx context.Context, twinID, skillID string) error {
	tag, err := p.db.Exec(ctx,
		`DELETE FROM skills WHERE twin_id = $1 AND id = $2`, twinID, skillID)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
