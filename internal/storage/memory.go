package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"
)

// Memory is a Repository backed by an in-memory go-memdb database.
// It is used when no DATABASE_URL is configured, e.g. in development
// and in tests. Data does not survive a restart.
type Memory struct {
	db *memdb.MemDB
}

// NewMemory creates an empty in-memory repository.
func NewMemory() (*Memory, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"receipt": {
				Name: "receipt",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"entry": {
						Name: "entry",
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "TwinID"},
								&memdb.StringFieldIndex{Field: "EntryID"},
							},
						},
					},
				},
			},
			"document": {
				Name: "document",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"twin": {
						Name:    "twin",
						Indexer: &memdb.StringFieldIndex{Field: "TwinID"},
					},
				},
			},
			"statement": {
				Name: "statement",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"twin": {
						Name:    "twin",
						Indexer: &memdb.StringFieldIndex{Field: "TwinID"},
					},
				},
			},
			"skill": {
				Name: "skill",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"twin": {
						Name:    "twin",
						Indexer: &memdb.StringFieldIndex{Field: "TwinID"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("memory repository: %w", err)
	}
	return &Memory{db: db}, nil
}

func (m *Memory) insert(table string, obj interface{}) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(table, obj); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	txn.Commit()
	return nil
}

func (m *Memory) SaveReceipt(ctx context.Context, r Receipt) error {
	return m.insert("receipt", &r)
}

func (m *Memory) ListReceipts(ctx context.Context, twinID, entryID string) ([]Receipt, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get("receipt", "entry", twinID, entryID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	var out []Receipt
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *obj.(*Receipt))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveDocument(ctx context.Context, d Document) error {
	return m.insert("document", &d)
}

func (m *Memory) ListDocuments(ctx context.Context, twinID string) ([]Document, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get("document", "twin", twinID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var out []Document
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *obj.(*Document))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveStatement(ctx context.Context, s Statement) error {
	return m.insert("statement", &s)
}

func (m *Memory) ListStatements(ctx context.Context, twinID string) ([]Statement, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get("statement", "twin", twinID)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	var out []Statement
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *obj.(*Statement))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) SaveSkill(ctx context.Context, s Skill) error {
	return m.insert("skill", &s)
}

func (m *Memory) ListSkills(ctx context.Context, twinID string) ([]Skill, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get("skill", "twin", twinID)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	var out []Skill
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, *obj.(*Skill))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) DeleteSkill(ctx context.Context, twinID, skillID string) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	obj, err := txn.First("skill", "id", skillID)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	if obj == nil || obj.(*Skill).TwinID != twinID {
		return ErrNotFound
	}
	if err := txn.Delete("skill", obj); err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	txn.Commit()
	return nil
}
