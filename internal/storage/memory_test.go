package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	repo, err := NewMemory()
	if err != nil {
		t.Fatalf("NewMemory() error = %v", err)
	}
	return repo
}

func TestMemory_Receipts(t *testing.T) {
	repo := newTestMemory(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	receipts := []Receipt{
		{ID: "r2", TwinID: "t1", EntryID: "e1", FileName: "b.jpg", BlobKey: "k2", Size: 20, CreatedAt: base.Add(time.Minute)},
		{ID: "r1", TwinID: "t1", EntryID: "e1", ReceiptType: "comida", FileName: "a.jpg", BlobKey: "k1", Size: 10, CreatedAt: base},
		{ID: "r3", TwinID: "t1", EntryID: "e2", FileName: "c.jpg", BlobKey: "k3", Size: 30, CreatedAt: base},
		{ID: "r4", TwinID: "t2", EntryID: "e1", FileName: "d.jpg", BlobKey: "k4", Size: 40, CreatedAt: base},
	}
	for _, r := range receipts {
		if err := repo.SaveReceipt(ctx, r); err != nil {
			t.Fatalf("SaveReceipt(%s) error = %v", r.ID, err)
		}
	}

	got, err := repo.ListReceipts(ctx, "t1", "e1")
	if err != nil {
		t.Fatalf("ListReceipts() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListReceipts() returned %d receipts, want 2", len(got))
	}
	// Ordered by creation time.
	if got[0].ID != "r1" || got[1].ID != "r2" {
		t.Errorf("ListReceipts() order = [%s %s], want [r1 r2]", got[0].ID, got[1].ID)
	}
	if got[0].ReceiptType != "comida" {
		t.Errorf("ReceiptType = %q, want %q", got[0].ReceiptType, "comida")
	}

	empty, err := repo.ListReceipts(ctx, "t1", "missing")
	if err != nil {
		t.Fatalf("ListReceipts(missing) error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("ListReceipts(missing) returned %d receipts, want 0", len(empty))
	}
}

func TestMemory_Documents(t *testing.T) {
	repo := newTestMemory(t)
	ctx := context.Background()

	doc := Document{
		ID: "d1", TwinID: "t1", FileName: "contract.pdf", Kind: ".pdf",
		BlobKey: "t1/documents/d1.pdf", Size: 1024, CreatedAt: time.Now().UTC(),
	}
	if err := repo.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	got, err := repo.ListDocuments(ctx, "t1")
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(got) != 1 || got[0].FileName != "contract.pdf" {
		t.Errorf("ListDocuments() = %+v, want the saved document", got)
	}
}

func TestMemory_Statements(t *testing.T) {
	repo := newTestMemory(t)
	ctx := context.Background()

	st := Statement{ID: "s1", TwinID: "t1", FileName: "jan.pdf", BlobKey: "k", Size: 99, CreatedAt: time.Now().UTC()}
	if err := repo.SaveStatement(ctx, st); err != nil {
		t.Fatalf("SaveStatement() error = %v", err)
	}

	got, err := repo.ListStatements(ctx, "t1")
	if err != nil {
		t.Fatalf("ListStatements() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "s1" {
		t.Errorf("ListStatements() = %+v, want the saved statement", got)
	}
}

func TestMemory_Skills(t *testing.T) {
	repo := newTestMemory(t)
	ctx := context.Background()

	if err := repo.SaveSkill(ctx, Skill{ID: "s1", TwinID: "t1", Name: "Go", Level: "advanced", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("SaveSkill() error = %v", err)
	}
	if err := repo.SaveSkill(ctx, Skill{ID: "s2", TwinID: "t2", Name: "SQL", CreatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("SaveSkill() error = %v", err)
	}

	got, err := repo.ListSkills(ctx, "t1")
	if err != nil {
		t.Fatalf("ListSkills() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Go" {
		t.Errorf("ListSkills(t1) = %+v, want only the Go skill", got)
	}

	if err := repo.DeleteSkill(ctx, "t1", "s1"); err != nil {
		t.Fatalf("DeleteSkill() error = %v", err)
	}
	got, _ = repo.ListSkills(ctx, "t1")
	if len(got) != 0 {
		t.Errorf("ListSkills() after delete returned %d skills, want 0", len(got))
	}

	// Deleting again, or with the wrong twin, reports not found.
	if err := repo.DeleteSkill(ctx, "t1", "s1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSkill(gone) error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteSkill(ctx, "t1", "s2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteSkill(wrong twin) error = %v, want ErrNotFound", err)
	}
}
