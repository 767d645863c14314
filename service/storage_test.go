package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
)

func TestLocalStoreSaveAndOpen(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctx := context.Background()

	content := []byte("hello attachment")
	if err := store.Save(ctx, "report-1.pdf", bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	r, err := store.Open(ctx, "report-1.pdf")
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Expected %q, got %q", content, got)
	}
}

func TestLocalStoreOpenMissing(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, err = store.Open(context.Background(), "nope.pdf")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestLocalStoreExists(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctx := context.Background()

	exists, err := store.Exists(ctx, "missing.pdf")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected missing.pdf to not exist")
	}

	if err := store.Save(ctx, "present.pdf", strings.NewReader("x"), 1, "application/pdf"); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	exists, err = store.Exists(ctx, "present.pdf")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected present.pdf to exist")
	}
}

func TestLocalStoreNestedPath(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "2026/08/report.pdf", strings.NewReader("nested"), 6, "application/pdf"); err != nil {
		t.Fatalf("Failed to save nested path: %v", err)
	}

	r, err := store.Open(ctx, "2026/08/report.pdf")
	if err != nil {
		t.Fatalf("Failed to open nested path: %v", err)
	}
	r.Close()
}
