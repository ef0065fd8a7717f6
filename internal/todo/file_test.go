package todo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTodoFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "todo.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write todo file: %v", err)
	}
	return path
}

func TestFileSourceLoad(t *testing.T) {
	src := NewFileSource(writeTodoFile(t, `["Buy milk","Walk dog"]`))
	items, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 2 || items[0] != "Buy milk" || items[1] != "Walk dog" {
		t.Fatalf("unexpected items: %v", items)
	}
}

func TestFileSourceEmptyList(t *testing.T) {
	src := NewFileSource(writeTodoFile(t, `[]`))
	items, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list, got %v", items)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))
	_, err := src.Load(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileSourceCorruptFile(t *testing.T) {
	src := NewFileSource(writeTodoFile(t, `{"oops":`))
	_, err := src.Load(context.Background())
	if err == nil {
		t.Fatal("expected decode error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("decode fault must not look like a missing list: %v", err)
	}
}
