package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestObjectName(t *testing.T) {
	if got := ObjectName("NomiHealth", "PAT1234", 3); got != "NomiHealth-PAT1234-3.hl7" {
		t.Errorf("unexpected object name: %q", got)
	}
}

func TestDirPut(t *testing.T) {
	dir := Dir{Path: filepath.Join(t.TempDir(), "out")}
	name := ObjectName("NomiHealth", "PAT1", 0)
	if err := dir.Put(context.Background(), name, "MSH|test\n"); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(filepath.Join(dir.Path, name))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "MSH|test\n" {
		t.Errorf("unexpected file contents: %q", b)
	}
}

func TestMemoryPut(t *testing.T) {
	var m Memory
	if err := m.Put(context.Background(), "a.hl7", "MSH|a\n"); err != nil {
		t.Fatal(err)
	}
	if text, ok := m.Get("a.hl7"); !ok || text != "MSH|a\n" {
		t.Errorf("unexpected stored message: %q (found=%v)", text, ok)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 stored message, got %d", m.Len())
	}
}
