package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndResolve(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	ref, err := store.Save("exam script.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(ref, ".pdf") {
		t.Errorf("Save() ref = %q, want .pdf suffix", ref)
	}
	if strings.ContainsAny(ref, "/ ") {
		t.Errorf("Save() ref = %q, want a bare filename", ref)
	}

	path, err := store.Resolve(ref)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Errorf("stored content = %q, want original payload", data)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, nil, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	outside := filepath.Join(filepath.Dir(dir), "secret.pdf")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []string{
		"../secret.pdf",
		"..%2Fsecret.pdf",
		"/etc/passwd",
		"",
		"   ",
		"missing.pdf",
	}
	for _, ref := range tests {
		if _, err := store.Resolve(ref); !errors.Is(err, ErrBadReference) {
			t.Errorf("Resolve(%q) error = %v, want ErrBadReference", ref, err)
		}
	}
}

func TestRemove(t *testing.T) {
	store, err := NewStore(t.TempDir(), nil, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	ref, err := store.Save("key.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Remove(ref); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := store.Resolve(ref); !errors.Is(err, ErrBadReference) {
		t.Errorf("Resolve() after Remove() error = %v, want ErrBadReference", err)
	}

	if err := store.Remove(ref); err != nil {
		t.Errorf("Remove() of missing file error = %v, want nil", err)
	}
}
