package rasterize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeExecutor writes page files the way the real binary would, based on the
// output pattern in the final argument.
type fakeExecutor struct {
	pages  int
	err    error
	output string

	gotBinary string
	gotArgs   []string
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) ([]byte, error) {
	f.gotBinary = binary
	f.gotArgs = args

	if len(args) > 0 {
		pattern := args[len(args)-1]
		for i := 0; i < f.pages; i++ {
			path := strings.ReplaceAll(pattern, "%d", fmt.Sprintf("%d", i))
			if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
				return nil, err
			}
		}
	}
	return []byte(f.output), f.err
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		binary  string
		density int
		workDir string
		wantErr bool
	}{
		{name: "valid", binary: "convert", density: 300, workDir: t.TempDir(), wantErr: false},
		{name: "empty binary", binary: "  ", density: 300, workDir: t.TempDir(), wantErr: true},
		{name: "zero density", binary: "convert", density: 0, workDir: t.TempDir(), wantErr: true},
		{name: "empty work dir", binary: "convert", density: 300, workDir: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.binary, tt.density, 120, tt.workDir)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRasterizeReturnsPagesInOrder(t *testing.T) {
	dir := t.TempDir()
	executor := &fakeExecutor{pages: 12}
	conv, err := New("convert", 300, 120, dir, WithExecutor(executor))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	images, err := conv.Rasterize(context.Background(), "/tmp/exam.pdf")
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	if len(images) != 12 {
		t.Fatalf("Rasterize() returned %d images, want 12", len(images))
	}
	for i, image := range images {
		if !strings.HasSuffix(image, fmt.Sprintf("-%d.png", i)) {
			t.Errorf("images[%d] = %q, want suffix -%d.png", i, image, i)
		}
	}

	if executor.gotBinary != "convert" {
		t.Errorf("binary = %q, want convert", executor.gotBinary)
	}
	want := []string{"-density", "300", "/tmp/exam.pdf", "-quality", "100"}
	for i, arg := range want {
		if executor.gotArgs[i] != arg {
			t.Errorf("args[%d] = %q, want %q", i, executor.gotArgs[i], arg)
		}
	}
}

func TestRasterizeCommandFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	executor := &fakeExecutor{pages: 2, err: errors.New("exit status 1"), output: "convert: no decoder"}
	conv, err := New("convert", 300, 120, dir, WithExecutor(executor))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = conv.Rasterize(context.Background(), "/tmp/broken.pdf")
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Rasterize() error = %v, want *ConversionError", err)
	}
	if !strings.Contains(convErr.Error(), "no decoder") {
		t.Errorf("error %q missing command output", convErr.Error())
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.png"))
	if len(leftovers) != 0 {
		t.Errorf("found %d leftover files after failure, want 0", len(leftovers))
	}
}

func TestRasterizeNoImagesProduced(t *testing.T) {
	dir := t.TempDir()
	conv, err := New("convert", 300, 120, dir, WithExecutor(&fakeExecutor{pages: 0}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = conv.Rasterize(context.Background(), "/tmp/empty.pdf")
	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("Rasterize() error = %v, want *ConversionError", err)
	}
}

func TestRasterizeConcurrentRunsDoNotCollide(t *testing.T) {
	dir := t.TempDir()
	conv, err := New("convert", 300, 120, dir, WithExecutor(&fakeExecutor{pages: 3}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := conv.Rasterize(context.Background(), "/tmp/a.pdf")
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}
	second, err := conv.Rasterize(context.Background(), "/tmp/b.pdf")
	if err != nil {
		t.Fatalf("Rasterize() error = %v", err)
	}

	seen := map[string]bool{}
	for _, p := range first {
		seen[p] = true
	}
	for _, p := range second {
		if seen[p] {
			t.Errorf("runs share image path %q", p)
		}
	}
}
