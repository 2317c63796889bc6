package grading

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/inference"
)

type keyStructurer struct {
	entries       []inference.KeyEntry
	err           error
	gotTranscript string
}

func (k *keyStructurer) StructureAnswerKey(_ context.Context, rawKey string) ([]inference.KeyEntry, error) {
	k.gotTranscript = rawKey
	return k.entries, k.err
}

func (k *keyStructurer) SegmentAnswers(_ context.Context, _ string, _ []string) map[string]string {
	return nil
}

func TestProcessAnswerKey(t *testing.T) {
	rasterizer := &fakeRasterizer{dir: t.TempDir(), pages: 2}
	transcriber := &fakeTranscriber{pageText: map[string]string{
		"page-0.png": "1a) 5 marks. The cell membrane controls transport.",
		"page-1.png": "1b) 10 marks. Mitochondria produce ATP.",
	}}
	structurer := &keyStructurer{entries: []inference.KeyEntry{
		{QuestionNumber: "1a", MaxMarks: 5, ReferenceText: "The cell membrane controls transport."},
		{QuestionNumber: "1b", MaxMarks: 10, ReferenceText: "Mitochondria produce ATP."},
	}}

	k := NewKeyProcessor(rasterizer, transcriber, structurer, nil)
	entries, err := k.ProcessAnswerKey(context.Background(), "/tmp/key.pdf")
	if err != nil {
		t.Fatalf("ProcessAnswerKey() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ProcessAnswerKey() returned %d entries, want 2", len(entries))
	}

	want := "1a) 5 marks. The cell membrane controls transport.\n\n1b) 10 marks. Mitochondria produce ATP."
	if structurer.gotTranscript != want {
		t.Errorf("transcript = %q, want all pages joined in order", structurer.gotTranscript)
	}

	for _, path := range rasterizer.produced {
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Errorf("page image %s was not released", path)
		}
	}
}

func TestProcessAnswerKeyStructureFailure(t *testing.T) {
	rasterizer := &fakeRasterizer{dir: t.TempDir(), pages: 1}
	structurer := &keyStructurer{err: errors.New("model returned garbage")}

	k := NewKeyProcessor(rasterizer, &fakeTranscriber{}, structurer, nil)
	if _, err := k.ProcessAnswerKey(context.Background(), "/tmp/key.pdf"); err == nil {
		t.Fatal("ProcessAnswerKey() error = nil, want structuring failure")
	}
	for _, path := range rasterizer.produced {
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Errorf("page image %s was not released", path)
		}
	}
}
