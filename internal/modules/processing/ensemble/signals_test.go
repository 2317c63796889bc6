package ensemble

import (
	"math"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "stems and lowercases", text: "Running quickly", want: []string{"run", "quick"}},
		{name: "strips punctuation", text: "cells, membranes; and walls!", want: []string{"cell", "membran", "and", "wall"}},
		{name: "keeps numbers", text: "in 1789 France", want: []string{"in", "1789", "franc"}},
		{name: "empty", text: "   ", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestStemmedOverlap(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		student string
		want    float64
	}{
		{name: "identical", ref: "the cell wall", student: "the cell wall", want: 1},
		{name: "disjoint", ref: "gravity", student: "photosynthesis", want: 0},
		{name: "empty student", ref: "gravity", student: "", want: 0},
		{name: "half overlap against larger set", ref: "acid base", student: "acid base salt water", want: 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stemmedOverlap(tokenize(tt.ref), tokenize(tt.student))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("stemmedOverlap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTfidfCosine(t *testing.T) {
	identical := tfidfCosine(tokenize("energy flows through the ecosystem"), tokenize("energy flows through the ecosystem"))
	if math.Abs(identical-1) > 1e-9 {
		t.Errorf("tfidfCosine(identical) = %v, want 1", identical)
	}

	disjoint := tfidfCosine(tokenize("gravity"), tokenize("photosynthesis"))
	if disjoint != 0 {
		t.Errorf("tfidfCosine(disjoint) = %v, want 0", disjoint)
	}

	partial := tfidfCosine(tokenize("acids donate protons"), tokenize("acids accept electrons"))
	if partial <= 0 || partial >= 1 {
		t.Errorf("tfidfCosine(partial) = %v, want in (0, 1)", partial)
	}

	if got := tfidfCosine(nil, tokenize("something")); got != 0 {
		t.Errorf("tfidfCosine(empty ref) = %v, want 0", got)
	}
}

func TestCoherence(t *testing.T) {
	tests := []struct {
		name    string
		ref     []string
		student []string
		want    float64
	}{
		{name: "equal lengths", ref: []string{"a", "b"}, student: []string{"c", "d"}, want: 1},
		{name: "student half length", ref: []string{"a", "b", "c", "d"}, student: []string{"x", "y"}, want: 0.5},
		{name: "empty student", ref: []string{"a"}, student: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := coherence(tt.ref, tt.student); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("coherence() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRelevance(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		student string
		want    float64
	}{
		{name: "all reference words present", ref: "the cell wall", student: "plants have the cell wall outside", want: 1},
		{name: "half present", ref: "acid base", student: "an acid donates protons", want: 0.5},
		{name: "case insensitive", ref: "DNA", student: "dna carries genes", want: 1},
		{name: "none present", ref: "gravity", student: "photosynthesis", want: 0},
		{name: "empty reference", ref: "", student: "anything", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relevance(tt.ref, tt.student); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("relevance(%q, %q) = %v, want %v", tt.ref, tt.student, got, tt.want)
			}
		})
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "mismatched length", a: []float64{1, 2}, b: []float64{1}, want: 0},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}
