package inference

import (
	"strings"
	"testing"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "long registration number", raw: "1ab21cd045", want: "1AB21CD045"},
		{name: "short roll number", raw: "21cs042", want: "21CS042"},
		{name: "generic alphanumeric", raw: "R2021CSE17", want: "R2021CSE17"},
		{name: "surrounding spaces", raw: "  21cs042  ", want: "21CS042"},
		{name: "unknown sentinel", raw: "UNKNOWN", want: UnknownIdentifier},
		{name: "empty", raw: "", want: UnknownIdentifier},
		{name: "too short", raw: "AB", want: UnknownIdentifier},
		{name: "too long", raw: strings.Repeat("A", 21), want: UnknownIdentifier},
		{name: "contains space", raw: "21 CS 042", want: UnknownIdentifier},
		{name: "contains punctuation", raw: "21-CS-042", want: UnknownIdentifier},
		{name: "a sentence", raw: "roll number not visible", want: UnknownIdentifier},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIdentifier(tt.raw); got != tt.want {
				t.Errorf("NormalizeIdentifier(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPlaceholderIdentifier(t *testing.T) {
	first := PlaceholderIdentifier()
	second := PlaceholderIdentifier()

	if !strings.HasPrefix(first, "TEMP-") {
		t.Errorf("PlaceholderIdentifier() = %q, want TEMP- prefix", first)
	}
	if first == second {
		t.Errorf("PlaceholderIdentifier() returned duplicate %q", first)
	}
	if len(first) != len("TEMP-")+10 {
		t.Errorf("PlaceholderIdentifier() length = %d, want %d", len(first), len("TEMP-")+10)
	}
}

func TestDecodeKeyEntries(t *testing.T) {
	raw := "```json\n" +
		`{"questions":[` +
		`{"questionNumber":"1a","marks":5,"answer":"Photosynthesis converts light energy."},` +
		`{"questionNumber":"1b","marks":"10","answer":"The chloroplast."},` +
		`{"questionNumber":"2","marks":2.6,"answer":""}` +
		`]}` + "\n```"

	entries, err := decodeKeyEntries(raw)
	if err != nil {
		t.Fatalf("decodeKeyEntries() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("decodeKeyEntries() returned %d entries, want 3", len(entries))
	}

	want := []KeyEntry{
		{QuestionNumber: "1a", MaxMarks: 5, ReferenceText: "Photosynthesis converts light energy."},
		{QuestionNumber: "1b", MaxMarks: 10, ReferenceText: "The chloroplast."},
		{QuestionNumber: "2", MaxMarks: 3, ReferenceText: ""},
	}
	for i, entry := range entries {
		if entry != want[i] {
			t.Errorf("entries[%d] = %+v, want %+v", i, entry, want[i])
		}
	}
}

func TestDecodeKeyEntriesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "the key has five questions"},
		{name: "no questions", raw: `{"questions":[]}`},
		{name: "missing question number", raw: `{"questions":[{"questionNumber":"","marks":5,"answer":"x"}]}`},
		{name: "zero marks", raw: `{"questions":[{"questionNumber":"1","marks":0,"answer":"x"}]}`},
		{name: "negative marks", raw: `{"questions":[{"questionNumber":"1","marks":-3,"answer":"x"}]}`},
		{name: "non numeric marks", raw: `{"questions":[{"questionNumber":"1","marks":"five","answer":"x"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeKeyEntries(tt.raw); err == nil {
				t.Errorf("decodeKeyEntries(%q) expected error, got nil", tt.raw)
			}
		})
	}
}

func TestCoerceAnswerMapIsTotal(t *testing.T) {
	labels := []string{"1a", "1b", "2"}
	raw := `{"answers":{"1a":"The mitochondria.","3":"invented","1b":42}}`

	answers := coerceAnswerMap(raw, labels)
	if len(answers) != 3 {
		t.Fatalf("coerceAnswerMap() returned %d keys, want 3", len(answers))
	}
	if answers["1a"] != "The mitochondria." {
		t.Errorf("answers[1a] = %q, want transcribed text", answers["1a"])
	}
	if answers["1b"] != "" {
		t.Errorf("answers[1b] = %q, want empty for non-string value", answers["1b"])
	}
	if answers["2"] != "" {
		t.Errorf("answers[2] = %q, want empty", answers["2"])
	}
	if _, ok := answers["3"]; ok {
		t.Error("coerceAnswerMap() kept a label that was not requested")
	}
}

func TestCoerceAnswerMapGarbageInput(t *testing.T) {
	labels := []string{"1", "2"}
	answers := coerceAnswerMap("I could not segment the answers", labels)
	for _, label := range labels {
		if answers[label] != "" {
			t.Errorf("answers[%s] = %q, want empty", label, answers[label])
		}
	}
}

func TestUnmarshalModelJSON(t *testing.T) {
	type payload struct {
		RollNumber string `json:"rollNumber"`
	}

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain", raw: `{"rollNumber":"21CS042"}`, want: "21CS042"},
		{name: "fenced", raw: "```json\n{\"rollNumber\":\"21CS042\"}\n```", want: "21CS042"},
		{name: "uppercase fence", raw: "```JSON\n{\"rollNumber\":\"21CS042\"}\n```", want: "21CS042"},
		{name: "surrounding prose", raw: "Here you go: {\"rollNumber\":\"21CS042\"} hope that helps", want: "21CS042"},
		{name: "no json at all", raw: "sorry, I cannot help", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out payload
			err := unmarshalModelJSON(tt.raw, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unmarshalModelJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && out.RollNumber != tt.want {
				t.Errorf("rollNumber = %q, want %q", out.RollNumber, tt.want)
			}
		})
	}
}
