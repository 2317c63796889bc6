package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// KeyEntry is one structured answer-key question.
type KeyEntry struct {
	QuestionNumber string `json:"questionNumber"`
	MaxMarks       int    `json:"marks"`
	ReferenceText  string `json:"answer"`
}

// StructureAnswerKey turns a raw transcribed answer key into ordered entries.
func (c *Client) StructureAnswerKey(ctx context.Context, rawKey string) ([]KeyEntry, error) {
	if strings.TrimSpace(rawKey) == "" {
		return nil, fmt.Errorf("answer key text is empty")
	}

	prompt := "<<<CONTENT\n" + rawKey + "\nCONTENT"
	raw, err := c.generate(ctx, answerKeySystemPrompt, true, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("structure answer key: %w", err)
	}
	return decodeKeyEntries(raw)
}

// SegmentAnswers splits a student transcript into one answer per question
// number. The returned map always contains every requested label; on any
// failure the answers degrade to empty strings rather than aborting the run.
func (c *Client) SegmentAnswers(ctx context.Context, transcript string, labels []string) map[string]string {
	if strings.TrimSpace(transcript) == "" {
		return emptyAnswerMap(labels)
	}

	prompt := "QUESTION_NUMBERS: " + strings.Join(labels, ", ") +
		"\n\n<<<TRANSCRIPT\n" + transcript + "\nTRANSCRIPT"
	raw, err := c.generate(ctx, segmentationSystemPrompt, true, genai.Text(prompt))
	if err != nil {
		return emptyAnswerMap(labels)
	}
	return coerceAnswerMap(raw, labels)
}

// decodeKeyEntries parses and validates the structuring model's JSON.
func decodeKeyEntries(raw string) ([]KeyEntry, error) {
	var out struct {
		Questions []struct {
			QuestionNumber string          `json:"questionNumber"`
			Marks          json.RawMessage `json:"marks"`
			Answer         string          `json:"answer"`
		} `json:"questions"`
	}
	if err := unmarshalModelJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("decode answer key: %w", err)
	}
	if len(out.Questions) == 0 {
		return nil, fmt.Errorf("answer key contains no questions")
	}

	entries := make([]KeyEntry, 0, len(out.Questions))
	for i, q := range out.Questions {
		number := strings.TrimSpace(q.QuestionNumber)
		if number == "" {
			return nil, fmt.Errorf("question %d has no question number", i+1)
		}
		marks, err := decodeMarks(q.Marks)
		if err != nil {
			return nil, fmt.Errorf("question %q: %w", number, err)
		}
		if marks <= 0 {
			return nil, fmt.Errorf("question %q has non-positive marks %d", number, marks)
		}
		entries = append(entries, KeyEntry{
			QuestionNumber: number,
			MaxMarks:       marks,
			ReferenceText:  strings.TrimSpace(q.Answer),
		})
	}
	return entries, nil
}

// decodeMarks accepts marks as a JSON number or a numeric string and rounds
// fractional values.
func decodeMarks(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("marks missing")
	}

	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return int(asNumber + 0.5), nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if err := json.Unmarshal([]byte(asString), &asNumber); err == nil {
			return int(asNumber + 0.5), nil
		}
	}
	return 0, fmt.Errorf("marks is not numeric")
}

// coerceAnswerMap decodes the segmentation response and forces it to be total
// over the requested labels, dropping anything the model invented.
func coerceAnswerMap(raw string, labels []string) map[string]string {
	answers := emptyAnswerMap(labels)

	var out struct {
		Answers map[string]any `json:"answers"`
	}
	if err := unmarshalModelJSON(raw, &out); err != nil {
		return answers
	}

	for key, value := range out.Answers {
		key = strings.TrimSpace(key)
		if _, wanted := answers[key]; !wanted {
			continue
		}
		if text, ok := value.(string); ok {
			answers[key] = strings.TrimSpace(text)
		}
	}
	return answers
}

func emptyAnswerMap(labels []string) map[string]string {
	answers := make(map[string]string, len(labels))
	for _, label := range labels {
		answers[strings.TrimSpace(label)] = ""
	}
	return answers
}

// unmarshalModelJSON strips code fences the model sometimes adds and falls
// back to the outermost JSON object or array.
func unmarshalModelJSON(raw string, out interface{}) error {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	start = strings.Index(cleaned, "[")
	end = strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return fmt.Errorf("invalid JSON response from model")
}
