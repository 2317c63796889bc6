package inference

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
)

// UnknownIdentifier is the sentinel for an unreadable or missing roll number.
const UnknownIdentifier = "UNKNOWN"

const (
	identifierMinLen = 3
	identifierMaxLen = 20
)

var identifierPattern = regexp.MustCompile(`^([0-9][A-Z]{2}[0-9]{2}[A-Z]{2}[0-9]{3}|[0-9]{2}[A-Z]{2}[0-9]{3}|[A-Z0-9]{5,15})$`)

// TranscribePage transcribes one page image to plain text. Any failure
// degrades to an empty transcript so a bad page never aborts a run.
func (c *Client) TranscribePage(ctx context.Context, imagePath string) string {
	part, err := imagePart(imagePath)
	if err != nil {
		return ""
	}
	text, err := c.generate(ctx, transcriptionSystemPrompt, false,
		genai.Text("Transcribe this exam page."), part)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// ExtractIdentifier reads the roll number off the cover page image. Returns
// UnknownIdentifier when nothing valid can be read.
func (c *Client) ExtractIdentifier(ctx context.Context, imagePath string) string {
	part, err := imagePart(imagePath)
	if err != nil {
		return UnknownIdentifier
	}
	raw, err := c.generate(ctx, identifierSystemPrompt, true,
		genai.Text("Extract the roll number from this cover page."), part)
	if err != nil {
		return UnknownIdentifier
	}

	var out struct {
		RollNumber string `json:"rollNumber"`
	}
	if err := unmarshalModelJSON(raw, &out); err != nil {
		return UnknownIdentifier
	}
	return NormalizeIdentifier(out.RollNumber)
}

// NormalizeIdentifier uppercases and validates a raw roll number, returning
// UnknownIdentifier when it does not look like one.
func NormalizeIdentifier(raw string) string {
	id := strings.ToUpper(strings.TrimSpace(raw))
	if id == "" || id == UnknownIdentifier {
		return UnknownIdentifier
	}
	if len(id) < identifierMinLen || len(id) > identifierMaxLen {
		return UnknownIdentifier
	}
	if !identifierPattern.MatchString(id) {
		return UnknownIdentifier
	}
	return id
}

// PlaceholderIdentifier mints a unique stand-in code for a submission whose
// roll number could not be read.
func PlaceholderIdentifier() string {
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TEMP-" + fragment[:10]
}
