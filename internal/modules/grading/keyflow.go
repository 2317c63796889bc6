package grading

import (
	"context"
	"strings"

	"github.com/adityanetrakar/handwritten-eval-system/internal/modules/processing/inference"
	"go.uber.org/zap"
)

// KeyProcessor turns an answer-key PDF into structured key entries.
type KeyProcessor struct {
	rasterizer  Rasterizer
	transcriber Transcriber
	structurer  Structurer
	logger      *zap.Logger
}

// NewKeyProcessor wires the answer-key flow.
func NewKeyProcessor(rasterizer Rasterizer, transcriber Transcriber, structurer Structurer, logger *zap.Logger) *KeyProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KeyProcessor{
		rasterizer:  rasterizer,
		transcriber: transcriber,
		structurer:  structurer,
		logger:      logger,
	}
}

// ProcessAnswerKey rasterizes and transcribes every page of the key PDF, then
// structures the text into ordered entries. Page images are always removed
// before returning.
func (k *KeyProcessor) ProcessAnswerKey(ctx context.Context, pdfPath string) ([]inference.KeyEntry, error) {
	k.logger.Info("rasterizing answer key", zap.String("document", pdfPath))
	images, err := k.rasterizer.Rasterize(ctx, pdfPath)
	if err != nil {
		return nil, err
	}
	defer ReleaseArtifacts(images, k.logger)

	pages := make([]string, 0, len(images))
	for _, image := range images {
		if text := k.transcriber.TranscribePage(ctx, image); text != "" {
			pages = append(pages, text)
		}
	}

	entries, err := k.structurer.StructureAnswerKey(ctx, strings.Join(pages, "\n\n"))
	if err != nil {
		return nil, err
	}
	k.logger.Info("answer key structured", zap.String("document", pdfPath), zap.Int("questions", len(entries)))
	return entries, nil
}
