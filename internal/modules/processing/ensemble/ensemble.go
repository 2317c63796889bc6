package ensemble

import (
	"context"
	"math"
	"strings"

	"github.com/jonreiter/govader"
)

// Feedback tiers attached to graded answers.
const (
	FeedbackExcellent    = "Excellent"
	FeedbackGood         = "Good"
	FeedbackSatisfactory = "Satisfactory"
	FeedbackPartial      = "Partial"
	FeedbackNeedsWork    = "Needs improvement"
	FeedbackNoAnswer     = "No answer"
	FeedbackFailed       = "Evaluation failed"
)

// signalWeights order: exact match, stemmed overlap, tf-idf cosine,
// sentiment, embedding similarity, second stemmed overlap, second embedding
// similarity, coherence, relevance.
var signalWeights = [9]float64{0.001, 0.80, 0.02, 0.001, 0.90, 0.003, 0.70, 0.001, 0.02}

// Embedder supplies semantic vectors for the similarity signals.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Grader scores a student answer against a reference answer with a weighted
// ensemble of lexical, semantic and sentiment signals.
type Grader struct {
	embedder Embedder
	analyzer *govader.SentimentIntensityAnalyzer
}

// New creates a Grader. embedder may be nil; the semantic signals then read
// as zero and the lexical signals carry the grade.
func New(embedder Embedder) *Grader {
	return &Grader{
		embedder: embedder,
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
}

// Grade scores student against reference and returns awarded marks in
// [0, maxMarks] plus a feedback tier. Grading never fails: panics from any
// signal are contained and reported as a zero score.
func (g *Grader) Grade(ctx context.Context, reference, student string, maxMarks int) (marks int, feedback string) {
	defer func() {
		if r := recover(); r != nil {
			marks = 0
			feedback = FeedbackFailed
		}
	}()

	if maxMarks < 0 {
		maxMarks = 0
	}

	studentTrimmed := strings.TrimSpace(student)
	referenceTrimmed := strings.TrimSpace(reference)
	if studentTrimmed == "" {
		return 0, FeedbackNoAnswer
	}
	if strings.EqualFold(referenceTrimmed, studentTrimmed) {
		return maxMarks, FeedbackExcellent
	}

	raw := g.rawScore(ctx, reference, student)
	return scoreToMarks(raw, maxMarks), feedbackTier(raw * 10)
}

// rawScore returns the ensemble score in [0, 10].
func (g *Grader) rawScore(ctx context.Context, reference, student string) float64 {
	refTokens := tokenize(reference)
	studentTokens := tokenize(student)
	embedSim := g.embeddingSimilarity(ctx, reference, student)

	signals := [9]float64{
		exactMatch(reference, student),
		stemmedOverlap(refTokens, studentTokens),
		tfidfCosine(refTokens, studentTokens),
		g.sentimentSignal(student),
		embedSim,
		stemmedOverlap(refTokens, studentTokens),
		embedSim,
		coherence(refTokens, studentTokens),
		relevance(reference, student),
	}

	var weighted, totalWeight float64
	for i, signal := range signals {
		weighted += clamp01(signal) * 10 * signalWeights[i]
		totalWeight += signalWeights[i]
	}
	return weighted / totalWeight
}

// embeddingSimilarity degrades to zero on any provider failure so grading
// works without network access.
func (g *Grader) embeddingSimilarity(ctx context.Context, reference, student string) float64 {
	if g.embedder == nil {
		return 0
	}
	refVec, err := g.embedder.Embed(ctx, reference)
	if err != nil {
		return 0
	}
	studentVec, err := g.embedder.Embed(ctx, student)
	if err != nil {
		return 0
	}
	return clamp01(cosine(refVec, studentVec))
}

// sentimentSignal maps the student answer's VADER compound polarity in
// [-1, 1] through a [-5, 5] scale onto [0, 1].
func (g *Grader) sentimentSignal(student string) float64 {
	polarity := g.analyzer.PolarityScores(student).Compound * 5
	return clamp01((polarity + 5) / 10)
}

// scoreToMarks converts a raw [0, 10] score to awarded marks. A one mark
// attempt bonus is added before clamping to [0, maxMarks].
func scoreToMarks(raw float64, maxMarks int) int {
	marks := int(math.Round(raw/10*float64(maxMarks))) + 1
	if marks > maxMarks {
		marks = maxMarks
	}
	if marks < 0 {
		marks = 0
	}
	return marks
}

func feedbackTier(percent float64) string {
	switch {
	case percent >= 90:
		return FeedbackExcellent
	case percent >= 75:
		return FeedbackGood
	case percent >= 60:
		return FeedbackSatisfactory
	case percent >= 40:
		return FeedbackPartial
	case percent > 0:
		return FeedbackNeedsWork
	default:
		return FeedbackNoAnswer
	}
}
