package ensemble

import (
	"math"
	"strings"
)

// exactMatch is 1 when the two answers are identical ignoring case and
// surrounding whitespace.
func exactMatch(reference, student string) float64 {
	if strings.EqualFold(strings.TrimSpace(reference), strings.TrimSpace(student)) {
		return 1
	}
	return 0
}

// stemmedOverlap is the size of the shared token set divided by the size of
// the larger set.
func stemmedOverlap(refTokens, studentTokens []string) float64 {
	refSet := tokenSet(refTokens)
	studentSet := tokenSet(studentTokens)
	if len(refSet) == 0 || len(studentSet) == 0 {
		return 0
	}

	shared := 0
	for token := range studentSet {
		if _, ok := refSet[token]; ok {
			shared++
		}
	}

	larger := len(refSet)
	if len(studentSet) > larger {
		larger = len(studentSet)
	}
	return float64(shared) / float64(larger)
}

// tfidfCosine computes cosine similarity over tf-idf vectors built from the
// two answers alone. With two documents idf is log(2/(1+df)) + 1.
func tfidfCosine(refTokens, studentTokens []string) float64 {
	if len(refTokens) == 0 || len(studentTokens) == 0 {
		return 0
	}

	refCounts := termCounts(refTokens)
	studentCounts := termCounts(studentTokens)

	vocab := make(map[string]struct{}, len(refCounts)+len(studentCounts))
	for term := range refCounts {
		vocab[term] = struct{}{}
	}
	for term := range studentCounts {
		vocab[term] = struct{}{}
	}

	refVec := make([]float64, 0, len(vocab))
	studentVec := make([]float64, 0, len(vocab))
	for term := range vocab {
		df := 0
		if refCounts[term] > 0 {
			df++
		}
		if studentCounts[term] > 0 {
			df++
		}
		idf := math.Log(2.0/(1.0+float64(df))) + 1

		refVec = append(refVec, float64(refCounts[term])*idf)
		studentVec = append(studentVec, float64(studentCounts[term])*idf)
	}
	return cosine(refVec, studentVec)
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

// coherence compares answer lengths: the shorter token count over the longer.
func coherence(refTokens, studentTokens []string) float64 {
	refLen := float64(len(refTokens))
	studentLen := float64(len(studentTokens))
	if refLen == 0 || studentLen == 0 {
		return 0
	}
	return math.Min(refLen, studentLen) / math.Max(refLen, studentLen)
}

// relevance is the fraction of reference words that show up in the student's
// answer, without stemming.
func relevance(reference, student string) float64 {
	refWords := strings.Fields(strings.ToLower(reference))
	if len(refWords) == 0 {
		return 0
	}

	studentWords := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(student)) {
		studentWords[word] = struct{}{}
	}

	present := 0
	for _, word := range refWords {
		if _, ok := studentWords[word]; ok {
			present++
		}
	}
	return float64(present) / float64(len(refWords))
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
