package rankers

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"DocRAG/backend/go/internal/rag/interfaces"
	"DocRAG/backend/go/internal/rag/schema"
)

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"by": true, "do": true, "does": true, "for": true, "from": true, "how": true, "in": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "the": true, "this": true,
	"to": true, "was": true, "what": true, "when": true, "which": true, "who": true,
	"why": true, "with": true,
}

// KeywordRanker scores chunks with a saturated TF-IDF over the query terms.
// It needs no external model, so it works with every provider.
type KeywordRanker struct{}

func NewKeywordRanker() *KeywordRanker { return &KeywordRanker{} }

func (r *KeywordRanker) Rank(ctx context.Context, query string, docs []*schema.Document, topK int) ([]*schema.Document, error) {
	terms := uniqueTerms(Tokenize(query))
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int, len(terms))
	for i, d := range docs {
		counts[i] = make(map[string]int)
		for _, tok := range Tokenize(d.Text) {
			counts[i][tok]++
		}
		for _, t := range terms {
			if counts[i][t] > 0 {
				df[t]++
			}
		}
	}

	n := float64(len(docs))
	for i, d := range docs {
		var score float64
		for _, t := range terms {
			tf := float64(counts[i][t])
			if tf == 0 {
				continue
			}
			idf := math.Log(1 + n/float64(df[t]))
			score += idf * tf / (tf + 1.2)
		}
		d.Score = score
	}
	return topByScore(docs, topK), nil
}

// Tokenize lowercases text and splits it into letter/digit runs, dropping stopwords.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if !stopwords[f] {
			out = append(out, f)
		}
	}
	return out
}

func uniqueTerms(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	var out []string
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// topByScore sorts by descending score, keeping document order for ties.
func topByScore(docs []*schema.Document, topK int) []*schema.Document {
	ranked := append([]*schema.Document(nil), docs...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked
}

var _ interfaces.Ranker = (*KeywordRanker)(nil)
