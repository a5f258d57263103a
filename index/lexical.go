package index

import (
	"math"
	"sort"
	"strings"
)

// BM25 Okapi parameters. These match the widely used reference defaults.
const (
	bm25K1      = 1.5
	bm25B       = 0.75
	bm25Epsilon = 0.25
)

// Tokenize splits text into terms by whitespace. Both documents and
// queries must be tokenized with this function so lexical scores line up.
func Tokenize(text string) []string {
	return strings.Fields(text)
}

// DocScore is a document position paired with its raw lexical score.
type DocScore struct {
	Index int
	Score float64
}

// Lexical is an immutable BM25 Okapi index over an ordered token corpus.
// It is built once from the full corpus and never mutated, so it is safe
// for concurrent readers without locking.
type Lexical struct {
	termFreqs []map[string]int
	docLens   []int
	avgLen    float64
	idf       map[string]float64
}

// BuildLexical builds a BM25 index from tokenized documents. The slice
// order defines document positions for Scores and TopN.
func BuildLexical(tokenized [][]string) *Lexical {
	l := &Lexical{
		termFreqs: make([]map[string]int, len(tokenized)),
		docLens:   make([]int, len(tokenized)),
		idf:       make(map[string]float64),
	}

	df := make(map[string]int)
	totalLen := 0
	for i, tokens := range tokenized {
		freqs := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			freqs[tok]++
		}
		for tok := range freqs {
			df[tok]++
		}
		l.termFreqs[i] = freqs
		l.docLens[i] = len(tokens)
		totalLen += len(tokens)
	}

	if len(tokenized) > 0 {
		l.avgLen = float64(totalLen) / float64(len(tokenized))
	}

	// Okapi IDF with the epsilon floor: terms appearing in more than half
	// the corpus get a small positive IDF instead of a negative one.
	n := float64(len(tokenized))
	var idfSum float64
	var negative []string
	for tok, freq := range df {
		idf := math.Log((n - float64(freq) + 0.5) / (float64(freq) + 0.5))
		l.idf[tok] = idf
		idfSum += idf
		if idf < 0 {
			negative = append(negative, tok)
		}
	}
	if len(l.idf) > 0 {
		eps := bm25Epsilon * idfSum / float64(len(l.idf))
		for _, tok := range negative {
			l.idf[tok] = eps
		}
	}

	return l
}

// Len returns the number of indexed documents.
func (l *Lexical) Len() int {
	return len(l.termFreqs)
}

// Scores computes the raw BM25 score of every indexed document against the
// query tokens. An empty query yields uniformly zero scores.
func (l *Lexical) Scores(query []string) []float64 {
	scores := make([]float64, len(l.termFreqs))
	for i := range l.termFreqs {
		dl := float64(l.docLens[i])
		norm := bm25K1 * (1 - bm25B + bm25B*dl/l.avgLenOrOne())
		for _, tok := range query {
			freq := float64(l.termFreqs[i][tok])
			if freq == 0 {
				continue
			}
			scores[i] += l.idf[tok] * freq * (bm25K1 + 1) / (freq + norm)
		}
	}
	return scores
}

// TopN scores every document and returns the n highest by raw score,
// descending, ties broken by document position. Zero-score documents may
// appear among the results when the corpus is small.
func (l *Lexical) TopN(query []string, n int) []DocScore {
	scores := l.Scores(query)
	ranked := make([]DocScore, len(scores))
	for i, s := range scores {
		ranked[i] = DocScore{Index: i, Score: s}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Score > ranked[b].Score
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func (l *Lexical) avgLenOrOne() float64 {
	if l.avgLen == 0 {
		return 1
	}
	return l.avgLen
}
