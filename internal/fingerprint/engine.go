package fingerprint

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/bits"
	"regexp"
	"sort"
	"strings"

	"github.com/clausewatch/clausewatch/internal/model"
)

const simhashBits = 64

type Option func(*Engine)

func WithTopKeywords(n int) Option {
	return func(e *Engine) { e.topKeywords = n }
}

// WithSignalWeights sets the blend between the keyword cosine and the
// simhash Hamming proximity when scoring two fingerprints. The weights are
// normalized so only their ratio matters.
func WithSignalWeights(keyword, simhash float64) Option {
	return func(e *Engine) {
		e.keywordWeight = keyword
		e.simhashWeight = simhash
	}
}

// Engine derives fingerprints from clause text. Every derivation is a pure
// function of the text: no state is kept between calls, so identical text
// always produces byte-identical fingerprints.
type Engine struct {
	topKeywords   int
	keywordWeight float64
	simhashWeight float64
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		topKeywords:   10,
		keywordWeight: 0.7,
		simhashWeight: 0.3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute builds the fingerprint for one clause text.
func (e *Engine) Compute(text string) model.Fingerprint {
	normalized := NormalizeForHash(text)
	digest := sha256.Sum256([]byte(normalized))
	tokens := tokenize(normalized)
	return model.Fingerprint{
		TextHash: hex.EncodeToString(digest[:]),
		SimHash:  simhash(tokens),
		Keywords: e.keywords(tokens),
	}
}

// Similarity scores two fingerprints in [0,1]. Equal text hashes
// short-circuit to exactly 1.0; otherwise the score blends keyword cosine
// similarity with simhash Hamming proximity.
func (e *Engine) Similarity(a, b model.Fingerprint) float64 {
	if a.TextHash != "" && a.TextHash == b.TextHash {
		return 1.0
	}
	total := e.keywordWeight + e.simhashWeight
	if total <= 0 {
		return 0
	}
	score := (e.keywordWeight*KeywordCosine(a.Keywords, b.Keywords) +
		e.simhashWeight*SimHashProximity(a.SimHash, b.SimHash)) / total
	return math.Min(1, math.Max(0, score))
}

// SharesVocabulary reports whether two fingerprints have any keyword in
// common. Pairs with trivially disjoint vocabularies are not worth scoring.
func SharesVocabulary(a, b model.Fingerprint) bool {
	if len(a.Keywords) > len(b.Keywords) {
		a, b = b, a
	}
	for term := range a.Keywords {
		if _, ok := b.Keywords[term]; ok {
			return true
		}
	}
	return false
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9\s]`)
var whitespace = regexp.MustCompile(`\s+`)

// NormalizeForHash lowercases, strips punctuation and collapses whitespace
// so formatting-only differences never change the exact-content hash.
func NormalizeForHash(text string) string {
	text = strings.ToLower(text)
	text = nonAlnum.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) < 3 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// simhash folds per-token hashes into a 64-bit signature by majority vote
// per bit, weighted by token frequency. Texts sharing most of their tokens
// land within a small Hamming distance of each other.
func simhash(tokens []string) uint64 {
	if len(tokens) == 0 {
		return 0
	}
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	var v [simhashBits]int
	for tok, weight := range counts {
		sum := md5.Sum([]byte(tok))
		h := binary.BigEndian.Uint64(sum[:8])
		for i := 0; i < simhashBits; i++ {
			if h&(1<<uint(i)) != 0 {
				v[i] += weight
			} else {
				v[i] -= weight
			}
		}
	}
	var sig uint64
	for i := 0; i < simhashBits; i++ {
		if v[i] > 0 {
			sig |= 1 << uint(i)
		}
	}
	return sig
}

// SimHashProximity rescales Hamming distance into [0,1]. Two unrelated
// token sets differ in roughly half their bits, so the scale treats 32
// differing bits (of 64) as zero proximity rather than 0.5.
func SimHashProximity(a, b uint64) float64 {
	distance := bits.OnesCount64(a ^ b)
	proximity := 1.0 - float64(2*distance)/float64(simhashBits)
	if proximity < 0 {
		return 0
	}
	return proximity
}

// keywords keeps the topKeywords most frequent tokens with normalized
// frequency weights. Ordering ties break lexicographically so repeated
// computation yields the same map.
func (e *Engine) keywords(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return map[string]float64{}
	}
	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}
	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > e.topKeywords {
		terms = terms[:e.topKeywords]
	}
	total := 0
	for _, term := range terms {
		total += counts[term]
	}
	result := make(map[string]float64, len(terms))
	for _, term := range terms {
		result[term] = float64(counts[term]) / float64(total)
	}
	return result
}

// KeywordCosine computes cosine similarity over two sparse term-weight
// maps.
func KeywordCosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for term, wa := range a {
		normA += wa * wa
		if wb, ok := b[term]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}
	if dot == 0 || normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// stopwords is the shared English function-word list; tokens in it carry no
// matching signal and only dilute the keyword weights.
var stopwords = func() map[string]struct{} {
	words := []string{
		"the", "and", "for", "are", "was", "were", "been", "being", "this",
		"that", "these", "those", "from", "over", "under", "again", "than",
		"such", "into", "about", "between", "through", "during", "before",
		"after", "above", "below", "out", "off", "own", "same", "too",
		"very", "can", "will", "just", "should", "shall", "not", "its",
		"any", "all", "each", "other", "with", "without",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
