package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clausewatch/clausewatch/internal/model"
)

func TestCompute_Deterministic(t *testing.T) {
	e := NewEngine()
	text := "The provider shall indemnify the customer against all third party claims arising from gross negligence."
	first := e.Compute(text)
	second := e.Compute(text)
	require.Equal(t, first, second)
	require.NotEmpty(t, first.TextHash)
	require.NotZero(t, first.SimHash)
	require.NotEmpty(t, first.Keywords)
}

func TestCompute_FormattingInvariantHash(t *testing.T) {
	e := NewEngine()
	a := e.Compute("The provider SHALL indemnify the customer.")
	b := e.Compute("the provider shall   indemnify\nthe customer")
	require.Equal(t, a.TextHash, b.TextHash)
	require.Equal(t, 1.0, e.Similarity(a, b))
}

func TestNormalizeForHash(t *testing.T) {
	require.Equal(t, "section 1 payment terms", NormalizeForHash("  Section 1.  Payment\tTerms! "))
	require.Equal(t, "", NormalizeForHash("***"))
}

func TestSimilarity_Ordering(t *testing.T) {
	e := NewEngine()
	base := e.Compute("Either party may terminate this agreement for material breach after thirty days written notice and an opportunity to cure the breach.")
	near := e.Compute("Either party may terminate this agreement for material breach after sixty days written notice and an opportunity to cure the breach.")
	far := e.Compute("All subscription fees are payable annually in advance and are exclusive of applicable taxes levied by any governmental authority.")

	simClose := e.Similarity(base, near)
	simFar := e.Similarity(base, far)
	require.Greater(t, simClose, simFar)
	require.Greater(t, simClose, 0.5)
	require.Less(t, simFar, 0.3)
}

func TestSimilarity_Bounds(t *testing.T) {
	e := NewEngine()
	a := e.Compute("termination notice period applies to both parties equally under this section")
	require.Equal(t, 1.0, e.Similarity(a, a))

	empty := e.Compute("")
	score := e.Similarity(a, empty)
	require.GreaterOrEqual(t, score, 0.0)
	require.LessOrEqual(t, score, 1.0)
}

func TestSimHashProximity(t *testing.T) {
	require.Equal(t, 1.0, SimHashProximity(0xdeadbeef, 0xdeadbeef))
	// One differing bit out of 64.
	require.InDelta(t, 1.0-2.0/64.0, SimHashProximity(0, 1), 1e-9)
	// Half the bits differing reads as unrelated.
	require.Equal(t, 0.0, SimHashProximity(0, 0xFFFFFFFF))
	require.Equal(t, 0.0, SimHashProximity(0, ^uint64(0)))
}

func TestKeywordCosine(t *testing.T) {
	a := map[string]float64{"termination": 0.5, "notice": 0.3, "breach": 0.2}
	require.InDelta(t, 1.0, KeywordCosine(a, a), 1e-9)
	require.Equal(t, 0.0, KeywordCosine(a, map[string]float64{"fees": 1.0}))
	require.Equal(t, 0.0, KeywordCosine(a, nil))

	b := map[string]float64{"termination": 0.5, "fees": 0.5}
	score := KeywordCosine(a, b)
	require.Greater(t, score, 0.0)
	require.Less(t, score, 1.0)
}

func TestSharesVocabulary(t *testing.T) {
	a := model.Fingerprint{Keywords: map[string]float64{"liability": 1}}
	b := model.Fingerprint{Keywords: map[string]float64{"liability": 0.4, "damages": 0.6}}
	c := model.Fingerprint{Keywords: map[string]float64{"marketing": 1}}
	require.True(t, SharesVocabulary(a, b))
	require.False(t, SharesVocabulary(a, c))
	require.False(t, SharesVocabulary(a, model.Fingerprint{}))
}

func TestKeywords_TopNAndTies(t *testing.T) {
	e := NewEngine(WithTopKeywords(2))
	fp := e.Compute("breach breach notice notice cure")
	require.Len(t, fp.Keywords, 2)
	// Tie on count breaks lexicographically, so "breach" and "notice" win
	// over "cure".
	require.Contains(t, fp.Keywords, "breach")
	require.Contains(t, fp.Keywords, "notice")
	require.InDelta(t, 0.5, fp.Keywords["breach"], 1e-9)
}

func TestTokenize_SkipsStopwordsAndShortTokens(t *testing.T) {
	fp := NewEngine().Compute("the provider and the customer shall not be at odds")
	require.NotContains(t, fp.Keywords, "the")
	require.NotContains(t, fp.Keywords, "shall")
	require.NotContains(t, fp.Keywords, "be")
	require.Contains(t, fp.Keywords, "provider")
	require.Contains(t, fp.Keywords, "customer")
}
