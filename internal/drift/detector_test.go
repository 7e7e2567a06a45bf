package drift

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clausewatch/clausewatch/internal/fingerprint"
	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/risk"
)

// stubSimilarity scores pairs by text hash so each test controls the
// alignment outcome exactly.
type stubSimilarity struct {
	scores map[[2]string]float64
}

func (s *stubSimilarity) Similarity(a, b model.Fingerprint) float64 {
	if a.TextHash == b.TextHash {
		return 1.0
	}
	return s.scores[[2]string{a.TextHash, b.TextHash}]
}

func record(id, hash string, number int) ClauseRecord {
	return ClauseRecord{
		Clause: model.Clause{ID: id, ClauseNumber: number},
		Fingerprint: model.Fingerprint{
			TextHash: hash,
			Keywords: map[string]float64{"shared": 1},
		},
	}
}

func TestDetect_UnchangedSurvivesReordering(t *testing.T) {
	d := NewDetector(&stubSimilarity{})
	from := []ClauseRecord{record("a", "h1", 1), record("b", "h2", 2)}
	to := []ClauseRecord{record("x", "h2", 1), record("y", "h1", 2)}

	changes := d.Detect(from, to)
	require.Len(t, changes, 2)
	for _, c := range changes {
		require.Equal(t, model.ChangeUnchanged, c.ChangeType)
		require.Equal(t, 1.0, c.SimilarityScore)
	}
}

func TestDetect_Bands(t *testing.T) {
	sim := &stubSimilarity{scores: map[[2]string]float64{
		{"h1", "h2"}: 0.8,
		{"h3", "h4"}: 0.4,
		{"h5", "h6"}: 0.1,
	}}
	d := NewDetector(sim)
	from := []ClauseRecord{record("a", "h1", 1), record("b", "h3", 2), record("c", "h5", 3)}
	to := []ClauseRecord{record("x", "h2", 1), record("y", "h4", 2), record("z", "h6", 3)}

	changes := d.Detect(from, to)
	byFrom := map[string]model.Change{}
	byTo := map[string]model.Change{}
	for _, c := range changes {
		if c.FromClauseID != "" {
			byFrom[c.FromClauseID] = c
		}
		if c.ToClauseID != "" {
			byTo[c.ToClauseID] = c
		}
	}

	require.Equal(t, model.ChangeModified, byFrom["a"].ChangeType)
	require.Equal(t, "x", byFrom["a"].ToClauseID)
	require.Equal(t, 0.8, byFrom["a"].SimilarityScore)

	require.Equal(t, model.ChangeRewritten, byFrom["b"].ChangeType)
	require.Equal(t, "y", byFrom["b"].ToClauseID)

	// Below the match threshold the pair is not an alignment at all.
	require.Equal(t, model.ChangeRemoved, byFrom["c"].ChangeType)
	require.Empty(t, byFrom["c"].ToClauseID)
	require.Equal(t, model.ChangeAdded, byTo["z"].ChangeType)
	require.Empty(t, byTo["z"].FromClauseID)
}

func TestDetect_Completeness(t *testing.T) {
	sim := &stubSimilarity{scores: map[[2]string]float64{
		{"h1", "h2"}: 0.7,
	}}
	d := NewDetector(sim)
	from := []ClauseRecord{record("a", "h1", 1), record("b", "h9", 2)}
	to := []ClauseRecord{record("x", "h2", 1), record("y", "h8", 2), record("z", "h7", 3)}

	changes := d.Detect(from, to)
	fromSeen := map[string]int{}
	toSeen := map[string]int{}
	for _, c := range changes {
		if c.FromClauseID != "" {
			fromSeen[c.FromClauseID]++
		}
		if c.ToClauseID != "" {
			toSeen[c.ToClauseID]++
		}
	}
	require.Equal(t, map[string]int{"a": 1, "b": 1}, fromSeen)
	require.Equal(t, map[string]int{"x": 1, "y": 1, "z": 1}, toSeen)
}

func TestDetect_EmptySides(t *testing.T) {
	d := NewDetector(&stubSimilarity{})

	added := d.Detect(nil, []ClauseRecord{record("x", "h1", 1)})
	require.Len(t, added, 1)
	require.Equal(t, model.ChangeAdded, added[0].ChangeType)

	removed := d.Detect([]ClauseRecord{record("a", "h1", 1)}, nil)
	require.Len(t, removed, 1)
	require.Equal(t, model.ChangeRemoved, removed[0].ChangeType)

	require.Empty(t, d.Detect(nil, nil))
}

func TestDetect_GreedyPrefersHigherScore(t *testing.T) {
	sim := &stubSimilarity{scores: map[[2]string]float64{
		{"h1", "h2"}: 0.9,
		{"h3", "h2"}: 0.5,
	}}
	d := NewDetector(sim)
	from := []ClauseRecord{record("a", "h1", 1), record("b", "h3", 2)}
	to := []ClauseRecord{record("x", "h2", 1)}

	changes := d.Detect(from, to)
	var matched, leftover model.Change
	for _, c := range changes {
		switch c.FromClauseID {
		case "a":
			matched = c
		case "b":
			leftover = c
		}
	}
	require.Equal(t, "x", matched.ToClauseID)
	require.Equal(t, 0.9, matched.SimilarityScore)
	require.Equal(t, model.ChangeRemoved, leftover.ChangeType)
}

func TestDetect_TieBreaksOnLocality(t *testing.T) {
	sim := &stubSimilarity{scores: map[[2]string]float64{
		{"h1", "h2"}: 0.7,
		{"h3", "h2"}: 0.7,
	}}
	d := NewDetector(sim)
	from := []ClauseRecord{record("a", "h1", 1), record("b", "h3", 5)}
	to := []ClauseRecord{record("x", "h2", 4)}

	changes := d.Detect(from, to)
	for _, c := range changes {
		if c.ToClauseID == "x" {
			require.Equal(t, "b", c.FromClauseID)
		}
	}
}

func TestDetect_RewrittenNoticePeriod(t *testing.T) {
	engine := fingerprint.NewEngine()
	d := NewDetector(engine)

	fromText := "Either party may terminate with 30 days notice."
	toText := "Company may terminate immediately, with no notice, at its sole discretion."
	from := []ClauseRecord{{
		Clause:      model.Clause{ID: "a", ClauseNumber: 1, Category: model.CategoryTermination},
		Fingerprint: engine.Compute(fromText),
	}}
	to := []ClauseRecord{{
		Clause:      model.Clause{ID: "x", ClauseNumber: 1, Category: model.CategoryTermination},
		Fingerprint: engine.Compute(toText),
	}}

	changes := d.Detect(from, to)
	require.Len(t, changes, 1)
	change := changes[0]
	// Related vocabulary keeps the pair aligned, but the meaning changed
	// too much for a plain modification.
	require.Equal(t, model.ChangeRewritten, change.ChangeType)
	require.Equal(t, "a", change.FromClauseID)
	require.Equal(t, "x", change.ToClauseID)

	score, level := risk.NewScorer().Score(model.CategoryTermination, change.ChangeType, change.SimilarityScore)
	require.GreaterOrEqual(t, score, 90)
	require.Equal(t, model.RiskCritical, level)
}

func TestDetect_SkipsDisjointVocabulary(t *testing.T) {
	// Same score table as a matching pair, but no shared keywords means
	// the pair is never scored.
	sim := &stubSimilarity{scores: map[[2]string]float64{
		{"h1", "h2"}: 0.9,
	}}
	d := NewDetector(sim)
	from := []ClauseRecord{{
		Clause:      model.Clause{ID: "a", ClauseNumber: 1},
		Fingerprint: model.Fingerprint{TextHash: "h1", Keywords: map[string]float64{"alpha": 1}},
	}}
	to := []ClauseRecord{{
		Clause:      model.Clause{ID: "x", ClauseNumber: 1},
		Fingerprint: model.Fingerprint{TextHash: "h2", Keywords: map[string]float64{"beta": 1}},
	}}
	require.False(t, fingerprint.SharesVocabulary(from[0].Fingerprint, to[0].Fingerprint))

	changes := d.Detect(from, to)
	require.Len(t, changes, 2)
	for _, c := range changes {
		require.Contains(t, []model.ChangeType{model.ChangeAdded, model.ChangeRemoved}, c.ChangeType)
	}
}
