package drift

import (
	"sort"

	"github.com/clausewatch/clausewatch/internal/fingerprint"
	"github.com/clausewatch/clausewatch/internal/model"
)

// ClauseRecord pairs a clause with its fingerprint for alignment.
type ClauseRecord struct {
	Clause      model.Clause
	Fingerprint model.Fingerprint
}

// Similarity scores two fingerprints in [0,1].
type Similarity interface {
	Similarity(a, b model.Fingerprint) float64
}

type Option func(*Detector)

// WithThresholds sets the similarity band boundaries: a pair scoring at or
// above match is an accepted alignment; at or above modified it classifies
// as modified, below that as rewritten.
func WithThresholds(match, modified float64) Option {
	return func(d *Detector) {
		d.matchThreshold = match
		d.modifiedThreshold = modified
	}
}

// Detector aligns the clause sequences of two versions and classifies the
// result. Alignment is bipartite best-match over fingerprint similarity,
// not positional diffing: an insertion shifts every later clause number, so
// position alone cannot be trusted.
type Detector struct {
	sim               Similarity
	matchThreshold    float64
	modifiedThreshold float64
}

func NewDetector(sim Similarity, opts ...Option) *Detector {
	d := &Detector{
		sim:               sim,
		matchThreshold:    0.25,
		modifiedThreshold: 0.62,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type candidate struct {
	fromIdx  int
	toIdx    int
	score    float64
	distance int
}

// Detect emits exactly one Change per clause on either side: matched pairs
// produce one shared record, unmatched clauses one each. It never fails on
// malformed input; low confidence shows up as a low similarity score, not
// an error.
func (d *Detector) Detect(from, to []ClauseRecord) []model.Change {
	changes := make([]model.Change, 0, len(from)+len(to))
	matchedFrom := make([]bool, len(from))
	matchedTo := make([]bool, len(to))

	// Exact-content pass first: identical text hashes collapse to
	// unchanged regardless of how far the clause moved, and skip all
	// similarity math.
	byHash := make(map[string][]int, len(from))
	for i, rec := range from {
		byHash[rec.Fingerprint.TextHash] = append(byHash[rec.Fingerprint.TextHash], i)
	}
	for j, rec := range to {
		queue := byHash[rec.Fingerprint.TextHash]
		if len(queue) == 0 {
			continue
		}
		i := queue[0]
		byHash[rec.Fingerprint.TextHash] = queue[1:]
		matchedFrom[i] = true
		matchedTo[j] = true
		changes = append(changes, model.Change{
			FromClauseID:    from[i].Clause.ID,
			ToClauseID:      rec.Clause.ID,
			ChangeType:      model.ChangeUnchanged,
			SimilarityScore: 1.0,
		})
	}

	// Score the remaining cross product, skipping pairs whose keyword
	// vocabularies are trivially disjoint.
	var candidates []candidate
	for i := range from {
		if matchedFrom[i] {
			continue
		}
		for j := range to {
			if matchedTo[j] {
				continue
			}
			if !fingerprint.SharesVocabulary(from[i].Fingerprint, to[j].Fingerprint) {
				continue
			}
			score := d.sim.Similarity(from[i].Fingerprint, to[j].Fingerprint)
			if score < d.matchThreshold {
				continue
			}
			candidates = append(candidates, candidate{
				fromIdx:  i,
				toIdx:    j,
				score:    score,
				distance: absInt(from[i].Clause.ClauseNumber - to[j].Clause.ClauseNumber),
			})
		}
	}

	// Best matches first; equal scores prefer the closer pair because
	// contracts rarely reorder clauses wholesale.
	sort.Slice(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.score != cb.score {
			return ca.score > cb.score
		}
		if ca.distance != cb.distance {
			return ca.distance < cb.distance
		}
		if ca.fromIdx != cb.fromIdx {
			return ca.fromIdx < cb.fromIdx
		}
		return ca.toIdx < cb.toIdx
	})

	for _, cand := range candidates {
		if matchedFrom[cand.fromIdx] || matchedTo[cand.toIdx] {
			continue
		}
		matchedFrom[cand.fromIdx] = true
		matchedTo[cand.toIdx] = true
		changeType := model.ChangeRewritten
		if cand.score >= d.modifiedThreshold {
			changeType = model.ChangeModified
		}
		changes = append(changes, model.Change{
			FromClauseID:    from[cand.fromIdx].Clause.ID,
			ToClauseID:      to[cand.toIdx].Clause.ID,
			ChangeType:      changeType,
			SimilarityScore: cand.score,
		})
	}

	for i, rec := range from {
		if matchedFrom[i] {
			continue
		}
		changes = append(changes, model.Change{
			FromClauseID: rec.Clause.ID,
			ChangeType:   model.ChangeRemoved,
		})
	}
	for j, rec := range to {
		if matchedTo[j] {
			continue
		}
		changes = append(changes, model.Change{
			ToClauseID: rec.Clause.ID,
			ChangeType: model.ChangeAdded,
		})
	}
	return changes
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
