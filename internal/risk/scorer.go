package risk

import (
	"math"

	"github.com/clausewatch/clausewatch/internal/model"
)

// Score band boundaries.
const (
	mediumBand   = 40
	highBand     = 70
	criticalBand = 90
)

// Scorer turns (category, change type, similarity) into a 0-100 risk score.
// It is a plain strategy object so the weighting can be unit-tested and
// swapped without touching any text processing.
type Scorer struct {
	categoryWeights map[string]float64
	changeWeights   map[model.ChangeType]float64
	fallbackWeight  float64
	scale           float64
}

func NewScorer() *Scorer {
	return &Scorer{
		categoryWeights: map[string]float64{
			model.CategoryLiability:            10,
			model.CategoryDataProcessing:       10,
			model.CategoryTermination:          9,
			model.CategoryIntellectualProperty: 8,
			model.CategoryConfidentiality:      8,
			model.CategoryPayment:              7,
			model.CategoryJurisdiction:         6,
			model.CategoryServiceLevel:         5,
			model.CategoryMarketing:            3,
		},
		changeWeights: map[model.ChangeType]float64{
			// Removal of a protective clause or a full rewrite is harder
			// for a reviewer to catch than a visible edit.
			model.ChangeRemoved:   1.5,
			model.ChangeRewritten: 1.3,
			model.ChangeModified:  1.0,
			model.ChangeAdded:     0.8,
		},
		fallbackWeight: 2,
		scale:          4.5,
	}
}

// Score computes the risk score and its band. Decreasing similarity never
// decreases the score for a fixed category and change type.
func (s *Scorer) Score(category string, changeType model.ChangeType, similarity float64) (int, model.RiskLevel) {
	if changeType == model.ChangeUnchanged {
		return 0, model.RiskLow
	}
	categoryWeight, ok := s.categoryWeights[category]
	if !ok {
		categoryWeight = s.fallbackWeight
	}
	changeWeight, ok := s.changeWeights[changeType]
	if !ok {
		changeWeight = 1.0
	}
	similarity = math.Min(1, math.Max(0, similarity))
	magnitude := 1 + 2*(1-similarity)
	score := int(math.Round(categoryWeight * changeWeight * magnitude * s.scale))
	if score > 100 {
		score = 100
	}
	return score, LevelForScore(score)
}

func LevelForScore(score int) model.RiskLevel {
	switch {
	case score >= criticalBand:
		return model.RiskCritical
	case score >= highBand:
		return model.RiskHigh
	case score >= mediumBand:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}
