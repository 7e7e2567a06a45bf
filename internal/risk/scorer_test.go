package risk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clausewatch/clausewatch/internal/model"
)

func TestScore_Values(t *testing.T) {
	s := NewScorer()
	tests := []struct {
		name       string
		category   string
		changeType model.ChangeType
		similarity float64
		score      int
		level      model.RiskLevel
	}{
		{"unchanged is always zero", model.CategoryLiability, model.ChangeUnchanged, 1.0, 0, model.RiskLow},
		{"removed liability saturates", model.CategoryLiability, model.ChangeRemoved, 0, 100, model.RiskCritical},
		{"light liability edit", model.CategoryLiability, model.ChangeModified, 0.9, 54, model.RiskMedium},
		{"jurisdiction rewrite", model.CategoryJurisdiction, model.ChangeRewritten, 0.5, 70, model.RiskHigh},
		{"marketing addition", model.CategoryMarketing, model.ChangeAdded, 0.9, 13, model.RiskLow},
		{"uncategorized clause uses fallback weight", model.CategoryNone, model.ChangeModified, 0.5, 18, model.RiskLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, level := s.Score(tc.category, tc.changeType, tc.similarity)
			require.Equal(t, tc.score, score)
			require.Equal(t, tc.level, level)
		})
	}
}

func TestScore_MonotonicInDissimilarity(t *testing.T) {
	s := NewScorer()
	prev := -1
	for sim := 1.0; sim >= 0; sim -= 0.05 {
		score, _ := s.Score(model.CategoryPayment, model.ChangeModified, sim)
		require.GreaterOrEqual(t, score, prev)
		require.LessOrEqual(t, score, 100)
		prev = score
	}
}

func TestScore_ClampsSimilarity(t *testing.T) {
	s := NewScorer()
	low, _ := s.Score(model.CategoryPayment, model.ChangeModified, -3)
	atZero, _ := s.Score(model.CategoryPayment, model.ChangeModified, 0)
	require.Equal(t, atZero, low)

	high, _ := s.Score(model.CategoryPayment, model.ChangeModified, 7)
	atOne, _ := s.Score(model.CategoryPayment, model.ChangeModified, 1)
	require.Equal(t, atOne, high)
}

func TestLevelForScore(t *testing.T) {
	require.Equal(t, model.RiskLow, LevelForScore(0))
	require.Equal(t, model.RiskLow, LevelForScore(39))
	require.Equal(t, model.RiskMedium, LevelForScore(40))
	require.Equal(t, model.RiskMedium, LevelForScore(69))
	require.Equal(t, model.RiskHigh, LevelForScore(70))
	require.Equal(t, model.RiskHigh, LevelForScore(89))
	require.Equal(t, model.RiskCritical, LevelForScore(90))
	require.Equal(t, model.RiskCritical, LevelForScore(100))
}
