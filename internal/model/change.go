package model

type ChangeType string

const (
	ChangeAdded     ChangeType = "added"
	ChangeRemoved   ChangeType = "removed"
	ChangeModified  ChangeType = "modified"
	ChangeRewritten ChangeType = "rewritten"
	ChangeUnchanged ChangeType = "unchanged"
)

func (t ChangeType) Valid() bool {
	switch t {
	case ChangeAdded, ChangeRemoved, ChangeModified, ChangeRewritten, ChangeUnchanged:
		return true
	}
	return false
}

type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Rank orders risk levels for threshold comparisons. Unknown levels rank
// lowest.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	}
	return -1
}

// Change records the fate of one clause (or aligned clause pair) between two
// specific versions. Generated fresh on every comparison, never mutated
// after creation.
type Change struct {
	ID              string     `json:"id"`
	ContractID      string     `json:"contract_id"`
	FromVersionID   string     `json:"from_version_id,omitempty"`
	ToVersionID     string     `json:"to_version_id"`
	FromClauseID    string     `json:"from_clause_id,omitempty"`
	ToClauseID      string     `json:"to_clause_id,omitempty"`
	ChangeType      ChangeType `json:"change_type"`
	SimilarityScore float64    `json:"similarity_score"`
	RiskLevel       RiskLevel  `json:"risk_level,omitempty"`
	RiskScore       int        `json:"risk_score"`
	Explanation     string     `json:"explanation,omitempty"`
	Ctime           int64      `json:"ctime"`
}
