package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/dbutil"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
)

var changeFields = []string{"id", "contract_id", "from_version_id", "to_version_id", "from_clause_id", "to_clause_id", "change_type", "similarity_score", "risk_level", "risk_score", "explanation", "ctime"}

// ChangeFilter narrows change listings. Zero values mean no constraint.
type ChangeFilter struct {
	ContractID  string
	ToVersionID string
	ChangeType  model.ChangeType
	RiskLevel   model.RiskLevel
	MinScore    int
	Limit       uint
	Offset      uint
}

type ChangeRepo struct {
	db *sql.DB
}

func NewChangeRepo(db *sql.DB) *ChangeRepo {
	return &ChangeRepo{db: db}
}

// ReplaceForVersion atomically swaps the change set of a target version:
// stale rows from a superseded comparison are dropped in the same
// transaction that writes the new ones, so readers never see a partial mix.
func (r *ChangeRepo) ReplaceForVersion(ctx context.Context, toVersionID string, changes []model.Change) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	delStr, delArgs := dbutil.Finalize("DELETE FROM changes WHERE to_version_id = ?", []interface{}{toVersionID})
	if _, err := tx.ExecContext(ctx, delStr, delArgs...); err != nil {
		return err
	}
	if len(changes) > 0 {
		data := make([]map[string]interface{}, 0, len(changes))
		for _, change := range changes {
			data = append(data, map[string]interface{}{
				"id":               change.ID,
				"contract_id":      change.ContractID,
				"from_version_id":  change.FromVersionID,
				"to_version_id":    change.ToVersionID,
				"from_clause_id":   change.FromClauseID,
				"to_clause_id":     change.ToClauseID,
				"change_type":      string(change.ChangeType),
				"similarity_score": change.SimilarityScore,
				"risk_level":       string(change.RiskLevel),
				"risk_score":       change.RiskScore,
				"explanation":      change.Explanation,
				"ctime":            change.Ctime,
			})
		}
		sqlStr, args, err := builder.BuildInsert("changes", data)
		if err != nil {
			return err
		}
		sqlStr, args = dbutil.Finalize(sqlStr, args)
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *ChangeRepo) GetByID(ctx context.Context, id string) (*model.Change, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("changes", where, changeFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanChange(rows)
}

func (r *ChangeRepo) List(ctx context.Context, filter ChangeFilter) ([]model.Change, error) {
	where := map[string]interface{}{
		"_orderby": "risk_score desc, ctime desc",
	}
	if filter.ContractID != "" {
		where["contract_id"] = filter.ContractID
	}
	if filter.ToVersionID != "" {
		where["to_version_id"] = filter.ToVersionID
	}
	if filter.ChangeType != "" {
		where["change_type"] = string(filter.ChangeType)
	}
	if filter.RiskLevel != "" {
		where["risk_level"] = string(filter.RiskLevel)
	}
	if filter.MinScore > 0 {
		where["risk_score >="] = filter.MinScore
	}
	if filter.Limit > 0 {
		where["_limit"] = []uint{filter.Offset, filter.Limit}
	}
	sqlStr, args, err := builder.BuildSelect("changes", where, changeFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	changes := make([]model.Change, 0)
	for rows.Next() {
		change, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, *change)
	}
	return changes, rows.Err()
}

func scanChange(rows *sql.Rows) (*model.Change, error) {
	var change model.Change
	var changeType, riskLevel string
	if err := rows.Scan(&change.ID, &change.ContractID, &change.FromVersionID, &change.ToVersionID, &change.FromClauseID, &change.ToClauseID, &changeType, &change.SimilarityScore, &riskLevel, &change.RiskScore, &change.Explanation, &change.Ctime); err != nil {
		return nil, err
	}
	change.ChangeType = model.ChangeType(changeType)
	change.RiskLevel = model.RiskLevel(riskLevel)
	return &change, nil
}
