package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/dbutil"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
)

var clauseFields = []string{"id", "version_id", "clause_number", "category", "heading", "body", "position_start", "position_end"}

type ClauseRepo struct {
	db *sql.DB
}

func NewClauseRepo(db *sql.DB) *ClauseRepo {
	return &ClauseRepo{db: db}
}

// CreateBatch inserts all clauses of one version in a single statement.
func (r *ClauseRepo) CreateBatch(ctx context.Context, clauses []model.Clause) error {
	if len(clauses) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(clauses))
	for _, clause := range clauses {
		data = append(data, map[string]interface{}{
			"id":             clause.ID,
			"version_id":     clause.VersionID,
			"clause_number":  clause.ClauseNumber,
			"category":       clause.Category,
			"heading":        clause.Heading,
			"body":           clause.Text,
			"position_start": clause.PositionStart,
			"position_end":   clause.PositionEnd,
		})
	}
	sqlStr, args, err := builder.BuildInsert("clauses", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ClauseRepo) GetByID(ctx context.Context, id string) (*model.Clause, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("clauses", where, clauseFields)
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
	return scanClause(rows)
}

func (r *ClauseRepo) ListByVersion(ctx context.Context, versionID string) ([]model.Clause, error) {
	where := map[string]interface{}{
		"version_id": versionID,
		"_orderby":   "clause_number asc",
	}
	sqlStr, args, err := builder.BuildSelect("clauses", where, clauseFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	clauses := make([]model.Clause, 0)
	for rows.Next() {
		clause, err := scanClause(rows)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, *clause)
	}
	return clauses, rows.Err()
}

func (r *ClauseRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Clause, error) {
	if len(ids) == 0 {
		return []model.Clause{}, nil
	}
	values := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}
	where := map[string]interface{}{
		"_custom_ids": builder.In{"id": values},
	}
	sqlStr, args, err := builder.BuildSelect("clauses", where, clauseFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	clauses := make([]model.Clause, 0)
	for rows.Next() {
		clause, err := scanClause(rows)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, *clause)
	}
	return clauses, rows.Err()
}

func scanClause(rows *sql.Rows) (*model.Clause, error) {
	var clause model.Clause
	if err := rows.Scan(&clause.ID, &clause.VersionID, &clause.ClauseNumber, &clause.Category, &clause.Heading, &clause.Text, &clause.PositionStart, &clause.PositionEnd); err != nil {
		return nil, err
	}
	return &clause, nil
}
