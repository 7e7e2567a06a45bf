package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/didi/gendry/builder"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/dbutil"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
)

type FingerprintRepo struct {
	db *sql.DB
}

func NewFingerprintRepo(db *sql.DB) *FingerprintRepo {
	return &FingerprintRepo{db: db}
}

func (r *FingerprintRepo) CreateBatch(ctx context.Context, fingerprints []model.Fingerprint) error {
	if len(fingerprints) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(fingerprints))
	for _, fp := range fingerprints {
		keywords, err := json.Marshal(fp.Keywords)
		if err != nil {
			return fmt.Errorf("encode keywords of clause %s: %w", fp.ClauseID, err)
		}
		data = append(data, map[string]interface{}{
			"clause_id": fp.ClauseID,
			"text_hash": fp.TextHash,
			"sim_hash":  strconv.FormatUint(fp.SimHash, 16),
			"keywords":  string(keywords),
		})
	}
	sqlStr, args, err := builder.BuildInsert("fingerprints", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *FingerprintRepo) GetByClause(ctx context.Context, clauseID string) (*model.Fingerprint, error) {
	where := map[string]interface{}{
		"clause_id": clauseID,
	}
	sqlStr, args, err := builder.BuildSelect("fingerprints", where, []string{"clause_id", "text_hash", "sim_hash", "keywords"})
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
	return scanFingerprint(rows)
}

// ListByVersion loads the fingerprints of all clauses of one version, keyed
// by clause ID.
func (r *FingerprintRepo) ListByVersion(ctx context.Context, versionID string) (map[string]model.Fingerprint, error) {
	query := `SELECT f.clause_id, f.text_hash, f.sim_hash, f.keywords
FROM fingerprints f
JOIN clauses c ON c.id = f.clause_id
WHERE c.version_id = ?`
	sqlStr, args := dbutil.Finalize(query, []interface{}{versionID})
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make(map[string]model.Fingerprint)
	for rows.Next() {
		fp, err := scanFingerprint(rows)
		if err != nil {
			return nil, err
		}
		result[fp.ClauseID] = *fp
	}
	return result, rows.Err()
}

func scanFingerprint(rows *sql.Rows) (*model.Fingerprint, error) {
	var fp model.Fingerprint
	var simHash, keywords string
	if err := rows.Scan(&fp.ClauseID, &fp.TextHash, &simHash, &keywords); err != nil {
		return nil, err
	}
	value, err := strconv.ParseUint(simHash, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("decode sim_hash of clause %s: %w", fp.ClauseID, err)
	}
	fp.SimHash = value
	fp.Keywords = make(map[string]float64)
	if keywords != "" {
		if err := json.Unmarshal([]byte(keywords), &fp.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords of clause %s: %w", fp.ClauseID, err)
		}
	}
	return &fp, nil
}
