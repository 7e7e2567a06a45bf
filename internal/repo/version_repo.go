package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/dbutil"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
)

var versionFields = []string{"id", "contract_id", "version_number", "source_type", "source_url", "raw_text", "content_hash", "snapshot_key", "ctime"}

type VersionRepo struct {
	db *sql.DB
}

func NewVersionRepo(db *sql.DB) *VersionRepo {
	return &VersionRepo{db: db}
}

func (r *VersionRepo) Create(ctx context.Context, version *model.Version) error {
	data := map[string]interface{}{
		"id":             version.ID,
		"contract_id":    version.ContractID,
		"version_number": version.VersionNumber,
		"source_type":    string(version.SourceType),
		"source_url":     version.SourceURL,
		"raw_text":       version.RawText,
		"content_hash":   version.ContentHash,
		"snapshot_key":   version.SnapshotKey,
		"ctime":          version.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("versions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *VersionRepo) GetByID(ctx context.Context, id string) (*model.Version, error) {
	where := map[string]interface{}{
		"id": id,
	}
	return r.getOne(ctx, where)
}

// GetLatest returns the highest-numbered version of a contract, or
// ErrNotFound when the contract has no versions yet.
func (r *VersionRepo) GetLatest(ctx context.Context, contractID string) (*model.Version, error) {
	where := map[string]interface{}{
		"contract_id": contractID,
		"_orderby":    "version_number desc",
		"_limit":      []uint{0, 1},
	}
	return r.getOne(ctx, where)
}

func (r *VersionRepo) GetByNumber(ctx context.Context, contractID string, number int) (*model.Version, error) {
	where := map[string]interface{}{
		"contract_id":    contractID,
		"version_number": number,
	}
	return r.getOne(ctx, where)
}

// GetPrevious returns the version directly below the given number, or
// ErrNotFound for the first version.
func (r *VersionRepo) GetPrevious(ctx context.Context, contractID string, number int) (*model.Version, error) {
	where := map[string]interface{}{
		"contract_id":      contractID,
		"version_number <": number,
		"_orderby":         "version_number desc",
		"_limit":           []uint{0, 1},
	}
	return r.getOne(ctx, where)
}

func (r *VersionRepo) ListByContract(ctx context.Context, contractID string, limit, offset uint) ([]model.Version, error) {
	where := map[string]interface{}{
		"contract_id": contractID,
		"_orderby":    "version_number desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("versions", where, versionFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	versions := make([]model.Version, 0)
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *version)
	}
	return versions, rows.Err()
}

func (r *VersionRepo) Count(ctx context.Context, contractID string) (int, error) {
	sqlStr, args := dbutil.Finalize("SELECT COUNT(1) FROM versions WHERE contract_id = ?", []interface{}{contractID})
	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VersionRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Version, error) {
	sqlStr, args, err := builder.BuildSelect("versions", where, versionFields)
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
	return scanVersion(rows)
}

func scanVersion(rows *sql.Rows) (*model.Version, error) {
	var version model.Version
	var sourceType string
	if err := rows.Scan(&version.ID, &version.ContractID, &version.VersionNumber, &sourceType, &version.SourceURL, &version.RawText, &version.ContentHash, &version.SnapshotKey, &version.Ctime); err != nil {
		return nil, err
	}
	version.SourceType = model.SourceType(sourceType)
	return &version, nil
}
