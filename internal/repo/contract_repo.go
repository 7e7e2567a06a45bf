package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/dbutil"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
)

var contractFields = []string{"id", "vendor", "contract_type", "source_url", "watch", "ctime", "mtime"}

type ContractRepo struct {
	db *sql.DB
}

func NewContractRepo(db *sql.DB) *ContractRepo {
	return &ContractRepo{db: db}
}

func (r *ContractRepo) Create(ctx context.Context, contract *model.Contract) error {
	data := map[string]interface{}{
		"id":            contract.ID,
		"vendor":        contract.Vendor,
		"contract_type": string(contract.ContractType),
		"source_url":    contract.SourceURL,
		"watch":         contract.Watch,
		"ctime":         contract.Ctime,
		"mtime":         contract.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("contracts", []map[string]interface{}{data})
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

func (r *ContractRepo) Update(ctx context.Context, contract *model.Contract) error {
	where := map[string]interface{}{
		"id": contract.ID,
	}
	update := map[string]interface{}{
		"vendor":        contract.Vendor,
		"contract_type": string(contract.ContractType),
		"source_url":    contract.SourceURL,
		"watch":         contract.Watch,
		"mtime":         contract.Mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("contracts", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *ContractRepo) GetByID(ctx context.Context, id string) (*model.Contract, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("contracts", where, contractFields)
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
	return scanContract(rows)
}

func (r *ContractRepo) List(ctx context.Context, vendor string, limit, offset uint) ([]model.Contract, error) {
	where := map[string]interface{}{
		"_orderby": "ctime desc",
	}
	if vendor != "" {
		where["vendor"] = vendor
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("contracts", where, contractFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contracts := make([]model.Contract, 0)
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *contract)
	}
	return contracts, rows.Err()
}

// ListWatched returns contracts the watch job should poll: watch enabled and
// a source URL to re-fetch.
func (r *ContractRepo) ListWatched(ctx context.Context) ([]model.Contract, error) {
	where := map[string]interface{}{
		"watch":       1,
		"_custom_url": builder.Custom("source_url <> ''"),
		"_orderby":    "ctime asc",
	}
	sqlStr, args, err := builder.BuildSelect("contracts", where, contractFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contracts := make([]model.Contract, 0)
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *contract)
	}
	return contracts, rows.Err()
}

func (r *ContractRepo) Count(ctx context.Context, vendor string) (int, error) {
	query := "SELECT COUNT(1) FROM contracts"
	args := []interface{}{}
	if vendor != "" {
		query += " WHERE vendor = ?"
		args = append(args, vendor)
	}
	query, args = dbutil.Finalize(query, args)
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ContractRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args := dbutil.Finalize("DELETE FROM contracts WHERE id = ?", []interface{}{id})
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func scanContract(rows *sql.Rows) (*model.Contract, error) {
	var contract model.Contract
	var contractType string
	if err := rows.Scan(&contract.ID, &contract.Vendor, &contractType, &contract.SourceURL, &contract.Watch, &contract.Ctime, &contract.Mtime); err != nil {
		return nil, err
	}
	contract.ContractType = model.ContractType(contractType)
	return &contract, nil
}
