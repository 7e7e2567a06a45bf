package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/dbutil"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
)

var alertFields = []string{"id", "change_id", "alert_type", "recipient", "status", "ctime"}

type AlertRepo struct {
	db *sql.DB
}

func NewAlertRepo(db *sql.DB) *AlertRepo {
	return &AlertRepo{db: db}
}

func (r *AlertRepo) CreateBatch(ctx context.Context, alerts []model.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	data := make([]map[string]interface{}, 0, len(alerts))
	for _, alert := range alerts {
		data = append(data, map[string]interface{}{
			"id":         alert.ID,
			"change_id":  alert.ChangeID,
			"alert_type": string(alert.AlertType),
			"recipient":  alert.Recipient,
			"status":     string(alert.Status),
			"ctime":      alert.Ctime,
		})
	}
	sqlStr, args, err := builder.BuildInsert("alerts", data)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *AlertRepo) GetByID(ctx context.Context, id string) (*model.Alert, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("alerts", where, alertFields)
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
	return scanAlert(rows)
}

func (r *AlertRepo) List(ctx context.Context, status model.AlertStatus, limit, offset uint) ([]model.Alert, error) {
	where := map[string]interface{}{
		"_orderby": "ctime desc",
	}
	if status != "" {
		where["status"] = string(status)
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("alerts", where, alertFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	alerts := make([]model.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

// ListByContract follows the change foreign key, since alerts do not carry a
// contract column themselves.
func (r *AlertRepo) ListByContract(ctx context.Context, contractID string, status model.AlertStatus, limit, offset uint) ([]model.Alert, error) {
	query := `SELECT a.id, a.change_id, a.alert_type, a.recipient, a.status, a.ctime
FROM alerts a
JOIN changes c ON c.id = a.change_id
WHERE c.contract_id = ?`
	args := []interface{}{contractID}
	if status != "" {
		query += " AND a.status = ?"
		args = append(args, string(status))
	}
	query += `
ORDER BY a.ctime DESC`
	if limit > 0 {
		query += " LIMIT ?,?"
		args = append(args, offset, limit)
	}
	sqlStr, finalArgs := dbutil.Finalize(query, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, finalArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	alerts := make([]model.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *alert)
	}
	return alerts, rows.Err()
}

func (r *AlertRepo) UpdateStatus(ctx context.Context, id string, status model.AlertStatus) error {
	where := map[string]interface{}{
		"id": id,
	}
	update := map[string]interface{}{
		"status": string(status),
	}
	sqlStr, args, err := builder.BuildUpdate("alerts", where, update)
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

func scanAlert(rows *sql.Rows) (*model.Alert, error) {
	var alert model.Alert
	var alertType, status string
	if err := rows.Scan(&alert.ID, &alert.ChangeID, &alertType, &alert.Recipient, &status, &alert.Ctime); err != nil {
		return nil, err
	}
	alert.AlertType = model.AlertType(alertType)
	alert.Status = model.AlertStatus(status)
	return &alert, nil
}
