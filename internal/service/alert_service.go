package service

import (
	"context"
	"fmt"

	"github.com/clausewatch/clausewatch/internal/model"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
	"github.com/clausewatch/clausewatch/internal/repo"
)

type AlertService struct {
	alerts *repo.AlertRepo
}

func NewAlertService(alerts *repo.AlertRepo) *AlertService {
	return &AlertService{alerts: alerts}
}

func (s *AlertService) List(ctx context.Context, status model.AlertStatus, contractID string, limit, offset uint) ([]model.Alert, error) {
	if status != "" {
		switch status {
		case model.AlertPending, model.AlertSent, model.AlertFailed, model.AlertAcknowledged:
		default:
			return nil, fmt.Errorf("%w: unknown alert status %q", appErr.ErrInvalid, status)
		}
	}
	if contractID != "" {
		return s.alerts.ListByContract(ctx, contractID, status, limit, offset)
	}
	return s.alerts.List(ctx, status, limit, offset)
}

func (s *AlertService) Acknowledge(ctx context.Context, id string) (*model.Alert, error) {
	if err := s.alerts.UpdateStatus(ctx, id, model.AlertAcknowledged); err != nil {
		return nil, err
	}
	return s.alerts.GetByID(ctx, id)
}
