package service

import (
	"context"
	"fmt"

	"github.com/clausewatch/clausewatch/internal/model"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
	"github.com/clausewatch/clausewatch/internal/repo"
)

type ChangeService struct {
	changes *repo.ChangeRepo
	clauses *repo.ClauseRepo
}

func NewChangeService(changes *repo.ChangeRepo, clauses *repo.ClauseRepo) *ChangeService {
	return &ChangeService{changes: changes, clauses: clauses}
}

func (s *ChangeService) List(ctx context.Context, filter repo.ChangeFilter) ([]model.Change, error) {
	if filter.ChangeType != "" && !filter.ChangeType.Valid() {
		return nil, fmt.Errorf("%w: unknown change type %q", appErr.ErrInvalid, filter.ChangeType)
	}
	if filter.RiskLevel != "" && !filter.RiskLevel.Valid() {
		return nil, fmt.Errorf("%w: unknown risk level %q", appErr.ErrInvalid, filter.RiskLevel)
	}
	return s.changes.List(ctx, filter)
}

// ChangeDetail pairs a change with the clause texts on both sides so a
// reviewer can read the diff without extra lookups.
type ChangeDetail struct {
	Change     model.Change  `json:"change"`
	FromClause *model.Clause `json:"from_clause,omitempty"`
	ToClause   *model.Clause `json:"to_clause,omitempty"`
}

func (s *ChangeService) Get(ctx context.Context, id string) (*ChangeDetail, error) {
	change, err := s.changes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &ChangeDetail{Change: *change}
	if change.FromClauseID != "" {
		clause, err := s.clauses.GetByID(ctx, change.FromClauseID)
		if err != nil && !appErr.IsNotFound(err) {
			return nil, err
		}
		detail.FromClause = clause
	}
	if change.ToClauseID != "" {
		clause, err := s.clauses.GetByID(ctx, change.ToClauseID)
		if err != nil && !appErr.IsNotFound(err) {
			return nil, err
		}
		detail.ToClause = clause
	}
	return detail, nil
}
