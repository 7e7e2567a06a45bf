package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/clausewatch/clausewatch/internal/drift"
	"github.com/clausewatch/clausewatch/internal/model"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
	"github.com/clausewatch/clausewatch/internal/pkg/timeutil"
	"github.com/clausewatch/clausewatch/internal/risk"
)

type contractStore interface {
	GetByID(ctx context.Context, id string) (*model.Contract, error)
}

type versionStore interface {
	GetByID(ctx context.Context, id string) (*model.Version, error)
	GetPrevious(ctx context.Context, contractID string, number int) (*model.Version, error)
}

type clauseStore interface {
	CreateBatch(ctx context.Context, clauses []model.Clause) error
	ListByVersion(ctx context.Context, versionID string) ([]model.Clause, error)
}

type fingerprintStore interface {
	CreateBatch(ctx context.Context, fingerprints []model.Fingerprint) error
	ListByVersion(ctx context.Context, versionID string) (map[string]model.Fingerprint, error)
}

type changeStore interface {
	ReplaceForVersion(ctx context.Context, toVersionID string, changes []model.Change) error
}

type alertStore interface {
	CreateBatch(ctx context.Context, alerts []model.Alert) error
}

type segmenter interface {
	Segment(ctx context.Context, text string) []model.Clause
}

type computer interface {
	Compute(text string) model.Fingerprint
}

type detector interface {
	Detect(from, to []drift.ClauseRecord) []model.Change
}

// Result summarizes one pipeline run.
type Result struct {
	VersionID       string `json:"version_id"`
	ContractID      string `json:"contract_id"`
	VersionNumber   int    `json:"version_number"`
	Baseline        bool   `json:"baseline"`
	ClauseCount     int    `json:"clause_count"`
	ChangeCount     int    `json:"change_count"`
	HighRiskChanges int    `json:"high_risk_changes"`
	AlertsCreated   int    `json:"alerts_created"`
}

type Stores struct {
	Contracts    contractStore
	Versions     versionStore
	Clauses      clauseStore
	Fingerprints fingerprintStore
	Changes      changeStore
	Alerts       alertStore
}

// Processor runs the segmentation, fingerprinting, drift and risk stages for
// one version end to end. Concurrent runs are bounded by a semaphore; a new
// run for a contract cancels the one still in flight, so the latest upload
// always wins.
type Processor struct {
	stores         Stores
	segmenter      segmenter
	computer       computer
	detector       detector
	classifier     *risk.Classifier
	alertThreshold model.RiskLevel

	sem chan struct{}

	mu       sync.Mutex
	inflight map[string]*run
}

// run identifies one pipeline execution so a finished run can tell whether
// the inflight entry for its contract is still its own or belongs to a
// newer run that superseded it.
type run struct {
	cancel context.CancelFunc
}

type Option func(*Processor)

func WithWorkerLimit(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.sem = make(chan struct{}, n)
		}
	}
}

func WithAlertThreshold(level model.RiskLevel) Option {
	return func(p *Processor) {
		if level.Valid() {
			p.alertThreshold = level
		}
	}
}

func NewProcessor(stores Stores, seg segmenter, comp computer, det detector, classifier *risk.Classifier, opts ...Option) *Processor {
	p := &Processor{
		stores:         stores,
		segmenter:      seg,
		computer:       comp,
		detector:       det,
		classifier:     classifier,
		alertThreshold: model.RiskHigh,
		sem:            make(chan struct{}, 4),
		inflight:       make(map[string]*run),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessVersion runs the full pipeline for one stored version. The first
// version of a contract is a baseline: clauses and fingerprints are written,
// but no changes are computed.
func (p *Processor) ProcessVersion(ctx context.Context, versionID string) (*Result, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	version, err := p.stores.Versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("load version %s: %w", versionID, err)
	}
	if version.RawText == "" {
		return nil, fmt.Errorf("%w: version %s has no text to process", appErr.ErrInvalid, versionID)
	}
	contract, err := p.stores.Contracts.GetByID(ctx, version.ContractID)
	if err != nil {
		return nil, fmt.Errorf("load contract %s: %w", version.ContractID, err)
	}

	runCtx, thisRun := p.registerRun(ctx, version.ContractID)
	defer p.finishRun(version.ContractID, thisRun)

	logger := logutil.GetLogger(runCtx).With(
		zap.String("contract_id", contract.ID),
		zap.String("version_id", version.ID),
		zap.Int("version_number", version.VersionNumber))
	logger.Info("start processing version")

	clauses := p.segmenter.Segment(runCtx, version.RawText)
	fingerprints := make([]model.Fingerprint, 0, len(clauses))
	for i := range clauses {
		clauses[i].ID = uuid.NewString()
		clauses[i].VersionID = version.ID
		fp := p.computer.Compute(clauses[i].Text)
		fp.ClauseID = clauses[i].ID
		fingerprints = append(fingerprints, fp)
	}
	if err := runCtx.Err(); err != nil {
		return nil, err
	}
	if err := p.stores.Clauses.CreateBatch(runCtx, clauses); err != nil {
		return nil, fmt.Errorf("store clauses: %w", err)
	}
	if err := p.stores.Fingerprints.CreateBatch(runCtx, fingerprints); err != nil {
		return nil, fmt.Errorf("store fingerprints: %w", err)
	}
	logger.Info("segmented version", zap.Int("clause_count", len(clauses)))

	result := &Result{
		VersionID:     version.ID,
		ContractID:    contract.ID,
		VersionNumber: version.VersionNumber,
		ClauseCount:   len(clauses),
	}

	previous, err := p.stores.Versions.GetPrevious(runCtx, version.ContractID, version.VersionNumber)
	if err != nil {
		if appErr.IsNotFound(err) {
			result.Baseline = true
			logger.Info("no previous version, baseline stored")
			return result, nil
		}
		return nil, fmt.Errorf("load previous version: %w", err)
	}

	fromRecords, err := p.loadRecords(runCtx, previous.ID)
	if err != nil {
		return nil, fmt.Errorf("load previous clauses: %w", err)
	}
	toRecords := make([]drift.ClauseRecord, 0, len(clauses))
	for i := range clauses {
		toRecords = append(toRecords, drift.ClauseRecord{Clause: clauses[i], Fingerprint: fingerprints[i]})
	}

	changes := p.detector.Detect(fromRecords, toRecords)
	clauseInfo := buildClauseIndex(fromRecords, toRecords)
	now := timeutil.NowUnix()
	for i := range changes {
		changes[i].ID = uuid.NewString()
		changes[i].ContractID = contract.ID
		changes[i].FromVersionID = previous.ID
		changes[i].ToVersionID = version.ID
		changes[i].Ctime = now
		p.classifier.Classify(runCtx, contract.Vendor, &changes[i],
			clauseInfo[changes[i].FromClauseID], clauseInfo[changes[i].ToClauseID])
	}
	if err := runCtx.Err(); err != nil {
		return nil, err
	}
	if err := p.stores.Changes.ReplaceForVersion(runCtx, version.ID, changes); err != nil {
		return nil, fmt.Errorf("store changes: %w", err)
	}
	result.ChangeCount = countMaterial(changes)

	alerts := p.buildAlerts(changes, now)
	if err := p.stores.Alerts.CreateBatch(runCtx, alerts); err != nil {
		return nil, fmt.Errorf("store alerts: %w", err)
	}
	result.AlertsCreated = len(alerts)
	for _, change := range changes {
		if change.RiskLevel.Rank() >= model.RiskHigh.Rank() {
			result.HighRiskChanges++
		}
	}
	logger.Info("processing complete",
		zap.Int("change_count", result.ChangeCount),
		zap.Int("high_risk_changes", result.HighRiskChanges),
		zap.Int("alerts_created", result.AlertsCreated))
	return result, nil
}

// registerRun cancels any run still in flight for the same contract and
// registers the new one.
func (p *Processor) registerRun(ctx context.Context, contractID string) (context.Context, *run) {
	runCtx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel}
	p.mu.Lock()
	if prev, ok := p.inflight[contractID]; ok {
		prev.cancel()
	}
	p.inflight[contractID] = r
	p.mu.Unlock()
	return runCtx, r
}

// finishRun releases one run's context. The inflight entry is removed only
// when it still belongs to this run: a superseded run must not tear down
// the newer run that replaced it.
func (p *Processor) finishRun(contractID string, r *run) {
	p.mu.Lock()
	if cur, ok := p.inflight[contractID]; ok && cur == r {
		delete(p.inflight, contractID)
	}
	p.mu.Unlock()
	r.cancel()
}

func (p *Processor) loadRecords(ctx context.Context, versionID string) ([]drift.ClauseRecord, error) {
	clauses, err := p.stores.Clauses.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	fingerprints, err := p.stores.Fingerprints.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, err
	}
	records := make([]drift.ClauseRecord, 0, len(clauses))
	for _, clause := range clauses {
		fp, ok := fingerprints[clause.ID]
		if !ok {
			// Recompute on the fly rather than failing the whole run.
			fp = p.computer.Compute(clause.Text)
			fp.ClauseID = clause.ID
		}
		records = append(records, drift.ClauseRecord{Clause: clause, Fingerprint: fp})
	}
	return records, nil
}

func (p *Processor) buildAlerts(changes []model.Change, now int64) []model.Alert {
	alerts := make([]model.Alert, 0)
	for _, change := range changes {
		if change.ChangeType == model.ChangeUnchanged {
			continue
		}
		if change.RiskLevel.Rank() < p.alertThreshold.Rank() {
			continue
		}
		alerts = append(alerts, model.Alert{
			ID:        uuid.NewString(),
			ChangeID:  change.ID,
			AlertType: model.AlertDashboard,
			Status:    model.AlertSent,
			Ctime:     now,
		})
	}
	return alerts
}

func buildClauseIndex(from, to []drift.ClauseRecord) map[string]*risk.ClauseInfo {
	index := make(map[string]*risk.ClauseInfo, len(from)+len(to))
	for _, record := range append(append([]drift.ClauseRecord{}, from...), to...) {
		index[record.Clause.ID] = &risk.ClauseInfo{
			Category: record.Clause.Category,
			Heading:  record.Clause.Heading,
			Text:     record.Clause.Text,
		}
	}
	return index
}

func countMaterial(changes []model.Change) int {
	count := 0
	for _, change := range changes {
		if change.ChangeType != model.ChangeUnchanged {
			count++
		}
	}
	return count
}
