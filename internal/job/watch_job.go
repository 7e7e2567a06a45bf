package job

import (
	"context"
	"errors"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/clausewatch/clausewatch/internal/model"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
	"github.com/clausewatch/clausewatch/internal/repo"
	"github.com/clausewatch/clausewatch/internal/service"
)

// WatchJob polls every watched contract's source URL and ingests a new
// version when the page content changed. Unchanged pages are skipped via the
// content hash, so repeated polls of a static page cost nothing downstream.
type WatchJob struct {
	contracts *repo.ContractRepo
	ingest    *service.ContractService
}

func NewWatchJob(contracts *repo.ContractRepo, ingest *service.ContractService) *WatchJob {
	return &WatchJob{contracts: contracts, ingest: ingest}
}

func (j *WatchJob) Name() string {
	return "contract_watch"
}

func (j *WatchJob) Run(ctx context.Context) error {
	watched, err := j.contracts.ListWatched(ctx)
	if err != nil {
		return fmt.Errorf("list watched contracts: %w", err)
	}
	logger := logutil.GetLogger(ctx)
	var failed int
	for _, contract := range watched {
		if err := ctx.Err(); err != nil {
			return err
		}
		version, err := j.ingest.IngestVersion(ctx, contract.ID, model.Document{
			SourceType: model.SourceURL,
			URL:        contract.SourceURL,
		}, service.IngestOptions{SkipIfUnchanged: true})
		switch {
		case err == nil:
			logger.Info("watched contract changed, new version ingested",
				zap.String("contract_id", contract.ID),
				zap.String("vendor", contract.Vendor),
				zap.Int("version_number", version.VersionNumber))
		case errors.Is(err, appErr.ErrConflict):
			// Unchanged since last poll.
		default:
			failed++
			logger.Warn("watch poll failed",
				zap.String("contract_id", contract.ID),
				zap.String("url", contract.SourceURL),
				zap.Error(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d watched contracts failed", failed, len(watched))
	}
	return nil
}
