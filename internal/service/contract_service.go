package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/clausewatch/clausewatch/internal/filestore"
	"github.com/clausewatch/clausewatch/internal/model"
	appErr "github.com/clausewatch/clausewatch/internal/pkg/errors"
	"github.com/clausewatch/clausewatch/internal/pkg/timeutil"
	"github.com/clausewatch/clausewatch/internal/pipeline"
	"github.com/clausewatch/clausewatch/internal/repo"
)

type normalizer interface {
	Normalize(ctx context.Context, doc model.Document) (string, error)
}

type processor interface {
	ProcessVersion(ctx context.Context, versionID string) (*pipeline.Result, error)
}

type ContractService struct {
	contracts *repo.ContractRepo
	versions  *repo.VersionRepo
	clauses   *repo.ClauseRepo
	norm      normalizer
	proc      processor
	store     filestore.Store
}

func NewContractService(contracts *repo.ContractRepo, versions *repo.VersionRepo, clauses *repo.ClauseRepo, norm normalizer, proc processor, store filestore.Store) *ContractService {
	return &ContractService{contracts: contracts, versions: versions, clauses: clauses, norm: norm, proc: proc, store: store}
}

type CreateContractArgs struct {
	Vendor       string
	ContractType model.ContractType
	SourceURL    string
	Watch        bool
}

func (s *ContractService) Create(ctx context.Context, args CreateContractArgs) (*model.Contract, error) {
	vendor := strings.TrimSpace(args.Vendor)
	if vendor == "" {
		return nil, fmt.Errorf("%w: vendor is required", appErr.ErrInvalid)
	}
	if args.ContractType == "" {
		args.ContractType = model.ContractTypeOther
	}
	if !args.ContractType.Valid() {
		return nil, fmt.Errorf("%w: unknown contract type %q", appErr.ErrInvalid, args.ContractType)
	}
	watch := 0
	if args.Watch {
		if strings.TrimSpace(args.SourceURL) == "" {
			return nil, fmt.Errorf("%w: watch requires a source url", appErr.ErrInvalid)
		}
		watch = 1
	}
	now := timeutil.NowUnix()
	contract := &model.Contract{
		ID:           uuid.NewString(),
		Vendor:       vendor,
		ContractType: args.ContractType,
		SourceURL:    strings.TrimSpace(args.SourceURL),
		Watch:        watch,
		Ctime:        now,
		Mtime:        now,
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) Get(ctx context.Context, id string) (*model.Contract, error) {
	return s.contracts.GetByID(ctx, id)
}

func (s *ContractService) List(ctx context.Context, vendor string, limit, offset uint) ([]model.Contract, int, error) {
	contracts, err := s.contracts.List(ctx, vendor, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contracts.Count(ctx, vendor)
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (s *ContractService) Delete(ctx context.Context, id string) error {
	return s.contracts.Delete(ctx, id)
}

type UpdateContractArgs struct {
	Vendor       *string
	ContractType *model.ContractType
	SourceURL    *string
	Watch        *bool
}

func (s *ContractService) Update(ctx context.Context, id string, args UpdateContractArgs) (*model.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if args.Vendor != nil {
		vendor := strings.TrimSpace(*args.Vendor)
		if vendor == "" {
			return nil, fmt.Errorf("%w: vendor is required", appErr.ErrInvalid)
		}
		contract.Vendor = vendor
	}
	if args.ContractType != nil {
		if !args.ContractType.Valid() {
			return nil, fmt.Errorf("%w: unknown contract type %q", appErr.ErrInvalid, *args.ContractType)
		}
		contract.ContractType = *args.ContractType
	}
	if args.SourceURL != nil {
		contract.SourceURL = strings.TrimSpace(*args.SourceURL)
	}
	if args.Watch != nil {
		if *args.Watch && contract.SourceURL == "" {
			return nil, fmt.Errorf("%w: watch requires a source url", appErr.ErrInvalid)
		}
		contract.Watch = 0
		if *args.Watch {
			contract.Watch = 1
		}
	}
	contract.Mtime = timeutil.NowUnix()
	if err := s.contracts.Update(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

// IngestOptions tweak version creation. SkipIfUnchanged is used by the watch
// job so an unchanged page does not pile up identical versions.
type IngestOptions struct {
	SkipIfUnchanged bool
	// Async runs the processing pipeline in the background and returns as
	// soon as the version row exists.
	Async bool
}

// IngestVersion normalizes a document, archives the raw payload, stores the
// next version and runs the pipeline. Returns ErrConflict (with no new
// version) when SkipIfUnchanged is set and the content matches the latest
// version.
func (s *ContractService) IngestVersion(ctx context.Context, contractID string, doc model.Document, opts IngestOptions) (*model.Version, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	text, err := s.norm.Normalize(ctx, doc)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256([]byte(text))
	contentHash := hex.EncodeToString(sum[:])

	nextNumber := 1
	latest, err := s.versions.GetLatest(ctx, contractID)
	switch {
	case err == nil:
		if opts.SkipIfUnchanged && latest.ContentHash == contentHash {
			return nil, fmt.Errorf("%w: content unchanged since version %d", appErr.ErrConflict, latest.VersionNumber)
		}
		nextNumber = latest.VersionNumber + 1
	case appErr.IsNotFound(err):
	default:
		return nil, err
	}

	version := &model.Version{
		ID:            uuid.NewString(),
		ContractID:    contract.ID,
		VersionNumber: nextNumber,
		SourceType:    doc.SourceType,
		SourceURL:     doc.URL,
		RawText:       text,
		ContentHash:   contentHash,
		Ctime:         timeutil.NowUnix(),
	}
	if len(doc.Data) > 0 {
		key := snapshotKey(version.ID, doc.SourceType)
		if err := s.archiveSnapshot(ctx, key, doc.Data); err != nil {
			logutil.GetLogger(ctx).Warn("archive snapshot failed, keep version without snapshot",
				zap.String("version_id", version.ID), zap.Error(err))
		} else {
			version.SnapshotKey = key
		}
	}
	if err := s.versions.Create(ctx, version); err != nil {
		return nil, err
	}

	if opts.Async {
		go func() {
			runCtx := context.WithoutCancel(ctx)
			if _, err := s.proc.ProcessVersion(runCtx, version.ID); err != nil {
				logutil.GetLogger(runCtx).Error("process version failed",
					zap.String("version_id", version.ID), zap.Error(err))
			}
		}()
		return version, nil
	}
	if _, err := s.proc.ProcessVersion(ctx, version.ID); err != nil {
		return nil, fmt.Errorf("process version %s: %w", version.ID, err)
	}
	return version, nil
}

// Reprocess reruns the pipeline on an already stored version.
func (s *ContractService) Reprocess(ctx context.Context, versionID string) (*pipeline.Result, error) {
	return s.proc.ProcessVersion(ctx, versionID)
}

func (s *ContractService) GetVersion(ctx context.Context, versionID string) (*model.Version, []model.Clause, error) {
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	clauses, err := s.clauses.ListByVersion(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	return version, clauses, nil
}

func (s *ContractService) ListVersions(ctx context.Context, contractID string, limit, offset uint) ([]model.Version, error) {
	if _, err := s.contracts.GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	versions, err := s.versions.ListByContract(ctx, contractID, limit, offset)
	if err != nil {
		return nil, err
	}
	// Raw text is bulky; listings carry metadata only.
	for i := range versions {
		versions[i].RawText = ""
	}
	return versions, nil
}

// SnapshotBytes returns the archived original payload of a version, e.g. the
// uploaded PDF a comparison ran against.
func (s *ContractService) SnapshotBytes(ctx context.Context, versionID string) (*model.Version, []byte, error) {
	version, err := s.versions.GetByID(ctx, versionID)
	if err != nil {
		return nil, nil, err
	}
	if version.SnapshotKey == "" {
		return nil, nil, fmt.Errorf("%w: version %s has no archived snapshot", appErr.ErrNotFound, versionID)
	}
	data, err := filestore.ReadAll(ctx, s.store, version.SnapshotKey)
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot %s: %w", version.SnapshotKey, err)
	}
	return version, data, nil
}

func (s *ContractService) archiveSnapshot(ctx context.Context, key string, data []byte) error {
	return s.store.Save(ctx, key, nopSeekCloser{bytes.NewReader(data)}, int64(len(data)))
}

func snapshotKey(versionID string, sourceType model.SourceType) string {
	ext := "txt"
	if sourceType == model.SourcePDF {
		ext = "pdf"
	}
	return versionID + "." + ext
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }
