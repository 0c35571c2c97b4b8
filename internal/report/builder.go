package report

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/gitscope/internal/gitrepo"
)

const (
	defaultWorkerCountConstant              = 4
	maximumWorkerCountConstant              = 8
	inaccessibleRepositoryMessageConstant   = "repository is inaccessible"
	detailLookupFailureMessageConstant      = "unable to collect repository details"
	repositoryPathLogFieldConstant          = "repository_path"
	failureReasonLogFieldConstant           = "reason"
	reportEntryCollectedMessageConstant     = "collected repository state"
	shortStatusCodeLogFieldConstant         = "short_status"
	lastCommitAgeHoursLogFieldConstant      = "last_commit_age_hours"
	reportGenerationStartedMessageConstant  = "report generation started"
	reportGenerationFinishedMessageConstant = "report generation finished"
	repositoryCountLogFieldConstant         = "repository_count"
)

// RepositoryHandle exposes the per-repository queries the builder needs.
// *gitrepo.Repository is the production implementation.
type RepositoryHandle interface {
	Path() string
	Open(executionContext context.Context) error
	LastCommitAgeHours(executionContext context.Context) int64
	ShortStatus(executionContext context.Context) (string, error)
	FullStatus(executionContext context.Context) ([]string, error)
	StashList(executionContext context.Context) ([]string, error)
}

// BuildOptions control report ordering and the optional detail listings.
type BuildOptions struct {
	Ordering       Ordering
	IncludeDetails bool
}

// Builder collects repository state on a bounded worker pool and assembles the
// ordered report.
type Builder struct {
	logger      *zap.Logger
	workerCount int
	clock       gitrepo.Clock
}

// NewBuilder constructs a report builder. Worker counts outside the supported
// range are clamped.
func NewBuilder(logger *zap.Logger, workerCount int, clock gitrepo.Clock) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = gitrepo.SystemClock{}
	}
	normalizedWorkerCount := workerCount
	if normalizedWorkerCount <= 0 {
		normalizedWorkerCount = defaultWorkerCountConstant
	}
	if normalizedWorkerCount > maximumWorkerCountConstant {
		normalizedWorkerCount = maximumWorkerCountConstant
	}
	return &Builder{logger: logger, workerCount: normalizedWorkerCount, clock: clock}
}

// Build queries every handle in parallel and returns the sorted report. Each
// worker writes only its own slice index, so no aggregation lock is needed.
// Repositories that cannot be opened or queried stay in the report tagged
// inaccessible; only context cancellation aborts the build.
func (builder *Builder) Build(executionContext context.Context, repositoryHandles []RepositoryHandle, options BuildOptions) (Report, error) {
	builder.logger.Debug(reportGenerationStartedMessageConstant, zap.Int(repositoryCountLogFieldConstant, len(repositoryHandles)))

	entries := make([]Entry, len(repositoryHandles))
	workerGroup, groupContext := errgroup.WithContext(executionContext)
	workerGroup.SetLimit(builder.workerCount)

	for handleIndex, repositoryHandle := range repositoryHandles {
		handleIndex, repositoryHandle := handleIndex, repositoryHandle
		workerGroup.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			entries[handleIndex] = builder.inspectRepository(groupContext, repositoryHandle, options)
			return nil
		})
	}

	if waitError := workerGroup.Wait(); waitError != nil {
		return Report{}, waitError
	}

	sortEntries(entries, options.Ordering)
	builder.logger.Debug(reportGenerationFinishedMessageConstant, zap.Int(repositoryCountLogFieldConstant, len(entries)))
	return Report{GeneratedAt: builder.clock.Now(), Entries: entries}, nil
}

func (builder *Builder) inspectRepository(executionContext context.Context, repositoryHandle RepositoryHandle, options BuildOptions) Entry {
	entry := Entry{Path: repositoryHandle.Path(), LastCommitAgeHours: gitrepo.UnknownCommitAgeHours}

	if openError := repositoryHandle.Open(executionContext); openError != nil {
		entry.Inaccessible = true
		entry.InaccessibleReason = openError.Error()
		builder.logger.Warn(inaccessibleRepositoryMessageConstant,
			zap.String(repositoryPathLogFieldConstant, entry.Path),
			zap.String(failureReasonLogFieldConstant, entry.InaccessibleReason),
		)
		return entry
	}

	shortStatusCode, shortStatusError := repositoryHandle.ShortStatus(executionContext)
	if shortStatusError != nil {
		entry.Inaccessible = true
		entry.InaccessibleReason = shortStatusError.Error()
		builder.logger.Warn(inaccessibleRepositoryMessageConstant,
			zap.String(repositoryPathLogFieldConstant, entry.Path),
			zap.String(failureReasonLogFieldConstant, entry.InaccessibleReason),
		)
		return entry
	}

	entry.ShortStatusCode = shortStatusCode
	entry.LastCommitAgeHours = repositoryHandle.LastCommitAgeHours(executionContext)

	if options.IncludeDetails {
		statusLines, fullStatusError := repositoryHandle.FullStatus(executionContext)
		if fullStatusError != nil {
			builder.logger.Warn(detailLookupFailureMessageConstant,
				zap.String(repositoryPathLogFieldConstant, entry.Path),
				zap.String(failureReasonLogFieldConstant, fullStatusError.Error()),
			)
		} else {
			entry.StatusLines = statusLines
		}

		stashLines, stashListError := repositoryHandle.StashList(executionContext)
		if stashListError != nil {
			builder.logger.Warn(detailLookupFailureMessageConstant,
				zap.String(repositoryPathLogFieldConstant, entry.Path),
				zap.String(failureReasonLogFieldConstant, stashListError.Error()),
			)
		} else {
			entry.StashLines = stashLines
		}
	}

	builder.logger.Debug(reportEntryCollectedMessageConstant,
		zap.String(repositoryPathLogFieldConstant, entry.Path),
		zap.String(shortStatusCodeLogFieldConstant, entry.ShortStatusCode),
		zap.Int64(lastCommitAgeHoursLogFieldConstant, entry.LastCommitAgeHours),
	)
	return entry
}
