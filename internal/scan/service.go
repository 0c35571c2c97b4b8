package scan

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/temirov/gitscope/internal/registry"
)

const (
	scannerNotConfiguredMessageConstant = "scanner not configured"
	storeNotConfiguredMessageConstant   = "registry store not configured"
	scanStartedMessageConstant          = "scan started"
	scanCompletedMessageConstant        = "scan completed"
	rootsLogFieldConstant               = "roots"
	discoveredCountLogFieldConstant     = "discovered_count"
	totalCountLogFieldConstant          = "total_count"
	newCountLogFieldConstant            = "new_count"
	warningCountLogFieldConstant        = "warning_count"
)

var (
	// ErrScannerNotConfigured indicates the service was constructed without a scanner.
	ErrScannerNotConfigured = errors.New(scannerNotConfiguredMessageConstant)
	// ErrStoreNotConfigured indicates the service was constructed without a registry store.
	ErrStoreNotConfigured = errors.New(storeNotConfiguredMessageConstant)
)

// RepositoryScanner walks roots locating repository roots.
type RepositoryScanner interface {
	Scan(executionContext context.Context, rootPaths []string, excludePatterns []string) (*registry.RepositorySet, []Warning, error)
}

// RegistryStore persists the repository set between scans.
type RegistryStore interface {
	Load() (*registry.RepositorySet, error)
	Merge(cached *registry.RepositorySet, discovered *registry.RepositorySet) *registry.RepositorySet
	Save(repositorySet *registry.RepositorySet) error
	CacheFilePath() string
}

// Service orchestrates the scan-merge-save workflow.
type Service struct {
	scanner RepositoryScanner
	store   RegistryStore
	logger  *zap.Logger
}

// NewService constructs the scan service.
func NewService(scanner RepositoryScanner, store RegistryStore, logger *zap.Logger) (*Service, error) {
	if scanner == nil {
		return nil, ErrScannerNotConfigured
	}
	if store == nil {
		return nil, ErrStoreNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{scanner: scanner, store: store, logger: logger}, nil
}

// Run scans the roots, merges discoveries into the cached set, and saves the
// result. A canceled scan returns before any load or save, leaving the cache
// in its last saved state.
func (service *Service) Run(executionContext context.Context, options Options) (Outcome, error) {
	service.logger.Debug(scanStartedMessageConstant, zap.Strings(rootsLogFieldConstant, options.Roots))

	discoveredSet, warnings, scanError := service.scanner.Scan(executionContext, options.Roots, options.Excludes)
	if scanError != nil {
		return Outcome{}, scanError
	}

	cachedSet, loadError := service.store.Load()
	if loadError != nil {
		return Outcome{}, loadError
	}

	newRepositoryCount := 0
	for _, repositoryPath := range discoveredSet.SortedPaths() {
		if !cachedSet.Contains(repositoryPath) {
			newRepositoryCount++
		}
	}

	mergedSet := service.store.Merge(cachedSet, discoveredSet)
	if saveError := service.store.Save(mergedSet); saveError != nil {
		return Outcome{}, saveError
	}

	outcome := Outcome{
		Roots:           options.Roots,
		DiscoveredCount: discoveredSet.Size(),
		TotalCount:      mergedSet.Size(),
		NewCount:        newRepositoryCount,
		Warnings:        warnings,
	}

	service.logger.Debug(scanCompletedMessageConstant,
		zap.Int(discoveredCountLogFieldConstant, outcome.DiscoveredCount),
		zap.Int(totalCountLogFieldConstant, outcome.TotalCount),
		zap.Int(newCountLogFieldConstant, outcome.NewCount),
		zap.Int(warningCountLogFieldConstant, len(outcome.Warnings)),
	)
	return outcome, nil
}
