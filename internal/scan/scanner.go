package scan

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitscope/internal/registry"
	pathutils "github.com/temirov/gitscope/internal/utils/path"
)

const (
	gitMarkerNameConstant                       = ".git"
	defaultWorkerCountConstant                  = 4
	maximumWorkerCountConstant                  = 8
	directoryReadFailureReasonTemplateConstant  = "unable to read directory: %v"
	symlinkResolveFailureReasonTemplateConstant = "unable to resolve symlink: %v"
	symlinkTargetFailureReasonTemplateConstant  = "unable to inspect symlink target: %v"
	repositoryDiscoveredMessageConstant         = "discovered repository"
	excludedPathSkippedMessageConstant          = "skipped excluded path"
	pathSkippedMessageConstant                  = "skipped unreadable path"
	repositoryPathLogFieldConstant              = "repository_path"
	directoryPathLogFieldConstant               = "directory_path"
	warningReasonLogFieldConstant               = "reason"
)

// directoryOutcome carries everything a worker learned from one directory.
type directoryOutcome struct {
	directoryPath    string
	isRepository     bool
	childDirectories []string
	warnings         []Warning
}

// Scanner locates repository roots beneath a set of directories. Directory
// reads run on a bounded worker pool; a single dispatcher owns the pending
// frontier, the visited set, and the accumulating result set.
type Scanner struct {
	logger      *zap.Logger
	workerCount int
}

// NewScanner constructs a scanner. Worker counts outside the supported range
// are clamped.
func NewScanner(logger *zap.Logger, workerCount int) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	normalizedWorkerCount := workerCount
	if normalizedWorkerCount <= 0 {
		normalizedWorkerCount = defaultWorkerCountConstant
	}
	if normalizedWorkerCount > maximumWorkerCountConstant {
		normalizedWorkerCount = maximumWorkerCountConstant
	}
	return &Scanner{logger: logger, workerCount: normalizedWorkerCount}
}

// Scan walks the roots and returns every repository root found, alongside
// warnings for paths that could not be inspected. Roots and symlink targets
// are tracked by canonical path so each directory is visited at most once and
// symlink cycles terminate. A canceled context stops the walk and returns the
// context error.
func (scanner *Scanner) Scan(executionContext context.Context, rootPaths []string, excludePatterns []string) (*registry.RepositorySet, []Warning, error) {
	discoveredSet := registry.NewRepositorySet()
	warnings := make([]Warning, 0)
	visitedPaths := make(map[string]struct{})
	pendingDirectories := make([]string, 0, len(rootPaths))

	enqueueDirectory := func(candidatePath string) {
		if pathMatchesExclusion(candidatePath, excludePatterns) {
			scanner.logger.Debug(excludedPathSkippedMessageConstant, zap.String(directoryPathLogFieldConstant, candidatePath))
			return
		}
		if _, alreadyVisited := visitedPaths[candidatePath]; alreadyVisited {
			return
		}
		visitedPaths[candidatePath] = struct{}{}
		pendingDirectories = append(pendingDirectories, candidatePath)
	}

	for _, rootPath := range rootPaths {
		enqueueDirectory(pathutils.CanonicalizeAbsolutePath(rootPath))
	}

	outcomes := make(chan directoryOutcome)
	activeWorkerCount := 0

	for len(pendingDirectories) > 0 || activeWorkerCount > 0 {
		for activeWorkerCount < scanner.workerCount && len(pendingDirectories) > 0 {
			nextDirectory := pendingDirectories[len(pendingDirectories)-1]
			pendingDirectories = pendingDirectories[:len(pendingDirectories)-1]
			activeWorkerCount++
			go func(directoryPath string) {
				outcomes <- examineDirectory(directoryPath)
			}(nextDirectory)
		}

		select {
		case <-executionContext.Done():
			for activeWorkerCount > 0 {
				<-outcomes
				activeWorkerCount--
			}
			return discoveredSet, warnings, executionContext.Err()
		case outcome := <-outcomes:
			activeWorkerCount--
			for _, warning := range outcome.warnings {
				scanner.logger.Warn(pathSkippedMessageConstant,
					zap.String(directoryPathLogFieldConstant, warning.Path),
					zap.String(warningReasonLogFieldConstant, warning.Reason),
				)
			}
			warnings = append(warnings, outcome.warnings...)
			if outcome.isRepository {
				discoveredSet.Add(outcome.directoryPath)
				scanner.logger.Debug(repositoryDiscoveredMessageConstant, zap.String(repositoryPathLogFieldConstant, outcome.directoryPath))
			}
			for _, childDirectory := range outcome.childDirectories {
				enqueueDirectory(childDirectory)
			}
		}
	}

	return discoveredSet, warnings, nil
}

// examineDirectory reads one directory, reporting whether it is a repository
// root and which child directories remain to walk. The .git entry itself is
// never descended into; every other child of a repository still is, so nested
// repositories surface as their own roots. Children reached through symlinks
// are resolved to their canonical targets.
func examineDirectory(directoryPath string) directoryOutcome {
	outcome := directoryOutcome{directoryPath: directoryPath}

	directoryEntries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		outcome.warnings = append(outcome.warnings, Warning{
			Path:   directoryPath,
			Reason: fmt.Sprintf(directoryReadFailureReasonTemplateConstant, readError),
		})
		return outcome
	}

	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		if entryName == gitMarkerNameConstant {
			outcome.isRepository = true
			continue
		}

		entryType := directoryEntry.Type()
		switch {
		case entryType.IsDir():
			outcome.childDirectories = append(outcome.childDirectories, filepath.Join(directoryPath, entryName))
		case entryType&fs.ModeSymlink != 0:
			childPath := filepath.Join(directoryPath, entryName)
			resolvedPath, resolveError := filepath.EvalSymlinks(childPath)
			if resolveError != nil {
				outcome.warnings = append(outcome.warnings, Warning{
					Path:   childPath,
					Reason: fmt.Sprintf(symlinkResolveFailureReasonTemplateConstant, resolveError),
				})
				continue
			}
			targetInfo, statError := os.Stat(resolvedPath)
			if statError != nil {
				outcome.warnings = append(outcome.warnings, Warning{
					Path:   childPath,
					Reason: fmt.Sprintf(symlinkTargetFailureReasonTemplateConstant, statError),
				})
				continue
			}
			if targetInfo.IsDir() {
				outcome.childDirectories = append(outcome.childDirectories, filepath.Clean(resolvedPath))
			}
		}
	}

	return outcome
}

func pathMatchesExclusion(candidatePath string, excludePatterns []string) bool {
	for _, excludePattern := range excludePatterns {
		if len(excludePattern) == 0 {
			continue
		}
		if strings.Contains(candidatePath, excludePattern) {
			return true
		}
	}
	return false
}
