package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	applicationConfigDirectoryNameConstant  = "gitscope"
	cacheFileNameConstant                   = "repositories"
	cacheTemporaryFilePatternConstant       = "repositories-*.tmp"
	cacheFilePermissionsConstant            = 0o644
	cacheDirectoryPermissionsConstant       = 0o755
	gitMarkerNameConstant                   = ".git"
	lineSeparatorConstant                   = "\n"
	cacheFilePathRequiredMessageConstant    = "cache file path not configured"
	cacheLocationErrorTemplateConstant      = "unable to resolve cache file location: %w"
	cacheReadErrorTemplateConstant          = "unable to read repository cache: %w"
	cacheWriteErrorTemplateConstant         = "unable to write repository cache: %w"
	stalePathPrunedMessageConstant          = "pruned stale repository from cache"
	repositoryPathLogFieldConstant          = "repository_path"
	cacheFileLogFieldConstant               = "cache_file"
	cacheSavedMessageConstant               = "saved repository cache"
	repositoryCountLogFieldConstant         = "repository_count"
)

// ErrCacheFilePathRequired indicates the store was constructed without a cache file path.
var ErrCacheFilePathRequired = errors.New(cacheFilePathRequiredMessageConstant)

// DefaultCacheFilePath resolves the per-user cache file location.
func DefaultCacheFilePath() (string, error) {
	configDirectory, configError := os.UserConfigDir()
	if configError != nil {
		return "", fmt.Errorf(cacheLocationErrorTemplateConstant, configError)
	}
	return filepath.Join(configDirectory, applicationConfigDirectoryNameConstant, cacheFileNameConstant), nil
}

// Store loads and persists the repository set at a fixed cache file location.
// Saves are serialized through a mutex so concurrent writers cannot interleave.
type Store struct {
	cacheFilePath string
	logger        *zap.Logger
	saveMutex     sync.Mutex
}

// NewStore constructs a store bound to the cache file path. A nil logger defaults to a no-op logger.
func NewStore(cacheFilePath string, logger *zap.Logger) (*Store, error) {
	trimmedPath := strings.TrimSpace(cacheFilePath)
	if len(trimmedPath) == 0 {
		return nil, ErrCacheFilePathRequired
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cacheFilePath: trimmedPath, logger: logger}, nil
}

// ResolveStore returns the provided store or constructs one at the configured
// location, falling back to the per-user default when the path is empty.
func ResolveStore(existing *Store, cacheFilePath string, logger *zap.Logger) (*Store, error) {
	if existing != nil {
		return existing, nil
	}

	resolvedPath := strings.TrimSpace(cacheFilePath)
	if len(resolvedPath) == 0 {
		defaultPath, defaultError := DefaultCacheFilePath()
		if defaultError != nil {
			return nil, defaultError
		}
		resolvedPath = defaultPath
	}
	return NewStore(resolvedPath, logger)
}

// CacheFilePath returns the backing cache file location.
func (store *Store) CacheFilePath() string {
	return store.cacheFilePath
}

// Load reads the cached repository set. A missing cache file yields an empty
// set; blank lines are tolerated.
func (store *Store) Load() (*RepositorySet, error) {
	fileContents, readError := os.ReadFile(store.cacheFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return NewRepositorySet(), nil
		}
		return nil, fmt.Errorf(cacheReadErrorTemplateConstant, readError)
	}

	repositorySet := NewRepositorySet()
	for _, cacheLine := range strings.Split(string(fileContents), lineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(cacheLine)
		if len(trimmedLine) == 0 {
			continue
		}
		repositorySet.Add(trimmedLine)
	}
	return repositorySet, nil
}

// Merge unions the cached and discovered sets, dropping members whose
// repository marker no longer exists on disk.
func (store *Store) Merge(cached *RepositorySet, discovered *RepositorySet) *RepositorySet {
	merged := cached.Union(discovered)

	retained := NewRepositorySet()
	for _, repositoryPath := range merged.SortedPaths() {
		if repositoryMarkerExists(repositoryPath) {
			retained.Add(repositoryPath)
			continue
		}
		store.logger.Debug(stalePathPrunedMessageConstant, zap.String(repositoryPathLogFieldConstant, repositoryPath))
	}
	return retained
}

// Save writes the repository set to the cache file atomically: the contents
// land in a temporary file inside the destination directory and replace the
// cache in a single rename, so readers observe either the old or the new file.
func (store *Store) Save(repositorySet *RepositorySet) error {
	store.saveMutex.Lock()
	defer store.saveMutex.Unlock()

	cacheDirectory := filepath.Dir(store.cacheFilePath)
	if directoryError := os.MkdirAll(cacheDirectory, cacheDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(cacheWriteErrorTemplateConstant, directoryError)
	}

	temporaryFile, temporaryError := os.CreateTemp(cacheDirectory, cacheTemporaryFilePatternConstant)
	if temporaryError != nil {
		return fmt.Errorf(cacheWriteErrorTemplateConstant, temporaryError)
	}
	temporaryPath := temporaryFile.Name()

	if writeError := writeCacheContents(temporaryFile, repositorySet.SortedPaths()); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(cacheWriteErrorTemplateConstant, writeError)
	}
	if syncError := temporaryFile.Sync(); syncError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(cacheWriteErrorTemplateConstant, syncError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(cacheWriteErrorTemplateConstant, closeError)
	}
	if permissionError := os.Chmod(temporaryPath, cacheFilePermissionsConstant); permissionError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(cacheWriteErrorTemplateConstant, permissionError)
	}
	if renameError := os.Rename(temporaryPath, store.cacheFilePath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(cacheWriteErrorTemplateConstant, renameError)
	}

	store.logger.Debug(cacheSavedMessageConstant,
		zap.String(cacheFileLogFieldConstant, store.cacheFilePath),
		zap.Int(repositoryCountLogFieldConstant, repositorySet.Size()),
	)
	return nil
}

func writeCacheContents(cacheFile *os.File, repositoryPaths []string) error {
	var contentBuilder strings.Builder
	for _, repositoryPath := range repositoryPaths {
		contentBuilder.WriteString(repositoryPath)
		contentBuilder.WriteString(lineSeparatorConstant)
	}

	_, writeError := cacheFile.WriteString(contentBuilder.String())
	return writeError
}

func repositoryMarkerExists(repositoryPath string) bool {
	_, statError := os.Stat(filepath.Join(repositoryPath, gitMarkerNameConstant))
	return statError == nil
}
