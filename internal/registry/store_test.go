package registry_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitscope/internal/registry"
)

const (
	cacheFileNameConstant            = "repositories"
	gitMarkerDirectoryNameConstant   = ".git"
	gitMarkerFileContentsConstant    = "gitdir: ../worktrees/example\n"
	prunedLogMessageConstant         = "pruned stale repository from cache"
	temporaryFileGlobPatternConstant = "repositories-*.tmp"
)

func newStoreAtTempDir(testInstance *testing.T) (*registry.Store, string) {
	testInstance.Helper()

	cacheFilePath := filepath.Join(testInstance.TempDir(), cacheFileNameConstant)
	store, creationError := registry.NewStore(cacheFilePath, zap.NewNop())
	require.NoError(testInstance, creationError)
	return store, cacheFilePath
}

func createRepositoryWithMarkerDirectory(testInstance *testing.T, parentDirectory string, repositoryName string) string {
	testInstance.Helper()

	repositoryPath := filepath.Join(parentDirectory, repositoryName)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, gitMarkerDirectoryNameConstant), 0o755))
	return repositoryPath
}

func createRepositoryWithMarkerFile(testInstance *testing.T, parentDirectory string, repositoryName string) string {
	testInstance.Helper()

	repositoryPath := filepath.Join(parentDirectory, repositoryName)
	require.NoError(testInstance, os.MkdirAll(repositoryPath, 0o755))
	markerPath := filepath.Join(repositoryPath, gitMarkerDirectoryNameConstant)
	require.NoError(testInstance, os.WriteFile(markerPath, []byte(gitMarkerFileContentsConstant), 0o644))
	return repositoryPath
}

func TestNewStoreRequiresCacheFilePath(testInstance *testing.T) {
	store, creationError := registry.NewStore("   ", zap.NewNop())
	require.ErrorIs(testInstance, creationError, registry.ErrCacheFilePathRequired)
	require.Nil(testInstance, store)
}

func TestStoreLoadTreatsMissingFileAsEmptySet(testInstance *testing.T) {
	store, _ := newStoreAtTempDir(testInstance)

	repositorySet, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 0, repositorySet.Size())
}

func TestStoreSaveThenLoadRoundTrips(testInstance *testing.T) {
	store, cacheFilePath := newStoreAtTempDir(testInstance)

	savedSet := registry.NewRepositorySet(secondRepositoryPathConstant, firstRepositoryPathConstant)
	require.NoError(testInstance, store.Save(savedSet))

	fileContents, readError := os.ReadFile(cacheFilePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, firstRepositoryPathConstant+"\n"+secondRepositoryPathConstant+"\n", string(fileContents))

	loadedSet, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, savedSet.SortedPaths(), loadedSet.SortedPaths())
}

func TestStoreSaveCreatesCacheDirectoryAndLeavesNoTemporaryFiles(testInstance *testing.T) {
	cacheDirectory := filepath.Join(testInstance.TempDir(), "nested", "config")
	cacheFilePath := filepath.Join(cacheDirectory, cacheFileNameConstant)
	store, creationError := registry.NewStore(cacheFilePath, zap.NewNop())
	require.NoError(testInstance, creationError)

	require.NoError(testInstance, store.Save(registry.NewRepositorySet(firstRepositoryPathConstant)))

	require.FileExists(testInstance, cacheFilePath)
	temporaryLeftovers, globError := filepath.Glob(filepath.Join(cacheDirectory, temporaryFileGlobPatternConstant))
	require.NoError(testInstance, globError)
	require.Empty(testInstance, temporaryLeftovers)
}

func TestStoreLoadToleratesBlankLines(testInstance *testing.T) {
	store, cacheFilePath := newStoreAtTempDir(testInstance)

	cacheContents := "\n" + firstRepositoryPathConstant + "\n\n" + secondRepositoryPathConstant + "\n\n"
	require.NoError(testInstance, os.WriteFile(cacheFilePath, []byte(cacheContents), 0o644))

	loadedSet, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, []string{firstRepositoryPathConstant, secondRepositoryPathConstant}, loadedSet.SortedPaths())
}

func TestStoreMergePrunesStaleEntries(testInstance *testing.T) {
	repositoryParent := testInstance.TempDir()
	directoryMarkerRepository := createRepositoryWithMarkerDirectory(testInstance, repositoryParent, "alpha")
	fileMarkerRepository := createRepositoryWithMarkerFile(testInstance, repositoryParent, "beta")
	markerlessDirectory := filepath.Join(repositoryParent, "plain")
	require.NoError(testInstance, os.MkdirAll(markerlessDirectory, 0o755))
	vanishedRepository := filepath.Join(repositoryParent, "vanished")

	observedCore, observedLogs := observer.New(zap.DebugLevel)
	store, creationError := registry.NewStore(filepath.Join(repositoryParent, cacheFileNameConstant), zap.New(observedCore))
	require.NoError(testInstance, creationError)

	cachedSet := registry.NewRepositorySet(directoryMarkerRepository, markerlessDirectory, vanishedRepository)
	discoveredSet := registry.NewRepositorySet(fileMarkerRepository)

	mergedSet := store.Merge(cachedSet, discoveredSet)

	require.Equal(testInstance, []string{directoryMarkerRepository, fileMarkerRepository}, mergedSet.SortedPaths())
	require.Equal(testInstance, 2, observedLogs.FilterMessage(prunedLogMessageConstant).Len())
}

func TestStoreSaveSerializesConcurrentWriters(testInstance *testing.T) {
	store, _ := newStoreAtTempDir(testInstance)

	firstSet := registry.NewRepositorySet(firstRepositoryPathConstant)
	secondSet := registry.NewRepositorySet(secondRepositoryPathConstant)

	saveErrors := make(chan error, 2)
	var waitGroup sync.WaitGroup
	waitGroup.Add(2)
	go func() {
		defer waitGroup.Done()
		saveErrors <- store.Save(firstSet)
	}()
	go func() {
		defer waitGroup.Done()
		saveErrors <- store.Save(secondSet)
	}()
	waitGroup.Wait()
	close(saveErrors)
	for saveError := range saveErrors {
		require.NoError(testInstance, saveError)
	}

	loadedSet, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 1, loadedSet.Size())

	loadedPaths := loadedSet.SortedPaths()
	require.Contains(testInstance, []string{firstRepositoryPathConstant, secondRepositoryPathConstant}, loadedPaths[0])
}
