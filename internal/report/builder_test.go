package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitscope/internal/gitrepo"
	"github.com/temirov/gitscope/internal/report"
)

const (
	alphaRepositoryPathConstant = "/workspace/projects/alpha"
	betaRepositoryPathConstant  = "/workspace/projects/beta"
	gammaRepositoryPathConstant = "/workspace/projects/gamma"
)

type stubRepositoryHandle struct {
	repositoryPath   string
	openError        error
	ageHours         int64
	shortStatusCode  string
	shortStatusError error
	statusLines      []string
	statusLinesError error
	stashLines       []string
	stashLinesError  error
}

func (handle *stubRepositoryHandle) Path() string {
	return handle.repositoryPath
}

func (handle *stubRepositoryHandle) Open(_ context.Context) error {
	return handle.openError
}

func (handle *stubRepositoryHandle) LastCommitAgeHours(_ context.Context) int64 {
	return handle.ageHours
}

func (handle *stubRepositoryHandle) ShortStatus(_ context.Context) (string, error) {
	if handle.shortStatusError != nil {
		return "", handle.shortStatusError
	}
	return handle.shortStatusCode, nil
}

func (handle *stubRepositoryHandle) FullStatus(_ context.Context) ([]string, error) {
	if handle.statusLinesError != nil {
		return nil, handle.statusLinesError
	}
	return handle.statusLines, nil
}

func (handle *stubRepositoryHandle) StashList(_ context.Context) ([]string, error) {
	if handle.stashLinesError != nil {
		return nil, handle.stashLinesError
	}
	return handle.stashLines, nil
}

type fixedClock struct {
	currentTime time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.currentTime
}

func TestBuilderBuildCollectsEntriesInPathOrder(testInstance *testing.T) {
	reportTime := time.Unix(1700000000, 0)
	repositoryHandles := []report.RepositoryHandle{
		&stubRepositoryHandle{repositoryPath: gammaRepositoryPathConstant, ageHours: 7, shortStatusCode: "??"},
		&stubRepositoryHandle{repositoryPath: alphaRepositoryPathConstant, ageHours: 3, shortStatusCode: " M"},
		&stubRepositoryHandle{repositoryPath: betaRepositoryPathConstant, ageHours: 5, shortStatusCode: gitrepo.CleanStatusCode},
	}

	builder := report.NewBuilder(zap.NewNop(), 0, fixedClock{currentTime: reportTime})
	repositoryReport, buildError := builder.Build(context.Background(), repositoryHandles, report.BuildOptions{Ordering: report.OrderingPath})
	require.NoError(testInstance, buildError)

	require.Equal(testInstance, reportTime, repositoryReport.GeneratedAt)
	require.Len(testInstance, repositoryReport.Entries, 3)
	require.Equal(testInstance, alphaRepositoryPathConstant, repositoryReport.Entries[0].Path)
	require.Equal(testInstance, betaRepositoryPathConstant, repositoryReport.Entries[1].Path)
	require.Equal(testInstance, gammaRepositoryPathConstant, repositoryReport.Entries[2].Path)
	require.Equal(testInstance, " M", repositoryReport.Entries[0].ShortStatusCode)
	require.Equal(testInstance, int64(3), repositoryReport.Entries[0].LastCommitAgeHours)
	require.False(testInstance, repositoryReport.Entries[0].Inaccessible)
}

func TestBuilderBuildKeepsInaccessibleRepositories(testInstance *testing.T) {
	openFailure := errors.New("work tree check failed for /workspace/projects/beta: exit status 128")
	statusFailure := errors.New("status query failed for /workspace/projects/gamma: exit status 129")
	repositoryHandles := []report.RepositoryHandle{
		&stubRepositoryHandle{repositoryPath: alphaRepositoryPathConstant, ageHours: 2, shortStatusCode: gitrepo.CleanStatusCode},
		&stubRepositoryHandle{repositoryPath: betaRepositoryPathConstant, openError: openFailure},
		&stubRepositoryHandle{repositoryPath: gammaRepositoryPathConstant, ageHours: 4, shortStatusError: statusFailure},
	}

	builder := report.NewBuilder(zap.NewNop(), 2, nil)
	repositoryReport, buildError := builder.Build(context.Background(), repositoryHandles, report.BuildOptions{Ordering: report.OrderingPath})
	require.NoError(testInstance, buildError)
	require.Len(testInstance, repositoryReport.Entries, 3)

	accessibleEntry := repositoryReport.Entries[0]
	require.Equal(testInstance, alphaRepositoryPathConstant, accessibleEntry.Path)
	require.False(testInstance, accessibleEntry.Inaccessible)
	require.Empty(testInstance, accessibleEntry.InaccessibleReason)

	unopenableEntry := repositoryReport.Entries[1]
	require.Equal(testInstance, betaRepositoryPathConstant, unopenableEntry.Path)
	require.True(testInstance, unopenableEntry.Inaccessible)
	require.Equal(testInstance, openFailure.Error(), unopenableEntry.InaccessibleReason)
	require.Equal(testInstance, gitrepo.UnknownCommitAgeHours, unopenableEntry.LastCommitAgeHours)
	require.Empty(testInstance, unopenableEntry.ShortStatusCode)

	unqueryableEntry := repositoryReport.Entries[2]
	require.Equal(testInstance, gammaRepositoryPathConstant, unqueryableEntry.Path)
	require.True(testInstance, unqueryableEntry.Inaccessible)
	require.Equal(testInstance, statusFailure.Error(), unqueryableEntry.InaccessibleReason)
	require.Equal(testInstance, gitrepo.UnknownCommitAgeHours, unqueryableEntry.LastCommitAgeHours)
}

func TestBuilderBuildOrdersByAgeWithPathTieBreak(testInstance *testing.T) {
	repositoryHandles := []report.RepositoryHandle{
		&stubRepositoryHandle{repositoryPath: gammaRepositoryPathConstant, ageHours: 5, shortStatusCode: gitrepo.CleanStatusCode},
		&stubRepositoryHandle{repositoryPath: betaRepositoryPathConstant, ageHours: 2, shortStatusCode: gitrepo.CleanStatusCode},
		&stubRepositoryHandle{repositoryPath: alphaRepositoryPathConstant, ageHours: 2, shortStatusCode: gitrepo.CleanStatusCode},
		&stubRepositoryHandle{repositoryPath: "/workspace/projects/delta", openError: errors.New("unreadable")},
	}

	builder := report.NewBuilder(zap.NewNop(), 0, nil)
	repositoryReport, buildError := builder.Build(context.Background(), repositoryHandles, report.BuildOptions{Ordering: report.OrderingAge})
	require.NoError(testInstance, buildError)

	orderedPaths := make([]string, 0, len(repositoryReport.Entries))
	for _, entry := range repositoryReport.Entries {
		orderedPaths = append(orderedPaths, entry.Path)
	}
	require.Equal(testInstance, []string{
		alphaRepositoryPathConstant,
		betaRepositoryPathConstant,
		gammaRepositoryPathConstant,
		"/workspace/projects/delta",
	}, orderedPaths)
}

func TestBuilderBuildOrdersByStatusWithPathTieBreak(testInstance *testing.T) {
	repositoryHandles := []report.RepositoryHandle{
		&stubRepositoryHandle{repositoryPath: betaRepositoryPathConstant, ageHours: 1, shortStatusCode: " M"},
		&stubRepositoryHandle{repositoryPath: gammaRepositoryPathConstant, ageHours: 1, shortStatusCode: "??"},
		&stubRepositoryHandle{repositoryPath: alphaRepositoryPathConstant, ageHours: 1, shortStatusCode: " M"},
		&stubRepositoryHandle{repositoryPath: "/workspace/projects/delta", ageHours: 1, shortStatusCode: gitrepo.CleanStatusCode},
	}

	builder := report.NewBuilder(zap.NewNop(), 0, nil)
	repositoryReport, buildError := builder.Build(context.Background(), repositoryHandles, report.BuildOptions{Ordering: report.OrderingStatus})
	require.NoError(testInstance, buildError)

	orderedPaths := make([]string, 0, len(repositoryReport.Entries))
	for _, entry := range repositoryReport.Entries {
		orderedPaths = append(orderedPaths, entry.Path)
	}
	require.Equal(testInstance, []string{
		"/workspace/projects/delta",
		alphaRepositoryPathConstant,
		betaRepositoryPathConstant,
		gammaRepositoryPathConstant,
	}, orderedPaths)
}

func TestBuilderBuildIncludesDetailsOnRequest(testInstance *testing.T) {
	detailedHandle := &stubRepositoryHandle{
		repositoryPath:  alphaRepositoryPathConstant,
		ageHours:        6,
		shortStatusCode: " M",
		statusLines:     []string{" M cmd/main.go", "?? scratch.txt"},
		stashLines:      []string{"stash@{0}: WIP on main"},
	}
	partialHandle := &stubRepositoryHandle{
		repositoryPath:   betaRepositoryPathConstant,
		ageHours:         9,
		shortStatusCode:  "??",
		statusLinesError: errors.New("status query failed"),
		stashLines:       []string{"stash@{0}: experiment"},
	}

	builder := report.NewBuilder(zap.NewNop(), 0, nil)
	repositoryReport, buildError := builder.Build(context.Background(), []report.RepositoryHandle{detailedHandle, partialHandle}, report.BuildOptions{
		Ordering:       report.OrderingPath,
		IncludeDetails: true,
	})
	require.NoError(testInstance, buildError)
	require.Len(testInstance, repositoryReport.Entries, 2)

	require.Equal(testInstance, detailedHandle.statusLines, repositoryReport.Entries[0].StatusLines)
	require.Equal(testInstance, detailedHandle.stashLines, repositoryReport.Entries[0].StashLines)

	require.False(testInstance, repositoryReport.Entries[1].Inaccessible)
	require.Nil(testInstance, repositoryReport.Entries[1].StatusLines)
	require.Equal(testInstance, partialHandle.stashLines, repositoryReport.Entries[1].StashLines)
}

func TestBuilderBuildSkipsDetailsByDefault(testInstance *testing.T) {
	detailedHandle := &stubRepositoryHandle{
		repositoryPath:  alphaRepositoryPathConstant,
		shortStatusCode: " M",
		statusLines:     []string{" M cmd/main.go"},
		stashLines:      []string{"stash@{0}: WIP on main"},
	}

	builder := report.NewBuilder(zap.NewNop(), 0, nil)
	repositoryReport, buildError := builder.Build(context.Background(), []report.RepositoryHandle{detailedHandle}, report.BuildOptions{Ordering: report.OrderingPath})
	require.NoError(testInstance, buildError)
	require.Nil(testInstance, repositoryReport.Entries[0].StatusLines)
	require.Nil(testInstance, repositoryReport.Entries[0].StashLines)
}

func TestBuilderBuildIsDeterministicAcrossRuns(testInstance *testing.T) {
	reportTime := time.Unix(1700000000, 0)
	repositoryHandles := make([]report.RepositoryHandle, 0, 6)
	repositoryHandles = append(repositoryHandles,
		&stubRepositoryHandle{repositoryPath: "/workspace/projects/f", ageHours: 11, shortStatusCode: "??"},
		&stubRepositoryHandle{repositoryPath: "/workspace/projects/e", ageHours: 4, shortStatusCode: " M"},
		&stubRepositoryHandle{repositoryPath: "/workspace/projects/d", openError: errors.New("unreadable")},
		&stubRepositoryHandle{repositoryPath: "/workspace/projects/c", ageHours: 4, shortStatusCode: gitrepo.CleanStatusCode},
		&stubRepositoryHandle{repositoryPath: "/workspace/projects/b", ageHours: 27, shortStatusCode: " D"},
		&stubRepositoryHandle{repositoryPath: "/workspace/projects/a", ageHours: 0, shortStatusCode: "A "},
	)

	builder := report.NewBuilder(zap.NewNop(), 3, fixedClock{currentTime: reportTime})

	firstReport, firstError := builder.Build(context.Background(), repositoryHandles, report.BuildOptions{Ordering: report.OrderingAge})
	require.NoError(testInstance, firstError)
	secondReport, secondError := builder.Build(context.Background(), repositoryHandles, report.BuildOptions{Ordering: report.OrderingAge})
	require.NoError(testInstance, secondError)

	require.Equal(testInstance, firstReport, secondReport)
}

func TestBuilderBuildStopsWhenContextCanceled(testInstance *testing.T) {
	canceledContext, cancelFunction := context.WithCancel(context.Background())
	cancelFunction()

	builder := report.NewBuilder(zap.NewNop(), 0, nil)
	_, buildError := builder.Build(canceledContext, []report.RepositoryHandle{
		&stubRepositoryHandle{repositoryPath: alphaRepositoryPathConstant, shortStatusCode: gitrepo.CleanStatusCode},
	}, report.BuildOptions{Ordering: report.OrderingPath})
	require.ErrorIs(testInstance, buildError, context.Canceled)
}
