package report

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitscope/internal/execshell"
	"github.com/temirov/gitscope/internal/gitrepo"
	"github.com/temirov/gitscope/internal/registry"
	"github.com/temirov/gitscope/internal/utils/flags"
)

const (
	statusCommandUseConstant              = "status"
	statusCommandShortDescriptionConstant = "Report working tree status for registered repositories"
	statusCommandLongDescriptionConstant  = "status queries every repository recorded in the registry cache and prints a sortable report of paths, last commit ages, and short status codes."
	sortFlagNameConstant                  = "sort"
	sortFlagDescriptionConstant           = "Order report rows by this column"
	fullFlagNameConstant                  = "full"
	fullFlagUsageConstant                 = "Include full status entries and stashes per repository"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ReportRenderer renders an assembled report.
type ReportRenderer interface {
	RenderReport(writer io.Writer, repositoryReport Report) error
}

// RegistryReader loads the persisted repository set.
type RegistryReader interface {
	Load() (*registry.RepositorySet, error)
}

// StatusCommandBuilder assembles the status command.
type StatusCommandBuilder struct {
	LoggerProvider                LoggerProvider
	ConfigurationProvider         func() CommandConfiguration
	RegistryConfigurationProvider func() registry.CommandConfiguration
	RendererProvider              func() ReportRenderer
	CommandEventObserverProvider  func() execshell.CommandEventObserver
	Registry                      RegistryReader
	Backend                       gitrepo.Backend
	sortFlagValue                 string
	fullFlagValue                 bool
}

// Build constructs the cobra command reporting repository status.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusCommandUseConstant,
		Short: statusCommandShortDescriptionConstant,
		Long:  statusCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	sortFlagUsage := flags.FormatChoiceUsage(string(OrderingPath), OrderingValues(), sortFlagDescriptionConstant)
	command.Flags().StringVar(&builder.sortFlagValue, sortFlagNameConstant, string(OrderingPath), sortFlagUsage)
	flags.AddToggleFlag(command.Flags(), &builder.fullFlagValue, fullFlagNameConstant, "", false, fullFlagUsageConstant)

	return command, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if builder.RendererProvider == nil {
		return registry.ErrRendererNotConfigured
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	sortValue := configuration.Sort
	if command.Flags().Changed(sortFlagNameConstant) {
		sortValue = builder.sortFlagValue
	}
	ordering, orderingError := ParseOrdering(sortValue)
	if orderingError != nil {
		return orderingError
	}

	includeDetails := configuration.Full
	if command.Flags().Changed(fullFlagNameConstant) {
		includeDetails = builder.fullFlagValue
	}

	registryReader := builder.Registry
	if registryReader == nil {
		registryConfiguration := builder.resolveRegistryConfiguration()
		store, storeError := registry.ResolveStore(nil, registryConfiguration.CacheFilePath, logger)
		if storeError != nil {
			return storeError
		}
		registryReader = store
	}

	repositorySet, loadError := registryReader.Load()
	if loadError != nil {
		return loadError
	}

	var eventObservers []execshell.CommandEventObserver
	if builder.CommandEventObserverProvider != nil {
		if eventObserver := builder.CommandEventObserverProvider(); eventObserver != nil {
			eventObservers = append(eventObservers, eventObserver)
		}
	}

	backend, backendError := gitrepo.ResolveBackend(builder.Backend, logger, eventObservers...)
	if backendError != nil {
		return backendError
	}

	repositoryPaths := repositorySet.SortedPaths()
	repositoryHandles := make([]RepositoryHandle, 0, len(repositoryPaths))
	for _, repositoryPath := range repositoryPaths {
		repository, repositoryError := gitrepo.NewRepository(repositoryPath, backend, nil)
		if repositoryError != nil {
			return repositoryError
		}
		repositoryHandles = append(repositoryHandles, repository)
	}

	reportBuilder := NewBuilder(logger, configuration.Workers, nil)
	repositoryReport, buildError := reportBuilder.Build(command.Context(), repositoryHandles, BuildOptions{
		Ordering:       ordering,
		IncludeDetails: includeDetails,
	})
	if buildError != nil {
		return buildError
	}

	return builder.RendererProvider().RenderReport(command.OutOrStdout(), repositoryReport)
}

func (builder *StatusCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *StatusCommandBuilder) resolveRegistryConfiguration() registry.CommandConfiguration {
	if builder.RegistryConfigurationProvider == nil {
		return registry.DefaultCommandConfiguration()
	}
	return builder.RegistryConfigurationProvider()
}

func (builder *StatusCommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
