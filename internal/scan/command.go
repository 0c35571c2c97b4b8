package scan

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitscope/internal/registry"
	"github.com/temirov/gitscope/internal/utils/flags"
	pathutils "github.com/temirov/gitscope/internal/utils/path"
)

const (
	scanCommandUseConstant              = "scan [root...]"
	scanCommandShortDescriptionConstant = "Scan roots for git repositories"
	scanCommandLongDescriptionConstant  = "scan walks the configured roots, records every repository root it finds, and merges the discoveries into the registry cache."
	defaultScanRootConstant             = "~"
	noScanRootsMessageConstant          = "no scan roots resolved"
)

// ErrNoScanRoots indicates every candidate root was discarded during sanitization.
var ErrNoScanRoots = errors.New(noScanRootsMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// SummaryRenderer renders the outcome of a scan.
type SummaryRenderer interface {
	RenderScanSummary(writer io.Writer, outcome Outcome) error
}

// CommandBuilder assembles the scan command.
type CommandBuilder struct {
	LoggerProvider                LoggerProvider
	ConfigurationProvider         func() CommandConfiguration
	RegistryConfigurationProvider func() registry.CommandConfiguration
	RendererProvider              func() SummaryRenderer
	Scanner                       RepositoryScanner
	Store                         RegistryStore
	rootFlagValues                *flags.RootFlagValues
}

// Build constructs the cobra command that discovers repositories.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   scanCommandUseConstant,
		Short: scanCommandShortDescriptionConstant,
		Long:  scanCommandLongDescriptionConstant,
		Args:  cobra.ArbitraryArgs,
		RunE:  builder.run,
	}
	builder.rootFlagValues = flags.BindRootFlags(command, flags.RootFlagValues{}, flags.RootFlagDefinition{Enabled: true})
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if builder.RendererProvider == nil {
		return registry.ErrRendererNotConfigured
	}

	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()

	scanRoots, rootsError := builder.resolveScanRoots(arguments, configuration)
	if rootsError != nil {
		return rootsError
	}

	scanner := builder.Scanner
	if scanner == nil {
		scanner = NewScanner(logger, configuration.Workers)
	}

	store := builder.Store
	if store == nil {
		registryConfiguration := builder.resolveRegistryConfiguration()
		resolvedStore, storeError := registry.ResolveStore(nil, registryConfiguration.CacheFilePath, logger)
		if storeError != nil {
			return storeError
		}
		store = resolvedStore
	}

	service, serviceError := NewService(scanner, store, logger)
	if serviceError != nil {
		return serviceError
	}

	outcome, runError := service.Run(command.Context(), Options{Roots: scanRoots, Excludes: configuration.Excludes})
	if runError != nil {
		return runError
	}

	return builder.RendererProvider().RenderScanSummary(command.OutOrStdout(), outcome)
}

func (builder *CommandBuilder) resolveScanRoots(arguments []string, configuration CommandConfiguration) ([]string, error) {
	rootCandidates := append([]string{}, arguments...)
	if builder.rootFlagValues != nil {
		rootCandidates = append(rootCandidates, builder.rootFlagValues.Roots...)
	}
	if len(rootCandidates) == 0 {
		rootCandidates = configuration.Roots
	}
	if len(rootCandidates) == 0 {
		rootCandidates = []string{defaultScanRootConstant}
	}

	pathSanitizer := pathutils.NewRepositoryPathSanitizerWithConfiguration(nil, pathutils.RepositoryPathSanitizerConfiguration{
		ExcludeBooleanLiteralCandidates: true,
		PruneNestedPaths:                true,
	})
	sanitizedRoots := pathSanitizer.Sanitize(rootCandidates)
	if len(sanitizedRoots) == 0 {
		return nil, ErrNoScanRoots
	}
	return sanitizedRoots, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveRegistryConfiguration() registry.CommandConfiguration {
	if builder.RegistryConfigurationProvider == nil {
		return registry.DefaultCommandConfiguration()
	}
	return builder.RegistryConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
