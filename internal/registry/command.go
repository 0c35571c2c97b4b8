package registry

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	listCommandUseConstant               = "list"
	listCommandShortDescriptionConstant  = "List registered repositories"
	listCommandLongDescriptionConstant   = "list prints every repository path recorded in the registry cache, one per line."
	infoCommandUseConstant               = "info"
	infoCommandShortDescriptionConstant  = "Show registry details"
	infoCommandLongDescriptionConstant   = "info prints the cache file location, the number of registered repositories, and the configured scan roots."
	rendererNotConfiguredMessageConstant = "renderer not configured"
)

// ErrRendererNotConfigured indicates a command was built without a renderer provider.
var ErrRendererNotConfigured = errors.New(rendererNotConfiguredMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RepositoryListRenderer renders repository path listings.
type RepositoryListRenderer interface {
	RenderRepositoryList(writer io.Writer, repositoryPaths []string) error
}

// InformationRenderer renders registry metadata.
type InformationRenderer interface {
	RenderRegistryInformation(writer io.Writer, information Information) error
}

// Information summarizes the registry for presentation.
type Information struct {
	CacheFilePath   string   `json:"cacheFile"`
	RepositoryCount int      `json:"repositoryCount"`
	ConfiguredRoots []string `json:"configuredRoots,omitempty"`
}

// ListCommandBuilder assembles the list command.
type ListCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	RendererProvider      func() RepositoryListRenderer
	Store                 *Store
}

// Build constructs the cobra command listing registered repositories.
func (builder *ListCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   listCommandUseConstant,
		Short: listCommandShortDescriptionConstant,
		Long:  listCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *ListCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if builder.RendererProvider == nil {
		return ErrRendererNotConfigured
	}

	configuration := resolveCommandConfiguration(builder.ConfigurationProvider)
	store, storeError := ResolveStore(builder.Store, configuration.CacheFilePath, resolveCommandLogger(builder.LoggerProvider))
	if storeError != nil {
		return storeError
	}

	repositorySet, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	return builder.RendererProvider().RenderRepositoryList(command.OutOrStdout(), repositorySet.SortedPaths())
}

// InfoCommandBuilder assembles the info command.
type InfoCommandBuilder struct {
	LoggerProvider          LoggerProvider
	ConfigurationProvider   func() CommandConfiguration
	RendererProvider        func() InformationRenderer
	ConfiguredRootsProvider func() []string
	Store                   *Store
}

// Build constructs the cobra command describing the registry.
func (builder *InfoCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   infoCommandUseConstant,
		Short: infoCommandShortDescriptionConstant,
		Long:  infoCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *InfoCommandBuilder) run(command *cobra.Command, arguments []string) error {
	if builder.RendererProvider == nil {
		return ErrRendererNotConfigured
	}

	configuration := resolveCommandConfiguration(builder.ConfigurationProvider)
	store, storeError := ResolveStore(builder.Store, configuration.CacheFilePath, resolveCommandLogger(builder.LoggerProvider))
	if storeError != nil {
		return storeError
	}

	repositorySet, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	var configuredRoots []string
	if builder.ConfiguredRootsProvider != nil {
		configuredRoots = builder.ConfiguredRootsProvider()
	}

	information := Information{
		CacheFilePath:   store.CacheFilePath(),
		RepositoryCount: repositorySet.Size(),
		ConfiguredRoots: configuredRoots,
	}
	return builder.RendererProvider().RenderRegistryInformation(command.OutOrStdout(), information)
}

func resolveCommandConfiguration(provider func() CommandConfiguration) CommandConfiguration {
	if provider == nil {
		return DefaultCommandConfiguration()
	}
	return provider().sanitize()
}

func resolveCommandLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
