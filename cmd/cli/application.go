package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/gitscope/internal/execshell"
	"github.com/temirov/gitscope/internal/registry"
	"github.com/temirov/gitscope/internal/render"
	"github.com/temirov/gitscope/internal/report"
	"github.com/temirov/gitscope/internal/scan"
	"github.com/temirov/gitscope/internal/ui"
	"github.com/temirov/gitscope/internal/utils"
	"github.com/temirov/gitscope/internal/utils/flags"
)

const (
	applicationNameConstant                 = "gitscope"
	applicationShortDescriptionConstant     = "Command-line interface for the gitscope repository registry"
	applicationLongDescriptionConstant      = "gitscope maintains a machine-wide registry of Git repositories and reports their working tree state."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	jsonFlagNameConstant                    = "json"
	jsonFlagUsageConstant                   = "Emit machine-readable JSON instead of formatted text."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	registryConfigurationKeyConstant        = "registry"
	scanConfigurationKeyConstant            = "scan"
	statusConfigurationKeyConstant          = "status"
	environmentPrefixConstant               = "GITSCOPE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rendererCreationErrorTemplateConstant   = "unable to create renderer: %w"
	defaultConfigurationSearchPathConstant  = "."
	statusCommandNameConstant               = "status"
	versionFlagTokenConstant                = "--version"
	helpFlagTokenConstant                   = "--help"
	helpFlagShorthandTokenConstant          = "-h"
	flagTokenPrefixConstant                 = "-"
	versionOutputTemplateConstant           = "%s version: %s\n"
	developmentVersionConstant              = "(devel)"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common   ApplicationCommonConfiguration `mapstructure:"common"`
	Registry registry.CommandConfiguration  `mapstructure:"registry"`
	Scan     scan.CommandConfiguration      `mapstructure:"scan"`
	Status   report.CommandConfiguration    `mapstructure:"status"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, structured logger, and output renderer.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	renderer               render.Renderer
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	jsonOutputFlagValue    bool
	commandContextAccessor utils.CommandContextAccessor
	versionResolver        func(executionContext context.Context) string
	exitFunction           func(exitCode int)
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	embeddedConfigurationData, embeddedConfigurationType := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfigurationData, embeddedConfigurationType)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		renderer:               &render.TextRenderer{},
		commandContextAccessor: utils.NewCommandContextAccessor(),
		versionResolver:        resolveBuildVersion,
		exitFunction:           os.Exit,
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.SetOut(utils.NewFlushingWriter(os.Stdout))
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	flags.AddToggleFlag(cobraCommand.PersistentFlags(), &application.jsonOutputFlagValue, jsonFlagNameConstant, "", false, jsonFlagUsageConstant)

	scanBuilder := scan.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() scan.CommandConfiguration {
			return application.configuration.Scan
		},
		RegistryConfigurationProvider: func() registry.CommandConfiguration {
			return application.configuration.Registry
		},
		RendererProvider: func() scan.SummaryRenderer {
			return application.renderer
		},
	}
	scanCommand, scanBuildError := scanBuilder.Build()
	if scanBuildError == nil {
		cobraCommand.AddCommand(scanCommand)
	}

	listBuilder := registry.ListCommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() registry.CommandConfiguration {
			return application.configuration.Registry
		},
		RendererProvider: func() registry.RepositoryListRenderer {
			return application.renderer
		},
	}
	listCommand, listBuildError := listBuilder.Build()
	if listBuildError == nil {
		cobraCommand.AddCommand(listCommand)
	}

	infoBuilder := registry.InfoCommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() registry.CommandConfiguration {
			return application.configuration.Registry
		},
		RendererProvider: func() registry.InformationRenderer {
			return application.renderer
		},
		ConfiguredRootsProvider: func() []string {
			return application.configuration.Scan.Roots
		},
	}
	infoCommand, infoBuildError := infoBuilder.Build()
	if infoBuildError == nil {
		cobraCommand.AddCommand(infoCommand)
	}

	statusBuilder := report.StatusCommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() report.CommandConfiguration {
			return application.configuration.Status
		},
		RegistryConfigurationProvider: func() registry.CommandConfiguration {
			return application.configuration.Registry
		},
		RendererProvider: func() report.ReportRenderer {
			return application.renderer
		},
		CommandEventObserverProvider: application.consoleCommandEventObserver,
	}
	statusCommand, statusBuildError := statusBuilder.Build()
	if statusBuildError == nil {
		cobraCommand.AddCommand(statusCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute normalizes command-line arguments, applies the default command, and runs the Cobra hierarchy.
func (application *Application) Execute() error {
	arguments := flags.NormalizeToggleArguments(os.Args[1:])

	if argumentsRequestVersion(arguments) {
		resolvedVersion := application.versionResolver(application.rootCommand.Context())
		fmt.Fprintf(os.Stdout, versionOutputTemplateConstant, applicationNameConstant, resolvedVersion)
		application.exitFunction(0)
		return nil
	}

	application.rootCommand.SetArgs(argumentsWithDefaultCommand(arguments))

	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}
	for configurationKey, configurationValue := range registry.DefaultConfigurationValues(registryConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range scan.DefaultConfigurationValues(scanConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range report.DefaultConfigurationValues(statusConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	loggerOutputs, loggerCreationError := application.loggerFactory.CreateLoggerOutputs(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = loggerOutputs.DiagnosticLogger

	outputFormat := render.FormatText
	if application.jsonOutputFlagValue {
		outputFormat = render.FormatJSON
	}
	selectedRenderer, rendererCreationError := render.NewRenderer(outputFormat)
	if rendererCreationError != nil {
		return fmt.Errorf(rendererCreationErrorTemplateConstant, rendererCreationError)
	}
	application.renderer = selectedRenderer

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) consoleCommandEventObserver() execshell.CommandEventObserver {
	if !application.humanReadableLoggingEnabled() {
		return nil
	}
	return ui.NewConsoleCommandEventLogger(application.logger)
}

func (application *Application) flushLogger() error {
	if syncError := application.syncLoggerInstance(application.logger); syncError != nil {
		return syncError
	}
	return nil
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

// argumentsWithDefaultCommand routes bare or flag-only invocations to the status command.
func argumentsWithDefaultCommand(arguments []string) []string {
	if len(arguments) == 0 {
		return []string{statusCommandNameConstant}
	}

	for _, argumentValue := range arguments {
		switch argumentValue {
		case helpFlagTokenConstant, helpFlagShorthandTokenConstant, versionFlagTokenConstant:
			return arguments
		}
	}

	if !strings.HasPrefix(arguments[0], flagTokenPrefixConstant) {
		return arguments
	}

	return append([]string{statusCommandNameConstant}, arguments...)
}

func argumentsRequestVersion(arguments []string) bool {
	for _, argumentValue := range arguments {
		if argumentValue == versionFlagTokenConstant {
			return true
		}
	}
	return false
}

func resolveBuildVersion(executionContext context.Context) string {
	buildInformation, buildInformationAvailable := debug.ReadBuildInfo()
	if buildInformationAvailable && len(buildInformation.Main.Version) > 0 {
		return buildInformation.Main.Version
	}
	return developmentVersionConstant
}
