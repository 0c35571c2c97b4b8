package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitscope/cmd/cli"
	"github.com/temirov/gitscope/internal/registry"
	"github.com/temirov/gitscope/internal/report"
	"github.com/temirov/gitscope/internal/scan"
)

const (
	testConfigurationFileNameConstant     = "config.yaml"
	testCacheFileNameConstant             = "repositories"
	testRegistryConfigurationTemplate     = "registry:\n  cache_file: %s\n"
	testScanConfigurationTemplate         = "registry:\n  cache_file: %s\nscan:\n  roots:\n    - %s\n"
	testFirstRepositoryPathConstant       = "/workspace/projects/alpha"
	testSecondRepositoryPathConstant      = "/workspace/projects/beta"
	testCacheEnvironmentVariableConstant  = "GITSCOPE_REGISTRY_CACHE_FILE"
	testGitMarkerDirectoryNameConstant    = ".git"
	testRepositoryDirectoryNameConstant   = "project"
	testDefaultLogLevelConstant           = "info"
	testDefaultLogFormatConstant          = "structured"
	testDefaultSortColumnConstant         = "path"
	testDefaultWorkerCountConstant        = 4
	testUnknownCommandArgumentConstant    = "bogus"
	testUnknownCommandErrorSampleConstant = "unknown command"
	testCommonSectionKeyConstant          = "common"
	testRegistrySectionKeyConstant        = "registry"
	testScanSectionKeyConstant            = "scan"
	testStatusSectionKeyConstant          = "status"
	testLogLevelKeyConstant               = "log_level"
	testLogFormatKeyConstant              = "log_format"
	testConfigurationKeySeparatorConstant = "."
)

func writeConfigurationFile(testInstance *testing.T, configurationPath string, configurationContent string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o644))
}

func setCommandLineArguments(testInstance *testing.T, commandLineArguments []string) {
	testInstance.Helper()

	originalArguments := os.Args
	testInstance.Cleanup(func() {
		os.Args = originalArguments
	})
	os.Args = commandLineArguments
}

func captureStandardOutput(testInstance *testing.T, action func()) string {
	testInstance.Helper()

	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(testInstance, pipeError)

	originalStdout := os.Stdout
	os.Stdout = pipeWriter
	defer func() {
		os.Stdout = originalStdout
	}()

	action()

	require.NoError(testInstance, pipeWriter.Close())
	capturedBytes, readError := io.ReadAll(pipeReader)
	require.NoError(testInstance, readError)
	require.NoError(testInstance, pipeReader.Close())

	return string(capturedBytes)
}

func TestApplicationEmbeddedDefaultsMatchConfiguration(testInstance *testing.T) {
	embeddedData, embeddedType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, embeddedData)

	viperInstance := viper.New()
	viperInstance.SetConfigType(embeddedType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(embeddedData)))

	var configuration cli.ApplicationConfiguration
	require.NoError(testInstance, viperInstance.Unmarshal(&configuration))

	require.Equal(testInstance, testDefaultLogLevelConstant, configuration.Common.LogLevel)
	require.Equal(testInstance, testDefaultLogFormatConstant, configuration.Common.LogFormat)
	require.Empty(testInstance, configuration.Registry.CacheFilePath)
	require.Empty(testInstance, configuration.Scan.Roots)
	require.Empty(testInstance, configuration.Scan.Excludes)
	require.Equal(testInstance, testDefaultWorkerCountConstant, configuration.Scan.Workers)
	require.Equal(testInstance, testDefaultSortColumnConstant, configuration.Status.Sort)
	require.False(testInstance, configuration.Status.Full)
	require.Equal(testInstance, testDefaultWorkerCountConstant, configuration.Status.Workers)
}

func TestApplicationEmbeddedConfigurationDocumentsAllSections(testInstance *testing.T) {
	embeddedData, _ := cli.EmbeddedDefaultConfiguration()

	var documentedConfiguration map[string]any
	require.NoError(testInstance, yaml.Unmarshal(embeddedData, &documentedConfiguration))

	require.Contains(testInstance, documentedConfiguration, testCommonSectionKeyConstant)
	require.Contains(testInstance, documentedConfiguration, testRegistrySectionKeyConstant)
	require.Contains(testInstance, documentedConfiguration, testScanSectionKeyConstant)
	require.Contains(testInstance, documentedConfiguration, testStatusSectionKeyConstant)

	commonSection, commonIsMapping := documentedConfiguration[testCommonSectionKeyConstant].(map[string]any)
	require.True(testInstance, commonIsMapping)
	require.Equal(testInstance, testDefaultLogLevelConstant, commonSection[testLogLevelKeyConstant])
	require.Equal(testInstance, testDefaultLogFormatConstant, commonSection[testLogFormatKeyConstant])
}

func nestConfigurationValues(flatValues map[string]any) map[string]any {
	nestedValues := map[string]any{}
	for flatKey, flatValue := range flatValues {
		keySegments := strings.Split(flatKey, testConfigurationKeySeparatorConstant)
		currentLevel := nestedValues
		for segmentIndex, keySegment := range keySegments {
			if segmentIndex == len(keySegments)-1 {
				currentLevel[keySegment] = flatValue
				continue
			}
			childLevel, childExists := currentLevel[keySegment].(map[string]any)
			if !childExists {
				childLevel = map[string]any{}
				currentLevel[keySegment] = childLevel
			}
			currentLevel = childLevel
		}
	}
	return nestedValues
}

func TestApplicationDefaultValuesDecodeIntoConfiguration(testInstance *testing.T) {
	flatDefaults := map[string]any{}
	for configurationKey, configurationValue := range registry.DefaultConfigurationValues(testRegistrySectionKeyConstant) {
		flatDefaults[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range scan.DefaultConfigurationValues(testScanSectionKeyConstant) {
		flatDefaults[configurationKey] = configurationValue
	}
	for configurationKey, configurationValue := range report.DefaultConfigurationValues(testStatusSectionKeyConstant) {
		flatDefaults[configurationKey] = configurationValue
	}

	var configuration cli.ApplicationConfiguration
	require.NoError(testInstance, mapstructure.Decode(nestConfigurationValues(flatDefaults), &configuration))

	require.Equal(testInstance, registry.DefaultCommandConfiguration(), configuration.Registry)
	require.Equal(testInstance, scan.DefaultCommandConfiguration(), configuration.Scan)
	require.Equal(testInstance, report.DefaultCommandConfiguration(), configuration.Status)
}

func TestApplicationExecuteListsCachedRepositories(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	cacheFilePath := filepath.Join(temporaryDirectory, testCacheFileNameConstant)
	cacheContents := testSecondRepositoryPathConstant + "\n" + testFirstRepositoryPathConstant + "\n"
	require.NoError(testInstance, os.WriteFile(cacheFilePath, []byte(cacheContents), 0o644))

	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	writeConfigurationFile(testInstance, configurationPath, fmt.Sprintf(testRegistryConfigurationTemplate, cacheFilePath))

	setCommandLineArguments(testInstance, []string{"gitscope", "list", "--config", configurationPath})

	var executionError error
	capturedOutput := captureStandardOutput(testInstance, func() {
		executionError = cli.NewApplication().Execute()
	})

	require.NoError(testInstance, executionError)
	expectedOutput := testFirstRepositoryPathConstant + "\n" + testSecondRepositoryPathConstant + "\n"
	require.Equal(testInstance, expectedOutput, capturedOutput)
}

func TestApplicationExecuteListsCachedRepositoriesAsJSON(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	cacheFilePath := filepath.Join(temporaryDirectory, testCacheFileNameConstant)
	cacheContents := testFirstRepositoryPathConstant + "\n" + testSecondRepositoryPathConstant + "\n"
	require.NoError(testInstance, os.WriteFile(cacheFilePath, []byte(cacheContents), 0o644))

	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	writeConfigurationFile(testInstance, configurationPath, fmt.Sprintf(testRegistryConfigurationTemplate, cacheFilePath))

	setCommandLineArguments(testInstance, []string{"gitscope", "list", "--json", "--config", configurationPath})

	var executionError error
	capturedOutput := captureStandardOutput(testInstance, func() {
		executionError = cli.NewApplication().Execute()
	})

	require.NoError(testInstance, executionError)

	var decodedPaths []string
	require.NoError(testInstance, json.Unmarshal([]byte(capturedOutput), &decodedPaths))
	require.Equal(testInstance, []string{testFirstRepositoryPathConstant, testSecondRepositoryPathConstant}, decodedPaths)
}

func TestApplicationExecuteHonorsEnvironmentCacheOverride(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()

	configuredCachePath := filepath.Join(temporaryDirectory, "configured-cache")
	require.NoError(testInstance, os.WriteFile(configuredCachePath, []byte(testFirstRepositoryPathConstant+"\n"), 0o644))

	environmentCachePath := filepath.Join(temporaryDirectory, "environment-cache")
	require.NoError(testInstance, os.WriteFile(environmentCachePath, []byte(testSecondRepositoryPathConstant+"\n"), 0o644))

	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	writeConfigurationFile(testInstance, configurationPath, fmt.Sprintf(testRegistryConfigurationTemplate, configuredCachePath))

	testInstance.Setenv(testCacheEnvironmentVariableConstant, environmentCachePath)
	setCommandLineArguments(testInstance, []string{"gitscope", "list", "--config", configurationPath})

	var executionError error
	capturedOutput := captureStandardOutput(testInstance, func() {
		executionError = cli.NewApplication().Execute()
	})

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, testSecondRepositoryPathConstant+"\n", capturedOutput)
}

func TestApplicationExecuteScansConfiguredRoots(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()

	workspaceDirectory := filepath.Join(temporaryDirectory, "workspace")
	repositoryDirectory := filepath.Join(workspaceDirectory, testRepositoryDirectoryNameConstant)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryDirectory, testGitMarkerDirectoryNameConstant), 0o755))

	cacheFilePath := filepath.Join(temporaryDirectory, testCacheFileNameConstant)
	configurationPath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	writeConfigurationFile(testInstance, configurationPath, fmt.Sprintf(testScanConfigurationTemplate, cacheFilePath, workspaceDirectory))

	setCommandLineArguments(testInstance, []string{"gitscope", "scan", "--config", configurationPath})

	var executionError error
	capturedOutput := captureStandardOutput(testInstance, func() {
		executionError = cli.NewApplication().Execute()
	})

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, capturedOutput, "discovered: 1 (1 new)")
	require.Contains(testInstance, capturedOutput, "tracked: 1")

	canonicalRepositoryPath, canonicalError := filepath.EvalSymlinks(repositoryDirectory)
	require.NoError(testInstance, canonicalError)

	cacheContents, readError := os.ReadFile(cacheFilePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, canonicalRepositoryPath+"\n", string(cacheContents))
}

func TestApplicationExecuteReportsUnknownCommand(testInstance *testing.T) {
	setCommandLineArguments(testInstance, []string{"gitscope", testUnknownCommandArgumentConstant})

	executionError := cli.NewApplication().Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), testUnknownCommandErrorSampleConstant)
}
