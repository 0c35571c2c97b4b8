package registry

import "strings"

const (
	configurationCacheFileKeyConstant = "cache_file"
)

// CommandConfiguration captures persistent settings shared by registry-backed commands.
type CommandConfiguration struct {
	CacheFilePath string `mapstructure:"cache_file"`
}

// DefaultCommandConfiguration returns baseline configuration values for registry commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		CacheFilePath: "",
	}
}

// DefaultConfigurationValues produces Viper defaults for registry-backed commands.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationCacheFileKeyConstant: defaults.CacheFilePath,
	}
}

// sanitize trims configuration values without applying implicit defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.CacheFilePath = strings.TrimSpace(configuration.CacheFilePath)

	return sanitized
}
