package report

import "strings"

const (
	configurationSortKeyConstant    = "sort"
	configurationFullKeyConstant    = "full"
	configurationWorkersKeyConstant = "workers"
)

// CommandConfiguration captures configurable options for the status command.
type CommandConfiguration struct {
	Sort    string `mapstructure:"sort"`
	Full    bool   `mapstructure:"full"`
	Workers int    `mapstructure:"workers"`
}

// DefaultCommandConfiguration returns baseline status settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Sort:    string(OrderingPath),
		Full:    false,
		Workers: defaultWorkerCountConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the status command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationSortKeyConstant:    defaults.Sort,
		rootKey + "." + configurationFullKeyConstant:    defaults.Full,
		rootKey + "." + configurationWorkersKeyConstant: defaults.Workers,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.Sort = strings.ToLower(strings.TrimSpace(configuration.Sort))
	if len(sanitized.Sort) == 0 {
		sanitized.Sort = string(OrderingPath)
	}
	if sanitized.Workers < 0 {
		sanitized.Workers = 0
	}
	return sanitized
}
