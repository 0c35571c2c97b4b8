package scan

import "strings"

const (
	configurationRootsKeyConstant    = "roots"
	configurationExcludesKeyConstant = "excludes"
	configurationWorkersKeyConstant  = "workers"
)

// CommandConfiguration captures configurable options for the scan command.
type CommandConfiguration struct {
	Roots    []string `mapstructure:"roots"`
	Excludes []string `mapstructure:"excludes"`
	Workers  int      `mapstructure:"workers"`
}

// DefaultCommandConfiguration returns baseline scan settings.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Roots:    nil,
		Excludes: nil,
		Workers:  defaultWorkerCountConstant,
	}
}

// DefaultConfigurationValues produces Viper defaults for the scan command.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		rootKey + "." + configurationRootsKeyConstant:    defaults.Roots,
		rootKey + "." + configurationExcludesKeyConstant: defaults.Excludes,
		rootKey + "." + configurationWorkersKeyConstant:  defaults.Workers,
	}
}

func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := CommandConfiguration{Workers: configuration.Workers}
	if sanitized.Workers < 0 {
		sanitized.Workers = 0
	}
	for _, rootCandidate := range configuration.Roots {
		trimmedRoot := strings.TrimSpace(rootCandidate)
		if len(trimmedRoot) == 0 {
			continue
		}
		sanitized.Roots = append(sanitized.Roots, trimmedRoot)
	}
	for _, excludeCandidate := range configuration.Excludes {
		trimmedExclude := strings.TrimSpace(excludeCandidate)
		if len(trimmedExclude) == 0 {
			continue
		}
		sanitized.Excludes = append(sanitized.Excludes, trimmedExclude)
	}
	return sanitized
}
