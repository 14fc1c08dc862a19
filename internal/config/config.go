// =============================================================================
// EPICS Archive Config Converter - Configuration Module
// =============================================================================
//
// This module loads the optional converter configuration. The converter runs
// with built-in defaults when no configuration file is given; a YAML file
// supplied via --config adjusts logging, XML output, and channel grouping.
//
// CONFIGURATION AREAS:
//   1. Logging: level, destination, and console formatting
//   2. Output: XML indentation and declaration handling
//   3. Groups: rules that route channels into named engine groups
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sbwebb/epics-archive-config/internal/types"
	"github.com/sbwebb/epics-archive-config/pkg/logger"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full converter configuration.
type Config struct {
	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// Logging controls the structured logger.
	// Valid levels: "debug", "info", "warn", "error"
	// Default: level "info", output "stderr"
	Logging logger.Config `yaml:"logging"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// Output controls how the engine configuration XML is rendered.
	Output OutputSettings `yaml:"output"`

	// =========================================================================
	// CHANNEL GROUPING
	// =========================================================================

	// Groups routes channels into named engine groups. Each channel is
	// assigned to the first rule whose patterns match its name; channels
	// matching no rule land in Default_Group, which is always emitted
	// last. With no rules every channel lands in Default_Group.
	//
	// CUSTOMIZATION: Pattern syntax is filepath.Match globs.
	// Examples:
	//   - "BL7:Mot:*"   : Matches channels under the BL7 motor prefix
	//   - "*:T"         : Matches temperature readbacks
	Groups []GroupRule `yaml:"groups"`
}

// =============================================================================
// OUTPUT SETTINGS STRUCTURE
// =============================================================================

// OutputSettings contains settings for rendering the XML document.
type OutputSettings struct {
	// Indent is the string prepended once per nesting level.
	// Default: two spaces
	Indent string `yaml:"indent"`

	// OmitDeclaration suppresses the leading <?xml ...?> declaration.
	// Default: false (the declaration is emitted)
	OmitDeclaration bool `yaml:"omit_declaration"`
}

// =============================================================================
// GROUP RULE STRUCTURE
// =============================================================================

// GroupRule defines one named engine group and the channel names it claims.
type GroupRule struct {
	// Name is the group name emitted in the XML. It must be unique and
	// must not be Default_Group, which is reserved for unmatched channels.
	Name string `yaml:"name"`

	// Patterns is a list of glob patterns matched against channel names.
	// A channel belongs to this group if any pattern matches.
	Patterns []string `yaml:"patterns"`

	// MonitorDelta is an optional value deadband for monitor-mode channels
	// in this group, rendered as the <monitor> element content. Scan-mode
	// channels ignore it.
	MonitorDelta string `yaml:"monitor_delta,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	config := &Config{}
	applyDefaults(config)
	return config
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the Config struct with defaults applied.
//   - An error if the file cannot be read or parsed, or if the
//     configuration is invalid.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *Config) {
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Output == "" {
		config.Logging.Output = "stderr"
	}
	if config.Output.Indent == "" {
		config.Output.Indent = "  "
	}
}

// validate checks the configuration for contradictions the converter cannot
// work around.
func validate(config *Config) error {
	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging level %q", config.Logging.Level)
	}

	seen := make(map[string]bool)
	for i, rule := range config.Groups {
		if rule.Name == "" {
			return fmt.Errorf("group rule %d has no name", i+1)
		}
		if rule.Name == types.DefaultGroupName {
			return fmt.Errorf("group name %q is reserved for unmatched channels", types.DefaultGroupName)
		}
		if seen[rule.Name] {
			return fmt.Errorf("duplicate group name %q", rule.Name)
		}
		seen[rule.Name] = true

		if len(rule.Patterns) == 0 {
			return fmt.Errorf("group %q has no patterns", rule.Name)
		}
		for _, pattern := range rule.Patterns {
			if _, err := filepath.Match(pattern, ""); err != nil {
				return fmt.Errorf("group %q has a malformed pattern %q: %w", rule.Name, pattern, err)
			}
		}

		if rule.MonitorDelta != "" {
			if _, err := strconv.ParseFloat(rule.MonitorDelta, 64); err != nil {
				return fmt.Errorf("group %q has a non-numeric monitor_delta %q", rule.Name, rule.MonitorDelta)
			}
		}
	}

	return nil
}
