// Package team stores agilemd configuration: the team roster, vault roots,
// and codec behavior. Config lives as yaml under AGILEMD_HOME.
package team

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MemberKind distinguishes delegation targets.
type MemberKind string

const (
	KindInternal MemberKind = "internal"
	KindExternal MemberKind = "external"
	KindTeam     MemberKind = "team"
)

// Member is one entry in the team roster.
type Member struct {
	Alias       string     `yaml:"alias"`
	DisplayName string     `yaml:"display_name"`
	Kind        MemberKind `yaml:"kind,omitempty"`
}

// Config holds agilemd configuration.
type Config struct {
	Version string   `yaml:"version"`
	Team    string   `yaml:"team,omitempty"`
	Vaults  []string `yaml:"vaults,omitempty"`
	// Include globs select which files the watcher and cascade touch.
	Include []string `yaml:"include,omitempty"`
	// StrictDelegates selects the codec variant for file snapshots.
	StrictDelegates bool     `yaml:"strict_delegates"`
	Members         []Member `yaml:"members,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Version:         "1",
		Include:         []string{"**/*.md"},
		StrictDelegates: true,
	}
}

// Issue represents a doctor finding.
type Issue struct {
	Severity string // "warning" or "error"
	Message  string
}

// Home returns the AGILEMD_HOME path, respecting the env var.
func Home() string {
	if h := os.Getenv("AGILEMD_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".agilemd")
	}
	return filepath.Join(home, ".agilemd")
}

func configPath(home string) string {
	return filepath.Join(home, "config.yaml")
}

// Init creates AGILEMD_HOME with a default config.
func Init(home string, force bool) error {
	if _, err := os.Stat(configPath(home)); err == nil && !force {
		return fmt.Errorf("agilemd already initialized at %s (use --force to reinitialize)", home)
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", home, err)
	}
	return Save(home, DefaultConfig())
}

// Load reads the config from home.
func Load(home string) (*Config, error) {
	data, err := os.ReadFile(configPath(home))
	if err != nil {
		return nil, fmt.Errorf("agilemd not initialized at %s (run agilemd init): %w", home, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to home.
func Save(home string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(home), data, 0644)
}

// Member returns the roster entry for alias.
func (c *Config) Member(alias string) (Member, bool) {
	for _, m := range c.Members {
		if m.Alias == alias {
			return m, true
		}
	}
	return Member{}, false
}

// DisplayName returns the member's display name, falling back to the alias.
func (c *Config) DisplayName(alias string) string {
	if m, ok := c.Member(alias); ok && m.DisplayName != "" {
		return m.DisplayName
	}
	return alias
}

// Doctor checks the installation for problems.
func Doctor(home string) []Issue {
	var issues []Issue
	cfg, err := Load(home)
	if err != nil {
		return []Issue{{Severity: "error", Message: err.Error()}}
	}
	if len(cfg.Members) == 0 {
		issues = append(issues, Issue{Severity: "warning", Message: "no team members configured"})
	}
	seen := map[string]bool{}
	for _, m := range cfg.Members {
		if m.Alias == "" {
			issues = append(issues, Issue{Severity: "error", Message: "member with empty alias"})
			continue
		}
		if seen[m.Alias] {
			issues = append(issues, Issue{Severity: "error", Message: fmt.Sprintf("duplicate alias %q", m.Alias)})
		}
		seen[m.Alias] = true
	}
	for _, v := range cfg.Vaults {
		if _, err := os.Stat(v); err != nil {
			issues = append(issues, Issue{Severity: "warning", Message: fmt.Sprintf("vault path %s does not exist", v)})
		}
	}
	return issues
}
