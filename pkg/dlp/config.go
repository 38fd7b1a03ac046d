package dlp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

type Rule struct {
	Name     string `yaml:"name" json:"name"`
	Type     string `yaml:"type" json:"type"`
	Pattern  string `yaml:"pattern" json:"pattern"`
	Mask     string `yaml:"mask" json:"mask"`
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Severity string `yaml:"severity" json:"severity"`
}

type RulesConfig struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// Get returns the rule with the given type.
func (c RulesConfig) Get(ruleType string) (Rule, bool) {
	for _, r := range c.Rules {
		if r.Type == ruleType {
			return r, true
		}
	}
	return Rule{}, false
}

// LoadRules reads PHI masking rules from YAML and layers them over the
// built-in set: a file rule replaces the default of the same type, so
// `enabled: false` switches a default off. An empty path yields the
// defaults, as does an unreadable file (with the read error).
func LoadRules(path string) (RulesConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRules(), fmt.Errorf("read phi rules: %w", err)
	}

	var cfg RulesConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return RulesConfig{}, fmt.Errorf("parse phi rules: %w", err)
	}
	if len(cfg.Rules) == 0 {
		return RulesConfig{}, errors.New("no PHI rules configured")
	}

	seen := make(map[string]bool, len(cfg.Rules))
	for i, r := range cfg.Rules {
		if strings.TrimSpace(r.Type) == "" {
			return RulesConfig{}, fmt.Errorf("phi rule %d: type is required", i)
		}
		if seen[r.Type] {
			return RulesConfig{}, fmt.Errorf("phi rule %q: duplicate type", r.Type)
		}
		seen[r.Type] = true
		if r.Enabled && r.Pattern == "" {
			return RulesConfig{}, fmt.Errorf("phi rule %q: pattern is required", r.Type)
		}
	}

	for _, d := range DefaultRules().Rules {
		if !seen[d.Type] {
			cfg.Rules = append(cfg.Rules, d)
		}
	}
	return cfg, nil
}

func DefaultRules() RulesConfig {
	return RulesConfig{Rules: []Rule{
		{Name: "SSN", Type: "ssn", Pattern: `\b\d{3}-\d{2}-\d{4}\b`, Mask: "***-**-****", Enabled: true, Severity: SeverityHigh},
		{Name: "Patient ID", Type: "mrn", Pattern: `\bPAT-\d{7}\b`, Mask: "PAT-*******", Enabled: true, Severity: SeverityHigh},
		{Name: "DOB", Type: "dob", Pattern: `\b\d{1,2}/\d{1,2}/\d{4}\b`, Mask: "##/##/####", Enabled: true, Severity: SeverityMedium},
		{Name: "Email", Type: "email", Pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`, Mask: "***@***", Enabled: true, Severity: SeverityMedium},
		{Name: "Phone", Type: "phone", Pattern: `\(\d{3}\)\s?\d{3}-\d{4}\b|\b\d{3}-\d{3}-\d{4}\b`, Mask: "(***) ***-****", Enabled: true, Severity: SeverityMedium},
	}}
}
