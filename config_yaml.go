package glide

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Enum fields serialize as their config names so YAML files stay
// readable; see the String methods in config.go for the vocabulary.

// MarshalYAML implements yaml.Marshaler.
func (m AAMode) MarshalYAML() (any, error) { return m.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *AAMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	for v := AAOff; v < aaModeCount; v++ {
		if v.String() == s {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("%w: aa mode %q", ErrInvalidConfig, s)
}

// MarshalYAML implements yaml.Marshaler.
func (m UpscaleMode) MarshalYAML() (any, error) { return m.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *UpscaleMode) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	for v := UpscaleOff; v < upscaleModeCount; v++ {
		if v.String() == s {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("%w: upscale mode %q", ErrInvalidConfig, s)
}

// MarshalYAML implements yaml.Marshaler.
func (q QualityTier) MarshalYAML() (any, error) { return q.String(), nil }

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *QualityTier) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	for v := QualityLinear; v < qualityTierCount; v++ {
		if v.String() == s {
			*q = v
			return nil
		}
	}
	return fmt.Errorf("%w: quality tier %q", ErrInvalidConfig, s)
}

// ParseConfig decodes a YAML pipeline config. Unset fields keep their
// defaults; the result is validated before being returned.
func ParseConfig(data []byte) (PipelineConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PipelineConfig{}, fmt.Errorf("glide: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return PipelineConfig{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML pipeline config file.
func LoadConfig(path string) (PipelineConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("glide: load config: %w", err)
	}
	return ParseConfig(data)
}

// SaveConfig writes the config as YAML.
func SaveConfig(path string, cfg PipelineConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("glide: save config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
