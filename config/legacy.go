package config

import (
	"encoding/json"
	"fmt"
	"os"

	"ecobeehub/internal/core"

	"gopkg.in/yaml.v3"
)

// LoadLegacy reads the ecobee block of a file-based configuration.
// Returns nil without error when the file has no ecobee block. A present but
// empty block ("ecobee:") still yields a config so the import can run.
func LoadLegacy(path string) (*core.LegacyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigFileNotFound
		}
		return nil, fmt.Errorf("failed to read legacy config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse legacy config: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: legacy config must be a mapping", ErrInvalidConfig)
	}

	// Mapping content alternates key and value nodes
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != core.Domain {
			continue
		}

		block := root.Content[i+1]
		legacy := &core.LegacyConfig{}
		if block.Tag == "!!null" {
			return legacy, nil
		}

		var fields struct {
			APIKey string `yaml:"api_key"`
		}
		if err := block.Decode(&fields); err != nil {
			return nil, fmt.Errorf("%w: ecobee block: %v", ErrInvalidConfig, err)
		}
		legacy.APIKey = fields.APIKey
		return legacy, nil
	}

	return nil, nil
}

// ecobeeConf is the credential file kept next to the legacy configuration
type ecobeeConf struct {
	APIKey       string `json:"API_KEY"`
	RefreshToken string `json:"REFRESH_TOKEN"`
}

// LoadEcobeeConf reads the ecobee.conf credential file
func LoadEcobeeConf(path string) (core.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return core.Credentials{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return core.Credentials{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var conf ecobeeConf
	if err := json.Unmarshal(data, &conf); err != nil {
		return core.Credentials{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return core.Credentials{
		APIKey:       conf.APIKey,
		RefreshToken: conf.RefreshToken,
	}, nil
}
