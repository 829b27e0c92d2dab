package config

import (
	"os"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file looked up in a workspace root.
const DefaultFileName = "configThermo.yaml"

// Loader reads configThermo.yaml files.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

var _ ports.ConfigLoader = (*Loader)(nil)

func (l *Loader) LoadConfig(path string) (domain.Config, error) {
	return LoadConfig(path)
}

// LoadConfig reads, maps and validates a configuration file.
func LoadConfig(path string) (domain.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var dto YAMLConfig
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return domain.Config{}, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	cfg, err := MapConfig(path, dto)
	if err != nil {
		return domain.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		if oe, ok := err.(*domain.OpError); ok {
			oe.Path = path
		}
		return domain.Config{}, err
	}
	return cfg, nil
}
