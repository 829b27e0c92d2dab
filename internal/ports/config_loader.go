package ports

import "github.com/MarcoAyalaT/Vicente/internal/domain"

// ConfigLoader loads the sweep configuration from a source (e.g., a YAML file).
type ConfigLoader interface {
	LoadConfig(path string) (domain.Config, error)
}
