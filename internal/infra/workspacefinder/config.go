package workspacefinder

import (
	"path/filepath"
	"strings"
)

// DefaultConfigFile marks a workspace root.
const DefaultConfigFile = "configThermo.yaml"

// ConfigPath resolves the configuration file of a workspace. An explicit
// override wins; a relative override is taken relative to root.
func ConfigPath(root, override string) string {
	o := strings.TrimSpace(override)
	if o == "" {
		return filepath.Join(root, DefaultConfigFile)
	}
	if filepath.IsAbs(o) {
		return filepath.Clean(o)
	}
	return filepath.Join(root, o)
}
