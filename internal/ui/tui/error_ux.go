package tui

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)
var reField = regexp.MustCompile(`\bfield\s+([A-Za-z_]+\.[A-Za-z0-9_.\[\]]+)`)

// UserMessage turns an error into a short line for the terminal. Details
// stay in the log file.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) {
		return "Canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Timed out"
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {
		case domain.KindNotFound:
			switch {
			case strings.Contains(oe.Op, "workspacefinder"):
				return "Workspace not found (tip: run `thermosweep init`)"
			case strings.Contains(oe.Op, "config.load"):
				return "Config not found: " + oe.Path
			case strings.Contains(oe.Op, "sweep.geometry"):
				return "Geometry not found: " + oe.Path
			case strings.Contains(oe.Op, "lookpath"):
				return "Tool not found in PATH: " + oe.Path
			case strings.Contains(oe.Op, "runstore"):
				return "Run not found"
			}
			return "Not found"

		case domain.KindInvalidConfig:
			base := "config"
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}
			if f := extractField(err.Error()); f != "" {
				return "Invalid config at " + base + ": " + f
			}
			if line := extractLine(err.Error()); line != "" {
				return "Invalid YAML at " + base + " line " + line
			}
			if looksLikeYAMLProblem(err.Error()) {
				return "Invalid YAML at " + base
			}
			return "Invalid config"

		case domain.KindMesh:
			return "Mesh generation failed"

		case domain.KindSolver:
			return "Solver failed (see logs)"

		case domain.KindCanceled:
			return "Canceled"

		default:
			return "Unexpected error (see logs)"
		}
	}

	if looksLikeYAMLProblem(err.Error()) {
		if line := extractLine(err.Error()); line != "" {
			return "Invalid YAML line " + line
		}
		return "Invalid YAML"
	}

	return "Unexpected error (see logs)"
}

func looksLikeYAMLProblem(s string) bool {
	ls := strings.ToLower(s)
	return strings.Contains(ls, "yaml:") || strings.Contains(ls, "did not find expected") || strings.Contains(ls, "cannot unmarshal")
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}

func extractField(s string) string {
	m := reField.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}
