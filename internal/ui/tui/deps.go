package tui

import "log/slog"

type Deps struct {
	// Title is shown in the header, usually the configuration path.
	Title string

	Logger *slog.Logger
	Debug  bool
}
