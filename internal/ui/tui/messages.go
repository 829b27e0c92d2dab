package tui

import "github.com/MarcoAyalaT/Vicente/internal/domain"

type itemStartedMsg struct {
	index int
	total int
	item  domain.SweepItem
}

type stageStartedMsg struct {
	item  domain.SweepItem
	stage domain.Stage
}

type infoMsg struct {
	item domain.SweepItem
	text string
}

type itemFinishedMsg struct {
	index  int
	total  int
	result domain.ItemResult
}

type sweepDoneMsg struct {
	run domain.SweepRun
	id  string
	err error
}
