package usecase

import (
	"github.com/MarcoAyalaT/Vicente/internal/domain"
	"github.com/MarcoAyalaT/Vicente/internal/ports"
)

// NopObserver ignores every sweep event.
type NopObserver struct{}

func (NopObserver) ItemStarted(int, int, domain.SweepItem)      {}
func (NopObserver) StageStarted(domain.SweepItem, domain.Stage) {}
func (NopObserver) Info(domain.SweepItem, string)               {}
func (NopObserver) ItemFinished(int, int, domain.ItemResult)    {}

var _ ports.SweepObserver = NopObserver{}

// MultiObserver fans events out to several observers in order.
type MultiObserver []ports.SweepObserver

func (m MultiObserver) ItemStarted(index, total int, it domain.SweepItem) {
	for _, o := range m {
		o.ItemStarted(index, total, it)
	}
}

func (m MultiObserver) StageStarted(it domain.SweepItem, stage domain.Stage) {
	for _, o := range m {
		o.StageStarted(it, stage)
	}
}

func (m MultiObserver) Info(it domain.SweepItem, msg string) {
	for _, o := range m {
		o.Info(it, msg)
	}
}

func (m MultiObserver) ItemFinished(index, total int, res domain.ItemResult) {
	for _, o := range m {
		o.ItemFinished(index, total, res)
	}
}
