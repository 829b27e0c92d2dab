package ports

import "github.com/MarcoAyalaT/Vicente/internal/domain"

// SweepObserver receives progress events while a sweep runs. Calls happen on
// the sweep goroutine, in order.
type SweepObserver interface {
	ItemStarted(index, total int, it domain.SweepItem)
	StageStarted(it domain.SweepItem, stage domain.Stage)
	Info(it domain.SweepItem, msg string)
	ItemFinished(index, total int, res domain.ItemResult)
}
