package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func statusBadge(t Theme, s domain.ItemStatus) string {
	switch s {
	case domain.ItemSolved:
		return t.OK.Render("✓ solved")
	case domain.ItemSkipped:
		return t.Subtitle.Render("- skipped")
	case domain.ItemMeshFailed:
		return t.Warn.Render("! mesh failed")
	default:
		return t.Err.Render("✗ failed")
	}
}

func renderItemLine(t Theme, r domain.ItemResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-10s %s", r.Name, statusBadge(t, r.Status)))

	switch r.Status {
	case domain.ItemSolved:
		mesh := "mesh " + seconds(r.Timings.Mesh)
		if r.MeshReused {
			mesh = "mesh reused"
		}
		b.WriteString(t.Subtitle.Render(fmt.Sprintf("  %s · solve %s · total %s",
			mesh, seconds(r.Timings.Solve), seconds(r.Timings.Total))))
		if r.Result != nil {
			b.WriteString(fmt.Sprintf("  Tmax %.2f K", r.Result.MaxTemperature))
		}
	case domain.ItemMeshFailed, domain.ItemFailed:
		if r.Error != nil {
			b.WriteString("  " + clampString(r.Error.Message, 100))
		}
	}
	return b.String()
}
