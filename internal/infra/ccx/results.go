package ccx

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

// ParseTemperatures reads the NT blocks of a .dat file and summarizes the
// last one. Blocks look like:
//
//	temperatures (NT ) for set NALL and time  0.6000000E+02
//
//	         1   3.0012000E+02
func ParseTemperatures(r io.Reader) (domain.ResultSummary, error) {
	var (
		sum     domain.ResultSummary
		inBlock bool
		found   bool
	)
	reset := func(t float64) {
		sum = domain.ResultSummary{
			FinalTime:      t,
			MaxTemperature: math.Inf(-1),
			MinTemperature: math.Inf(1),
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "temperatures") {
			t, err := blockTime(line)
			if err != nil {
				return domain.ResultSummary{}, err
			}
			reset(t)
			inBlock, found = true, true
			continue
		}
		if !inBlock {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 2 {
			inBlock = false
			continue
		}
		if _, err := strconv.Atoi(f[0]); err != nil {
			inBlock = false
			continue
		}
		v, err := strconv.ParseFloat(f[1], 64)
		if err != nil {
			return domain.ResultSummary{}, fmt.Errorf("invalid temperature %q", f[1])
		}
		sum.NodeCount++
		sum.MaxTemperature = math.Max(sum.MaxTemperature, v)
		sum.MinTemperature = math.Min(sum.MinTemperature, v)
	}
	if err := sc.Err(); err != nil {
		return domain.ResultSummary{}, err
	}
	if !found || sum.NodeCount == 0 {
		return domain.ResultSummary{}, fmt.Errorf("no nodal temperatures in solver output")
	}
	return sum, nil
}

func blockTime(line string) (float64, error) {
	i := strings.LastIndex(line, "time")
	if i < 0 {
		return 0, fmt.Errorf("temperature block without time: %q", line)
	}
	s := strings.TrimSpace(line[i+len("time"):])
	t, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid block time %q", s)
	}
	return t, nil
}
