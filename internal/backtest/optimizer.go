package backtest

import (
	"math"
	"sort"

	"github.com/samber/lo"
	lop "github.com/samber/lo/parallel"
)

// Range is an inclusive grid over one strategy parameter.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// DefaultMaxCandidates bounds the grid when the caller sets no limit.
const DefaultMaxCandidates = 10000

// points counts the grid values without building them. It reports false for
// ranges that are empty, non-finite, or whose step vanishes next to Min.
func (r Range) points() (int, bool) {
	for _, v := range []float64{r.Min, r.Max, r.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
	}
	if r.Step <= 0 || r.Max < r.Min || r.Min+r.Step == r.Min {
		return 0, false
	}
	// half a step of slack keeps Max inside the grid despite float drift
	n := math.Floor((r.Max-r.Min)/r.Step+0.5) + 1
	if n <= 0 || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// values builds the grid by index so the count matches points.
func (r Range) values(n int) []float64 {
	return lo.Times(n, func(i int) float64 {
		return r.Min + float64(i)*r.Step
	})
}

// Candidate is one evaluated parameter combination.
type Candidate struct {
	Parameters  map[string]float64 `json:"parameters"`
	TotalReturn float64            `json:"total_return"`
	WinRate     float64            `json:"win_rate"`
	MaxDrawdown float64            `json:"max_drawdown"`
	TotalTrades int                `json:"total_trades"`
}

type OptimizeResult struct {
	Best      *Candidate  `json:"best"`
	Top       []Candidate `json:"top"`
	Evaluated int         `json:"evaluated"`
	Skipped   int         `json:"skipped"`
}

// Optimize grid-searches the given parameter ranges on top of base. Every
// candidate is an isolated run; candidates are evaluated in parallel. Grids
// larger than maxCandidates are rejected, invalid combinations are skipped.
func Optimize(bars []Bar, base Strategy, ranges map[string]Range, opts Options, maxCandidates, top int) (*OptimizeResult, error) {
	if _, err := base.Config(); err != nil {
		return nil, err
	}
	if len(ranges) == 0 {
		return nil, invalid("ranges", "must name at least one parameter")
	}

	names := lo.Keys(ranges)
	sort.Strings(names)

	limit := maxCandidates
	if limit <= 0 {
		limit = DefaultMaxCandidates
	}
	counts := make(map[string]int, len(names))
	total := 1
	for _, name := range names {
		if _, known := DefaultParameters[name]; !known {
			return nil, invalid(name, "is not a tunable parameter")
		}
		n, ok := ranges[name].points()
		if !ok {
			return nil, invalid(name, "range needs finite bounds, max >= min and a step > 0 that moves min")
		}
		if n > limit/total {
			return nil, invalid("ranges", "grid exceeds %d candidates", limit)
		}
		total *= n
		counts[name] = n
	}

	grid := []map[string]float64{{}}
	for _, name := range names {
		vals := ranges[name].values(counts[name])
		next := make([]map[string]float64, 0, len(grid)*len(vals))
		for _, g := range grid {
			for _, v := range vals {
				params := lo.Assign(g, map[string]float64{name: v})
				next = append(next, params)
			}
		}
		grid = next
	}

	type evaluation struct {
		candidate Candidate
		ok        bool
	}
	evaluations := lop.Map(grid, func(params map[string]float64, _ int) evaluation {
		strategy := base.WithParameters(params)
		cfg, err := strategy.Config()
		if err != nil {
			return evaluation{}
		}
		res := RunConfig(bars, strategy, cfg, opts)
		return evaluation{
			ok: true,
			candidate: Candidate{
				Parameters:  strategy.Parameters,
				TotalReturn: res.TotalReturn,
				WinRate:     res.WinRate,
				MaxDrawdown: res.MaxDrawdown,
				TotalTrades: res.TotalTrades,
			},
		}
	})

	valid := lo.FilterMap(evaluations, func(e evaluation, _ int) (Candidate, bool) {
		return e.candidate, e.ok
	})
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].TotalReturn != valid[j].TotalReturn {
			return valid[i].TotalReturn > valid[j].TotalReturn
		}
		return valid[i].MaxDrawdown < valid[j].MaxDrawdown
	})

	out := &OptimizeResult{
		Evaluated: len(valid),
		Skipped:   len(grid) - len(valid),
		Top:       valid,
	}
	if top > 0 && len(out.Top) > top {
		out.Top = out.Top[:top]
	}
	if len(valid) > 0 {
		best := valid[0]
		out.Best = &best
	}
	return out, nil
}
