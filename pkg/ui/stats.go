package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// fetchStats accumulates child-fetch latencies for the stats overlay.
type fetchStats struct {
	samples []float64 // milliseconds
	errors  int
}

func (f *fetchStats) record(elapsed time.Duration) {
	f.samples = append(f.samples, float64(elapsed)/float64(time.Millisecond))
}

func (f *fetchStats) recordError() {
	f.errors++
}

func (f *fetchStats) count() int { return len(f.samples) }

// summary computes mean, p50 and p95 over the recorded latencies.
func (f *fetchStats) summary() (mean, p50, p95 float64, ok bool) {
	if len(f.samples) == 0 {
		return 0, 0, 0, false
	}
	sorted := make([]float64, len(f.samples))
	copy(sorted, f.samples)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	p95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return mean, p50, p95, true
}

// render produces the stats overlay body.
func (f *fetchStats) render(width int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Fetch latency"))
	b.WriteString("\n")
	b.WriteString(RenderDivider(clamp(width-4, 10, 60)))
	b.WriteString("\n")

	mean, p50, p95, ok := f.summary()
	if !ok {
		b.WriteString(StatusStyle.Render("no fetches yet"))
		return b.String()
	}
	b.WriteString(fmt.Sprintf("fetches  %d\n", f.count()))
	b.WriteString(fmt.Sprintf("errors   %d\n", f.errors))
	b.WriteString(fmt.Sprintf("mean     %.1f ms\n", mean))
	b.WriteString(fmt.Sprintf("p50      %.1f ms\n", p50))
	b.WriteString(fmt.Sprintf("p95      %.1f ms", p95))
	return b.String()
}
