package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Metrics collects counters and timings for a single run. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string]timing
}

type timing struct {
	count int64
	total time.Duration
}

type Counter struct {
	Name  string
	Value int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string]timing),
	}
}

func NoMetrics() *Metrics {
	return nil
}

// Record starts a timer; the returned func stops it.
func (x *Metrics) Record(metricName string) func() error {
	if x == nil {
		return func() error { return nil }
	}

	start := time.Now()
	return func() error {
		elapsed := time.Since(start)

		x.mu.Lock()
		defer x.mu.Unlock()
		t := x.timings[metricName]
		t.count++
		t.total += elapsed
		x.timings[metricName] = t

		return nil
	}
}

func (x *Metrics) Increment(metricName string) error {
	if x == nil {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.counters[metricName]++

	return nil
}

func (x *Metrics) Get(metricName string) int64 {
	if x == nil {
		return 0
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	return x.counters[metricName]
}

// Counters returns a snapshot sorted by name.
func (x *Metrics) Counters() []Counter {
	if x == nil {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	out := make([]Counter, 0, len(x.counters))
	for name, v := range x.counters {
		out = append(out, Counter{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Render formats counters and timings as a table.
func (x *Metrics) Render() string {
	if x == nil {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Metric", "Count", "Total time"})

	for _, c := range x.Counters() {
		tw.AppendRow(table.Row{c.Name, c.Value, ""})
	}

	x.mu.Lock()
	names := make([]string, 0, len(x.timings))
	for name := range x.timings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := x.timings[name]
		tw.AppendRow(table.Row{name, t.count, t.total.Round(time.Microsecond).String()})
	}
	x.mu.Unlock()

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})

	return tw.Render()
}
