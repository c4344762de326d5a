package orchestrator

import "sync"

// Aggregator owns the running label frequency table.
type Aggregator struct {
	mu    sync.Mutex
	table FrequencyTable
	index map[string]int // label -> position in table
}

func NewAggregator() *Aggregator {
	return &Aggregator{index: map[string]int{}}
}

// RecordLabel increments the label's count, appending it on first sight.
func (a *Aggregator) RecordLabel(label string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if i, ok := a.index[label]; ok {
		a.table[i].Count++
		return
	}
	a.index[label] = len(a.table)
	a.table = append(a.table, FrequencyEntry{Label: label, Count: 1})
}

// Snapshot returns a copy of the table in insertion order.
func (a *Aggregator) Snapshot() FrequencyTable {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(FrequencyTable, len(a.table))
	copy(out, a.table)
	return out
}
