// Package watch remembers the last quality verdict of every instrument so
// alerts fire on change rather than on every run.
package watch

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"PriceSentinel/internal/model"
	"PriceSentinel/internal/pipeline"
)

// Transition describes how an instrument's quality moved between two runs.
type Transition struct {
	Symbol    string
	From      string // empty on the first observation
	To        string
	FromState string
	ToState   string
	Worsened  bool
	Improved  bool
}

// Changed reports whether the verdict or the render state differs from the previous run.
func (t Transition) Changed() bool { return t.From != t.To || t.FromState != t.ToState }

func stateRank(s string) int {
	switch pipeline.State(s) {
	case pipeline.StateRenderable:
		return 0
	case pipeline.StateDegraded:
		return 1
	default:
		return 2
	}
}

// Manager tracks per-instrument state with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *State
	filePath string
}

// NewManager creates a Manager, loading state from disk. An empty filePath keeps state in memory only.
func NewManager(filePath string) (*Manager, error) {
	state := &State{Instruments: map[string]*InstrumentState{}}
	if filePath != "" {
		loaded, err := LoadState(filePath)
		if err != nil {
			return nil, err
		}
		state = loaded
	}
	return &Manager{state: state, filePath: filePath}, nil
}

// Observe records the outcome of a pipeline run and returns the transition.
func (m *Manager) Observe(symbol string, verdict model.Verdict, renderState string, issueCount int, at time.Time) Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.entry(symbol)
	from, fromState := st.Verdict, st.State

	st.Verdict = string(verdict)
	st.State = renderState
	st.IssueCount = issueCount
	st.ConsecutiveFailures = 0
	st.LastError = ""
	st.CheckedAt = at
	if verdict == model.VerdictPoor || verdict == model.VerdictNoData || pipeline.State(renderState) == pipeline.StateNoData {
		st.ConsecutiveDegraded++
	} else {
		st.ConsecutiveDegraded = 0
	}
	m.save()

	t := Transition{Symbol: symbol, From: from, To: string(verdict), FromState: fromState, ToState: renderState}
	if from != "" {
		prev, next := model.Verdict(from).Rank(), verdict.Rank()
		if prev == next {
			prev, next = stateRank(fromState), stateRank(renderState)
		}
		t.Worsened = next > prev
		t.Improved = next < prev
	}
	return t
}

// ObserveFailure records a failed fetch and returns the consecutive failure count.
func (m *Manager) ObserveFailure(symbol string, err error, at time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.entry(symbol)
	st.ConsecutiveFailures++
	st.LastError = err.Error()
	st.CheckedAt = at
	m.save()
	return st.ConsecutiveFailures
}

// Get returns a copy of one instrument's state.
func (m *Manager) Get(symbol string) (InstrumentState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.state.Instruments[symbol]
	if !ok {
		return InstrumentState{}, false
	}
	return *st, true
}

// Symbols returns the tracked instruments in sorted order.
func (m *Manager) Symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.state.Instruments))
	for s := range m.state.Instruments {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) entry(symbol string) *InstrumentState {
	st, ok := m.state.Instruments[symbol]
	if !ok {
		st = &InstrumentState{}
		m.state.Instruments[symbol] = st
	}
	return st
}

func (m *Manager) save() {
	if m.filePath == "" {
		return
	}
	if err := SaveState(m.filePath, m.state); err != nil {
		log.Error().Err(err).Str("path", m.filePath).Msg("save watch state")
	}
}
