package watch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// InstrumentState is the last known quality of one instrument.
type InstrumentState struct {
	Verdict             string    `json:"verdict"`
	State               string    `json:"state"`
	IssueCount          int       `json:"issue_count"`
	ConsecutiveDegraded int       `json:"consecutive_degraded"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
	CheckedAt           time.Time `json:"checked_at"`
}

// State is the persisted watch list.
type State struct {
	Instruments map[string]*InstrumentState `json:"instruments"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// LoadState reads the watch state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{Instruments: map[string]*InstrumentState{}}, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.Instruments == nil {
		state.Instruments = map[string]*InstrumentState{}
	}
	return &state, nil
}

// SaveState writes the watch state to a JSON file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
