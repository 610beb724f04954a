package token

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"TaxLedger/internal/model"
)

// LoadState reads the token state from a JSON file. It returns nil when the
// file does not exist yet.
func LoadState(filePath string) (*model.TokenState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var state model.TokenState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", filePath, err)
	}
	return &state, nil
}

// SaveState writes the token state to a JSON file, replacing it atomically.
func SaveState(filePath string, state *model.TokenState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
