package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Schema versions of the JSON artifacts. Loaders refuse anything else so a
// re-run of a single stage never reads a file written by an incompatible
// build.
const (
	StateSchemaVersion     = 1
	MusicInfoSchemaVersion = 1
)

// NewPipelineState starts a fresh record for keyword.
func NewPipelineState(keyword string) *PipelineState {
	return &PipelineState{
		SchemaVersion: StateSchemaVersion,
		RunID:         uuid.NewString(),
		Keyword:       keyword,
		CreatedAt:     time.Now().UTC(),
	}
}

// SaveState writes the state record into outputDir, replacing any previous
// run.
func SaveState(outputDir string, state *PipelineState) error {
	state.SchemaVersion = StateSchemaVersion
	if err := writeJSON(filepath.Join(outputDir, StateFile), state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// LoadState reads the state record from outputDir.
func LoadState(outputDir string) (*PipelineState, error) {
	path := filepath.Join(outputDir, StateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	var state PipelineState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if state.SchemaVersion != StateSchemaVersion {
		return nil, fmt.Errorf("%s has schema version %d, want %d", path, state.SchemaVersion, StateSchemaVersion)
	}
	return &state, nil
}

// SaveMusicInfo writes music_info.json into outputDir.
func SaveMusicInfo(outputDir string, info *MusicInfo) error {
	info.SchemaVersion = MusicInfoSchemaVersion
	if err := writeJSON(filepath.Join(outputDir, MusicInfoFile), info); err != nil {
		return fmt.Errorf("failed to save music info: %w", err)
	}
	return nil
}

// LoadMusicInfo reads music_info.json from outputDir.
func LoadMusicInfo(outputDir string) (*MusicInfo, error) {
	path := filepath.Join(outputDir, MusicInfoFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info MusicInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if info.SchemaVersion != MusicInfoSchemaVersion {
		return nil, fmt.Errorf("%s has schema version %d, want %d", path, info.SchemaVersion, MusicInfoSchemaVersion)
	}
	return &info, nil
}
