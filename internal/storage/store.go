// Package storage persists particle snapshots as run directories: a
// human-readable JSON manifest next to a gob payload holding the real
// region of every attribute array.
package storage

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/meshfree/internal/particles"
)

func init() {
	gob.Register([]float64{})
	gob.Register([]int{})
	gob.Register([]r3.Vec{})
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SnapshotMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Step      int                `json:"step"`
	Time      float64            `json:"time"`
	TotalReal int                `json:"total_real"`
	Fields    []string           `json:"fields"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes one snapshot of the store's real region and returns the
// generated run ID. Ghost and buffer slots are not persisted; a
// restored run rebuilds them from its boundaries.
func (s *Store) Save(scenario string, step int, t float64, st *particles.Store, metrics map[string]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := SnapshotMetadata{
		ID:        runID,
		Scenario:  scenario,
		Timestamp: time.Now(),
		Step:      step,
		Time:      t,
		TotalReal: st.TotalReal(),
		Fields:    st.FieldNames(),
		Metrics:   metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	payload, err := os.Create(filepath.Join(runDir, "particles.gob"))
	if err != nil {
		return "", err
	}
	defer payload.Close()

	if err := gob.NewEncoder(payload).Encode(st.ExportReal()); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) List() ([]SnapshotMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SnapshotMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]SnapshotMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta SnapshotMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*SnapshotMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta SnapshotMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Restore loads a snapshot back into st. Every persisted field must
// already be registered with a matching type; the caller recreates the
// store the same way the original run did before restoring.
func (s *Store) Restore(runID string, st *particles.Store) (*SnapshotMetadata, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	payload, err := os.Open(filepath.Join(s.baseDir, runID, "particles.gob"))
	if err != nil {
		return nil, err
	}
	defer payload.Close()

	var data map[string]any
	if err := gob.NewDecoder(payload).Decode(&data); err != nil {
		return nil, err
	}
	if err := st.ImportReal(meta.TotalReal, data); err != nil {
		return nil, err
	}
	return meta, nil
}
