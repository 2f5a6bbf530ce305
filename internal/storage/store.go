// Package storage keeps finished runs on disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/reactorsim/internal/config"
	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/experiment"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrNoTrajectory = errors.New("storage: run has no trajectory")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Dataset    string    `json:"dataset"`
	Timestamp  time.Time `json:"timestamp"`
	Integrator string    `json:"integrator"`

	Status      experiment.Status  `json:"status"`
	Message     string             `json:"message"`
	Samples     int                `json:"samples"`
	Elapsed     time.Duration      `json:"elapsed_ns"`
	Stats       dynamo.Stats       `json:"stats"`
	Diagnostics experiment.Summary `json:"diagnostics"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`

	Config *config.Config `json:"config,omitempty"`
}

// Save writes the metadata of out and, when it converged, its trajectory.
func (s *Store) Save(name, dataset string, cfg *config.Config, out *experiment.Outcome) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Name:        name,
		Dataset:     dataset,
		Timestamp:   now,
		Integrator:  out.Integrator,
		Status:      out.Status,
		Message:     out.Message,
		Elapsed:     out.Elapsed,
		Stats:       out.Stats,
		Diagnostics: out.Diagnostics,
		Metrics:     finite(out.Metrics),
		Config:      cfg,
	}
	if out.Trajectory != nil {
		meta.Samples = out.Trajectory.Len()
		if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), out.Trajectory); err != nil {
			return "", err
		}
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return runID, metaFile.Close()
}

func writeTrajectory(path string, tr *experiment.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, tr); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*experiment.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoTrajectory, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	if len(records) == 0 || len(records[0]) < 1 || records[0][0] != "time" {
		return nil, fmt.Errorf("storage: %s: missing header", runID)
	}

	header := records[0]
	rows := records[1:]
	tr := &experiment.Trajectory{
		Time:   make([]float64, len(rows)),
		Series: make([]experiment.Series, len(header)-1),
	}
	for j := range tr.Series {
		tr.Series[j] = experiment.Series{Name: header[j+1], Values: make([]float64, len(rows))}
	}

	for i, rec := range rows {
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s: row %d: %w", runID, i+2, err)
			}
			if j == 0 {
				tr.Time[i] = v
			} else {
				tr.Series[j-1].Values[i] = v
			}
		}
	}
	return tr, nil
}
