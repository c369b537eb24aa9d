package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// PhaseResult is the timing of one workload phase.
type PhaseResult struct {
	Name       string  `json:"name"`
	Operations int     `json:"operations"`
	NsPerOp    float64 `json:"ns_per_op"`
}

// Summary is the report written at the end of a run.
type Summary struct {
	RunID     string `json:"run_id"`
	Timestamp string `json:"timestamp"`
	GoVersion string `json:"go_version"`
	KeyKind   string `json:"key_kind"`
	Hash      string `json:"hash"`
	Keys      int    `json:"keys"`

	Phases []PhaseResult `json:"phases"`

	RemainingLen int `json:"remaining_len"`
	RemainingCap int `json:"remaining_cap"`
	FinalLen     int `json:"final_len"`
	FinalCap     int `json:"final_cap"`
	PeakCap      int `json:"peak_cap"`
	Resizes      int `json:"resizes"`
	Released     int `json:"released"`

	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// CreateTimestamp returns a formatted timestamp for reports
func CreateTimestamp() string {
	return time.Now().Format(time.RFC3339)
}

func memoryStats() map[string]float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return map[string]float64{
		"alloc_mb": float64(m.Alloc) / (1024 * 1024),
		"sys_mb":   float64(m.Sys) / (1024 * 1024),
	}
}

// Write encodes s as indented JSON.
func (s *Summary) Write(w io.Writer) error {
	if s.RunID == "" {
		s.RunID = uuid.NewString()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// WriteFile writes s to path, or to stdout when path is empty.
func (s *Summary) WriteFile(path string) error {
	if path == "" {
		return s.Write(os.Stdout)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := s.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
