// Package activity is the activity-log collaborator: it receives only the
// scalar summary of each analysis and appends it to a JSONL file.
package activity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/croplens/croplens/internal/properties"
)

// Summary is the scalar record handed to the log, never the full result.
type Summary struct {
	Timestamp     time.Time `json:"timestamp"`
	OverallHealth int       `json:"overallHealth"`
	ZoneCount     int       `json:"zoneCount"`
	AvgNDVI       float64   `json:"avgNdvi"`
}

// Log appends analysis summaries to a JSONL file under the data root.
type Log struct {
	path string
}

func NewLog() *Log {
	return &Log{path: filepath.Join(properties.RootPath(), "data", "activity.jsonl")}
}

// Append records one summary line.
func (l *Log) Append(s Summary) error {
	if err := os.MkdirAll(filepath.Dir(l.path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create activity folder: %w", err)
	}

	line, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open activity log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write activity entry: %w", err)
	}
	return nil
}

// Recent returns up to n of the most recent summaries, newest last.
func (l *Log) Recent(n int) ([]Summary, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}

	var all []Summary
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		var s Summary
		if err := json.Unmarshal(line, &s); err != nil {
			continue
		}
		all = append(all, s)
	}

	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}
