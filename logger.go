package recipebox

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// FilterLogger records catalog filter runs.
type FilterLogger interface {
	LogRun(run FilterRunLog) error
}

// NewFilterLogFilePath returns a timestamped path under dir for a filter run log.
func NewFilterLogFilePath(dir string) string {
	return fmt.Sprintf("%s/%d.filters.json", dir, time.Now().Unix())
}

// FilterRunLog represents a single execution of the catalog filter engine.
type FilterRunLog struct {
	Generation uint64          `json:"generation,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
	Search     string          `json:"search,omitempty"`
	Category   string          `json:"category,omitempty"`
	Ingredient string          `json:"ingredient,omitempty"`
	Steps      []FilterStepLog `json:"steps,omitempty"`
	Results    int             `json:"results"`
	DurationMS int64           `json:"duration_ms"`
	Error      string          `json:"error,omitempty"`
}

// FilterStepLog represents one step (fetch, narrow or intersect) within a run.
type FilterStepLog struct {
	Name       string `json:"name"`
	Input      string `json:"input,omitempty"`
	Count      int    `json:"count"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// FileFilterLogger accumulates runs and writes them to the writer on Flush.
type FileFilterLogger struct {
	mu     sync.Mutex
	runs   []FilterRunLog
	writer io.Writer
}

// NewFileFilterLogger creates a new buffered filter logger.
func NewFileFilterLogger(writer io.Writer) *FileFilterLogger {
	return &FileFilterLogger{
		runs:   make([]FilterRunLog, 0),
		writer: writer,
	}
}

// LogRun buffers a run (does not flush immediately)
func (l *FileFilterLogger) LogRun(run FilterRunLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, run)
	return nil
}

// Flush writes all buffered runs to the writer and clears the buffer.
func (l *FileFilterLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"filter_session": map[string]any{
			"timestamp": time.Now(),
			"runs":      l.runs,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal filter log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write filter log: %w", err)
	}

	l.runs = l.runs[:0]
	return nil
}

// NoOpFilterLogger discards all runs.
type NoOpFilterLogger struct{}

func NewNoOpFilterLogger() *NoOpFilterLogger {
	return &NoOpFilterLogger{}
}

func (nop *NoOpFilterLogger) LogRun(run FilterRunLog) error {
	return nil
}

// StdoutFilterLogger writes each run as a JSON line (for Lambda/CloudWatch).
type StdoutFilterLogger struct {
	out io.Writer
}

func NewStdoutFilterLogger() *StdoutFilterLogger {
	return &StdoutFilterLogger{out: os.Stdout}
}

func (l *StdoutFilterLogger) LogRun(run FilterRunLog) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}
	fmt.Fprintln(l.out, string(data))
	return nil
}
