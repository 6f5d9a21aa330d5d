// Package auditlog appends one self-contained JSON record per line to
// a log file. The logs are write-only at runtime; nothing in the
// service reads them back.
package auditlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmmjam/taptap/internal/model"
)

type Writer struct {
	path string
	mu   sync.Mutex
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

type submissionRecord struct {
	UserID      int64     `json:"user_id"`
	DisplayName string    `json:"name"`
	Room        string    `json:"room"`
	Emotion     string    `json:"emotion"`
	Timestamp   time.Time `json:"timestamp"`
}

// Submission records one completed result submission.
func (w *Writer) Submission(code model.RoomCode, r model.Result) error {
	return w.append(submissionRecord{
		UserID:      int64(r.UserID),
		DisplayName: r.DisplayName,
		Room:        string(code),
		Emotion:     string(r.Emotion),
		Timestamp:   r.SubmittedAt,
	})
}

// Record appends an arbitrary already-shaped record, used by the
// dataset endpoint.
func (w *Writer) Record(v any) error {
	return w.append(v)
}

func (w *Writer) append(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(line)
	return err
}
