package ingest

import (
	"sync"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
)

// StatusTracker holds the state of the one in-flight bulk import. Uploads
// are serialized through the worker pool, so the tracker only ever
// describes the current run or the last finished one.
type StatusTracker struct {
	mu     sync.Mutex
	status ragModel.ImportStatus
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{}
}

func (t *StatusTracker) Begin(fileName string, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = ragModel.ImportStatus{
		TotalDocuments: total,
		IsProcessing:   true,
		CurrentFile:    fileName,
		Message:        "import in progress",
	}
}

// SetTotal records the record count once the upload has been parsed.
func (t *StatusTracker) SetTotal(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.TotalDocuments = total
}

func (t *StatusTracker) Progress(processed, errors int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.ProcessedDocuments = processed
	t.status.Errors = errors
}

func (t *StatusTracker) Finish(processed, errors int, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.ProcessedDocuments = processed
	t.status.Errors = errors
	t.status.IsProcessing = false
	t.status.Message = message
}

// Snapshot returns a copy safe to serialize while an import runs.
func (t *StatusTracker) Snapshot() ragModel.ImportStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}
