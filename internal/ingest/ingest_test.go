package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/jobModel"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/internal/rag"
)

type recordingRetriever struct {
	ragServiceStub

	added  []string
	failOn map[string]bool
}

func (r *recordingRetriever) AddDocument(ctx context.Context, content string, metadata json.RawMessage) (string, error) {
	if r.failOn[content] {
		return "", errors.New("insert failed")
	}
	r.added = append(r.added, content)
	return "generated-id", nil
}

func writeTempUpload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_JSONArray(t *testing.T) {
	var records []string
	for i := 0; i < 120; i++ {
		records = append(records, fmt.Sprintf(`{"content":"doc %d","metadata":{"n":%d}}`, i, i))
	}
	path := writeTempUpload(t, "["+strings.Join(records, ",")+"]")

	retriever := &recordingRetriever{}
	tracker := NewStatusTracker()
	pipeline := NewPipeline(retriever, tracker)

	result := pipeline.Run(context.Background(), jobModel.Job{Id: "j1", FileName: "kb.json", FilePath: path})

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("status got %v", result.Status)
	}
	if len(retriever.added) != 120 {
		t.Errorf("expected 120 documents stored, got %d", len(retriever.added))
	}

	status := tracker.Snapshot()
	if status.IsProcessing {
		t.Error("import should be marked finished")
	}
	if status.TotalDocuments != 120 || status.ProcessedDocuments != 120 || status.Errors != 0 {
		t.Errorf("status got %+v", status)
	}
	if status.CurrentFile != "kb.json" {
		t.Errorf("current file got %q", status.CurrentFile)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temp file should be removed after the run")
	}
}

func TestRun_NDJSONWithBadLines(t *testing.T) {
	path := writeTempUpload(t, strings.Join([]string{
		`{"content":"first"}`,
		`not json at all`,
		``,
		`{"content":"second","metadata":{"source":"writeup"}}`,
		`{"metadata":{"no":"content"}}`,
	}, "\n"))

	retriever := &recordingRetriever{}
	tracker := NewStatusTracker()

	result := NewPipeline(retriever, tracker).Run(context.Background(),
		jobModel.Job{Id: "j2", FileName: "kb.ndjson", FilePath: path})

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("status got %v", result.Status)
	}
	if len(retriever.added) != 2 {
		t.Errorf("expected 2 documents stored, got %v", retriever.added)
	}

	status := tracker.Snapshot()
	if status.Errors != 2 {
		t.Errorf("expected 2 parse errors counted, got %d", status.Errors)
	}
	if status.ProcessedDocuments != 2 {
		t.Errorf("processed got %d", status.ProcessedDocuments)
	}
}

func TestRun_StoreFailuresAreCounted(t *testing.T) {
	path := writeTempUpload(t, `[{"content":"good"},{"content":"bad"},{"content":"also good"}]`)

	retriever := &recordingRetriever{failOn: map[string]bool{"bad": true}}
	tracker := NewStatusTracker()

	result := NewPipeline(retriever, tracker).Run(context.Background(),
		jobModel.Job{Id: "j3", FileName: "kb.json", FilePath: path})

	if result.Status != jobModel.JobStatusComplete {
		t.Fatalf("status got %v", result.Status)
	}
	status := tracker.Snapshot()
	if status.ProcessedDocuments != 2 || status.Errors != 1 {
		t.Errorf("status got %+v", status)
	}
}

func TestRun_UnparsableFile(t *testing.T) {
	retriever := &recordingRetriever{}
	tracker := NewStatusTracker()
	pipeline := NewPipeline(retriever, tracker)

	// a successful import first, so a stale status would be caught below
	goodPath := writeTempUpload(t, `[{"content":"a"},{"content":"b"}]`)
	good := pipeline.Run(context.Background(),
		jobModel.Job{Id: "j4a", FileName: "good.json", FilePath: goodPath})
	if good.Status != jobModel.JobStatusComplete {
		t.Fatalf("setup import status got %v", good.Status)
	}

	path := writeTempUpload(t, "this is not json\nnot even close")
	result := pipeline.Run(context.Background(),
		jobModel.Job{Id: "j4", FileName: "garbage.json", FilePath: path})

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("status got %v", result.Status)
	}
	status := tracker.Snapshot()
	if status.ProcessedDocuments != 0 {
		t.Errorf("nothing should be processed, got %d", status.ProcessedDocuments)
	}
	if status.TotalDocuments != 0 {
		t.Errorf("total should be reset for the new job, got %d", status.TotalDocuments)
	}
	if status.CurrentFile != "garbage.json" {
		t.Errorf("current file should be the failing upload, got %q", status.CurrentFile)
	}
	if status.Message == "" || status.IsProcessing {
		t.Errorf("expected a terminal failure message, got %+v", status)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("temp file should be removed even on failure")
	}
}

func TestRun_MissingFile(t *testing.T) {
	retriever := &recordingRetriever{}
	tracker := NewStatusTracker()

	result := NewPipeline(retriever, tracker).Run(context.Background(),
		jobModel.Job{Id: "j5", FileName: "gone.json", FilePath: filepath.Join(t.TempDir(), "gone.json")})

	if result.Status != jobModel.JobStatusError {
		t.Fatalf("status got %v", result.Status)
	}
}

func TestStatusTracker_SnapshotDuringRun(t *testing.T) {
	tracker := NewStatusTracker()
	tracker.Begin("big.json", 1000)
	tracker.Progress(250, 3)

	status := tracker.Snapshot()
	if !status.IsProcessing {
		t.Error("import should be in progress")
	}
	if status.ProcessedDocuments != 250 || status.Errors != 3 || status.TotalDocuments != 1000 {
		t.Errorf("status got %+v", status)
	}
}

// ragServiceStub fills out the rag.Service surface the pipeline never touches.
type ragServiceStub struct{}

func (ragServiceStub) UpdateDocument(ctx context.Context, id, content string, metadata json.RawMessage) error {
	return nil
}

func (ragServiceStub) DeleteDocument(ctx context.Context, id string) error { return nil }

func (ragServiceStub) ListDocuments(ctx context.Context, limit, offset int) ([]ragModel.DocumentSummary, int64, error) {
	return nil, 0, nil
}

func (ragServiceStub) Search(ctx context.Context, query string, topK int) ([]ragModel.RAGChunk, error) {
	return nil, nil
}

func (ragServiceStub) Mode() rag.SearchMode { return rag.LexicalSearch }
