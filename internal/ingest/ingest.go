package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/jobModel"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/ragModel"
	"github.com/krypton-oss/kryptonsec-api/internal/metrics"
	"github.com/krypton-oss/kryptonsec-api/internal/rag"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// Pipeline turns an uploaded knowledge file into documents. A file is
// either one JSON array of records or NDJSON with one record per line.
type Pipeline struct {
	retriever rag.Service
	tracker   *StatusTracker
	logger    *logger_i.Logger
}

func NewPipeline(retriever rag.Service, tracker *StatusTracker) *Pipeline {
	return &Pipeline{
		retriever: retriever,
		tracker:   tracker,
		logger:    logger_i.NewLogger("Document Ingestion "),
	}
}

// Run processes the job's temp file end to end. The file is removed
// afterwards regardless of outcome. Per-record failures are counted and
// skipped; only an unreadable file fails the whole job.
func (p *Pipeline) Run(ctx context.Context, job jobModel.Job) jobModel.Job {
	log := p.logger.With("traceId", job.TraceId, "filename", job.FileName)
	defer func() {
		if err := os.Remove(job.FilePath); err != nil && !os.IsNotExist(err) {
			log.Error("Error removing temp file", "error", err)
		}
	}()

	// reset the status before touching the file so pollers never see the
	// previous run's counts against this job's filename
	p.tracker.Begin(job.FileName, 0)

	raw, err := os.ReadFile(job.FilePath)
	if err != nil {
		log.Error("Error reading upload", "error", err)
		p.tracker.Finish(0, 0, "import failed: could not read uploaded file")
		job.Status = jobModel.JobStatusError
		return job
	}

	records, parseErrors := decodeRecords(raw)
	if len(records) == 0 {
		log.Error("No parsable records in upload", "parseErrors", parseErrors)
		p.tracker.Finish(0, parseErrors, "import failed: no parsable records")
		job.Status = jobModel.JobStatusError
		return job
	}

	p.tracker.SetTotal(len(records))
	log.Info("Starting import", "records", len(records), "parseErrors", parseErrors)

	processed := 0
	failed := parseErrors
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			log.Error("Import cancelled", "error", err)
			p.tracker.Finish(processed, failed, "import cancelled during shutdown")
			job.Status = jobModel.JobStatusError
			return job
		}

		if _, err := p.retriever.AddDocument(ctx, record.Content, record.Metadata); err != nil {
			log.Error("Error storing record", "index", i, "error", err)
			failed++
			metrics.CountImportedDocument("error")
		} else {
			processed++
			metrics.CountImportedDocument("ok")
		}

		if (i+1)%config.ImportProgressInterval == 0 {
			p.tracker.Progress(processed, failed)
		}
	}

	p.tracker.Finish(processed, failed,
		fmt.Sprintf("imported %d of %d documents", processed, len(records)))
	log.Info("Import finished", "processed", processed, "failed", failed)

	job.Status = jobModel.JobStatusComplete
	return job
}

// decodeRecords tries the whole payload as a JSON array first, then
// falls back to line-delimited records. The second return value counts
// lines that failed to parse in NDJSON mode.
func decodeRecords(raw []byte) ([]ragModel.ImportRecord, int) {
	var records []ragModel.ImportRecord
	if err := json.Unmarshal(raw, &records); err == nil {
		return records, 0
	}

	parseErrors := 0
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record ragModel.ImportRecord
		if err := json.Unmarshal(line, &record); err != nil || record.Content == "" {
			parseErrors++
			continue
		}
		records = append(records, record)
	}
	return records, parseErrors
}
