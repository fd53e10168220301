package worker

import (
	"context"
	"sync/atomic"
	"time"

	jobmodel "github.com/krypton-oss/kryptonsec-api/internal/domain/jobModel"
	"github.com/krypton-oss/kryptonsec-api/internal/metrics"
)

func executeJob(currentJob jobmodel.Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	logger.Debug("Processing job:", "job Id:", currentJob.Id, "traceId", currentJob.TraceId)

	currentJob.Status = jobmodel.JobStatusRunning
	currentJob = _pipeline.Run(ctx, currentJob)

	metrics.CaptureExecutionMetrics("import_job", time.Since(start))
	logger.Info("Job finished", "job Id:", currentJob.Id, "status", currentJob.Status)
}

func removeWorker(reason string) {
	atomic.AddInt64(&currentWorkerCount, -1)
	finishWorker(reason)
}

// finishWorker completes a retirement whose counter decrement already
// happened.
func finishWorker(reason string) {
	workerWaitGroup.Done()
	logger.Info("Removed worker ", "reason", reason, "workerCount", atomic.LoadInt64(&currentWorkerCount))
	metrics.DecrementActiveWorkerCount()
}
