package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/domain/jobModel"
	"github.com/krypton-oss/kryptonsec-api/internal/job"
	"github.com/krypton-oss/kryptonsec-api/internal/metrics"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// Runner executes one queued import job. The ingest pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, job jobModel.Job) jobModel.Job
}

var (
	_jobService        *job.Service
	_pipeline          Runner
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	dispatcherChannel  chan bool
	currentWorkerCount int64
	logger             *logger_i.Logger
	minWorkerCount     = config.MinWorkerCount
	idleWorkerTimeout  = config.IdleWorkerTimeout
)

func InitServices(jobService *job.Service, pipeline Runner) {
	_jobService = jobService
	_pipeline = pipeline
	dispatcherChannel = jobService.DispatcherChannel
}

func InitWorkerPool(stopWorkerChan chan bool, waitGroup *sync.WaitGroup) {
	stopWorkerChannel = stopWorkerChan
	workerWaitGroup = waitGroup
	logger = logger_i.NewLogger("WorkerPool")
	logger.Info("Initializing worker pool")
	go dispatcher()
}

func dispatcher() {
	createWorker()
	logger.Info("Dispatcher started")
	for range dispatcherChannel {
		if atomic.LoadInt64(&currentWorkerCount) < config.MaxWorkerCount {
			logger.Info("Creating new worker", "WorkerCount :", currentWorkerCount)
			createWorker()
		}
	}
}

func createWorker() {
	workerWaitGroup.Add(1)
	go worker()
	atomic.AddInt64(&currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	logger.Info("Created new worker")
}

func worker() {
	for {
		select {
		case currentJob := <-_jobService.JobChannel:
			executeJob(currentJob)
			metrics.DecrementJobsInQueue()

		case <-stopWorkerChannel:
			removeWorker("Stop worker signal received")
			return

		case <-time.After(idleWorkerTimeout):
			// Worker was idle for too long. The decrement itself must keep
			// the pool at the minimum; a separate check would let two idle
			// workers retire past it at the same time.
			if atomic.AddInt64(&currentWorkerCount, -1) >= minWorkerCount {
				finishWorker("Idle worker timeout - Removed worker")
				return
			}
			atomic.AddInt64(&currentWorkerCount, 1)
		}
	}
}
