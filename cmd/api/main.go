// @title           KryptonSec API
// @version         1.0
// @description     RAG-backed cybersecurity mentor chat with knowledge base management
// @host      localhost:8080
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/krypton-oss/kryptonsec-api/internal/chat"
	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/data/postgres"
	"github.com/krypton-oss/kryptonsec-api/internal/data/store"
	jobmodel "github.com/krypton-oss/kryptonsec-api/internal/domain/jobModel"
	"github.com/krypton-oss/kryptonsec-api/internal/handlers"
	"github.com/krypton-oss/kryptonsec-api/internal/ingest"
	"github.com/krypton-oss/kryptonsec-api/internal/job"
	"github.com/krypton-oss/kryptonsec-api/internal/rag"
	"github.com/krypton-oss/kryptonsec-api/internal/rag/embedding"
	"github.com/krypton-oss/kryptonsec-api/internal/rag/llm/openrouter"
	"github.com/krypton-oss/kryptonsec-api/internal/server"
	"github.com/krypton-oss/kryptonsec-api/internal/worker"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	_ = godotenv.Load()

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//postgres is the system of record, no degraded mode without it
	pool, err := postgres.Connect(serviceContext)
	if err != nil {
		logger.Error("Postgres unavailable. Shutting down.", "error", err)
		return
	}
	if err := postgres.Bootstrap(serviceContext, pool); err != nil {
		logger.Error("Schema bootstrap failed. Shutting down.", "error", err)
		return
	}

	documentStore := postgres.NewDocumentStore(pool)
	sessionStore := postgres.NewSessionStore(pool)
	userStore := postgres.NewUserStore(pool)
	modelStore := postgres.NewModelStore(pool)

	//search cache is optional, nil just disables it
	searchCache := store.GetRedisSearchCache(serviceContext)
	if searchCache == nil {
		logger.Warn("Redis offline, search caching disabled")
	}

	//embedding is optional too: without the local model every query runs
	//through the lexical fallback
	var embedder embedding.Embedder
	if miniLM, err := embedding.NewMiniLMEmbedder(config.EmbeddingModelPath()); err != nil {
		logger.Warn("Embedding model unavailable, using lexical search", "error", err)
	} else {
		embedder = miniLM
		defer miniLM.Close()
	}

	ragService := rag.NewService(documentStore, normalizeCache(searchCache), embedder)

	llmProvider := openrouter.GetOpenRouterClient(config.OpenRouterAPIKey())
	if llmProvider == nil {
		logger.Error("Completion provider failed to initialize. Shutting down.")
		return
	}

	orchestrator := chat.NewOrchestrator(sessionStore, userStore, ragService, llmProvider)

	tracker := ingest.NewStatusTracker()
	pipeline := ingest.NewPipeline(ragService, tracker)

	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	})

	handlers.InitHandlers(handlers.HandlerConfig{
		Users:        userStore,
		Models:       modelStore,
		Orchestrator: orchestrator,
		Retriever:    ragService,
		JobService:   jobService,
		Tracker:      tracker,
	})

	//init worker pool
	worker.InitServices(jobService, pipeline)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

// normalizeCache keeps the nil check in one place: a nil *RedisSearchCache
// must become a nil interface before it reaches the retrieval engine.
func normalizeCache(cache *store.RedisSearchCache) rag.SearchCache {
	if cache == nil {
		return nil
	}
	return cache
}
