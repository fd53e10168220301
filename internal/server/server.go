package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/internal/middleware"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

var (
	server  *http.Server
	_logger *logger_i.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logger_i.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Get("/health", middleware.HealthHandler)

	r.Router.Post("/api/auth/register", middleware.RegisterHandler)
	r.Router.Post("/api/auth/login", middleware.LoginHandler)
	r.Router.Get("/api/profile", middleware.ProfileHandler)
	r.Router.Get("/api/models", middleware.ListModelsHandler)

	r.Router.Post("/api/chat", middleware.ChatHandler)
	r.Router.Get("/api/chat/history", middleware.ListChatSessionsHandler)
	r.Router.Get("/api/chat/history/{id}", middleware.GetChatSessionHandler)
	r.Router.Delete("/api/chat/history/{id}", middleware.DeleteChatSessionHandler)

	r.Router.Post("/api/admin/documents", middleware.AddDocumentHandler)
	r.Router.Get("/api/admin/documents", middleware.ListDocumentsHandler)
	r.Router.Put("/api/admin/documents/{id}", middleware.UpdateDocumentHandler)
	r.Router.Delete("/api/admin/documents/{id}", middleware.DeleteDocumentHandler)
	r.Router.Post("/api/admin/search", middleware.SearchDocumentsHandler)

	r.Router.Post("/api/admin/upload/file", middleware.UploadFileHandler)
	r.Router.Get("/api/admin/upload/status", middleware.UploadStatusHandler)

	server = &http.Server{
		Addr:         listenAddr,
		Handler:      r.Router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	_logger.Info("Server is listening at", "address", listenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error :", err.Error(), "addr", listenAddr)
	}
}

func ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	println("\nServer is shutting down", state)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		server.SetKeepAlivesEnabled(false)

		if err := server.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully: %s", err)
		}

		//close workers
		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(shutdownParams.StopExecution)
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully is shutting down")
	case <-ctx.Done():
		_logger.Info("Force Shut down")
		os.Exit(1)
	}
}
