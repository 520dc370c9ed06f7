package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/paperchat/paperchat/internal/adapter/utils"
	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/middleware"
	"github.com/paperchat/paperchat/pkg/logx"
)

var (
	server  *http.Server
	_logger *logx.Logger
)

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

func CreateServer(listenAddr string) {
	_logger = logx.NewLogger("Server")

	r := utils.GetRouter()

	r.Router.Post("/api/files", middleware.RegisterFileHandler)
	r.Router.Get("/api/files", middleware.ListFilesHandler)
	r.Router.Get("/api/files/{id}", middleware.GetFileHandler)
	r.Router.Delete("/api/files/{id}", middleware.DeleteFileHandler)
	r.Router.Get("/api/files/{id}/status", middleware.GetStatusHandler)
	r.Router.Get("/api/files/{id}/messages", middleware.GetMessagesHandler)
	r.Router.Post("/api/message", middleware.SendMessageHandler)
	r.Router.Get("/healthz", middleware.HealthHandler)

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
			_logger.Error("Could not shutdown gracefully", "error", err)
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
