package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/paperchat/paperchat/internal/config"
	"github.com/paperchat/paperchat/internal/data/store"
	"github.com/paperchat/paperchat/internal/handlers"
	"github.com/paperchat/paperchat/internal/job"
	"github.com/paperchat/paperchat/internal/middleware"
	"github.com/paperchat/paperchat/internal/objstore"
	"github.com/paperchat/paperchat/internal/rag/chat"
	"github.com/paperchat/paperchat/internal/rag/embedding"
	"github.com/paperchat/paperchat/internal/rag/embedding/googleEmbedding"
	"github.com/paperchat/paperchat/internal/rag/embedding/openaiEmbedding"
	"github.com/paperchat/paperchat/internal/rag/ingest"
	"github.com/paperchat/paperchat/internal/rag/llm"
	"github.com/paperchat/paperchat/internal/rag/llm/gemini"
	"github.com/paperchat/paperchat/internal/rag/llm/openaiLLM"
	"github.com/paperchat/paperchat/internal/rag/vectorDB/qdrantDB"
	"github.com/paperchat/paperchat/internal/server"
	"github.com/paperchat/paperchat/internal/worker"
	"github.com/paperchat/paperchat/pkg/logx"
)

var (
	listenAddr        string
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	_ = godotenv.Load()
	logx.Init(config.IsProd)
	var logger = logx.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListen, "server listen address")
	flag.Parse()

	//init buffered ingest channel
	jobChannel := make(chan job.IngestJob, config.IngestBufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	docs, msgs := openStores(serviceContext, logger)
	docs = store.WrapWithStatusCache(serviceContext, docs)

	var sessions store.SessionStore
	if redisSessions := store.GetRedisSessionStore(serviceContext); redisSessions != nil {
		sessions = redisSessions
	} else {
		logger.Error("Redis session store is offline, falling back to memory")
		sessions = store.InitInMemorySessionStore()
	}

	vectorIndex := qdrantDB.GetQdrantClient(serviceContext)
	embedder, llmProvider := buildProviders(serviceContext)

	if vectorIndex == nil || embedder == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorIndex != nil, "Embedder", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}
	if err := vectorIndex.EnsureReady(serviceContext); err != nil {
		logger.Error("Vector index is not ready", "error", err)
		return
	}

	ingestPipeline := ingest.NewPipeline(buildFetcher(serviceContext, logger), embedder, vectorIndex, docs)
	chatPipeline := chat.NewPipeline(docs, msgs, embedder, vectorIndex, llmProvider)

	jobService := job.InitJobService(job.ServiceConfig{
		JobChannel:        jobChannel,
		DispatcherChannel: dispatcherChannel,
	})

	handlers.Init(handlers.Deps{
		Documents: docs,
		Messages:  msgs,
		IngestJob: jobService,
		Chat:      chatPipeline,
		Index:     vectorIndex,
	})
	middleware.InitAuth(sessions)

	//init worker pool
	worker.InitServices(jobService, ingestPipeline)
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

// openStores connects to Postgres; without a DATABASE_URL (or when the
// database is down) everything runs on the in-memory stores, which is enough
// for local development.
func openStores(ctx context.Context, logger *logx.Logger) (store.DocumentStore, store.MessageStore) {
	url := config.DatabaseURL()
	if url == "" {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		return store.InitInMemoryDocumentStore(), store.InitInMemoryMessageStore()
	}

	db, err := store.OpenPostgres(ctx, url)
	if err != nil {
		logger.Error("Postgres unavailable, using in-memory stores", "error", err)
		return store.InitInMemoryDocumentStore(), store.InitInMemoryMessageStore()
	}
	return store.NewPGDocumentStore(db), store.NewPGMessageStore(db)
}

func buildProviders(ctx context.Context) (embedding.Embedder, llm.Provider) {
	if config.LLMProvider() == "gemini" {
		key := config.GeminiAPIKey()
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, key), gemini.GetGeminiClient(ctx, key)
	}
	key := config.OpenAIAPIKey()
	return openaiEmbedding.GetOpenAIEmbeddingClient(key), openaiLLM.GetOpenAILLMClient(key)
}

func buildFetcher(ctx context.Context, logger *logx.Logger) objstore.Fetcher {
	if config.UploadsBucket() != "" {
		fetcher, err := objstore.NewS3Fetcher(ctx)
		if err == nil {
			return fetcher
		}
		logger.Error("S3 fetcher unavailable, falling back to HTTP", "error", err)
	}
	return objstore.NewHTTPFetcher()
}
