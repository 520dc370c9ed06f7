package config

import (
	"os"
	"time"
)

const (
	IsProd       = false
	TraceIDKey   = "traceId"
	UserIDKey    = "userId"
	ServerListen = ":3000"

	RateLimitPerSecond      = 2
	BurstRateLimitPerSecond = 5

	// server timeouts
	ReadTimeout            = 5 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	// WriteTimeout must outlive a whole completion stream, not a single write.
	WriteTimeout = 120 * time.Second

	// ingestion queue
	IngestBufferLimit = 100
	IngestJobTimeout  = 5 * time.Minute

	// worker pool
	MaxWorkerCount    int64 = 10
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute

	// vector index
	QdrantHost            = "127.0.0.1"
	QdrantGrpcPort        = 6334
	QdrantUseTLS          = false
	QdrantPoolSize        = 1
	VectorCollection      = "paperchat-docs"
	VectorDimensions      = 1536
	RetrievalTopK         = 4
	NamespacePayloadField = "doc_id"

	// chat
	ChatHistoryWindow = 6
	ChatModel         = "gpt-3.5-turbo"
	EmbeddingModel    = "text-embedding-3-small"
	GeminiChatModel   = "gemini-2.5-flash-lite-preview-09-2025"
	GeminiEmbedModel  = "gemini-embedding-001"
	// Temperature 0 keeps answers reproducible against the same context.
	ChatTemperature float64 = 0

	// message pagination
	MessagePageLimit    = 10
	MessagePageLimitMax = 100

	// redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	// redis has 16 DBs, keep sessions and status apart
	RedisSessionDB = 0
	RedisStatusDB  = 1

	RedisStatusTTL  = 1 * time.Hour
	SessionKeyspace = "session:"

	// object storage fetch
	FetchTimeout = 30 * time.Second
	MaxDocBytes  = 32 << 20

	// http client pooling for the URL fetcher
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
)

// Env returns the environment value for key or the fallback.
func Env(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func OpenAIAPIKey() string  { return os.Getenv("OPENAI_API_KEY") }
func GeminiAPIKey() string  { return os.Getenv("GEMINI_API_KEY") }
func DatabaseURL() string   { return os.Getenv("DATABASE_URL") }
func LLMProvider() string   { return Env("LLM_PROVIDER", "openai") }
func UploadsBucket() string { return os.Getenv("UPLOADS_S3_BUCKET") }
