package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo

	TRACE_ID_KEY = "traceId"
	USER_KEY     = "authUser"

	RATE_LIMIT_PER_SECOND       = 5
	BURST_RATE_LIMIT_PER_SECOND = 10

	//server
	ServerListenAddr       = ":8080"
	ReadTimeout            = 300 * time.Second //bulk uploads can be large
	WriteTimeout           = 90 * time.Second //chat turns wait on the completion provider
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//embeddings - all-MiniLM-L6-v2 exported to ONNX
	EmbeddingDimensions    = 384
	EmbeddingMaxTokens     = 256
	DefaultEmbeddingModel  = "fastembed_cache/all-MiniLM-L6-v2.onnx"
	LexicalFallbackScore   = 0.5

	//retrieval
	RAGTopK          = 3
	SearchCacheTTL   = 1 * time.Hour
	RedisSearchCache = 0 //redis DB index

	//completion provider
	OpenRouterBaseURL     = "https://openrouter.ai/api/v1"
	OpenRouterReferer     = "https://github.com/Krypton-OSS/KryptonSecAI"
	OpenRouterTitle       = "KryptonSecAI"
	DefaultChatModel      = "deepseek/deepseek-r1-0528:free"
	MaxCompletionTokens   = 80000
	ChatCompletionTimeout = 60 * time.Second

	//chat
	SessionTitleLimit = 30

	//auth
	TokenTTL   = 24 * time.Hour
	BcryptCost = 10

	//ingestion
	BufferLimit            = 16 //queued import jobs before upload requests block
	ImportProgressInterval = 25 //records between import status publications
	UploadMaxBytes         = 512 << 20

	//worker pool
	MaxWorkerCount    int64 = 4
	MinWorkerCount    int64 = 1
	IdleWorkerTimeout       = 1 * time.Minute

	//outbound http pooling
	MaxIdleConns        = 100
	MaxIdleConnsPerHost = 10
	IdleConnTimeout     = 90 * time.Second

	//postgres
	DBMaxConns    = 5
	DBPingTimeout = 5 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort
)

// Env lookups with fallbacks. Secrets are never defaulted.

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenRouterAPIKey() string {
	return os.Getenv("OPENROUTER_API_KEY")
}

func JWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func RedisAddress() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return RedisAddr
}

func EmbeddingModelPath() string {
	if p := os.Getenv("EMBEDDING_MODEL_PATH"); p != "" {
		return p
	}
	return DefaultEmbeddingModel
}
