package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/krypton-oss/kryptonsec-api/internal/adapter/utils"
	"github.com/krypton-oss/kryptonsec-api/internal/config"
	"github.com/krypton-oss/kryptonsec-api/pkg/logger_i"
)

// Connect opens the shared pool and registers pgvector codecs on every
// connection. The pool closes itself when ctx is cancelled.
func Connect(ctx context.Context) (*pgxpool.Pool, error) {
	logger := logger_i.NewLogger("Postgres")

	url := config.DatabaseURL()
	if url == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = config.DBMaxConns
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.DBPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	go func() {
		<-ctx.Done()
		logger.Info("Closing Postgres pool")
		pool.Close()
	}()

	logger.Info("Postgres pool init successfully")
	return pool, nil
}

var bootstrapStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		metadata TEXT,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, config.EmbeddingDimensions),
	`CREATE INDEX IF NOT EXISTS documents_embedding_idx
		ON documents USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		fullname TEXT,
		email TEXT UNIQUE,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		subscription_end TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS ai_models (
		id TEXT PRIMARY KEY,
		api_model_name TEXT NOT NULL,
		display_name TEXT NOT NULL,
		provider TEXT NOT NULL DEFAULT 'openrouter',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS chat_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		title TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// Bootstrap creates the schema and seeds the default chat model. Statements
// are idempotent so this runs on every start.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range bootstrapStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap statement failed: %w", err)
		}
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO ai_models (id, api_model_name, display_name, provider)
		 SELECT $1, $2, $3, 'openrouter'
		 WHERE NOT EXISTS (SELECT 1 FROM ai_models WHERE api_model_name = $2)`,
		utils.GetNewUUID(), config.DefaultChatModel, "DeepSeek R1 (free)")
	if err != nil {
		return fmt.Errorf("seeding default model: %w", err)
	}
	return nil
}
