package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/krypton-oss/kryptonsec-api/internal/domain/userModel"
)

type ModelStore struct {
	pool *pgxpool.Pool
}

func NewModelStore(pool *pgxpool.Pool) *ModelStore {
	return &ModelStore{pool: pool}
}

// ListActive returns the selectable completion models for the chat UI.
func (s *ModelStore) ListActive(ctx context.Context) ([]userModel.AIModel, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, api_model_name, display_name, provider, is_active, created_at FROM ai_models
		 WHERE is_active = TRUE ORDER BY display_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer rows.Close()

	models := []userModel.AIModel{}
	for rows.Next() {
		var m userModel.AIModel
		if err := rows.Scan(&m.Id, &m.ApiModelName, &m.DisplayName, &m.Provider, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning model row: %w", err)
		}
		models = append(models, m)
	}
	return models, rows.Err()
}
