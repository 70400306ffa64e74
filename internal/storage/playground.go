package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

var _ ports.PlaygroundRepository = (*DB)(nil)

// ReplacePlaygroundResult drops the user's previous results in the project and stores result.
func (db *DB) ReplacePlaygroundResult(ctx context.Context, result domain.PlaygroundResult) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			DELETE FROM ai_playground_results WHERE project_id = $1 AND user_id = $2
		`, result.ProjectID, result.UserID); err != nil {
			return fmt.Errorf("delete playground results: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO ai_playground_results (project_id, user_id, key_id, language_id, translation, context_description)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, result.ProjectID, result.UserID, result.KeyID, result.LanguageID, result.Translation, result.ContextDescription); err != nil {
			return fmt.Errorf("insert playground result: %w", err)
		}

		return nil
	})
}

// ListPlaygroundResults returns a user's results in a project.
func (db *DB) ListPlaygroundResults(ctx context.Context, projectID, userID int64) ([]domain.PlaygroundResult, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT project_id, user_id, key_id, language_id, translation, context_description
		FROM ai_playground_results
		WHERE project_id = $1 AND user_id = $2
		ORDER BY created_at
	`, projectID, userID)
	if err != nil {
		return nil, fmt.Errorf("list playground results: %w", err)
	}
	defer rows.Close()

	var out []domain.PlaygroundResult

	for rows.Next() {
		var r domain.PlaygroundResult
		if err := rows.Scan(&r.ProjectID, &r.UserID, &r.KeyID, &r.LanguageID, &r.Translation, &r.ContextDescription); err != nil {
			return nil, fmt.Errorf("scan playground result: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playground results: %w", err)
	}

	return out, nil
}
