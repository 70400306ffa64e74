package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

var _ ports.PromptRepository = (*DB)(nil)

const promptColumns = `id, project_id, name, template, provider_name, created_at, updated_at`

func scanPrompt(row pgx.Row) (domain.Prompt, error) {
	var p domain.Prompt

	err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Template, &p.ProviderName, &p.CreatedAt, &p.UpdatedAt)

	return p, err
}

// likePattern turns a search term into an ILIKE pattern matching it literally.
func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)

	return "%" + escaped + "%"
}

func pageBounds(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// ListPrompts returns a page of a project's prompts filtered by name and the total match count.
func (db *DB) ListPrompts(ctx context.Context, projectID int64, search string, limit, offset int) ([]domain.Prompt, int, error) {
	limit, offset = pageBounds(limit, offset)
	pattern := likePattern(search)

	var total int
	if err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM prompts WHERE project_id = $1 AND name ILIKE $2`, projectID, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prompts: %w", err)
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT `+promptColumns+` FROM prompts
		WHERE project_id = $1 AND name ILIKE $2
		ORDER BY id
		LIMIT $3 OFFSET $4
	`, projectID, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var out []domain.Prompt

	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan prompt: %w", err)
		}

		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate prompts: %w", err)
	}

	return out, total, nil
}

// FindPrompt returns a prompt of the project or nil.
func (db *DB) FindPrompt(ctx context.Context, projectID, promptID int64) (*domain.Prompt, error) {
	p, err := scanPrompt(db.Pool.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompts WHERE id = $1 AND project_id = $2`, promptID, projectID))
	if isNoRows(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find prompt: %w", err)
	}

	return &p, nil
}

// CreatePrompt inserts a prompt.
func (db *DB) CreatePrompt(ctx context.Context, p domain.Prompt) (domain.Prompt, error) {
	created, err := scanPrompt(db.Pool.QueryRow(ctx, `
		INSERT INTO prompts (project_id, name, template, provider_name)
		VALUES ($1, $2, $3, $4)
		RETURNING `+promptColumns, p.ProjectID, p.Name, p.Template, p.ProviderName))
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("create prompt: %w", err)
	}

	return created, nil
}

// UpdatePrompt replaces a prompt's editable fields.
func (db *DB) UpdatePrompt(ctx context.Context, p domain.Prompt) (domain.Prompt, error) {
	updated, err := scanPrompt(db.Pool.QueryRow(ctx, `
		UPDATE prompts SET name = $3, template = $4, provider_name = $5, updated_at = now()
		WHERE id = $1 AND project_id = $2
		RETURNING `+promptColumns, p.ID, p.ProjectID, p.Name, p.Template, p.ProviderName))
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("update prompt: %w", err)
	}

	return updated, nil
}

// DeletePrompt removes a prompt.
func (db *DB) DeletePrompt(ctx context.Context, projectID, promptID int64) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM prompts WHERE id = $1 AND project_id = $2`, promptID, projectID); err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}

	return nil
}
