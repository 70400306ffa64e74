package db

import (
	"context"
	"fmt"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

var (
	_ ports.ProjectReader     = (*DB)(nil)
	_ ports.KeyReader         = (*DB)(nil)
	_ ports.LanguageReader    = (*DB)(nil)
	_ ports.TranslationReader = (*DB)(nil)
	_ ports.TranslationWriter = (*DB)(nil)
)

// FindProject returns a project or nil.
func (db *DB) FindProject(ctx context.Context, projectID int64) (*domain.Project, error) {
	var (
		p            domain.Project
		baseLanguage *int64
	)

	err := db.Pool.QueryRow(ctx, `
		SELECT id, organization_id, name, description, base_language_id FROM projects WHERE id = $1
	`, projectID).Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Description, &baseLanguage)
	if isNoRows(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}

	p.BaseLanguageID = domain.ValueOrZero(baseLanguage)

	return &p, nil
}

// FindKey returns a key with its screenshots in display order, or nil.
// Each screenshot carries the areas of every key placed on it.
func (db *DB) FindKey(ctx context.Context, keyID int64) (*domain.Key, error) {
	var k domain.Key

	err := db.Pool.QueryRow(ctx, `
		SELECT id, project_id, name, namespace, description, is_plural FROM keys WHERE id = $1
	`, keyID).Scan(&k.ID, &k.ProjectID, &k.Name, &k.Namespace, &k.Description, &k.IsPlural)
	if isNoRows(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find key: %w", err)
	}

	screenshots, err := db.keyScreenshots(ctx, keyID)
	if err != nil {
		return nil, err
	}

	k.Screenshots = screenshots

	return &k, nil
}

func (db *DB) keyScreenshots(ctx context.Context, keyID int64) ([]domain.Screenshot, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT s.id, s.filename, s.middle_sized_filename, s.width, s.height,
			COALESCE((
				SELECT jsonb_agg(area || jsonb_build_object('keyId', o.key_id))
				FROM key_screenshot_references o, jsonb_array_elements(o.areas) AS area
				WHERE o.screenshot_id = s.id
			), '[]'::jsonb)
		FROM key_screenshot_references r
		JOIN screenshots s ON s.id = r.screenshot_id
		WHERE r.key_id = $1
		ORDER BY r.position, s.id
	`, keyID)
	if err != nil {
		return nil, fmt.Errorf("list key screenshots: %w", err)
	}
	defer rows.Close()

	var out []domain.Screenshot

	for rows.Next() {
		var s domain.Screenshot
		if err := rows.Scan(&s.ID, &s.Filename, &s.MiddleSizedFilename, &s.Width, &s.Height, &s.Areas); err != nil {
			return nil, fmt.Errorf("scan screenshot: %w", err)
		}

		out = append(out, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screenshots: %w", err)
	}

	return out, nil
}

// ProjectLanguages returns a project's languages ordered by tag.
func (db *DB) ProjectLanguages(ctx context.Context, projectID int64) ([]domain.Language, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, project_id, tag, name, ai_note FROM languages WHERE project_id = $1 ORDER BY tag
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	var out []domain.Language

	for rows.Next() {
		var l domain.Language
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.Tag, &l.Name, &l.AINote); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}

		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate languages: %w", err)
	}

	return out, nil
}

// FindTranslation returns a translation or nil.
func (db *DB) FindTranslation(ctx context.Context, keyID, languageID int64) (*domain.Translation, error) {
	var t domain.Translation

	err := db.Pool.QueryRow(ctx, `
		SELECT id, key_id, language_id, text FROM translations WHERE key_id = $1 AND language_id = $2
	`, keyID, languageID).Scan(&t.ID, &t.KeyID, &t.LanguageID, &t.Text)
	if isNoRows(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find translation: %w", err)
	}

	return &t, nil
}

// SetTranslation creates or replaces a translation text.
func (db *DB) SetTranslation(ctx context.Context, keyID, languageID int64, text string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO translations (key_id, language_id, text)
		VALUES ($1, $2, $3)
		ON CONFLICT (key_id, language_id)
		DO UPDATE SET text = EXCLUDED.text, updated_at = now()
	`, keyID, languageID, text)
	if err != nil {
		return fmt.Errorf("set translation: %w", err)
	}

	return nil
}
