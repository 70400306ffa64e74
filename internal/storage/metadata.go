package db

import (
	"context"
	"fmt"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

var _ ports.MetadataProvider = (*DB)(nil)

// TranslationMemory returns translated keys of the project whose source text
// is similar to the key's source text, best match first.
func (db *DB) TranslationMemory(ctx context.Context, key domain.Key, sourceLanguageID, targetLanguageID int64, limit int) ([]domain.TranslationMemoryItem, error) {
	rows, err := db.Pool.Query(ctx, `
		WITH base AS (
			SELECT text FROM translations WHERE key_id = $2 AND language_id = $3 AND text <> ''
		)
		SELECT k.name, src.text, tgt.text, similarity(src.text, base.text) AS score
		FROM base, translations src
		JOIN keys k ON k.id = src.key_id
		JOIN translations tgt ON tgt.key_id = src.key_id AND tgt.language_id = $4
		WHERE k.project_id = $1
			AND src.language_id = $3
			AND src.key_id <> $2
			AND tgt.text <> ''
			AND similarity(src.text, base.text) >= $5
		ORDER BY score DESC, k.id
		LIMIT $6
	`, key.ProjectID, key.ID, sourceLanguageID, targetLanguageID, similarityThreshold, limit)
	if err != nil {
		return nil, fmt.Errorf("query translation memory: %w", err)
	}
	defer rows.Close()

	var out []domain.TranslationMemoryItem

	for rows.Next() {
		var item domain.TranslationMemoryItem
		if err := rows.Scan(&item.KeyName, &item.Source, &item.Target, &item.Score); err != nil {
			return nil, fmt.Errorf("scan translation memory: %w", err)
		}

		out = append(out, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translation memory: %w", err)
	}

	return out, nil
}

// RelatedKeys returns keys that share a screenshot or a namespace with key,
// ranked by shared screenshots and then by name similarity.
func (db *DB) RelatedKeys(ctx context.Context, key domain.Key, sourceLanguageID, targetLanguageID int64, limit int) ([]domain.RelatedKey, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT k.name, k.namespace, COALESCE(src.text, ''), COALESCE(tgt.text, '')
		FROM keys k
		LEFT JOIN translations src ON src.key_id = k.id AND src.language_id = $4
		LEFT JOIN translations tgt ON tgt.key_id = k.id AND tgt.language_id = $5
		LEFT JOIN LATERAL (
			SELECT count(*) AS shared
			FROM key_screenshot_references a
			JOIN key_screenshot_references b ON b.screenshot_id = a.screenshot_id
			WHERE a.key_id = $2 AND b.key_id = k.id
		) refs ON TRUE
		WHERE k.project_id = $1
			AND k.id <> $2
			AND (refs.shared > 0 OR k.namespace = $3)
		ORDER BY refs.shared DESC, similarity(k.name, $6) DESC, k.id
		LIMIT $7
	`, key.ProjectID, key.ID, key.Namespace, sourceLanguageID, targetLanguageID, key.Name, limit)
	if err != nil {
		return nil, fmt.Errorf("query related keys: %w", err)
	}
	defer rows.Close()

	var out []domain.RelatedKey

	for rows.Next() {
		var rk domain.RelatedKey
		if err := rows.Scan(&rk.KeyName, &rk.Namespace, &rk.Source, &rk.Target); err != nil {
			return nil, fmt.Errorf("scan related key: %w", err)
		}

		out = append(out, rk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate related keys: %w", err)
	}

	return out, nil
}
