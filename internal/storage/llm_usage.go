package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

var _ ports.UsageStore = (*DB)(nil)

// LLMUsage is one day of an organization's usage of a provider model.
type LLMUsage struct {
	Date         time.Time
	Provider     string
	ProviderType string
	Model        string
	RequestCount int64
	InputTokens  int64
	OutputTokens int64
	CachedTokens int64
	Price        int64
}

// IncrementLLMUsage adds one invocation to the daily counters.
func (db *DB) IncrementLLMUsage(ctx context.Context, record domain.LLMUsageRecord) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO llm_usage (date, organization_id, provider, provider_type, model,
			request_count, input_tokens, output_tokens, cached_tokens, price, last_invocation)
		VALUES (CURRENT_DATE, $1, $2, $3, $4, 1, $5, $6, $7, $8, $9)
		ON CONFLICT (date, organization_id, provider, provider_type, model)
		DO UPDATE SET
			request_count = llm_usage.request_count + 1,
			input_tokens = llm_usage.input_tokens + EXCLUDED.input_tokens,
			output_tokens = llm_usage.output_tokens + EXCLUDED.output_tokens,
			cached_tokens = llm_usage.cached_tokens + EXCLUDED.cached_tokens,
			price = llm_usage.price + EXCLUDED.price,
			last_invocation = EXCLUDED.last_invocation,
			updated_at = now()
	`, record.OrganizationID, record.ProviderName, string(record.ProviderType), record.Model,
		record.InputTokens, record.OutputTokens, record.CachedTokens, record.Price, toUUID(record.InvocationID))
	if err != nil {
		return fmt.Errorf("increment llm usage: %w", err)
	}

	return nil
}

// LLMUsageSince returns an organization's daily usage rows since the given day, newest first.
func (db *DB) LLMUsageSince(ctx context.Context, organizationID int64, since time.Time) ([]LLMUsage, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT date, provider, provider_type, model, request_count, input_tokens, output_tokens, cached_tokens, price
		FROM llm_usage
		WHERE organization_id = $1 AND date >= $2::date
		ORDER BY date DESC, provider, model
	`, organizationID, since)
	if err != nil {
		return nil, fmt.Errorf("query llm usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage

	for rows.Next() {
		var u LLMUsage
		if err := rows.Scan(&u.Date, &u.Provider, &u.ProviderType, &u.Model, &u.RequestCount,
			&u.InputTokens, &u.OutputTokens, &u.CachedTokens, &u.Price); err != nil {
			return nil, fmt.Errorf("scan llm usage: %w", err)
		}

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate llm usage: %w", err)
	}

	return out, nil
}

func toUUID(id string) pgtype.UUID {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}

	return pgtype.UUID{Bytes: u, Valid: true}
}
