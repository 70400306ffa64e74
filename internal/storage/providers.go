package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

var _ ports.ProviderRepository = (*DB)(nil)

const providerColumns = `id, organization_id, name, type, priority, api_key, api_url, model,
	deployment, keep_alive, format, price_per_million_input, price_per_million_output`

type providerRow struct {
	ID                    int64
	OrganizationID        int64
	Name                  string
	Type                  string
	Priority              *string
	APIKey                string
	APIURL                string
	Model                 string
	Deployment            string
	KeepAlive             string
	Format                string
	PricePerMillionInput  *float64
	PricePerMillionOutput *float64
}

func scanProvider(row pgx.Row) (providerRow, error) {
	var r providerRow

	err := row.Scan(&r.ID, &r.OrganizationID, &r.Name, &r.Type, &r.Priority, &r.APIKey, &r.APIURL, &r.Model,
		&r.Deployment, &r.KeepAlive, &r.Format, &r.PricePerMillionInput, &r.PricePerMillionOutput)

	return r, err
}

func (r providerRow) toDomain() (domain.ProviderConfig, error) {
	providerType, ok := domain.ParseProviderType(r.Type)
	if !ok {
		return domain.ProviderConfig{}, fmt.Errorf("provider %d: unknown type %q", r.ID, r.Type)
	}

	var priority *domain.Priority

	if r.Priority != nil {
		p, err := domain.ParsePriority(*r.Priority)
		if err != nil {
			return domain.ProviderConfig{}, fmt.Errorf("provider %d: %w", r.ID, err)
		}

		priority = p
	}

	return domain.ProviderConfig{
		ID:                    domain.StoredProviderID(r.ID),
		OrganizationID:        r.OrganizationID,
		Name:                  r.Name,
		Type:                  providerType,
		Priority:              priority,
		APIKey:                r.APIKey,
		APIURL:                r.APIURL,
		Model:                 r.Model,
		Deployment:            r.Deployment,
		KeepAlive:             r.KeepAlive,
		Format:                r.Format,
		PricePerMillionInput:  r.PricePerMillionInput,
		PricePerMillionOutput: r.PricePerMillionOutput,
	}, nil
}

func priorityToDB(p *domain.Priority) *string {
	if p == nil {
		return nil
	}

	s := string(*p)

	return &s
}

// ListProviders returns an organization's providers in creation order.
func (db *DB) ListProviders(ctx context.Context, organizationID int64) ([]domain.ProviderConfig, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+providerColumns+` FROM llm_providers WHERE organization_id = $1 ORDER BY id`, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var out []domain.ProviderConfig

	for rows.Next() {
		row, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}

		cfg, err := row.toDomain()
		if err != nil {
			return nil, err
		}

		out = append(out, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}

	return out, nil
}

// FindProvider returns a stored provider or nil.
func (db *DB) FindProvider(ctx context.Context, id int64) (*domain.ProviderConfig, error) {
	row, err := scanProvider(db.Pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM llm_providers WHERE id = $1`, id))
	if isNoRows(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}

	cfg, err := row.toDomain()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CreateProvider inserts a provider and returns it with its id.
func (db *DB) CreateProvider(ctx context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error) {
	var id int64

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO llm_providers (organization_id, name, type, priority, api_key, api_url, model,
			deployment, keep_alive, format, price_per_million_input, price_per_million_output)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, cfg.OrganizationID, cfg.Name, string(cfg.Type), priorityToDB(cfg.Priority), cfg.APIKey, cfg.APIURL, cfg.Model,
		cfg.Deployment, cfg.KeepAlive, cfg.Format, cfg.PricePerMillionInput, cfg.PricePerMillionOutput).Scan(&id)
	if err != nil {
		return domain.ProviderConfig{}, fmt.Errorf("create provider: %w", err)
	}

	cfg.ID = domain.StoredProviderID(id)

	return cfg, nil
}

// UpdateProvider replaces a stored provider's fields.
func (db *DB) UpdateProvider(ctx context.Context, cfg domain.ProviderConfig) (domain.ProviderConfig, error) {
	_, err := db.Pool.Exec(ctx, `
		UPDATE llm_providers SET name = $2, type = $3, priority = $4, api_key = $5, api_url = $6, model = $7,
			deployment = $8, keep_alive = $9, format = $10, price_per_million_input = $11, price_per_million_output = $12
		WHERE id = $1
	`, cfg.ID.Value(), cfg.Name, string(cfg.Type), priorityToDB(cfg.Priority), cfg.APIKey, cfg.APIURL, cfg.Model,
		cfg.Deployment, cfg.KeepAlive, cfg.Format, cfg.PricePerMillionInput, cfg.PricePerMillionOutput)
	if err != nil {
		return domain.ProviderConfig{}, fmt.Errorf("update provider: %w", err)
	}

	return cfg, nil
}

// DeleteProvider removes a provider.
func (db *DB) DeleteProvider(ctx context.Context, id int64) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM llm_providers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}

	return nil
}
