package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
	"github.com/lueurxax/tolgee-ai/internal/core/ports"
)

// ProviderRequest is the editable part of an organization provider.
type ProviderRequest struct {
	Name                  string
	Type                  string
	Priority              string
	APIKey                string
	APIURL                string
	Model                 string
	Deployment            string
	KeepAlive             string
	Format                string
	PricePerMillionInput  *float64
	PricePerMillionOutput *float64
}

// ProviderService administers organization provider configs.
type ProviderService struct {
	repo     ports.ProviderRepository
	selector *Selector
	logger   *zerolog.Logger
}

// NewProviderService creates the admin service. The selector supplies server providers.
func NewProviderService(repo ports.ProviderRepository, selector *Selector, logger *zerolog.Logger) *ProviderService {
	return &ProviderService{repo: repo, selector: selector, logger: logger}
}

// List returns the organization's providers.
func (s *ProviderService) List(ctx context.Context, organizationID int64) ([]domain.ProviderConfig, error) {
	providers, err := s.repo.ListProviders(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}

	return providers, nil
}

// ListServer returns server-configured providers without credentials.
func (s *ProviderService) ListServer() []domain.ProviderConfig {
	providers := s.selector.ServerProviders()
	for i := range providers {
		providers[i].APIKey = ""
	}

	return providers
}

// Create stores a new organization provider.
func (s *ProviderService) Create(ctx context.Context, organizationID int64, req ProviderRequest) (domain.ProviderConfig, error) {
	cfg, err := req.toConfig(organizationID)
	if err != nil {
		return domain.ProviderConfig{}, err
	}

	created, err := s.repo.CreateProvider(ctx, cfg)
	if err != nil {
		return domain.ProviderConfig{}, fmt.Errorf("create provider: %w", err)
	}

	s.logger.Info().
		Str(logKeyProvider, created.Name).
		Str(logKeyProviderID, created.ID.String()).
		Int64(logKeyOrganization, organizationID).
		Msg("llm provider created")

	return created, nil
}

// Update replaces an organization provider. Providers of other organizations are not found.
func (s *ProviderService) Update(ctx context.Context, organizationID, id int64, req ProviderRequest) (domain.ProviderConfig, error) {
	if _, err := s.owned(ctx, organizationID, id); err != nil {
		return domain.ProviderConfig{}, err
	}

	cfg, err := req.toConfig(organizationID)
	if err != nil {
		return domain.ProviderConfig{}, err
	}

	cfg.ID = domain.StoredProviderID(id)

	updated, err := s.repo.UpdateProvider(ctx, cfg)
	if err != nil {
		return domain.ProviderConfig{}, fmt.Errorf("update provider: %w", err)
	}

	return updated, nil
}

// Delete removes an organization provider.
func (s *ProviderService) Delete(ctx context.Context, organizationID, id int64) error {
	if _, err := s.owned(ctx, organizationID, id); err != nil {
		return err
	}

	if err := s.repo.DeleteProvider(ctx, id); err != nil {
		return fmt.Errorf("delete provider: %w", err)
	}

	return nil
}

func (s *ProviderService) owned(ctx context.Context, organizationID, id int64) (*domain.ProviderConfig, error) {
	existing, err := s.repo.FindProvider(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}

	if existing == nil || existing.OrganizationID != organizationID {
		return nil, coreerrors.NewNotFound(coreerrors.MsgLLMProviderNotFound)
	}

	return existing, nil
}

func (r ProviderRequest) toConfig(organizationID int64) (domain.ProviderConfig, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return domain.ProviderConfig{}, coreerrors.NewBadRequest(coreerrors.MsgValidationFailed, "name")
	}

	providerType, ok := domain.ParseProviderType(r.Type)
	if !ok {
		return domain.ProviderConfig{}, coreerrors.NewBadRequest(coreerrors.MsgValidationFailed, "type")
	}

	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return domain.ProviderConfig{}, coreerrors.NewBadRequest(coreerrors.MsgValidationFailed, "priority")
	}

	return domain.ProviderConfig{
		OrganizationID:        organizationID,
		Name:                  name,
		Type:                  providerType,
		Priority:              priority,
		APIKey:                r.APIKey,
		APIURL:                strings.TrimRight(r.APIURL, "/"),
		Model:                 r.Model,
		Deployment:            r.Deployment,
		KeepAlive:             r.KeepAlive,
		Format:                r.Format,
		PricePerMillionInput:  r.PricePerMillionInput,
		PricePerMillionOutput: r.PricePerMillionOutput,
	}, nil
}
