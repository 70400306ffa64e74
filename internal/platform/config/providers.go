package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
)

// ServerProvider is one entry of the server provider file.
type ServerProvider struct {
	Name                  string   `yaml:"name"`
	Type                  string   `yaml:"type"`
	Priority              string   `yaml:"priority"`
	APIKey                string   `yaml:"apiKey"`
	APIURL                string   `yaml:"apiUrl"`
	Model                 string   `yaml:"model"`
	Deployment            string   `yaml:"deployment"`
	KeepAlive             string   `yaml:"keepAlive"`
	Format                string   `yaml:"format"`
	PricePerMillionInput  *float64 `yaml:"pricePerMillionInput"`
	PricePerMillionOutput *float64 `yaml:"pricePerMillionOutput"`
}

type serverProvidersFile struct {
	Providers []ServerProvider `yaml:"providers"`
}

// LoadServerProviders reads the provider file. An empty path yields no providers.
// Entries keep their declared order and are numbered from 1.
func LoadServerProviders(path string) ([]domain.ProviderConfig, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers file: %w", err)
	}

	return ParseServerProviders(data)
}

// ParseServerProviders decodes a YAML provider list.
func ParseServerProviders(data []byte) ([]domain.ProviderConfig, error) {
	var file serverProvidersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode providers file: %w", err)
	}

	out := make([]domain.ProviderConfig, 0, len(file.Providers))

	for i, p := range file.Providers {
		cfg, err := p.toDomain(i + 1)
		if err != nil {
			return nil, fmt.Errorf("provider #%d: %w", i+1, err)
		}

		out = append(out, cfg)
	}

	return out, nil
}

func (p ServerProvider) toDomain(ordinal int) (domain.ProviderConfig, error) {
	if strings.TrimSpace(p.Name) == "" {
		return domain.ProviderConfig{}, fmt.Errorf("name is required")
	}

	providerType, ok := domain.ParseProviderType(p.Type)
	if !ok {
		return domain.ProviderConfig{}, fmt.Errorf("unknown provider type %q", p.Type)
	}

	priority, err := domain.ParsePriority(p.Priority)
	if err != nil {
		return domain.ProviderConfig{}, err
	}

	return domain.ProviderConfig{
		ID:                    domain.ServerProviderID(ordinal),
		Name:                  p.Name,
		Type:                  providerType,
		Priority:              priority,
		APIKey:                os.ExpandEnv(p.APIKey),
		APIURL:                strings.TrimRight(p.APIURL, "/"),
		Model:                 p.Model,
		Deployment:            p.Deployment,
		KeepAlive:             p.KeepAlive,
		Format:                p.Format,
		PricePerMillionInput:  p.PricePerMillionInput,
		PricePerMillionOutput: p.PricePerMillionOutput,
	}, nil
}
