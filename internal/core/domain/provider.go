package domain

import (
	"fmt"
	"strings"
)

// ProviderType is the vendor API family a provider speaks.
type ProviderType string

// Supported provider types.
const (
	ProviderOpenAI ProviderType = "OPENAI"
	ProviderOllama ProviderType = "OLLAMA"
	ProviderClaude ProviderType = "CLAUDE"
	ProviderGemini ProviderType = "GEMINI"
)

// ProviderTypes lists every supported provider type.
var ProviderTypes = []ProviderType{ProviderOpenAI, ProviderOllama, ProviderClaude, ProviderGemini}

// ParseProviderType parses a provider type case-insensitively.
func ParseProviderType(s string) (ProviderType, bool) {
	upper := ProviderType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range ProviderTypes {
		if t == upper {
			return t, true
		}
	}

	return "", false
}

// Priority is an advisory preference between providers sharing a name.
type Priority string

// Priorities.
const (
	PriorityHigh Priority = "HIGH"
	PriorityLow  Priority = "LOW"
)

// ParsePriority parses a priority case-insensitively. Empty input yields nil (no preference).
func ParsePriority(s string) (*Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case string(PriorityHigh):
		p := PriorityHigh
		return &p, nil
	case string(PriorityLow):
		p := PriorityLow
		return &p, nil
	default:
		return nil, fmt.Errorf("unknown priority %q", s)
	}
}

// PriorityPtr returns a pointer to p.
func PriorityPtr(p Priority) *Priority {
	return &p
}

type providerIDKind uint8

const (
	providerIDStored providerIDKind = iota + 1
	providerIDServer
)

// ProviderID identifies a provider config. Stored ids belong to organization-owned rows,
// server ids number the statically configured providers starting at 1.
type ProviderID struct {
	kind  providerIDKind
	value int64
}

// StoredProviderID returns the id of a persisted organization provider.
func StoredProviderID(id int64) ProviderID {
	return ProviderID{kind: providerIDStored, value: id}
}

// ServerProviderID returns the id of the n-th (1-based) server-configured provider.
func ServerProviderID(n int) ProviderID {
	return ProviderID{kind: providerIDServer, value: int64(n)}
}

// ParseProviderID reverses Int64: negative values denote server providers.
func ParseProviderID(v int64) ProviderID {
	if v < 0 {
		return ServerProviderID(int(-v))
	}

	return StoredProviderID(v)
}

// IsZero reports whether the id was never assigned.
func (id ProviderID) IsZero() bool {
	return id.kind == 0
}

// IsServer reports whether the id refers to a server-configured provider.
func (id ProviderID) IsServer() bool {
	return id.kind == providerIDServer
}

// Value returns the row id or the server ordinal.
func (id ProviderID) Value() int64 {
	return id.value
}

// Int64 renders the signed form used by the REST API: server providers are negative.
func (id ProviderID) Int64() int64 {
	if id.kind == providerIDServer {
		return -id.value
	}

	return id.value
}

func (id ProviderID) String() string {
	switch id.kind {
	case providerIDStored:
		return fmt.Sprintf("custom:%d", id.value)
	case providerIDServer:
		return fmt.Sprintf("server:%d", id.value)
	default:
		return "unset"
	}
}

// ProviderConfig is one set of vendor credentials reachable under a logical name.
type ProviderConfig struct {
	ID                    ProviderID
	OrganizationID        int64
	Name                  string
	Type                  ProviderType
	Priority              *Priority
	APIKey                string
	APIURL                string
	Model                 string
	Deployment            string
	KeepAlive             string
	Format                string
	PricePerMillionInput  *float64
	PricePerMillionOutput *float64
}

// HasPriority reports whether the config declares exactly p.
func (c ProviderConfig) HasPriority(p Priority) bool {
	return c.Priority != nil && *c.Priority == p
}
