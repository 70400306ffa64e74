package domain

import "time"

// Project is the read model of a localization project.
type Project struct {
	ID             int64
	OrganizationID int64
	Name           string
	Description    string
	BaseLanguageID int64
}

// Language is a project language.
type Language struct {
	ID        int64
	ProjectID int64
	Tag       string
	Name      string
	AINote    string
}

// Key is a translation key with its screenshots in display order.
type Key struct {
	ID          int64
	ProjectID   int64
	Name        string
	Namespace   string
	Description string
	IsPlural    bool
	Screenshots []Screenshot
}

// Translation is the text of one key in one language.
type Translation struct {
	ID         int64
	KeyID      int64
	LanguageID int64
	Text       string
}

// Screenshot is an uploaded image attached to keys.
type Screenshot struct {
	ID                  int64
	Filename            string
	MiddleSizedFilename string
	Width               int
	Height              int
	Areas               []KeyArea
}

// KeyArea locates a key on a screenshot in original image coordinates.
type KeyArea struct {
	KeyID  int64 `json:"keyId"`
	X      int   `json:"x"`
	Y      int   `json:"y"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
}

// AreasForKey returns the areas that belong to keyID.
func (s Screenshot) AreasForKey(keyID int64) []KeyArea {
	var out []KeyArea

	for _, a := range s.Areas {
		if a.KeyID == keyID {
			out = append(out, a)
		}
	}

	return out
}

// Prompt is a stored prompt template of a project.
type Prompt struct {
	ID           int64
	ProjectID    int64
	Name         string
	Template     string
	ProviderName string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlaygroundResult is the last playground output a user got for a key and language.
type PlaygroundResult struct {
	ProjectID          int64
	UserID             int64
	KeyID              int64
	LanguageID         int64
	Translation        string
	ContextDescription string
}

// TranslationMemoryItem is a similar already-translated text.
type TranslationMemoryItem struct {
	KeyName string  `json:"key"`
	Source  string  `json:"source"`
	Target  string  `json:"target"`
	Score   float64 `json:"-"`
}

// RelatedKey is a key that shares context with the translated one.
type RelatedKey struct {
	KeyName   string `json:"keyName"`
	Namespace string `json:"namespace,omitempty"`
	Source    string `json:"source,omitempty"`
	Target    string `json:"target,omitempty"`
}

// LLMUsageRecord is one persisted invocation's accounting data.
type LLMUsageRecord struct {
	InvocationID   string
	OrganizationID int64
	ProviderName   string
	ProviderType   ProviderType
	Model          string
	InputTokens    int64
	OutputTokens   int64
	CachedTokens   int64
	Price          int64
}
