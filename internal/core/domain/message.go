package domain

// MessageType distinguishes message parts sent to a model.
type MessageType string

// Message types.
const (
	MessageText  MessageType = "TEXT"
	MessageImage MessageType = "IMAGE"
)

// Message is one ordered part of a model request.
type Message struct {
	Type  MessageType
	Text  string
	Image []byte
}

// TextMessage builds a TEXT message.
func TextMessage(text string) Message {
	return Message{Type: MessageText, Text: text}
}

// ImageMessage builds an IMAGE message.
func ImageMessage(image []byte) Message {
	return Message{Type: MessageImage, Image: image}
}

// Usage holds normalized token counts. Nil fields were not reported by the vendor.
type Usage struct {
	InputTokens  *int64 `json:"inputTokens,omitempty"`
	OutputTokens *int64 `json:"outputTokens,omitempty"`
	TotalTokens  *int64 `json:"totalTokens,omitempty"`
	CachedTokens *int64 `json:"cachedTokens,omitempty"`
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}

// ValueOrZero dereferences v, treating nil as zero.
func ValueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}

	return *v
}

// PromptResult is the normalized outcome of one model invocation.
type PromptResult struct {
	Response     string
	Usage        *Usage
	Price        *int64
	ParsedJSON   map[string]any
	ProviderID   ProviderID
	ProviderType ProviderType
	Model        string
}

// MTResult is a translation extracted from a prompt result.
type MTResult struct {
	Translated         string
	ContextDescription string
	Price              int64
	Usage              *Usage
}
