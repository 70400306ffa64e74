package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
)

// HTTPStatusError is a vendor failure that carried no parseable client error.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	body := e.Body
	if len(body) > errorBodyLogLimit {
		body = body[:errorBodyLogLimit]
	}

	return fmt.Sprintf("vendor returned status %d: %s", e.StatusCode, body)
}

// vendorErrorBody covers {"error":{"message":"..."}} and Ollama's {"error":"..."}.
type vendorErrorBody struct {
	Error json.RawMessage `json:"error"`
}

func (b vendorErrorBody) message() string {
	if len(b.Error) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(b.Error, &text); err == nil {
		return text
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(b.Error, &obj); err == nil {
		return obj.Message
	}

	return ""
}

// vendorError classifies a non-2xx vendor response.
func vendorError(status int, body []byte) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf(errFmtAPIStatusOnly, coreerrors.ErrTooManyRequests, status)
	}

	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		var parsed vendorErrorBody
		if err := json.Unmarshal(body, &parsed); err == nil {
			if msg := parsed.message(); msg != "" {
				return coreerrors.NewBadRequest(coreerrors.MsgLLMProviderError, msg)
			}
		}
	}

	return &HTTPStatusError{StatusCode: status, Body: string(body)}
}

// postJSON sends payload to url and decodes a 2xx body into out.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return fmt.Errorf(errFmtMarshalRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf(errFmtCreateRequest, err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf(errFmtReadResponse, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return vendorError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf(errFmtDecodeResponse, err)
	}

	return nil
}

// wantsJSON reports whether any text message mentions json.
func wantsJSON(messages []domain.Message) bool {
	for _, m := range messages {
		if m.Type == domain.MessageText && strings.Contains(strings.ToLower(m.Text), jsonMarker) {
			return true
		}
	}

	return false
}

func encodeImage(image []byte) string {
	return base64.StdEncoding.EncodeToString(image)
}

// imageMIME sniffs the image type, defaulting to PNG for unknown content.
func imageMIME(image []byte) string {
	detected := http.DetectContentType(image)
	if strings.HasPrefix(detected, "image/") {
		return detected
	}

	return defaultImageMIME
}

// translationSchema is the strict response schema offered to vendors that support one.
func translationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"output":             map[string]any{"type": "string"},
			"contextDescription": map[string]any{"type": "string"},
		},
		"required":             []string{"output", "contextDescription"},
		"additionalProperties": false,
	}
}

func int64Ptr(v int) *int64 {
	return domain.Int64Ptr(int64(v))
}
