package errors

import (
	"fmt"
	"strings"
	"time"
)

// Message is a stable error code shown to API clients.
type Message string

// Message codes.
const (
	MsgLLMProviderNotFound        Message = "LLM_PROVIDER_NOT_FOUND"
	MsgLLMProviderError           Message = "LLM_PROVIDER_ERROR"
	MsgLLMTemplateParsingError    Message = "LLM_TEMPLATE_PARSING_ERROR"
	MsgLLMProviderNotReturnedJSON Message = "LLM_PROVIDER_NOT_RETURNED_JSON"
	MsgKeyNotFound                Message = "KEY_NOT_FOUND"
	MsgLanguageNotFound           Message = "LANGUAGE_NOT_FOUND"
	MsgProjectNotFound            Message = "PROJECT_NOT_FOUND"
	MsgPromptNotFound             Message = "PROMPT_NOT_FOUND"
	MsgScreenshotNotFound         Message = "SCREENSHOT_NOT_FOUND"
	MsgValidationFailed           Message = "VALIDATION_FAILED"
)

// BadRequestError is a client-attributable failure.
type BadRequestError struct {
	Code   Message
	Params []any
}

// NewBadRequest builds a BadRequestError.
func NewBadRequest(code Message, params ...any) *BadRequestError {
	return &BadRequestError{Code: code, Params: params}
}

func (e *BadRequestError) Error() string {
	if len(e.Params) == 0 {
		return string(e.Code)
	}

	parts := make([]string, 0, len(e.Params))
	for _, p := range e.Params {
		parts = append(parts, fmt.Sprint(p))
	}

	return fmt.Sprintf("%s: %s", e.Code, strings.Join(parts, ", "))
}

// Is makes every BadRequestError match ErrBadRequest.
func (e *BadRequestError) Is(target error) bool {
	return target == ErrBadRequest
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Code Message
}

// NewNotFound builds a NotFoundError.
func NewNotFound(code Message) *NotFoundError {
	return &NotFoundError{Code: code}
}

func (e *NotFoundError) Error() string {
	return string(e.Code)
}

// Is makes every NotFoundError match ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// RateLimitedError is returned when every candidate provider is suspended.
// RetryAt is the earliest instant at which one of them becomes eligible again.
type RateLimitedError struct {
	RetryAt time.Time
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited until %s", e.RetryAt.UTC().Format(time.RFC3339))
}

// Is makes every RateLimitedError match ErrRateLimited.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}

// TemplateSyntaxError reports malformed template input. Line and Column are 1-based.
type TemplateSyntaxError struct {
	Reason string
	Line   int
	Column int
}

func (e *TemplateSyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at %d:%d: %s", e.Line, e.Column, e.Reason)
}

// Is makes every TemplateSyntaxError match ErrBadRequest.
func (e *TemplateSyntaxError) Is(target error) bool {
	return target == ErrBadRequest
}
