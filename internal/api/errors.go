package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	coreerrors "github.com/lueurxax/tolgee-ai/internal/core/errors"
)

const (
	codeNotFound      = "NOT_FOUND"
	codeRateLimited   = "RATE_LIMITED"
	codeInternalError = "INTERNAL_ERROR"

	headerRetryAfter = "Retry-After"
)

type errorResponse struct {
	Code   string `json:"code"`
	Params []any  `json:"params,omitempty"`
}

// writeError maps service errors to HTTP responses. Unknown errors are
// logged and hidden behind a 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		badRequest  *coreerrors.BadRequestError
		notFound    *coreerrors.NotFoundError
		rateLimited *coreerrors.RateLimitedError
		syntaxErr   *coreerrors.TemplateSyntaxError
	)

	switch {
	case errors.As(err, &badRequest):
		writeJSON(w, http.StatusBadRequest, errorResponse{Code: string(badRequest.Code), Params: badRequest.Params})
	case errors.As(err, &syntaxErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:   string(coreerrors.MsgLLMTemplateParsingError),
			Params: []any{syntaxErr.Reason, syntaxErr.Line, syntaxErr.Column},
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: string(notFound.Code)})
	case errors.Is(err, coreerrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: codeNotFound})
	case errors.As(err, &rateLimited):
		w.Header().Set(headerRetryAfter, strconv.Itoa(retryAfterSeconds(rateLimited.RetryAt, s.now())))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Code: codeRateLimited})
	default:
		s.logger.Error().Err(err).Str(logKeyMethod, r.Method).Str(logKeyPath, r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: codeInternalError})
	}
}

// retryAfterSeconds rounds the wait up to whole seconds, at least one.
func retryAfterSeconds(retryAt, now time.Time) int {
	wait := retryAt.Sub(now).Seconds()
	if wait < 1 {
		return 1
	}

	return int(math.Ceil(wait))
}

func validationError(params ...any) error {
	return coreerrors.NewBadRequest(coreerrors.MsgValidationFailed, params...)
}
