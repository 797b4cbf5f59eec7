package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/canoeh/nocs/internal/catalog"
	nocerrors "github.com/canoeh/nocs/internal/errors"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp"`
	Retryable bool   `json:"retryable,omitempty"`
}

// statusFor maps an error code to its HTTP status.
func statusFor(code nocerrors.ErrorCode) int {
	switch code {
	case nocerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case nocerrors.ErrCodeLoadFailure, nocerrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case nocerrors.ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case nocerrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case nocerrors.ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse. Causes are logged, never returned to the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := nocerrors.CodeOf(err)
	status := statusFor(code)
	requestID := RequestIDFromContext(r.Context())

	message := "internal server error"
	var se *nocerrors.StructuredError
	if code != nocerrors.ErrCodeInternal && errors.As(err, &se) {
		message = se.Message
	}

	fields := []zap.Field{
		zap.String("code", string(code)),
		zap.Int("status", status),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", fields...)
	} else {
		s.logger.Debug("request rejected", fields...)
	}

	respondJSON(w, status, ErrorResponse{
		Code:      string(code),
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Retryable: status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable,
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondCached writes payload with an ETag over its JSON form and a public Cache-Control.
// A matching If-None-Match is answered with 304 and no body.
func (s *Server) respondCached(w http.ResponseWriter, r *http.Request, payload any, maxAge time.Duration) {
	fingerprint, err := catalog.Fingerprint(payload)
	if err != nil {
		s.writeError(w, r, nocerrors.Wrap(nocerrors.ErrCodeInternal, "response could not be encoded", err))
		return
	}
	w.Header().Set("ETag", `"`+fingerprint+`"`)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
	if etagMatches(r.Header.Get("If-None-Match"), fingerprint) {
		notModifiedTotal.Inc()
		w.WriteHeader(http.StatusNotModified)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

// etagMatches reports whether an If-None-Match header matches etag (unquoted).
// It accepts "*", weak validators and comma-separated lists.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for candidate := range strings.SplitSeq(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		candidate = strings.TrimPrefix(candidate, "W/")
		if strings.Trim(candidate, `"`) == etag {
			return true
		}
	}
	return false
}
