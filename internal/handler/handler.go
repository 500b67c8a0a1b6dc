package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"cresshoe/internal/cart"
	"cresshoe/internal/model"

	"github.com/rs/zerolog"
)

const (
	// SessionHeader carries the storefront session that owns a cart.
	SessionHeader = "X-Session-ID"

	// DefaultSession is used when a request carries no session header. It maps
	// to the bare cart key.
	DefaultSession = ""

	maxSessionIDLength = 64
	maxBodyBytes       = 1 << 20
)

// CartSessions hands out the cart that belongs to a session.
type CartSessions interface {
	Get(ctx context.Context, sessionID string) *cart.Store
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeServiceError maps a service error onto a status code and error body.
func writeServiceError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var (
		verr   *model.ValidationError
		subErr *model.SubmissionError
		domErr *model.DomainError
	)

	switch {
	case errors.As(err, &verr):
		logger.Warn().Strs("fields", verr.Fields).Msg("validation failed")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeMissingField,
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.As(err, &subErr):
		writeError(w, http.StatusBadGateway, model.ErrCodeSubmissionFailed, subErr.Error(), logger)
	case errors.As(err, &domErr):
		writeError(w, domainStatus(domErr), domErr.Code, domErr.Message, logger)
	default:
		logger.Error().Err(err).Msg("unexpected service error")
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
	}
}

func domainStatus(err *model.DomainError) int {
	switch err.Code {
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeSubmissionInFlight, model.ErrCodeSizeOutOfStock:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// sessionID returns the session named by the request header, or DefaultSession.
// Ids are limited to letters, digits, '-' and '_'.
func sessionID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" {
		return DefaultSession, true
	}
	if len(id) > maxSessionIDLength {
		return "", false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return "", false
		}
	}
	return id, true
}
