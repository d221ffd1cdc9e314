package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"catalog-cms/internal/model"

	"github.com/rs/zerolog"
)

// notFoundBody is the plain-text body of every 404 the server returns.
const notFoundBody = "404 Not Found"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: message})
}

// WriteNotFound writes the plain-text 404 response.
func WriteNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, notFoundBody)
}

// readBody reads the whole request body, up to limit bytes.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, model.ErrBodyTooLarge
		}
		return nil, err
	}
	return body, nil
}

// writeDomainError maps service errors to responses.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).Msg("unexpected error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "internal server error"})
		return
	}

	switch domainErr.Code {
	case model.ErrCodeProductNotFound:
		WriteNotFound(w)
	case model.ErrCodeInvalidJSON, model.ErrCodeMissingField:
		writeError(w, http.StatusBadRequest, domainErr.Message, logger)
	case model.ErrCodeBodyTooLarge:
		writeError(w, http.StatusRequestEntityTooLarge, domainErr.Message, logger)
	case model.ErrCodeUnauthorised, model.ErrCodeInvalidCredentials:
		writeError(w, http.StatusUnauthorized, domainErr.Message, logger)
	default:
		writeError(w, http.StatusInternalServerError, "internal server error", logger)
	}
}
