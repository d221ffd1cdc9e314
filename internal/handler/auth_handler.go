package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"catalog-cms/internal/model"

	"github.com/rs/zerolog"
)

// LoginRequest is the body posted by the admin login page.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthHandler checks admin credentials.
type AuthHandler struct {
	username string
	password string
	logger   zerolog.Logger
}

// NewAuthHandler creates a new auth handler. Login is disabled when password
// is empty.
func NewAuthHandler(username, password string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		username: username,
		password: password,
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || h.password == "" {
		WriteNotFound(w)
		return
	}

	body, err := readBody(w, r, 1<<16)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	var req LoginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeDomainError(w, model.ErrInvalidJSON, h.logger)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		h.logger.Warn().Str("username", req.Username).Msg("login rejected")
		writeDomainError(w, model.ErrInvalidCredentials, h.logger)
		return
	}

	h.logger.Info().Str("username", req.Username).Msg("login accepted")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
