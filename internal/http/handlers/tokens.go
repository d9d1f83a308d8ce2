package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/models/dto"
	"github.com/hongminglow/accounts-be/internal/ratelimit"
)

// TokenIssuer is what TokenHandler needs from auth.Issuer.
type TokenIssuer interface {
	Issue(ctx context.Context, identifier, password string) (auth.TokenPair, error)
	Refresh(refreshToken string) (string, error)
}

// TokenHandler owns the token issuance and refresh endpoints.
type TokenHandler struct {
	issuer TokenIssuer
	log    logging.Logger
}

// NewTokenHandler constructs the handler.
func NewTokenHandler(issuer TokenIssuer, log logging.Logger) *TokenHandler {
	return &TokenHandler{issuer: issuer, log: logging.ForModule(log, "tokens")}
}

// Register attaches token routes. Both share the token rate-limit class.
func (h *TokenHandler) Register(r chi.Router, g Guards) {
	limited := r.With(g.Limit(ratelimit.ClassToken))
	limited.Post("/api/requesttoken/", h.handleRequestToken)
	limited.Post("/api/token/refresh/", h.handleRefresh)
}

func (h *TokenHandler) handleRequestToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	fields := map[string][]string{}
	if strings.TrimSpace(req.UsernameOrEmail) == "" {
		fields["username_or_email"] = []string{"This field is required."}
	}
	if req.Password == "" {
		fields["password"] = []string{"This field is required."}
	}
	if len(fields) > 0 {
		respond.Invalid(w, "validation failed", fields)
		return
	}

	pair, err := h.issuer.Issue(r.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.log.Warn(r.Context(), "token request rejected", "remote", r.RemoteAddr)
		}
		respondServiceError(w, r, h.log, "issue token", err)
		return
	}
	respond.JSON(w, http.StatusOK, "Token issued successfully", dto.TokenPairResponse{
		Access:  pair.Access,
		Refresh: pair.Refresh,
	})
}

func (h *TokenHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Refresh) == "" {
		respond.Invalid(w, "validation failed", map[string][]string{"refresh": {"This field is required."}})
		return
	}

	access, err := h.issuer.Refresh(req.Refresh)
	if err != nil {
		respondServiceError(w, r, h.log, "refresh token", err)
		return
	}
	respond.Raw(w, http.StatusOK, dto.RefreshResponse{Access: access})
}
