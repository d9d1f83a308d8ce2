package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/logging"
	"github.com/hongminglow/accounts-be/internal/models"
	"github.com/hongminglow/accounts-be/internal/models/dto"
	"github.com/hongminglow/accounts-be/internal/ratelimit"
)

// AccountService is what AccountHandler needs from accounts.Service.
type AccountService interface {
	Create(ctx context.Context, req dto.CreateAccountRequest) (models.Account, error)
	Get(ctx context.Context, id auth.Identity) (models.Account, error)
	Update(ctx context.Context, id auth.Identity, req dto.UpdateAccountRequest) (models.Account, error)
	Delete(ctx context.Context, id auth.Identity) error
}

var createFields = []string{
	"username", "email", "password", "first_name", "last_name",
	"birthdate", "nationalid", "phonenumber", "wallet",
}

// AccountHandler owns registration and self-service profile endpoints.
type AccountHandler struct {
	svc AccountService
	log logging.Logger
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(svc AccountService, log logging.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, log: logging.ForModule(log, "accounts")}
}

// Register attaches account routes.
func (h *AccountHandler) Register(r chi.Router, g Guards) {
	r.With(g.Limit(ratelimit.ClassRegister)).Post("/api/createuser/", h.handleCreate)
	r.With(g.Limit(ratelimit.ClassGeneral)).Get("/api/createuser/", h.handleDescribe)

	r.Group(func(r chi.Router) {
		r.Use(g.Limit(ratelimit.ClassGeneral), g.Authenticate)
		r.Get("/api/updateuser/", h.handleProfile)
		r.Put("/api/updateuser/", h.handleUpdate)
		r.Patch("/api/updateuser/", h.handleUpdate)
		r.Delete("/api/deleteuser/", h.handleDelete)
	})
}

func (h *AccountHandler) handleDescribe(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, "This endpoint is for creating users only. Use POST method.",
		map[string][]string{"fields_required": createFields})
}

func (h *AccountHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	created, err := h.svc.Create(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.log, "create account", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "User created successfully", summary(created))
}

func (h *AccountHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
		return
	}
	account, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, h.log, "get account", err)
		return
	}
	respond.JSON(w, http.StatusOK, "User retrieved successfully", profile(account))
}

func (h *AccountHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
		return
	}
	var req dto.UpdateAccountRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if _, err := h.svc.Update(r.Context(), id, req); err != nil {
		respondServiceError(w, r, h.log, "update account", err)
		return
	}
	respond.JSON(w, http.StatusOK, "User updated successfully", nil)
}

func (h *AccountHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, h.log, "delete account", err)
		return
	}
	respond.JSON(w, http.StatusOK, "User deleted successfully", nil)
}

func summary(a models.Account) dto.AccountSummary {
	return dto.AccountSummary{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}

func profile(a models.Account) dto.AccountProfile {
	p := dto.AccountProfile{
		AccountSummary: summary(a),
		NationalID:     a.NationalID,
		PhoneNumber:    a.PhoneNumber,
		Wallet:         a.Wallet.Round(2),
	}
	if !a.Birthdate.IsZero() {
		p.Birthdate = a.Birthdate.Format(models.BirthdateLayout)
	}
	return p
}
