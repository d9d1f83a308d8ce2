package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hongminglow/accounts-be/internal/accounts"
	"github.com/hongminglow/accounts-be/internal/auth"
	"github.com/hongminglow/accounts-be/internal/http/respond"
	"github.com/hongminglow/accounts-be/internal/logging"
)

const maxBodyBytes = 1 << 20

var (
	errEmptyBody    = errors.New("empty body")
	errTrailingData = errors.New("unexpected data after JSON object")
)

// decodeJSON reads exactly one JSON value into dst. An empty body yields
// errEmptyBody; anything after the value yields errTrailingData.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Unexpected errors are logged and never leak to the client.
func respondServiceError(w http.ResponseWriter, r *http.Request, log logging.Logger, op string, err error) {
	var verr *accounts.ValidationError
	switch {
	case errors.As(err, &verr):
		respond.Invalid(w, "validation failed", verr.Fields)
	case auth.IsAuthError(err):
		respond.Error(w, http.StatusUnauthorized, err.Error())
	default:
		log.Error(r.Context(), op+" failed", "error", err, "request_id", chimw.GetReqID(r.Context()))
		respond.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
