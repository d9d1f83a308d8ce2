package handlers

import (
	"net/http"

	"github.com/hongminglow/accounts-be/internal/ratelimit"
)

// Guards carries the middleware handlers attach to their routes.
type Guards struct {
	Limit        func(class ratelimit.Class) func(http.Handler) http.Handler
	Authenticate func(http.Handler) http.Handler
}
