package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/arborfam/arbor/pkg/composables"
	"github.com/arborfam/arbor/pkg/httpapi"
)

const OwnerHeader = "X-Arbor-Owner"

// ProvideTenant resolves the owner id from the request header and scopes the
// context to it. Requests without a valid owner id are rejected before they
// reach any repository.
func ProvideTenant() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(OwnerHeader))
			ownerID, err := uuid.Parse(raw)
			if err != nil || ownerID == uuid.Nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "OWNER_REQUIRED", "missing or invalid owner id", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), ownerID)))
		})
	}
}
