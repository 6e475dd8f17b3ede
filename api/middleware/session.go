package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront/api/responses"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
)

// SessionParam is the chi URL parameter holding the session id.
const SessionParam = "sessionId"

// SessionContext binds the {sessionId} path parameter to the request context
// and its log fields.
func SessionContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(chi.URLParam(r, SessionParam))
			if sessionID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id required"))
				return
			}
			ctx := logg.WithSessionID(WithSessionID(r.Context(), sessionID), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
