package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront/api/responses"
	"github.com/angelmondragon/storefront/internal/session"
)

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

// SessionCreate opens an anonymous shopping session with an empty cart.
func SessionCreate(registry *session.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := registry.Create(r.Context())
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{SessionID: sess.ID()})
	}
}
