package handlers

import (
	"net/http"

	"postboard/internal/middleware"
)

// GetCurrentUser returns the identity bound by the auth gate, without its password hash.
func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, msgUserNotFound, http.StatusUnauthorized)
		return
	}

	user, err := h.AuthService.CurrentUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, msgUserNotFound)
		return
	}

	writeSuccess(w, user, http.StatusOK)
}
