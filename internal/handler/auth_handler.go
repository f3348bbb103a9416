package handlers

import (
	"net/http"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

var loginMessages = map[string]string{
	"email":    "Please include a valid email",
	"password": "Password is required",
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err, loginMessages)...)
		return
	}

	token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err, msgUserNotFound)
		return
	}

	writeSuccess(w, TokenResponse{Token: token}, http.StatusOK)
}
