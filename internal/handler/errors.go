package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"postboard/internal/service"
)

const (
	msgServerError       = "Server Error"
	msgPostNotFound      = "Post not found"
	msgCommentNotFound   = "Comment does not exist"
	msgNotAuthorized     = "User not authorized"
	msgAlreadyLiked      = "Post already liked"
	msgNotLiked          = "Post has not yet been liked"
	msgUserNotFound      = "User not found"
	msgInvalidCredential = "Invalid Credentials"
	msgInvalidBody       = "Invalid request body"
	msgBodyTooLarge      = "Request body too large"
	msgTextRequired      = "Text is required"
)

type MessageResponse struct {
	Msg string `json:"msg"`
}

type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

type ValidationErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// WriteError sends {"msg": message}.
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	writeSuccess(w, MessageResponse{Msg: message}, statusCode)
}

func writeFieldErrors(w http.ResponseWriter, fieldErrors ...FieldError) {
	writeSuccess(w, ValidationErrorResponse{Errors: fieldErrors}, http.StatusBadRequest)
}

func writeSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// validationErrors turns validator failures into field errors using messages,
// keyed by the JSON field name.
func validationErrors(err error, messages map[string]string) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Msg: msgInvalidBody}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out = append(out, FieldError{Msg: msg, Param: fe.Field()})
	}
	return out
}

// writeServiceError maps service errors to responses. notFoundMsg is used for
// a missing or malformed post id so both cases look the same to clients.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, service.ErrCommentNotFound):
		WriteError(w, msgCommentNotFound, http.StatusNotFound)
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrInvalidID):
		WriteError(w, notFoundMsg, http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, msgNotAuthorized, http.StatusUnauthorized)
	case errors.Is(err, service.ErrAlreadyLiked):
		WriteError(w, msgAlreadyLiked, http.StatusBadRequest)
	case errors.Is(err, service.ErrNotLiked):
		WriteError(w, msgNotLiked, http.StatusBadRequest)
	case errors.Is(err, service.ErrEmptyText):
		writeFieldErrors(w, FieldError{Msg: msgTextRequired, Param: "text"})
	case errors.Is(err, service.ErrUnknownIdentity):
		WriteError(w, msgUserNotFound, http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeFieldErrors(w, FieldError{Msg: msgInvalidCredential})
	default:
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, msgServerError, http.StatusInternalServerError)
	}
}
