package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"postboard/internal/middleware"
)

type TextRequest struct {
	Text string `json:"text" validate:"required"`
}

var textMessages = map[string]string{
	"text": msgTextRequired,
}

// requester is only called behind the auth gate, so the id is always present.
func requester(r *http.Request) string {
	userID, _ := middleware.UserIDFromContext(r.Context())
	return userID
}

func (h *Handlers) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return "", false
	}

	if err := h.Validate.Struct(req); err != nil {
		writeFieldErrors(w, validationErrors(err, textMessages)...)
		return "", false
	}

	return req.Text, true
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), requester(r), text)
	if err != nil {
		h.writeServiceError(w, r, err, msgPostNotFound)
		return
	}

	writeSuccess(w, post, http.StatusOK)
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.GetPosts(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, msgPostNotFound)
		return
	}

	writeSuccess(w, posts, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err, msgPostNotFound)
		return
	}

	writeSuccess(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.PostService.DeletePost(r.Context(), requester(r), mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, r, err, msgPostNotFound)
		return
	}

	writeSuccess(w, MessageResponse{Msg: "Post removed"}, http.StatusOK)
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	likes, err := h.PostService.LikePost(r.Context(), requester(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err, msgPostNotFound)
		return
	}

	writeSuccess(w, likes, http.StatusOK)
}

func (h *Handlers) UnlikePost(w http.ResponseWriter, r *http.Request) {
	likes, err := h.PostService.UnlikePost(r.Context(), requester(r), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err, msgPostNotFound)
		return
	}

	writeSuccess(w, likes, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	comments, err := h.PostService.AddComment(r.Context(), requester(r), mux.Vars(r)["id"], text)
	if err != nil {
		h.writeServiceError(w, r, err, msgPostNotFound)
		return
	}

	writeSuccess(w, comments, http.StatusOK)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	comments, err := h.PostService.DeleteComment(r.Context(), requester(r), vars["id"], vars["commentId"])
	if err != nil {
		h.writeServiceError(w, r, err, msgPostNotFound)
		return
	}

	writeSuccess(w, comments, http.StatusOK)
}
