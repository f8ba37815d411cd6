package handler

import (
	"net/http"

	"github.com/contactdesk/admin-server/internal/httputil"
	"github.com/contactdesk/admin-server/internal/service"
)

type ContactHandler struct {
	messages *service.MessageService
}

func NewContactHandler(messages *service.MessageService) *ContactHandler {
	return &ContactHandler{messages: messages}
}

// Submit accepts the public contact form as JSON or as a regular form post.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub service.ContactSubmission
	if isJSON(r) {
		if err := decodeJSON(r, &sub); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
	} else {
		sub = service.ContactSubmission{
			Company: r.FormValue("company"),
			Name:    r.FormValue("name"),
			Email:   r.FormValue("email"),
			Phone:   r.FormValue("phone"),
			Subject: r.FormValue("subject"),
			Message: r.FormValue("message"),
		}
	}

	if _, err := h.messages.Submit(r.Context(), sub); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated)
}
