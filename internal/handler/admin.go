package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/contactdesk/admin-server/internal/audit"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/httputil"
	"github.com/contactdesk/admin-server/internal/middleware"
	"github.com/contactdesk/admin-server/internal/model"
	"github.com/contactdesk/admin-server/internal/service"
)

type AdminHandler struct {
	adminService  *service.AdminService
	archiver      *service.MessageArchiver
	secureCookies bool
}

func NewAdminHandler(
	adminService *service.AdminService,
	archiver *service.MessageArchiver,
	secureCookies bool,
) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		archiver:      archiver,
		secureCookies: secureCookies,
	}
}

// APIRoutes registers the message routes. The caller mounts them behind the
// session gate.
func (h *AdminHandler) APIRoutes(r chi.Router) {
	r.Get("/messages", h.ListMessages)
	r.Post("/messages/{id}/archive", h.ArchiveMessage)
	r.Delete("/messages/{id}", h.DeleteMessage)

	r.Get("/archived/messages", h.ListArchived)
	r.Delete("/archived/messages/{id}", h.DeleteArchived)
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if isJSON(r) {
		if err := decodeJSON(r, &req); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
	} else {
		req.Password = r.FormValue("password")
	}

	token, err := h.adminService.Login(r.Context(), req.Password, httputil.ClientIPPtr(r))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrCodeUnauthorized) {
			middleware.ClearSessionCookie(w, h.secureCookies)
			audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure})
		}
		httputil.WriteError(w, r, err)
		return
	}

	middleware.SetSessionCookie(w, token, h.secureCookies)
	audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginSuccess})
	writeSuccess(w, http.StatusOK)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.adminService.Logout(r.Context(), token); err != nil {
			httputil.WriteError(w, r, err)
			return
		}
		audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout})
	} else {
		log.Debug().Msg("logout without session cookie")
	}

	middleware.ClearSessionCookie(w, h.secureCookies)
	writeSuccess(w, http.StatusOK)
}

func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	ok, err := h.adminService.IsAuthenticated(r.Context(), middleware.SessionToken(r), httputil.ClientIPPtr(r))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": ok})
}

func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	page, err := h.archiver.ListActive(r.Context(), p.Page, p.Limit)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) ArchiveMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	var req struct {
		Action model.ArchiveAction `json:"action"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.archiver.Apply(r.Context(), id, req.Action); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	event := audit.EventMessageArchive
	if req.Action == model.ArchiveActionRestore {
		event = audit.EventMessageRestore
	}
	audit.LogFromRequest(r, audit.Event{Type: event, MessageID: id})
	writeSuccess(w, http.StatusOK)
}

// DeleteMessage archives rather than destroys; permanent deletion only
// happens from the archive.
func (h *AdminHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	archived, err := h.archiver.Archive(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:      audit.EventMessageArchive,
		MessageID: id,
		Details:   map[string]interface{}{"archiveId": archived.ArchiveID},
	})
	writeSuccess(w, http.StatusOK)
}

func (h *AdminHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	p := ParsePagination(r)

	page, err := h.archiver.ListArchived(r.Context(), p.Page, p.Limit)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *AdminHandler) DeleteArchived(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.archiver.DeleteArchived(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventArchiveDelete,
		Details: map[string]interface{}{"archiveId": id},
	})
	writeSuccess(w, http.StatusOK)
}
