package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/contactdesk/admin-server/internal/audit"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/httputil"
	"github.com/contactdesk/admin-server/internal/imaging"
	"github.com/contactdesk/admin-server/internal/model"
	"github.com/contactdesk/admin-server/internal/service"
	"github.com/contactdesk/admin-server/internal/util"
)

// writeImage serves stored image bytes under their recorded MIME type.
func writeImage(w http.ResponseWriter, img *model.Image) {
	mime := img.MIME
	if mime == "" {
		mime = imaging.MIMEJPEG
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(img.Data)
}

func optionalFloat(r *http.Request, field string) (*float64, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, apperrors.InvalidInput(field, "must be a number")
	}
	return &f, nil
}

func auditContent(r *http.Request, kind, op string, id int64) {
	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventContentChange,
		Details: map[string]interface{}{"kind": kind, "op": op, "id": id},
	})
}

type OfferHandler struct {
	offers *service.OfferService
}

func NewOfferHandler(offers *service.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *OfferHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	img, err := h.offers.Image(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeImage(w, img)
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.readForm(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	offer, err := h.offers.Create(r.Context(), *in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	auditContent(r, "offer", "create", offer.ID)
	writeJSON(w, http.StatusCreated, offer)
}

func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	in, err := h.readForm(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	offer, err := h.offers.Update(r.Context(), id, *in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	auditContent(r, "offer", "update", id)
	writeJSON(w, http.StatusOK, offer)
}

func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.offers.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	auditContent(r, "offer", "delete", id)
	writeSuccess(w, http.StatusOK)
}

func (h *OfferHandler) readForm(r *http.Request) (*service.OfferInput, error) {
	if err := parseMultipart(r); err != nil {
		return nil, err
	}

	lat, err := optionalFloat(r, "latitude")
	if err != nil {
		return nil, err
	}
	long, err := optionalFloat(r, "longitude")
	if err != nil {
		return nil, err
	}

	upload, err := formUpload(r)
	if err != nil {
		return nil, err
	}

	return &service.OfferInput{
		OfferFields: model.OfferFields{
			Title:       strings.TrimSpace(r.FormValue("title")),
			Slug:        strings.TrimSpace(r.FormValue("slug")),
			Description: util.OptionalString(r.FormValue("description")),
			Link:        util.OptionalString(r.FormValue("link")),
			Latitude:    lat,
			Longitude:   long,
		},
		Image:             upload,
		KeepExistingImage: formBool(r.FormValue("keep_existing_image")),
	}, nil
}

type BlogHandler struct {
	posts *service.BlogService
}

func NewBlogHandler(posts *service.BlogService) *BlogHandler {
	return &BlogHandler{posts: posts}
}

func (h *BlogHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPublished(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *BlogHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListAll(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// The public blog routes share one path segment: a slug for the post and a
// numeric id for its image.
const blogPostParam = "post"

func (h *BlogHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetPublished(r.Context(), chi.URLParam(r, blogPostParam))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *BlogHandler) Image(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, blogPostParam)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	img, err := h.posts.Image(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	writeImage(w, img)
}

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.readForm(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	post, err := h.posts.Create(r.Context(), *in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	auditContent(r, "blog", "create", post.ID)
	writeJSON(w, http.StatusCreated, post)
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	in, err := h.readForm(r)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	post, err := h.posts.Update(r.Context(), id, *in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	auditContent(r, "blog", "update", id)
	writeJSON(w, http.StatusOK, post)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	auditContent(r, "blog", "delete", id)
	writeSuccess(w, http.StatusOK)
}

func (h *BlogHandler) readForm(r *http.Request) (*service.BlogPostInput, error) {
	if err := parseMultipart(r); err != nil {
		return nil, err
	}

	upload, err := formUpload(r)
	if err != nil {
		return nil, err
	}

	return &service.BlogPostInput{
		BlogPostFields: model.BlogPostFields{
			Title:     strings.TrimSpace(r.FormValue("title")),
			Slug:      strings.TrimSpace(r.FormValue("slug")),
			Excerpt:   util.OptionalString(r.FormValue("excerpt")),
			Content:   r.FormValue("content"),
			Published: formBool(r.FormValue("published")),
		},
		Image: upload,
	}, nil
}
