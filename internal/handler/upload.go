package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/contactdesk/admin-server/internal/config"
	apperrors "github.com/contactdesk/admin-server/internal/errors"
	"github.com/contactdesk/admin-server/internal/imaging"
)

const imageField = "image"

func parseMultipart(r *http.Request) error {
	err := r.ParseMultipartForm(config.MultipartMemoryBytes)
	if err == nil {
		return nil
	}
	if errors.Is(err, http.ErrNotMultipart) {
		return apperrors.UnsupportedMediaType(r.Header.Get("Content-Type"))
	}
	return bodyError(err)
}

// formUpload reads the image part of a parsed multipart form. A missing or
// empty part yields nil.
func formUpload(r *http.Request) (*imaging.Upload, error) {
	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, bodyError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxUploadBytes+1))
	if err != nil {
		return nil, bodyError(err)
	}
	if len(data) == 0 && header.Filename == "" {
		return nil, nil
	}

	return &imaging.Upload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}
