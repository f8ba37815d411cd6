// Package imaging normalizes uploaded pictures before they are stored: the
// format is checked against an allow-list, oversized images are downscaled,
// and the result is re-encoded to PNG or JPEG.
package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	apperrors "github.com/contactdesk/admin-server/internal/errors"
)

const (
	// MaxDimension bounds the longer side of a stored image.
	MaxDimension = 1920
	// MaxSourceDimension rejects decompression bombs before a full decode.
	MaxSourceDimension = 12000
	// MaxUploadBytes bounds the raw upload.
	MaxUploadBytes = 10 << 20
	// JPEGQuality is used for every JPEG we write.
	JPEGQuality = 85
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
	MIMEGIF  = "image/gif"
)

// Format is an accepted input format.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatGIF  Format = "gif"
)

// Upload is a file as received from a multipart form.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Result is the normalized image ready for storage.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

var contentTypes = map[string]Format{
	"image/jpeg":  FormatJPEG,
	"image/jpg":   FormatJPEG,
	"image/pjpeg": FormatJPEG,
	"image/png":   FormatPNG,
	"image/gif":   FormatGIF,
}

var extensions = map[string]Format{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
}

// Process validates and normalizes u. A nil upload, or one without bytes or a
// filename, means no file was supplied and yields (nil, nil).
func Process(u *Upload) (*Result, error) {
	if u == nil || (len(u.Data) == 0 && u.Filename == "") {
		return nil, nil
	}

	format, err := DetectFormat(u.ContentType, u.Filename)
	if err != nil {
		return nil, err
	}

	if len(u.Data) > MaxUploadBytes {
		return nil, apperrors.PayloadTooLarge(MaxUploadBytes)
	}
	if len(u.Data) == 0 {
		return nil, apperrors.InvalidInput("image", "file is empty")
	}

	img, err := decode(u.Data, format)
	if err != nil {
		return nil, err
	}

	img = Fit(img, MaxDimension)

	return encode(img, format)
}

// DetectFormat picks the effective input format: an allowed declared content
// type wins, then the filename extension.
func DetectFormat(contentType, filename string) (Format, error) {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if f, ok := contentTypes[strings.ToLower(mediaType)]; ok {
				return f, nil
			}
		}
	}

	if f, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return f, nil
	}

	if contentType != "" {
		return "", apperrors.UnsupportedMediaType(contentType)
	}
	return "", apperrors.UnsupportedMediaType(filepath.Ext(filename))
}

func decode(data []byte, format Format) (image.Image, error) {
	cfg, err := decodeConfig(data, format)
	if err != nil {
		return nil, apperrors.InvalidInput("image", "could not decode "+string(format)).WithCause(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, apperrors.InvalidInput("image", "image has no pixels")
	}
	if cfg.Width > MaxSourceDimension || cfg.Height > MaxSourceDimension {
		return nil, apperrors.InvalidInput("image", "dimensions are too large")
	}

	var img image.Image
	r := bytes.NewReader(data)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatGIF:
		img, err = gif.Decode(r)
	}
	if err != nil {
		return nil, apperrors.InvalidInput("image", "could not decode "+string(format)).WithCause(err)
	}
	return img, nil
}

func decodeConfig(data []byte, format Format) (image.Config, error) {
	r := bytes.NewReader(data)
	switch format {
	case FormatJPEG:
		return jpeg.DecodeConfig(r)
	case FormatPNG:
		return png.DecodeConfig(r)
	default:
		return gif.DecodeConfig(r)
	}
}

// TargetSize returns the size after fitting w x h inside a limit x limit box.
// Images already within bounds keep their size.
func TargetSize(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		nh := (h*limit + w/2) / w
		return limit, atLeastOne(nh)
	}
	nw := (w*limit + h/2) / h
	return atLeastOne(nw), limit
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Fit downscales img with Catmull-Rom so that its longer side equals limit.
func Fit(img image.Image, limit int) image.Image {
	b := img.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy(), limit)
	if w == b.Dx() && h == b.Dy() {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func encode(img image.Image, format Format) (*Result, error) {
	var buf bytes.Buffer
	b := img.Bounds()

	if format == FormatPNG {
		if err := png.Encode(&buf, img); err != nil {
			return nil, apperrors.Internal("failed to encode image").WithCause(err)
		}
		return &Result{Data: buf.Bytes(), MIME: MIMEPNG, Width: b.Dx(), Height: b.Dy()}, nil
	}

	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, apperrors.Internal("failed to encode image").WithCause(err)
	}
	return &Result{Data: buf.Bytes(), MIME: MIMEJPEG, Width: b.Dx(), Height: b.Dy()}, nil
}

// flatten composites img onto white so transparent GIF pixels do not turn
// black in JPEG output.
func flatten(img image.Image) image.Image {
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
