package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/contactdesk/admin-server/internal/config"
	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/repository"
	"github.com/contactdesk/admin-server/internal/service"
)

const testPassword = "correct horse battery staple"

type testApp struct {
	handler  http.Handler
	db       *database.DB
	messages repository.MessageRepository
}

func newTestApp(t *testing.T, tweak func(*config.Config)) *testApp {
	t.Helper()

	db, err := database.Connect(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(context.Background()))
	t.Cleanup(func() { db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>home</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "404.html"), []byte("<h1>lost</h1>"), 0o644))

	cfg := &config.Config{
		DatabaseDriver:    config.DriverSQLite,
		AdminPasswordHash: string(hash),
		StaticDir:         staticDir,
		LoginRateLimit:    100,
		ContactRateLimit:  100,
	}
	if tweak != nil {
		tweak(cfg)
	}

	messageRepo := repository.NewMessageRepository(db.DB)
	sessions := service.NewSessionStore(repository.NewAdminSessionRepository(db.DB))

	svc := Services{
		Admin:    service.NewAdminService(sessions, cfg.AdminPasswordHash),
		Sessions: sessions,
		Archiver: service.NewMessageArchiver(db, messageRepo, repository.NewArchiveRepository(db.DB)),
		Messages: service.NewMessageService(messageRepo),
		Offers:   service.NewOfferService(repository.NewOfferRepository(db.DB)),
		Blog:     service.NewBlogService(repository.NewBlogPostRepository(db.DB)),
	}

	return &testApp{
		handler:  NewRouter(cfg, db, svc, service.NewMemoryRateLimiter()),
		db:       db,
		messages: messageRepo,
	}
}

func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) doJSON(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, cookies...)
}

// login returns the session cookie for a successful login.
func (a *testApp) login(t *testing.T) *http.Cookie {
	t.Helper()

	rec := a.doJSON(http.MethodPost, "/admin/login", map[string]string{"password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == config.AdminSessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}
