package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contactdesk/admin-server/internal/config"
	"github.com/contactdesk/admin-server/internal/middleware"
	"github.com/contactdesk/admin-server/internal/service"
)

// Services bundles what the HTTP layer needs from the service package.
type Services struct {
	Admin    *service.AdminService
	Sessions *service.SessionStore
	Archiver *service.MessageArchiver
	Messages *service.MessageService
	Offers   *service.OfferService
	Blog     *service.BlogService
}

func NewRouter(cfg *config.Config, db Pinger, svc Services, limiter service.Limiter) http.Handler {
	adminHandler := NewAdminHandler(svc.Admin, svc.Archiver, cfg.SecureCookies)
	offerHandler := NewOfferHandler(svc.Offers)
	blogHandler := NewBlogHandler(svc.Blog)
	contactHandler := NewContactHandler(svc.Messages)

	sessionGate := middleware.NewAdminSessionMiddleware(svc.Sessions, cfg.SecureCookies)
	securityHeaders := middleware.NewSecurityHeadersMiddleware(cfg.SecureCookies)
	jsonLimit := middleware.NewBodyLimitMiddleware(config.MaxJSONBodyBytes)
	uploadLimit := middleware.NewBodyLimitMiddleware(config.MaxMultipartBodyBytes)
	loginLimit := middleware.NewLoginRateLimit(limiter, cfg.LoginRateLimit)
	contactLimit := middleware.NewContactRateLimit(limiter, cfg.ContactRateLimit)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestLogger)
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))

	r.Get("/health", Health(db))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/admin", func(r chi.Router) {
		r.Use(securityHeaders.Handler)

		r.With(jsonLimit.Handler, loginLimit.Handler).Post("/login", adminHandler.Login)
		r.With(jsonLimit.Handler).Post("/logout", adminHandler.Logout)
		r.Get("/check", adminHandler.Check)

		r.Route("/api", func(r chi.Router) {
			r.Use(sessionGate.Handler)
			if cfg.CSRFProtection {
				r.Use(middleware.NewCSRFMiddleware(cfg.SecureCookies).Handler)
			}

			r.Group(func(r chi.Router) {
				r.Use(jsonLimit.Handler)
				adminHandler.APIRoutes(r)
				r.Get("/blog", blogHandler.ListAll)
				r.Delete("/offers/{id}", offerHandler.Delete)
				r.Delete("/blog/{id}", blogHandler.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(uploadLimit.Handler)
				r.Post("/offers", offerHandler.Create)
				r.Put("/offers/{id}", offerHandler.Update)
				r.Post("/blog", blogHandler.Create)
				r.Put("/blog/{id}", blogHandler.Update)
			})
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/offers", offerHandler.List)
		r.Get("/offers/{id}/image", offerHandler.Image)
		r.Get("/blog", blogHandler.ListPublished)
		r.Get("/blog/{"+blogPostParam+"}", blogHandler.GetBySlug)
		r.Get("/blog/{"+blogPostParam+"}/image", blogHandler.Image)
	})

	r.With(jsonLimit.Handler, contactLimit.Handler).Post("/contact/message", contactHandler.Submit)

	r.NotFound(NewStaticHandler(cfg.StaticDir).ServeHTTP)

	return r
}
