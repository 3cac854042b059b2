package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-email-otp/internal/application/otp"
	"github.com/go-email-otp/internal/config"
	"github.com/go-email-otp/internal/pkg/logger"
	"github.com/go-email-otp/internal/transport/http/handler"
	appmiddleware "github.com/go-email-otp/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the root health check.
const Version = "1.0"

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.RequestLogger(logger.Named("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:      deps.Store,
		Mailer:     deps.Mailer,
		Generate:   deps.Generate,
		Now:        deps.Now,
		TTL:        cfg.OTPTTL,
		CodeLength: cfg.OTPLength,
		Brand:      cfg.AppName,
		SenderName: cfg.SenderName,
	})

	healthH := handler.NewHealthHandler(Version)
	otpH := handler.NewOTPHandler(otpSvc)
	smtpH := handler.NewSMTPCheckHandler(deps.Mailer, cfg)

	r.Get("/", healthH.Root)
	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/health-check/{action}", healthH.Ping)
	r.Get("/smtp-check", smtpH.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/send-otp", otpH.Send)
	r.Post("/verify-otp", otpH.Verify)

	return r
}
