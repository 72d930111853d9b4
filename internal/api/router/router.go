package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/totalfootcare/checkin-kiosk/internal/http/handlers"
	httpmiddleware "github.com/totalfootcare/checkin-kiosk/internal/http/middleware"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Kiosk              *handlers.KioskHandler
	AdminAppointments  *handlers.AdminAppointmentsHandler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Verification is the one endpoint worth rate limiting; it is the only
	// one that fans out to the scheduling backend.
	VerifyRatePerSecond float64
	VerifyRateBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.Kiosk.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Patient-facing kiosk flow, all under a kiosk session.
	r.Route("/kiosk", func(kiosk chi.Router) {
		kiosk.Use(httpmiddleware.KioskSession)

		verifyRoute := kiosk.With()
		if cfg.VerifyRatePerSecond > 0 {
			verifyRoute = kiosk.With(httpmiddleware.RateLimit(cfg.VerifyRatePerSecond, cfg.VerifyRateBurst))
		}
		verifyRoute.Post("/verify", cfg.Kiosk.Verify)

		kiosk.Get("/steps", cfg.Kiosk.Steps)
		kiosk.Get("/state", cfg.Kiosk.State)
		kiosk.Get("/state/{section}", cfg.Kiosk.StateSection)
		kiosk.Post("/steps/{step}/advance", cfg.Kiosk.Advance)
		kiosk.Post("/steps/{step}/back", cfg.Kiosk.Back)
		kiosk.Post("/documents", cfg.Kiosk.Documents)
		kiosk.Put("/insurance-type", cfg.Kiosk.InsuranceType)
		kiosk.Post("/submit", cfg.Kiosk.SubmitCheckIn)
		kiosk.Post("/abandon", cfg.Kiosk.Abandon)
	})

	// Front-desk roster behind admin JWT.
	if cfg.AdminAppointments != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/appointments", cfg.AdminAppointments.List)
		})
	}

	return r
}
