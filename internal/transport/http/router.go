package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otp-auth-api/internal/application/account"
	"github.com/otp-auth-api/internal/application/otp"
	"github.com/otp-auth-api/internal/config"
	"github.com/otp-auth-api/internal/transport/http/handler"
	appmiddleware "github.com/otp-auth-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// OTP issuance is the most abuse-prone endpoint: roughly one request per
	// 20s per IP with a small burst. Verification and login get a looser limit.
	issueRL := appmiddleware.NewRateLimiter(rate.Every(20*time.Second), 3)
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		OtpRepo:     deps.OtpRepo,
		SMSSender:   deps.SMSSender,
		Signer:      deps.JWTProvider,
		Cooldown:    cfg.OTPCooldown,
		Expiry:      cfg.OTPExpiry,
		MaxAttempts: cfg.MaxVerifyAttempts,
		BcryptCost:  cfg.BcryptCost,
		Production:  cfg.IsProduction(),
	})
	accountSvc := account.NewService(account.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		Tokens:      deps.JWTProvider,
		BcryptCost:  cfg.BcryptCost,
	})

	healthH := handler.NewHealthHandler()
	otpH := handler.NewOtpHandler(otpSvc)
	accountH := handler.NewAccountHandler(accountSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(issueRL.Limit).Post("/auth/send-otp", otpH.Send)
		r.With(sensitiveRL.Limit).Post("/auth/verify-otp", otpH.Verify)
		r.With(sensitiveRL.Limit).Post("/auth/register", accountH.Register)
		r.With(sensitiveRL.Limit).Post("/auth/login", accountH.Login)
		r.Post("/auth/refresh", accountH.Refresh)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/auth/me", accountH.Me)
		})
	})

	return r
}
