package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wayline/fleet/internal/auth/revocation"
	"github.com/wayline/fleet/internal/auth/service"
	"github.com/wayline/fleet/internal/auth/store"
	"github.com/wayline/fleet/pkg/httpx"
	"github.com/wayline/fleet/pkg/jwtx"
	"github.com/wayline/fleet/pkg/slogx"

	_ "github.com/wayline/fleet/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	issuer        *jwtx.Issuer
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger
	secureCookies bool

	store       store.Store
	revocations *revocation.Store

	Credentials *service.CredentialValidator
	Sessions    *service.SessionManager
	Accounts    *service.AccountService
}

func NewRouter(
	issuer *jwtx.Issuer,
	buildVersion string,
	st store.Store,
	revocations *revocation.Store,
	secureCookies bool,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		issuer:        issuer,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		secureCookies: secureCookies,
		store:         st,
		revocations:   revocations,
		logger:        logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTOTP()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Wayline Fleet Auth API
//	@version		0.1.0
//	@description	Authentication and session lifecycle for the Wayline fleet platform:
//	@description	credential login with progressive lockout, rotating refresh tokens with
//	@description	theft detection, OAuth upsert-login and optional TOTP.
//
//	@contact.name				Wayline Platform Team
//	@contact.url				https://github.com/wayline/fleet
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Unauthenticated credential endpoints get the strict per-IP limit:
	// they are the brute-force surface.
	registerHandler := &RegisterHandler{Accounts: r.Accounts}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	loginHandler := &LoginHandler{
		Credentials:   r.Credentials,
		Sessions:      r.Sessions,
		RefreshTTL:    r.issuer.RefreshTTL(),
		SecureCookies: r.secureCookies,
	}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	refreshHandler := &RefreshHandler{
		Sessions:      r.Sessions,
		RefreshTTL:    r.issuer.RefreshTTL(),
		SecureCookies: r.secureCookies,
	}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Logout needs a verified bearer so we know whose session to clear.
	logoutHandler := &LogoutHandler{
		Sessions:      r.Sessions,
		SecureCookies: r.secureCookies,
	}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			AuthnMiddleware(r.issuer, r.Sessions),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	meHandler := &MeHandler{Store: r.store}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(meHandler,
			AuthnMiddleware(r.issuer, r.Sessions),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Provider identity arrives pre-verified from the gateway's code
	// exchange; this endpoint only does the upsert-login.
	oauthHandler := &OAuthCallbackHandler{
		Sessions:      r.Sessions,
		RefreshTTL:    r.issuer.RefreshTTL(),
		SecureCookies: r.secureCookies,
	}
	r.Mux.Handle("POST /v1/auth/oauth/callback",
		httpx.Chain(oauthHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerTOTP() {
	h := &TOTPHandler{Accounts: r.Accounts}

	securedProvision := httpx.Chain(http.HandlerFunc(h.HandleProvision),
		AuthnMiddleware(r.issuer, r.Sessions),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	// Strict limit on enable/disable: both accept guessable 6-digit codes.
	securedEnable := httpx.Chain(http.HandlerFunc(h.HandleEnable),
		AuthnMiddleware(r.issuer, r.Sessions),
		httpx.RateLimitByUser(httpx.StrictLimit),
	)
	securedDisable := httpx.Chain(http.HandlerFunc(h.HandleDisable),
		AuthnMiddleware(r.issuer, r.Sessions),
		httpx.RateLimitByUser(httpx.StrictLimit),
	)

	r.Mux.Handle("POST /v1/auth/totp/provision", securedProvision)
	r.Mux.Handle("POST /v1/auth/totp/enable", securedEnable)
	r.Mux.Handle("POST /v1/auth/totp/disable", securedDisable)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.revocations),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
