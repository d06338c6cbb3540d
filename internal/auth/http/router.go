package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/internal/auth/store"
	"github.com/aussiebroadwan/passgate/pkg/httpx"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"

	_ "github.com/aussiebroadwan/passgate/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys          *jwtx.KeySet
	verifier      jwtx.Verifier
	encryptionKey string
	buildVersion  string
	startTime     time.Time
	logger        *slog.Logger

	store          store.Store
	TokenService   *service.TokenService
	AccountService *service.AccountService
	ClientService  *service.ClientService
	Extractors     service.ExtractorChain

	// Limits are the rate limit profiles. Defaults to
	// httpx.DefaultRateLimits().
	Limits httpx.RateLimits
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	encryptionKey, buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:           http.NewServeMux(),
		keys:          keys,
		verifier:      verifier,
		encryptionKey: encryptionKey,
		buildVersion:  buildVersion,
		startTime:     time.Now(),
		store:         st,
		logger:        logger,
		Extractors:    service.DefaultExtractors(),
		Limits:        httpx.DefaultRateLimits(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerAccount()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Passgate Authorization Service API
//	@version		0.1.0
//	@description	OAuth2 password and refresh_token grants with RSA-encrypted passwords.
//	@description
//	@description				Access tokens are RS256 JWTs and can be verified with the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/passgate
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

func (r *Router) registerOAuth2() {
	clientAuth := ClientAuthMiddleware(r.ClientService)

	// POST /token - moderate limit per IP, strict per IP + username
	// (password guessing against one account)
	tokenHandler := &TokenHandler{Extractors: r.Extractors, TokenService: r.TokenService}
	r.Mux.Handle("POST /auth/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(r.Limits.Moderate),
			FormMiddleware,
			httpx.RateLimitByIPAndFormField(r.Limits.Strict, "username"),
			clientAuth,
		),
	)

	// GET /key - public, fetched before every login
	r.Mux.Handle("GET /auth/key",
		httpx.Chain(KeyHandler(r.encryptionKey),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)

	r.Mux.Handle("GET /auth/jwks",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)

	// POST /revoke and /introspect - client authenticated, moderate limit
	// per client
	r.Mux.Handle("POST /auth/revoke",
		httpx.Chain(&RevokeHandler{TokenService: r.TokenService},
			clientAuth,
			httpx.RateLimitByPrincipal(r.Limits.Moderate),
		),
	)
	r.Mux.Handle("POST /auth/introspect",
		httpx.Chain(&IntrospectHandler{TokenService: r.TokenService},
			clientAuth,
			httpx.RateLimitByPrincipal(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerAccount() {
	h := &MeHandler{AccountService: r.AccountService}

	secured := httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier), // verify JWT (iss/exp)
		httpx.RequireAnyScope("user"),
		httpx.RateLimitByPrincipal(r.Limits.Lenient),
	)

	r.Mux.Handle("GET /auth/me", secured)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys, r.encryptionKey),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
}
