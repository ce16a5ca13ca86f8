package router

import (
	"database/sql"
	"net/http"

	_ "gnap-as/docs"
	"gnap-as/internal/adapters/auth/jwks"
	mem "gnap-as/internal/adapters/storage/memory"
	pg "gnap-as/internal/adapters/storage/postgres"
	"gnap-as/internal/cleanup"
	"gnap-as/internal/config"
	"gnap-as/internal/domain/clients"
	"gnap-as/internal/domain/grants"
	"gnap-as/internal/domain/interactions"
	"gnap-as/internal/domain/resources"
	"gnap-as/internal/domain/tokens"
	"gnap-as/internal/middleware"
	"gnap-as/internal/platform/httpclient"
	"gnap-as/internal/platform/logger"
	"gnap-as/internal/platform/metrics"
	"gnap-as/internal/ports/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Config
	Logger logger.Logger // nil => Nop

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Keys firma continuation y access tokens. nil => clave efímera nueva.
	Keys tokens.KeyProvider

	// Registry para /metrics. nil => uno propio con collectors de Go y proceso.
	Registry *prometheus.Registry

	// KeyResolver baja JWKS por referencia. nil => jwks.Resolver con httpclient.
	KeyResolver clients.KeyResolver
}

// App es lo que arma NewRouter: el handler HTTP y la limpieza que comparte
// los mismos repos (el scheduler de serve y el comando sweep la usan).
type App struct {
	Handler http.Handler
	Cleanup *cleanup.Runner
}

type repos struct {
	uow          storage.UnitOfWork
	clients      clients.Repository
	information  clients.InformationRepository
	resources    resources.Repository
	interactions interactions.Repository
	tokens       tokens.Repository
	grants       grants.Repository
}

func NewRouter(opts Options) (*App, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	keys := opts.Keys
	if keys == nil {
		k, err := tokens.NewEphemeralKey()
		if err != nil {
			return nil, err
		}
		keys = k
		log.Warn("using ephemeral signing key; tokens will not survive a restart", nil)
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	rec := metrics.NewPrometheus(cfg.AppName, reg)

	resolver := opts.KeyResolver
	if resolver == nil {
		resolver = jwks.NewResolver(httpclient.New(httpclient.DefaultTimeout))
	}

	rp := newRepos(opts.DB)
	if opts.DB != nil {
		log.Info("storage: postgres", nil)
	} else {
		log.Info("storage: in-memory", nil)
	}

	// Services por módulo
	clientsSvc := clients.NewService(rp.clients, rp.information, jwks.NewVerifier(),
		clients.WithKeyResolver(resolver),
		clients.WithLogger(log),
	)
	resourcesSvc := resources.NewService(rp.resources)
	interactionsSvc := interactions.NewService(rp.interactions, interactions.Config{
		Issuer:  cfg.Issuer,
		Timeout: cfg.InteractionTimeout(),
	}, log)
	tokensSvc := tokens.NewService(rp.tokens, resourcesSvc, keys, tokens.Config{
		Issuer:   cfg.Issuer,
		Lifetime: cfg.TokenLifetime(),
	},
		tokens.WithLogger(log),
		tokens.WithMetrics(rec),
	)
	grantsSvc := grants.NewService(rp.uow, rp.grants, grants.Deps{
		Clients:      clientsSvc,
		Resources:    resourcesSvc,
		Interactions: interactionsSvc,
		Tokens:       tokensSvc,
	}, grants.Config{Lifetime: cfg.TokenLifetime()},
		grants.WithLogger(log),
		grants.WithMetrics(rec),
	)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover)
	r.Use(middleware.AuthContext())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	clients.RegisterRoutes(r, clientsSvc)
	grants.RegisterRoutes(r, grantsSvc)
	interactions.RegisterRoutes(r, interactionsSvc, grants.InteractionFlow(grantsSvc))
	tokens.RegisterRoutes(r, tokensSvc)

	runner := cleanup.NewRunner(
		grantsSvc.CleanupExpiredGrants,
		tokensSvc.CleanupExpiredTokens,
		interactionsSvc.CleanupExpiredInteractions,
		log,
	)

	return &App{Handler: r, Cleanup: runner}, nil
}

func newRepos(db *sql.DB) repos {
	if db != nil {
		return repos{
			uow:          pg.NewUnitOfWork(db),
			clients:      pg.NewClientsRepo(db),
			information:  pg.NewInformationRepo(db),
			resources:    pg.NewResourcesRepo(db),
			interactions: pg.NewInteractionsRepo(db),
			tokens:       pg.NewTokensRepo(db),
			grants:       pg.NewGrantsRepo(db),
		}
	}
	return repos{
		uow:          mem.NewUnitOfWork(),
		clients:      mem.NewClientsRepo(),
		information:  mem.NewInformationRepo(),
		resources:    mem.NewResourcesRepo(),
		interactions: mem.NewInteractionsRepo(),
		tokens:       mem.NewTokensRepo(),
		grants:       mem.NewGrantsRepo(),
	}
}
