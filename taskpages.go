package taskpages

import (
	"fmt"
	"time"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/extrahand/taskpages/articles"
	"github.com/extrahand/taskpages/categories"
	"github.com/extrahand/taskpages/internal/logging"
	"github.com/extrahand/taskpages/internal/logging/gologger"
	"github.com/extrahand/taskpages/pkg/interfaces"
)

// CategoryService exports the category page service contract for consumers
// of the taskpages package.
type CategoryService = categories.Service

// ArticleService exports the article service contract.
type ArticleService = articles.Service

// Module is the top level taskpages runtime facade: it wires the category
// and article services over the configured storage and logging backends.
type Module struct {
	cfg     Config
	db      *bun.DB
	loggers interfaces.LoggerProvider

	categoryRepo categories.Repository
	articleRepo  articles.Repository

	// categoryOpts is kept so Seed can rebuild the service with a
	// deterministic id generator while preserving the module wiring.
	categoryOpts []categories.ServiceOption

	categories categories.Service
	articles   articles.Service
}

// Option overrides parts of the module wiring.
type Option func(*moduleOptions)

type moduleOptions struct {
	db            *bun.DB
	loggers       interfaces.LoggerProvider
	categoryRepo  categories.Repository
	articleRepo   articles.Repository
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	clock         func() time.Time
}

// WithDB supplies the database handle required by the bun storage provider.
func WithDB(db *bun.DB) Option {
	return func(o *moduleOptions) {
		o.db = db
	}
}

// WithLoggerProvider overrides the logging backend selected by the config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.loggers = provider
	}
}

// WithCategoryRepository overrides the category page store.
func WithCategoryRepository(repo categories.Repository) Option {
	return func(o *moduleOptions) {
		o.categoryRepo = repo
	}
}

// WithArticleRepository overrides the article store.
func WithArticleRepository(repo articles.Repository) Option {
	return func(o *moduleOptions) {
		o.articleRepo = repo
	}
}

// WithCache supplies the read-through cache used when Features.Cache is on.
func WithCache(service cache.CacheService, serializer cache.KeySerializer) Option {
	return func(o *moduleOptions) {
		o.cacheService = service
		o.keySerializer = serializer
	}
}

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) Option {
	return func(o *moduleOptions) {
		o.clock = clock
	}
}

// New constructs a module from cfg. A zero Config gets DefaultConfig
// semantics: noop logging over in-memory storage.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	loggers := options.loggers
	if loggers == nil && cfg.Logging.Provider == "gologger" {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		loggers = provider
	}

	m := &Module{
		cfg:     cfg,
		db:      options.db,
		loggers: loggers,
	}

	if err := m.wireStorage(options); err != nil {
		return nil, err
	}

	serviceOpts := []categories.ServiceOption{
		categories.WithLogger(logging.CategoriesLogger(loggers)),
	}
	if options.clock != nil {
		serviceOpts = append(serviceOpts, categories.WithClock(options.clock))
	}
	if cfg.Location != "" {
		serviceOpts = append(serviceOpts, categories.WithDefaultLocation(cfg.Location))
	}
	if cfg.URLs.BaseURL != "" {
		serviceOpts = append(serviceOpts, categories.WithURLResolver(
			categories.NewURLKitResolver(categories.URLKitResolverOptions{
				Manager: categories.DefaultRouteManager(cfg.URLs.BaseURL),
			}),
		))
	}
	m.categoryOpts = serviceOpts
	m.categories = categories.NewService(m.categoryRepo, serviceOpts...)

	if cfg.Features.Articles {
		articleOpts := []articles.ServiceOption{
			articles.WithLogger(logging.ArticlesLogger(loggers)),
		}
		if options.clock != nil {
			articleOpts = append(articleOpts, articles.WithClock(options.clock))
		}
		m.articles = articles.NewService(m.articleRepo, articleOpts...)
	}

	return m, nil
}

func (m *Module) wireStorage(options moduleOptions) error {
	m.categoryRepo = options.categoryRepo
	m.articleRepo = options.articleRepo

	switch m.cfg.Storage.Provider {
	case "", "memory":
		if m.categoryRepo == nil {
			m.categoryRepo = categories.NewMemoryCategoryRepository()
		}
		if m.articleRepo == nil {
			m.articleRepo = articles.NewMemoryArticleRepository()
		}
	case "bun":
		if m.db == nil {
			return fmt.Errorf("taskpages: bun storage requires a database handle (use WithDB)")
		}
		cacheService, keySerializer := options.cacheService, options.keySerializer
		if !m.cfg.Features.Cache {
			cacheService, keySerializer = nil, nil
		}
		if m.categoryRepo == nil {
			m.categoryRepo = categories.NewBunCategoryRepositoryWithCache(m.db, cacheService, keySerializer)
		}
		if m.articleRepo == nil {
			m.articleRepo = articles.NewBunArticleRepositoryWithCache(m.db, cacheService, keySerializer)
		}
	default:
		return ErrStorageProviderUnknown
	}
	return nil
}

// Categories returns the configured category page service.
func (m *Module) Categories() CategoryService {
	return m.categories
}

// Articles returns the configured article service, or nil when the feature
// is disabled.
func (m *Module) Articles() ArticleService {
	if m == nil {
		return nil
	}
	return m.articles
}

// DB exposes the underlying database handle for advanced integrations.
func (m *Module) DB() *bun.DB {
	if m == nil {
		return nil
	}
	return m.db
}

// Logger returns a module-scoped logger from the configured provider.
func (m *Module) Logger(name string) interfaces.Logger {
	if m == nil {
		return logging.NoOp()
	}
	return logging.ModuleLogger(m.loggers, name)
}
