package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avrm/blogward/internal/blogservice"
	"github.com/avrm/blogward/internal/common"
	"github.com/avrm/blogward/internal/companyservice"
	"github.com/avrm/blogward/internal/mailservice"
	"github.com/avrm/blogward/internal/ratingservice"
	"github.com/avrm/blogward/internal/readmodel"
)

const version = "1.0.0"

const (
	cachePrefix     = "blogward:"
	defaultCacheTTL = 5 * time.Minute
)

type application struct {
	config         *Config
	logger         *slog.Logger
	readModel      *readmodel.Manager
	store          *readmodel.Store
	invalidator    readmodel.Invalidator
	blogService    *blogservice.BlogService
	ratingService  *ratingservice.RatingService
	companyService *companyservice.CompanyService
	mailService    *mailservice.MailService
	broker         *common.MessageBroker
	metrics        *prometheus.Registry
}

// cacheTTLs is the per-key TTL table. Keys not listed fall back to
// defaultCacheTTL.
func cacheTTLs() map[readmodel.QueryKey]time.Duration {
	return map[readmodel.QueryKey]time.Duration{
		readmodel.KeyPostsList:      3 * time.Minute,
		readmodel.KeyPostDetail:     10 * time.Minute,
		readmodel.KeyTopPosts:       10 * time.Minute,
		readmodel.KeyLastPosts:      10 * time.Minute,
		readmodel.KeyAllTags:        10 * time.Minute,
		readmodel.KeyCategoriesList: time.Hour,
		readmodel.KeyAbout:          time.Hour,
		readmodel.KeyAuthorsList:    time.Hour,
		readmodel.KeyPostsCalendar:  15 * time.Minute,
		readmodel.KeyRatingDetail:   30 * time.Minute,
		readmodel.KeyMarkDetail:     30 * time.Minute,
	}
}

func main() {
	// Initialize the logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load the configuration
	cfg, err := loadConfig(".env")
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the database
	db, err := common.NewDB(cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, 10, 5, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	// Initialize the message broker
	URI := fmt.Sprintf("amqp://%s:%s@%s:%s/", cfg.RabbitMQ.User, cfg.RabbitMQ.Password, cfg.RabbitMQ.Host, cfg.RabbitMQ.Port)
	broker, err := common.NewMessageBroker(URI)
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupContactExchange(broker)
	if err != nil {
		logger.Error("failed to setup the contact exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize the cache backend
	var cache common.Cache
	switch cfg.CacheBackend {
	case "redis":
		rc, err := common.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rc.Close()
		cache = rc
	default:
		cache = common.NewMemoryCache(defaultCacheTTL, 10*time.Minute)
	}

	registry := prometheus.NewRegistry()

	store := readmodel.NewStore(db)
	manager := readmodel.NewManager(store, cache, cachePrefix, cacheTTLs(), defaultCacheTTL, readmodel.NewMetrics(registry), logger)
	invalidator := readmodel.NewCacheInvalidator(cache, cachePrefix, logger)
	files := common.NewDiskStore(cfg.MediaDir)

	// Initialize the services
	app := &application{
		config:         cfg,
		logger:         logger,
		readModel:      manager,
		store:          store,
		invalidator:    invalidator,
		blogService:    blogservice.NewBlogService(db, invalidator, files),
		ratingService:  ratingservice.NewRatingService(db),
		companyService: companyservice.NewCompanyService(db, broker),
		mailService:    mailservice.NewMailService(broker, cfg.Mail.Host, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.Sender, cfg.Mail.Port, logger),
		broker:         broker,
		metrics:        registry,
	}
	defer app.mailService.Close()

	// Initialize the consumer
	go app.mailService.SendContactEmail()

	// Start the HTTP server
	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
