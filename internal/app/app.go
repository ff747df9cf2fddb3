package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/finbrief/finbrief/internal/clients/firecrawl"
	"github.com/finbrief/finbrief/internal/clients/gemini"
	"github.com/finbrief/finbrief/internal/clients/smtpmail"
	"github.com/finbrief/finbrief/internal/clients/yahoo"
	"github.com/finbrief/finbrief/internal/common"
	"github.com/finbrief/finbrief/internal/interfaces"
	"github.com/finbrief/finbrief/internal/services/analyst"
	"github.com/finbrief/finbrief/internal/services/digest"
	"github.com/finbrief/finbrief/internal/services/holdings"
	"github.com/finbrief/finbrief/internal/services/news"
	"github.com/finbrief/finbrief/internal/services/quote"
	"github.com/finbrief/finbrief/internal/storage"
)

// App holds all initialized clients, services, and storage. It is the
// shared core behind the HTTP server and the weekly scheduler.
type App struct {
	Config          *common.Config
	Logger          *common.Logger
	Storage         interfaces.StorageManager
	QuoteClient     interfaces.QuoteAPI
	SearchClient    interfaces.SearchClient
	LLMClient       interfaces.LLMClient
	Mailer          interfaces.Mailer
	QuoteService    interfaces.QuoteService
	NewsService     interfaces.NewsService
	AnalystService  interfaces.AnalystService
	HoldingsService interfaces.HoldingsService
	DigestService   interfaces.DigestService
	StartupTime     time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Config resolution: provided path, FINBRIEF_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("FINBRIEF_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "finbrief.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/finbrief.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage path to binary directory
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	quoteClient := yahoo.NewClient(
		yahoo.WithLogger(logger),
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	if config.Clients.Firecrawl.APIKey == "" {
		logger.Warn().Msg("Firecrawl API key not configured - news search will be unavailable")
	}
	searchClient := firecrawl.NewClient(config.Clients.Firecrawl.APIKey,
		firecrawl.WithLogger(logger),
		firecrawl.WithBaseURL(config.Clients.Firecrawl.BaseURL),
		firecrawl.WithTimeout(config.Clients.Firecrawl.GetTimeout()),
		firecrawl.WithRetry(config.Clients.Firecrawl.MaxRetries, time.Second),
	)

	var llmClient interfaces.LLMClient
	if config.Clients.Gemini.APIKey == "" {
		logger.Warn().Msg("Gemini API key not configured - AI analysis will fall back to HOLD")
	} else {
		client, err := gemini.NewClient(context.Background(), config.Clients.Gemini.APIKey,
			gemini.WithLogger(logger),
			gemini.WithModel(config.Clients.Gemini.Model),
		)
		if err != nil {
			storageManager.Close()
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		llmClient = client
	}

	mailer := smtpmail.NewClient(config.Email, smtpmail.WithLogger(logger))

	quoteService := quote.NewService(logger, quoteClient, quote.NewCache(common.FreshnessQuote))
	newsService := news.NewService(logger, searchClient, config.Digest.NewsPerTicker)
	analystService := analyst.NewService(logger, llmClient)
	holdingsService := holdings.NewService(logger, storageManager)
	digestService := digest.NewService(logger, config, storageManager,
		holdingsService, quoteService, newsService, analystService, mailer)

	logger.Info().
		Dur("startup", time.Since(startupStart)).
		Str("version", common.GetFullVersion()).
		Msg("Application initialized")

	return &App{
		Config:          config,
		Logger:          logger,
		Storage:         storageManager,
		QuoteClient:     quoteClient,
		SearchClient:    searchClient,
		LLMClient:       llmClient,
		Mailer:          mailer,
		QuoteService:    quoteService,
		NewsService:     newsService,
		AnalystService:  analystService,
		HoldingsService: holdingsService,
		DigestService:   digestService,
		StartupTime:     time.Now(),
	}, nil
}

// Close stops the scheduler and releases storage.
func (a *App) Close() error {
	a.StopDigestScheduler()
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
