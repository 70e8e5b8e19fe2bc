// Package postpilot is a LinkedIn content assistant server built with Go,
// Echo, and Google Gemini. It provides AI post generation and improvement,
// drafts and scheduling, OAuth-based LinkedIn publishing, and per-post
// analytics out of the box.
package postpilot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/postpilot/analytics"
	"github.com/eringen/postpilot/engine"
	"github.com/eringen/postpilot/linkedin"
)

// ContentEngine generates and rewrites post content. The default is the
// Gemini-backed engine; tests and self-hosted setups swap in their own.
type ContentEngine = engine.Engine

// Publisher is the LinkedIn-facing side of the app: OAuth plus UGC posting.
type Publisher interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (linkedin.Token, error)
	GetProfile(ctx context.Context, accessToken string) (linkedin.Profile, error)
	Publish(ctx context.Context, accessToken, personURN, content string) (linkedin.PublishResult, error)
}

// App is the central postpilot application. It wires together the store,
// content engine, LinkedIn client, handlers, and middleware.
type App struct {
	Config    Config
	Echo      *echo.Echo
	Store     *Store
	Engine    ContentEngine
	Publisher Publisher

	loginLimiter   *LoginLimiter
	analyticsStore *analytics.Store
	customRoutes   []func(*App)
}

// New creates a new postpilot App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, engine, middleware, and routes, then
// starts the server. It blocks until the server stops.
func (a *App) Start() error {
	if err := a.init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) init() error {
	if a.Config.JWTSecret == "" {
		return fmt.Errorf("postpilot: JWTSecret is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("postpilot: SessionSecret is required")
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("postpilot: init store: %w", err)
	}
	a.Store = store

	if a.Engine == nil {
		if a.Config.GeminiAPIKey != "" {
			gem, err := engine.NewGemini(context.Background(), a.Config.GeminiAPIKey, a.Config.GeminiModel)
			if err != nil {
				return fmt.Errorf("postpilot: init gemini: %w", err)
			}
			a.Engine = gem
		} else {
			a.Echo.Logger.Warn("no Gemini API key configured, using fallback content generation")
			a.Engine = &engine.Fallback{}
		}
	}

	if a.Publisher == nil {
		a.Publisher = linkedin.New(a.Config.LinkedInClientID, a.Config.LinkedInClientSecret, a.Config.LinkedInRedirectURI)
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("postpilot: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.POST("/users/register", a.handleRegister)
	api.POST("/users/login", a.handleLogin)

	users := api.Group("/users", a.requireAuth)
	users.GET("/me", a.handleMe)
	users.PUT("/me", a.handleUpdateMe)

	content := api.Group("/content", a.requireAuth)
	content.POST("/generate", a.handleGenerate)
	content.POST("/improve", a.handleImprove)
	content.POST("/save-draft", a.handleSaveDraft)
	content.GET("/drafts", a.handleDrafts)
	content.POST("/schedule-post", a.handleSchedulePost)
	content.GET("/suggestions/:industry", a.handleSuggestions)

	li := api.Group("/linkedin", a.requireAuth)
	li.GET("/connect", a.handleLinkedInConnect)
	li.POST("/exchange-token", a.handleLinkedInExchange)
	li.GET("/status", a.handleLinkedInStatus)
	li.POST("/disconnect", a.handleLinkedInDisconnect)
	li.POST("/publish", a.handleLinkedInPublish)

	if a.analyticsStore != nil {
		handler := analytics.NewHandler(a.analyticsStore, a.Store)
		handler.RegisterRoutes(api.Group("/analytics", a.requireAuth))
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Close()
	}
	if a.analyticsStore != nil {
		a.analyticsStore.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("postpilot: required environment variable %s is not set", key)
	}
	return v
}
