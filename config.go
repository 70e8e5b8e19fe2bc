package postpilot

import "time"

// Config holds all configuration for a postpilot server.
type Config struct {
	Addr         string // Listen address (default ":8000")
	DatabasePath string // SQLite path (default "data/postpilot.db")

	JWTSecret     string // Required: signing secret for access tokens
	SessionSecret string // Required: cookie secret for the OAuth state session
	CookieSecure  bool   // Set true for HTTPS

	GeminiAPIKey string // Gemini API key; empty enables fallback generation
	GeminiModel  string // Model name (default "gemini-1.5-flash")

	LinkedInClientID     string // LinkedIn OAuth client id
	LinkedInClientSecret string // LinkedIn OAuth client secret
	LinkedInRedirectURI  string // OAuth redirect (default "http://localhost:3000/linkedin/callback")

	AnalyticsEnabled      bool   // Enable analytics endpoints (default true via New)
	AnalyticsDatabasePath string // Analytics SQLite path (default "data/analytics.db")

	TokenTTL time.Duration // Access token lifetime (default 12h)
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/postpilot.db"
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.GeminiModel == "" {
		c.GeminiModel = "gemini-1.5-flash"
	}
	if c.LinkedInRedirectURI == "" {
		c.LinkedInRedirectURI = "http://localhost:3000/linkedin/callback"
	}
	if c.TokenTTL == 0 {
		c.TokenTTL = 12 * time.Hour
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithEngine replaces the content engine (used by tests and self-hosted models).
func WithEngine(e ContentEngine) Option {
	return func(a *App) {
		a.Engine = e
	}
}

// WithPublisher replaces the LinkedIn client (used by tests).
func WithPublisher(p Publisher) Option {
	return func(a *App) {
		a.Publisher = p
	}
}
