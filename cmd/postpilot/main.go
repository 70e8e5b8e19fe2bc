package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/eringen/postpilot"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "post":
		if err := runPost(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "connect":
		if err := runConnect(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "suggest":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: postpilot suggest <industry>")
			os.Exit(1)
		}
		if err := runSuggest(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("postpilot %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	cfg := postpilot.Config{
		Addr:                  postpilot.EnvOr("POSTPILOT_ADDR", ":8000"),
		DatabasePath:          postpilot.EnvOr("POSTPILOT_DB", "data/postpilot.db"),
		JWTSecret:             postpilot.MustEnv("POSTPILOT_JWT_SECRET"),
		SessionSecret:         postpilot.MustEnv("POSTPILOT_SESSION_SECRET"),
		CookieSecure:          os.Getenv("POSTPILOT_COOKIE_SECURE") == "true",
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           postpilot.EnvOr("GEMINI_MODEL", "gemini-1.5-flash"),
		LinkedInClientID:      os.Getenv("LINKEDIN_CLIENT_ID"),
		LinkedInClientSecret:  os.Getenv("LINKEDIN_CLIENT_SECRET"),
		LinkedInRedirectURI:   postpilot.EnvOr("LINKEDIN_REDIRECT_URI", "http://localhost:3000/linkedin/callback"),
		AnalyticsEnabled:      os.Getenv("POSTPILOT_ANALYTICS") != "false",
		AnalyticsDatabasePath: postpilot.EnvOr("POSTPILOT_ANALYTICS_DB", "data/analytics.db"),
		TokenTTL:              envDuration("POSTPILOT_TOKEN_TTL", 12*time.Hour),
	}

	app := postpilot.New(cfg)
	defer app.Close()
	return app.Start()
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if hours, err := strconv.Atoi(v); err == nil {
		return time.Duration(hours) * time.Hour
	}
	return fallback
}

func printUsage() {
	fmt.Println(`postpilot - AI-assisted LinkedIn content server and client

Usage:
  postpilot <command> [arguments]

Commands:
  serve            Run the API server
  post <topic>     Generate a post and optionally improve, draft, schedule, or publish it
  connect          Link a LinkedIn account via OAuth
  suggest <name>   Print topic suggestions for an industry
  version          Print the postpilot version
  help             Show this help message

Client commands read POSTPILOT_API (default http://localhost:8000),
POSTPILOT_EMAIL, and POSTPILOT_PASSWORD from the environment.

Examples:
  postpilot serve
  postpilot post "Why code review matters" -type thought_leadership -publish
  postpilot post "Hiring update" -schedule 2026-09-15T09:30
  postpilot suggest Marketing`)
}
