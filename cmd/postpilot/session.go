package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/eringen/postpilot/workflow"
)

// newSession logs into the API with credentials from the environment.
func newSession(ctx context.Context) (*workflow.Client, error) {
	email := os.Getenv("POSTPILOT_EMAIL")
	password := os.Getenv("POSTPILOT_PASSWORD")
	if email == "" || password == "" {
		return nil, errors.New("set POSTPILOT_EMAIL and POSTPILOT_PASSWORD")
	}
	client := workflow.NewClient(apiBase())
	if err := client.Login(ctx, email, password); err != nil {
		return nil, err
	}
	return client, nil
}

func apiBase() string {
	if v := os.Getenv("POSTPILOT_API"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:8000"
}

func runPost(args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	postType := fs.String("type", "professional", "post type: professional, casual, thought_leadership")
	length := fs.String("length", "medium", "length: short, medium, long")
	tone := fs.String("tone", "professional", "tone: professional, casual, inspirational")
	audience := fs.String("audience", "", "target audience")
	improve := fs.String("improve", "", "improvement to apply: improve, shorten, expand, tone_change, custom")
	request := fs.String("request", "", "custom improvement request (with -improve custom)")
	draft := fs.Bool("draft", false, "save the result as a draft")
	schedule := fs.String("schedule", "", "schedule for a local time (2006-01-02T15:04)")
	publish := fs.Bool("publish", false, "publish to LinkedIn immediately")

	// The topic may come before or after the flags.
	var topic string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		topic, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if topic == "" && fs.NArg() > 0 {
		topic = fs.Arg(0)
	}

	ctx := context.Background()
	client, err := newSession(ctx)
	if err != nil {
		return err
	}

	conn := workflow.NewConnectionManager(client)
	if _, err := conn.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not check LinkedIn status: %v\n", err)
	}
	ctl := workflow.NewController(client, conn, nil)

	post, err := ctl.Generate(ctx, workflow.GenerateRequest{
		Topic:    topic,
		PostType: *postType,
		Length:   *length,
		Tone:     *tone,
		Audience: *audience,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Generated post %d (%d chars, score %d):\n\n%s\n\n",
		post.ID, post.CharacterCount, post.Engagement.EngagementScore, post.Content)

	if *improve != "" {
		content, err := ctl.Improve(ctx, *improve, *tone, *request)
		if err != nil {
			return err
		}
		fmt.Printf("Improved (%s):\n\n%s\n\n", *improve, content)
	}

	switch {
	case *publish:
		postURL, err := ctl.Publish(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Published: %s\n", postURL)
	case *schedule != "":
		at, err := ctl.Schedule(ctx, *schedule)
		if err != nil {
			return err
		}
		fmt.Printf("Scheduled for %s\n", at.Format(time.RFC3339))
	case *draft:
		if err := ctl.SaveDraft(ctx); err != nil {
			return err
		}
		fmt.Println("Saved as draft.")
	}
	return nil
}

// runConnect walks the OAuth flow: it prints the authorization URL, then
// listens on the redirect URI for the browser to come back with a code.
// The callback guard in the connection manager keeps duplicate browser
// requests to the callback route from re-exchanging the code.
func runConnect() error {
	ctx := context.Background()
	client, err := newSession(ctx)
	if err != nil {
		return err
	}
	conn := workflow.NewConnectionManager(client)

	authURL, err := conn.Connect(ctx)
	if err != nil {
		return err
	}

	redirect := os.Getenv("LINKEDIN_REDIRECT_URI")
	if redirect == "" {
		redirect = "http://localhost:3000/linkedin/callback"
	}
	ru, err := url.Parse(redirect)
	if err != nil {
		return fmt.Errorf("invalid LINKEDIN_REDIRECT_URI: %w", err)
	}

	ln, err := net.Listen("tcp", ru.Host)
	if err != nil {
		return fmt.Errorf("cannot listen on %s for the OAuth redirect: %w", ru.Host, err)
	}
	defer ln.Close()

	done := make(chan error, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ru.Path {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		err := conn.HandleCallback(r.Context(), q.Get("code"), q.Get("error"))
		if err != nil {
			http.Error(w, "LinkedIn connection failed: "+err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "LinkedIn connected. You can close this window.")
		}
		select {
		case done <- err:
		default:
		}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	fmt.Printf("Open this URL in your browser to authorize:\n\n  %s\n\nWaiting for the redirect on %s ...\n", authURL, ru.Host)

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case <-time.After(5 * time.Minute):
		return errors.New("timed out waiting for the OAuth redirect")
	}
	fmt.Println("LinkedIn account connected.")
	return nil
}

func runSuggest(industry string) error {
	ctx := context.Background()
	client, err := newSession(ctx)
	if err != nil {
		return err
	}
	cache := workflow.NewTopicSuggestionCache(client.Suggestions, 0)
	topics, err := cache.Get(ctx, industry)
	if err != nil {
		return err
	}
	for _, t := range topics {
		fmt.Println("-", t)
	}
	return nil
}
