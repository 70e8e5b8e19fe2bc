// Package linkedin is a minimal client for the LinkedIn OAuth2 and UGC
// posting APIs: authorization URL construction, authorization-code
// exchange, profile lookup, and post publishing.
package linkedin

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"
)

// Client talks to the LinkedIn REST API. Endpoint fields exist so tests
// can point the client at a local server.
type Client struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string

	AuthURL  string // default https://www.linkedin.com/oauth/v2/authorization
	TokenURL string // default https://www.linkedin.com/oauth/v2/accessToken
	APIBase  string // default https://api.linkedin.com/v2

	HTTPClient *http.Client
}

// New creates a Client with production endpoints.
func New(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURI:  redirectURI,
		AuthURL:      "https://www.linkedin.com/oauth/v2/authorization",
		TokenURL:     "https://www.linkedin.com/oauth/v2/accessToken",
		APIBase:      "https://api.linkedin.com/v2",
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// NewState returns a random URL-safe state nonce for the OAuth flow.
func NewState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
