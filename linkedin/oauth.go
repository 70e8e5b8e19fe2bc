package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Scope requested during authorization: identity plus member posting.
const Scope = "openid email profile w_member_social"

// AuthorizationURL builds the URL the user must visit to authorize the app.
func (c *Client) AuthorizationURL(state string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.ClientID},
		"redirect_uri":  {c.RedirectURI},
		"state":         {state},
		"scope":         {Scope},
	}
	return c.AuthURL + "?" + params.Encode()
}

// Token is the result of an authorization-code exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// ExchangeCode trades a one-time authorization code for an access token.
// Codes are single-use upstream; a second exchange with the same code fails.
func (c *Client) ExchangeCode(ctx context.Context, code string) (Token, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.RedirectURI},
		"client_id":     {c.ClientID},
		"client_secret": {c.ClientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("linkedin: token exchange failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("linkedin: read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("linkedin: token exchange failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var tok Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return Token{}, fmt.Errorf("linkedin: decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return Token{}, fmt.Errorf("linkedin: token exchange returned no access token")
	}
	return tok, nil
}

// Profile is the subset of the /userinfo response the app uses.
type Profile struct {
	Sub      string `json:"sub"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Headline string `json:"headline"`
	Industry string `json:"industry"`
	Location string `json:"locale"`
}

// GetProfile fetches the member profile via the OpenID userinfo endpoint.
func (c *Client) GetProfile(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIBase+"/userinfo", nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("linkedin: fetch profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("linkedin: fetch profile: status %d", resp.StatusCode)
	}
	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("linkedin: decode profile: %w", err)
	}
	return p, nil
}
