package postpilot

import (
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/postpilot/linkedin"
)

const oauthStateKey = "linkedin_oauth_state"

func (a *App) handleLinkedInConnect(c echo.Context) error {
	state := linkedin.NewState()
	if sess, err := session.Get(sessionName, c); err == nil {
		sess.Values[oauthStateKey] = state
		sess.Options.Path = "/"
		sess.Options.MaxAge = 600
		sess.Options.HttpOnly = true
		sess.Options.Secure = a.Config.CookieSecure
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			c.Logger().Warnf("could not persist oauth state: %v", err)
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"authorization_url": a.Publisher.AuthorizationURL(state),
		"state":             state,
	})
}

type exchangeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

func (a *App) handleLinkedInExchange(c echo.Context) error {
	user := currentUser(c)
	var req exchangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "authorization code is required")
	}

	// The state check only applies when both sides still hold one. Clients
	// that lost the session cookie can complete the exchange; the code
	// itself is single-use upstream.
	if sess, err := session.Get(sessionName, c); err == nil {
		if stored, _ := sess.Values[oauthStateKey].(string); stored != "" && req.State != "" && stored != req.State {
			return echo.NewHTTPError(http.StatusBadRequest, "oauth state mismatch")
		}
		delete(sess.Values, oauthStateKey)
		_ = sess.Save(c.Request(), c.Response())
	}

	ctx := c.Request().Context()
	tok, err := a.Publisher.ExchangeCode(ctx, req.Code)
	if err != nil {
		c.Logger().Errorf("linkedin token exchange failed: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "token exchange failed")
	}
	profile, err := a.Publisher.GetProfile(ctx, tok.AccessToken)
	if err != nil {
		c.Logger().Errorf("linkedin profile fetch failed: %v", err)
		return echo.NewHTTPError(http.StatusBadRequest, "could not fetch LinkedIn profile")
	}

	var expiry *time.Time
	if tok.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		expiry = &t
	}
	if err := a.Store.SetConnection(user.ID, profile.Sub, tok.AccessToken, expiry, true); err != nil {
		return err
	}
	if err := a.Store.SyncLinkedInProfile(user.ID, profile.Name, profile.Email, profile.Headline, profile.Industry); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "LinkedIn account connected",
		"profile": map[string]string{
			"linkedin_id": profile.Sub,
			"name":        profile.Name,
			"email":       profile.Email,
			"headline":    profile.Headline,
		},
	})
}

func (a *App) handleLinkedInStatus(c echo.Context) error {
	user := currentUser(c)
	resp := map[string]interface{}{"connected": user.Connected}
	if user.Connected {
		resp["linkedin_id"] = user.LinkedInID
		if user.TokenExpiry != nil {
			resp["token_expires_at"] = user.TokenExpiry.UTC().Format(time.RFC3339)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) handleLinkedInDisconnect(c echo.Context) error {
	user := currentUser(c)
	if err := a.Store.SetConnection(user.ID, "", "", nil, false); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "LinkedIn account disconnected",
	})
}

type publishRequest struct {
	PostID  int64  `json:"post_id"`
	Content string `json:"content"`
}

// handleLinkedInPublish attempts a publish and always answers 200 once the
// upstream call was made. The success flag in the body is authoritative; an
// upstream rejection is success=false, not an HTTP error.
func (a *App) handleLinkedInPublish(c echo.Context) error {
	user := currentUser(c)
	var req publishRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if !user.Connected || user.AccessToken == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "LinkedIn account not connected")
	}
	if user.TokenExpiry != nil && user.TokenExpiry.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "LinkedIn token expired, reconnect your account")
	}

	content := req.Content
	if content == "" && req.PostID != 0 {
		post, err := a.Store.GetPost(req.PostID, user.ID)
		if err == ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		if err != nil {
			return err
		}
		content = post.Content
		if len(post.Hashtags) > 0 {
			content += "\n\n" + hashtagLine(post.Hashtags)
		}
	}
	if content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to publish")
	}

	result, err := a.Publisher.Publish(c.Request().Context(), user.AccessToken, "urn:li:person:"+user.LinkedInID, content)
	if err != nil {
		c.Logger().Errorf("linkedin publish transport failure: %v", err)
		return echo.NewHTTPError(http.StatusBadGateway, "could not reach LinkedIn")
	}

	if result.Success && req.PostID != 0 {
		if err := a.Store.MarkPublished(req.PostID, user.ID, result.PostURL); err != nil && err != ErrNotFound {
			return err
		}
		if a.analyticsStore != nil {
			if err := a.analyticsStore.Seed(user.ID, req.PostID); err != nil {
				c.Logger().Warnf("could not seed analytics for post %d: %v", req.PostID, err)
			}
		}
	}
	return c.JSON(http.StatusOK, result)
}

func hashtagLine(tags []string) string {
	line := ""
	for i, t := range tags {
		if i > 0 {
			line += " "
		}
		line += "#" + t
	}
	return line
}
