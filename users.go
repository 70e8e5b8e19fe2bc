package postpilot

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Headline string `json:"headline"`
	Industry string `json:"industry"`
	Role     string `json:"role"`
	Company  string `json:"company"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Headline   string `json:"headline"`
	Industry   string `json:"industry"`
	Role       string `json:"role"`
	Company    string `json:"company"`
	BrandVoice string `json:"brand_voice"`
	Connected  bool   `json:"linkedin_connected"`
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Headline:   u.Headline,
		Industry:   u.Industry,
		Role:       u.Role,
		Company:    u.Company,
		BrandVoice: u.BrandVoice,
		Connected:  u.Connected,
	}
}

func (a *App) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}
	if _, err := a.Store.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "email already registered")
	} else if err != ErrNotFound {
		return err
	}
	hashed, err := HashPassword(req.Password)
	if err != nil {
		return err
	}
	user, err := a.Store.CreateUser(User{
		Email:          req.Email,
		Name:           strings.TrimSpace(req.Name),
		HashedPassword: hashed,
		Headline:       req.Headline,
		Industry:       req.Industry,
		Role:           req.Role,
		Company:        req.Company,
	})
	if err != nil {
		return err
	}
	return a.tokenResponse(c, user)
}

func (a *App) handleLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
	}
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	user, err := a.Store.GetUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err == ErrNotFound || (err == nil && !CheckPassword(req.Password, user.HashedPassword)) {
		a.loginLimiter.Record(c.RealIP())
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect email or password")
	}
	if err != nil {
		return err
	}
	return a.tokenResponse(c, user)
}

func (a *App) tokenResponse(c echo.Context, user User) error {
	token, err := GenerateToken(user.ID, user.Email, []byte(a.Config.JWTSecret), a.Config.TokenTTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"user":         toUserResponse(user),
	})
}

func (a *App) handleMe(c echo.Context) error {
	user := currentUser(c)
	return c.JSON(http.StatusOK, toUserResponse(user))
}

func (a *App) handleUpdateMe(c echo.Context) error {
	user := currentUser(c)
	var req struct {
		Name       *string `json:"name"`
		Headline   *string `json:"headline"`
		Industry   *string `json:"industry"`
		Role       *string `json:"role"`
		Company    *string `json:"company"`
		BrandVoice *string `json:"brand_voice"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&user.Name, req.Name)
	apply(&user.Headline, req.Headline)
	apply(&user.Industry, req.Industry)
	apply(&user.Role, req.Role)
	apply(&user.Company, req.Company)
	apply(&user.BrandVoice, req.BrandVoice)
	if err := a.Store.UpdateProfile(user); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
