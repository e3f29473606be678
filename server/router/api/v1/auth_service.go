package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/akalem0808/memori/server/auth"
	"github.com/akalem0808/memori/store"
)

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signInResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Role        string    `json:"role"`
}

// SignIn exchanges credentials for a bearer token.
func (s *APIV1Service) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed sign-in request")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	ctx := c.Request().Context()
	user, err := s.Store.GetUser(ctx, &store.FindUser{Username: &req.Username})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to find user").SetInternal(err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "incorrect username or password")
	}
	if user.RowStatus != "NORMAL" {
		return echo.NewHTTPError(http.StatusUnauthorized, "account is archived")
	}

	now := time.Now()
	token, err := auth.GenerateAccessToken(user.ID, user.Role, now, []byte(s.Secret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue token").SetInternal(err)
	}

	return c.JSON(http.StatusOK, signInResponse{
		AccessToken: token,
		ExpiresAt:   now.Add(auth.AccessTokenDuration),
		Role:        user.Role,
	})
}

const userIDContextKey = "memori.user-id"

// JWTMiddleware authenticates /memories requests. Demo mode is open so
// the instance can be explored without an account.
func (s *APIV1Service) JWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.Profile.Mode == "demo" {
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
			}

			userID, _, err := auth.Authenticate(token, []byte(s.Secret))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token").SetInternal(err)
			}

			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

// currentUserID returns the authenticated user id, or 0 in demo mode.
func currentUserID(c echo.Context) int32 {
	if id, ok := c.Get(userIDContextKey).(int32); ok {
		return id
	}
	return 0
}
