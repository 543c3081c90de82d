package handler

import (
	"errors"
	"time"

	"github.com/MangKong-coder/rest-api/domain"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	tokenContextKey  = "token"
	userIDContextKey = "userId"
	defaultTokenTTL  = time.Hour
)

type Claims struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Validate is called by the jwt parser after the registered claims checked out.
func (c *Claims) Validate() error {
	if c.UserID == "" {
		return errors.New("token carries no user id")
	}
	if c.ExpiresAt == nil {
		return errors.New("token carries no expiry")
	}
	return nil
}

func newToken(user *domain.User, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("missing secret")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := time.Now()
	claims := &Claims{
		Email:  user.Email,
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// and exposes the token's user id through UserID.
func (h *Handler) RequireAuth() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(h.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
		ContextKey:  tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		SuccessHandler: func(c echo.Context) {
			if token, ok := c.Get(tokenContextKey).(*jwt.Token); ok {
				if claims, ok := token.Claims.(*Claims); ok {
					c.Set(userIDContextKey, claims.UserID)
				}
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return &domain.Error{Kind: domain.KindAuthentication, Message: "Not authenticated.", Err: err}
		},
	})
}

// UserID returns the authenticated user's id, or "" outside RequireAuth.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDContextKey).(string)
	return id
}
