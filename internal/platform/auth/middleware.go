package auth

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/CodeTanzania/ewea-case/internal/party"
)

// Claims carries the acting-party identity issued by the stakeholder
// registry alongside the registered JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Name         string `json:"name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	Abbreviation string `json:"abbreviation"`
	Role         string `json:"role"`
	Locale       string `json:"locale"`
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// JWTMiddleware authenticates requests with an HMAC-signed bearer token
// and stores the acting party on the request context.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "malformed authorization header")
			}

			claims := &Claims{}
			opts := []jwt.ParserOption{
				jwt.WithValidMethods([]string{"HS256"}),
			}
			if cfg.Issuer != "" {
				opts = append(opts, jwt.WithIssuer(cfg.Issuer))
			}
			if cfg.Audience != "" {
				opts = append(opts, jwt.WithAudience(cfg.Audience))
			}

			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(cfg.Secret), nil
			}, opts...)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			id, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
			}

			p := &party.Party{
				ID:           id,
				Name:         claims.Name,
				Email:        claims.Email,
				Mobile:       claims.Mobile,
				Abbreviation: claims.Abbreviation,
				Role:         claims.Role,
				Locale:       claims.Locale,
			}
			c.SetRequest(c.Request().WithContext(party.NewContext(c.Request().Context(), p)))

			return next(c)
		}
	}
}

// DevAuthMiddleware is a permissive middleware for development that
// injects a fixed acting party when no token is supplied.
func DevAuthMiddleware() echo.MiddlewareFunc {
	devParty := &party.Party{
		ID:     uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Name:   "Dev Reporter",
		Email:  "dev@example.com",
		Mobile: "255714000000",
		Role:   "Dispatcher",
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if party.FromContext(c.Request().Context()) == nil {
				c.SetRequest(c.Request().WithContext(party.NewContext(c.Request().Context(), devParty)))
			}
			return next(c)
		}
	}
}
