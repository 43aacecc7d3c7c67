// Package middleware carries the echo middleware for authentication and
// request identity propagation.
package middleware

import (
	"context"
	"strings"

	"wifibilling/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Auth validates bearer tokens and injects the caller identity into the
// request context. Tokens are verified against the shared secret, or
// against the identity provider's JWKS when a URL is configured.
type Auth struct {
	secret []byte
	jwks   *keyfunc.JWKS
}

func NewAuth(secret string) *Auth {
	return &Auth{secret: []byte(secret)}
}

// NewAuthWithJWKS fetches the provider's key set. Key rotation is handled
// by keyfunc's background refresh.
func NewAuthWithJWKS(ctx context.Context, jwksURL string) (*Auth, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{Ctx: ctx})
	if err != nil {
		return nil, err
	}
	return &Auth{jwks: jwks}, nil
}

func (a *Auth) keyFunc(token *jwt.Token) (interface{}, error) {
	if a.jwks != nil {
		return a.jwks.Keyfunc(token)
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, common.ValidationErrorf("unexpected signing method %v", token.Header["alg"])
	}
	return a.secret, nil
}

type tokenClaims struct {
	TenantID string `json:"tenant_id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
	jwt.RegisteredClaims
}

// Middleware returns the echo middleware enforcing authentication on
// every route it wraps.
func (a *Auth) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				return common.SendUnauthorizedError(c)
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &tokenClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, a.keyFunc)
			if err != nil || !token.Valid {
				log.Debug().Err(err).Msg("token rejected")
				return common.SendUnauthorizedError(c)
			}

			tenantID, err := uuid.Parse(claims.TenantID)
			if err != nil {
				log.Debug().Msg("token missing tenant claim")
				return common.SendUnauthorizedError(c)
			}
			if !claims.Active {
				return common.SendUnauthorizedError(c)
			}

			identity := common.Identity{
				TenantID: tenantID,
				Email:    claims.Email,
				Role:     claims.Role,
			}
			ctx := common.WithIdentity(c.Request().Context(), identity)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
