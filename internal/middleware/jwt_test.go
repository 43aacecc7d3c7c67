package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wifibilling/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return signed
}

func runRequest(authHeader string) (*httptest.ResponseRecorder, common.Identity, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var identity common.Identity
	var reached bool
	handler := NewAuth(testSecret).Middleware()(func(c echo.Context) error {
		reached = true
		tenantID, _ := common.GetTenantIDFromContext(c.Request().Context())
		identity = common.Identity{
			TenantID: tenantID,
			Email:    common.GetActorFromContext(c.Request().Context()),
		}
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, identity, reached
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	rec, _, reached := runRequest("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuth_MalformedTokenRejected(t *testing.T) {
	rec, _, reached := runRequest("Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuth_InactiveAccountRejected(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"tenant_id": uuid.New().String(),
		"email":     "admin@example.com",
		"role":      "admin",
		"active":    false,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	rec, _, reached := runRequest("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuth_MissingTenantRejected(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"email":  "admin@example.com",
		"active": true,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	rec, _, reached := runRequest("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}

func TestAuth_ValidTokenInjectsIdentity(t *testing.T) {
	tenantID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"tenant_id": tenantID.String(),
		"email":     "admin@example.com",
		"role":      "admin",
		"active":    true,
		"exp":       time.Now().Add(time.Hour).Unix(),
	})

	rec, identity, reached := runRequest("Bearer " + token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reached)
	assert.Equal(t, tenantID, identity.TenantID)
	assert.Equal(t, "admin@example.com", identity.Email)
}

func TestAuth_ExpiredTokenRejected(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"tenant_id": uuid.New().String(),
		"email":     "admin@example.com",
		"active":    true,
		"exp":       time.Now().Add(-time.Hour).Unix(),
	})

	rec, _, reached := runRequest("Bearer " + token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)
}
