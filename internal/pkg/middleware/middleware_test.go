package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func authedRequest(t *testing.T, token string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/experiences", nil)
	if token != "" {
		c.Request.Header.Set("Authorization", "Bearer "+token)
	}
	return c
}

func TestIssueTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := IssueToken(testSecret, userID, "Ada", "ada@queska.test", time.Hour)
	require.NoError(t, err)

	c := authedRequest(t, token)
	claims, err := claimsFromRequest(c, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@queska.test", claims.Email)
}

func TestClaimsFromRequestRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, uuid.New(), "Ada", "", time.Hour)
	require.NoError(t, err)

	c := authedRequest(t, token)
	_, err = claimsFromRequest(c, "other-secret")
	assert.Error(t, err)
}

func TestClaimsFromRequestRejectsExpiredToken(t *testing.T) {
	token, err := IssueToken(testSecret, uuid.New(), "Ada", "", -time.Minute)
	require.NoError(t, err)

	c := authedRequest(t, token)
	_, err = claimsFromRequest(c, testSecret)
	assert.Error(t, err)
}

func TestClaimsFromRequestNoToken(t *testing.T) {
	c := authedRequest(t, "")
	_, err := claimsFromRequest(c, testSecret)
	assert.Error(t, err)
}

func TestClaimsFromRequestFromCookie(t *testing.T) {
	userID := uuid.New()
	token, err := IssueToken(testSecret, userID, "", "", time.Hour)
	require.NoError(t, err)

	c := authedRequest(t, "")
	c.Request.AddCookie(&http.Cookie{Name: "auth_token", Value: token})

	claims, err := claimsFromRequest(c, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
}

func TestAuthMiddlewareRejectsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareSetsUserContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	token, err := IssueToken(testSecret, userID, "Ada", "", time.Hour)
	require.NoError(t, err)

	var gotID uuid.UUID
	var gotName string
	r := gin.New()
	r.GET("/protected", AuthMiddleware(testSecret), func(c *gin.Context) {
		gotID = GetUserIDFromContext(c)
		gotName = GetUserNameFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "Ada", gotName)
}

func TestOptionalAuthAllowsAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var gotID uuid.UUID
	r := gin.New()
	r.GET("/public", OptionalAuthMiddleware(testSecret), func(c *gin.Context) {
		gotID = GetUserIDFromContext(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uuid.Nil, gotID)
}
