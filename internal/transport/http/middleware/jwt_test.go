package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punch/internal/pkg/jwtutil"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", OptionalAuthJWT("secret"), func(c *gin.Context) {
		userID, _ := AuthenticatedUserID(c)
		c.String(http.StatusOK, userID)
	})
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOptionalAuthJWT(t *testing.T) {
	r := newRouter()
	token, err := jwtutil.GenerateToken("secret", time.Hour, "ana_1", "Ana")
	require.NoError(t, err)

	rec := serve(r, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = serve(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana_1", rec.Body.String())

	rec = serve(r, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(r, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid or expired token"}`, rec.Body.String())
}
