package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"punch/internal/bootstrap"
	"punch/internal/config"
)

func newTestApp(llmURL string) *bootstrap.App {
	cfg := &config.Config{}
	cfg.App.Name = "punch"
	cfg.App.GinMode = gin.TestMode
	cfg.Auth.JWTSecret = "secret"
	cfg.Auth.JWTExpireMinute = 60
	cfg.LLM.BaseURL = llmURL
	cfg.LLM.Model = "m"
	if llmURL != "" {
		cfg.LLM.APIKey = "k"
	}
	return &bootstrap.App{Config: cfg, Logger: zap.NewNop(), StartedAt: time.Now()}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if len(header) == 2 {
		req.Header.Set(header[0], header[1])
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_LandingAndHealth(t *testing.T) {
	router := NewRouter(newTestApp(""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/waitlist")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"disabled":true`)
}

func TestRouter_WaitlistWithoutDatastore(t *testing.T) {
	router := NewRouter(newTestApp(""))

	rec := postJSON(t, router, "/api/waitlist", map[string]string{"email": "ana@example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Added to waitlist"}`, rec.Body.String())

	rec = postJSON(t, router, "/api/waitlist", map[string]string{"email": "ana@"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid email address"}`, rec.Body.String())
}

func TestRouter_RegisterThenChat(t *testing.T) {
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hey ana!"}}]}`))
	}))
	defer llm.Close()
	router := NewRouter(newTestApp(llm.URL))

	rec := postJSON(t, router, "/register", map[string]string{"user_id": "ana_lee_x", "name": "Ana Lee", "phone": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	var registered struct {
		UserID string `json:"user_id"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, "ana_lee_x", registered.UserID)
	require.NotEmpty(t, registered.Token)

	rec = postJSON(t, router, "/chat", map[string]string{"user_id": "ana_lee_x", "message": "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"hey ana!"}`, rec.Body.String())

	rec = postJSON(t, router, "/chat", map[string]string{"user_id": "ana_lee_x", "message": "hi"},
		"Authorization", "Bearer "+registered.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/chat", map[string]string{"user_id": "someone_else", "message": "hi"},
		"Authorization", "Bearer "+registered.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ChatWithoutLLM(t *testing.T) {
	router := NewRouter(newTestApp(""))

	rec := postJSON(t, router, "/chat", map[string]string{"user_id": "ana_lee_x", "message": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = postJSON(t, router, "/chat", map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
