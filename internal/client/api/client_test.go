package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_SendsBodyAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, ChatRequest{UserID: "ana_1", Message: "hi"}, req)
		_, _ = w.Write([]byte(`{"response":"yo"}`))
	}))
	defer srv.Close()

	reply, err := New(srv.URL+"/", time.Second).Chat(context.Background(), ChatRequest{UserID: "ana_1", Message: "hi"}, "tok")
	require.NoError(t, err)
	assert.Equal(t, "yo", reply)
}

func TestRegister_DecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"user_id":"ana_1","token":"tok"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL, time.Second).Register(context.Background(), RegisterRequest{UserID: "ana_1", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, &RegisterResponse{UserID: "ana_1", Token: "tok"}, resp)
}

func TestJoinWaitlist_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"Email already registered"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).JoinWaitlist(context.Background(), "ana@example.com")
	require.Error(t, err)
	assert.True(t, HasStatus(err, http.StatusConflict))
	assert.Contains(t, err.Error(), "Email already registered")
}

func TestPost_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url, time.Second).JoinWaitlist(context.Background(), "ana@example.com")
	require.Error(t, err)
	assert.False(t, HasStatus(err, http.StatusConflict))
}
