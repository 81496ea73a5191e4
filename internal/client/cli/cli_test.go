package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PUNCH_CONFIG", filepath.Join(dataDir, "missing.toml"))

	var out bytes.Buffer
	root, release := NewRootCommand()
	defer release()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func newBackend(t *testing.T, waitlistStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(map[string]string{"user_id": req.UserID, "token": "tok"})
	})
	mux.HandleFunc("/api/waitlist", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(waitlistStatus)
		_, _ = w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSignInWhoAmISignOut(t *testing.T) {
	dir := t.TempDir()
	srv := newBackend(t, http.StatusOK)

	out, err := execute(t, dir, "--api-url", srv.URL, "signin", "Ana", "Lee")
	require.NoError(t, err)
	assert.Contains(t, out, "hey Ana Lee! you're signed in as ana_lee_")
	assert.NotContains(t, out, "couldn't reach punch")

	out, err = execute(t, dir, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Lee (ana_lee_")

	_, err = execute(t, dir, "signout")
	require.NoError(t, err)

	_, err = execute(t, dir, "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestFailedCommandStillReleasesStorage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PUNCH_CONFIG", filepath.Join(dir, "missing.toml"))

	root, e := newRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--data-dir", dir, "whoami"})
	require.ErrorIs(t, root.Execute(), errNotSignedIn)

	store := e.store
	require.NotNil(t, store)
	e.close()
	e.close()

	assert.Nil(t, e.store)
	_, err := store.GetIdentity(context.Background())
	assert.Error(t, err)
}

func TestChatWithoutIdentityRedirectsToSignIn(t *testing.T) {
	_, err := execute(t, t.TempDir(), "chat")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestWaitlistJoinFallsBackLocally(t *testing.T) {
	dir := t.TempDir()
	srv := newBackend(t, http.StatusServiceUnavailable)

	out, err := execute(t, dir, "--site-url", srv.URL, "waitlist", "join", "Ana@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "saved on this machine")

	out, err = execute(t, dir, "waitlist", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ana@example.com")

	_, err = execute(t, dir, "--site-url", srv.URL, "waitlist", "join", "ana@example.com")
	assert.Error(t, err)
}

func TestWaitlistJoin(t *testing.T) {
	dir := t.TempDir()
	srv := newBackend(t, http.StatusOK)

	out, err := execute(t, dir, "--site-url", srv.URL, "waitlist", "join", "ana@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "You're in!")
	assert.NotContains(t, out, "saved on this machine")

	out, err = execute(t, dir, "waitlist", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no local signups")
}
