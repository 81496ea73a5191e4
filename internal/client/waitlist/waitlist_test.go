package waitlist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"punch/internal/client/api"
	"punch/internal/client/model"
)

type memoryStore struct {
	entries []model.WaitlistEntry
	err     error
}

func (m *memoryStore) AddWaitlistEntry(_ context.Context, entry model.WaitlistEntry) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, e := range m.entries {
		if e.Email == entry.Email {
			return false, nil
		}
	}
	m.entries = append(m.entries, entry)
	return true, nil
}

func newSite(t *testing.T, status int, seen *[]string) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if seen != nil {
			*seen = append(*seen, body.Email)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return api.New(srv.URL, time.Second)
}

func TestSubmit_Joined(t *testing.T) {
	var seen []string
	store := &memoryStore{}
	s := NewSubmitter(newSite(t, http.StatusOK, &seen), store, zap.NewNop())

	outcome, err := s.Submit(context.Background(), "  A@B.co ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeJoined, outcome)
	assert.Equal(t, []string{"a@b.co"}, seen)
	assert.Empty(t, store.entries)
}

func TestSubmit_ConflictIsDuplicate(t *testing.T) {
	store := &memoryStore{}
	s := NewSubmitter(newSite(t, http.StatusConflict, nil), store, zap.NewNop())

	_, err := s.Submit(context.Background(), "a@b.co")
	assert.ErrorIs(t, err, ErrAlreadyOnWaitlist)
	assert.Empty(t, store.entries)
}

func TestSubmit_ServerErrorFallsBackLocally(t *testing.T) {
	store := &memoryStore{}
	s := NewSubmitter(newSite(t, http.StatusInternalServerError, nil), store, zap.NewNop())

	outcome, err := s.Submit(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSavedLocally, outcome)
	require.Len(t, store.entries, 1)
	assert.Equal(t, "a@b.co", store.entries[0].Email)

	_, err = s.Submit(context.Background(), "A@B.CO")
	assert.ErrorIs(t, err, ErrAlreadyOnWaitlist)
	assert.Len(t, store.entries, 1)
}

func TestSubmit_UnreachableSiteFallsBackLocally(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := &memoryStore{}
	s := NewSubmitter(api.New(url, time.Second), store, zap.NewNop())

	outcome, err := s.Submit(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSavedLocally, outcome)
}

func TestSubmit_LocalStoreFailure(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	s := NewSubmitter(newSite(t, http.StatusBadGateway, nil), store, zap.NewNop())

	_, err := s.Submit(context.Background(), "a@b.co")
	assert.ErrorIs(t, err, ErrSubmitFailed)
}

func TestSubmit_EmptyEmail(t *testing.T) {
	var seen []string
	s := NewSubmitter(newSite(t, http.StatusOK, &seen), &memoryStore{}, zap.NewNop())

	_, err := s.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyEmail)
	assert.Empty(t, seen)
}
