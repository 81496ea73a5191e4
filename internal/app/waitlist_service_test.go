package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"punch/internal/model"
	"punch/internal/repository"
)

type memoryWaitlistStore struct {
	entries   map[string]model.WaitlistEntry
	lookupErr error
	createErr error
}

func newMemoryWaitlistStore() *memoryWaitlistStore {
	return &memoryWaitlistStore{entries: map[string]model.WaitlistEntry{}}
}

func (s *memoryWaitlistStore) GetByEmail(_ context.Context, email string) (*model.WaitlistEntry, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if entry, ok := s.entries[email]; ok {
		return &entry, nil
	}
	return nil, nil
}

func (s *memoryWaitlistStore) Create(_ context.Context, entry *model.WaitlistEntry) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, ok := s.entries[entry.Email]; ok {
		return repository.ErrDuplicate
	}
	s.entries[entry.Email] = *entry
	return nil
}

func TestWaitlistService_JoinThenDuplicate(t *testing.T) {
	store := newMemoryWaitlistStore()
	svc := NewWaitlistService(store, zap.NewNop())
	ctx := context.Background()

	entry, err := svc.Join(ctx, "  Ana.Lee@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "ana.lee@example.com", entry.Email)
	assert.Contains(t, store.entries, "ana.lee@example.com")

	_, err = svc.Join(ctx, "ana.lee@example.com")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Len(t, store.entries, 1)
}

func TestWaitlistService_InvalidEmails(t *testing.T) {
	store := newMemoryWaitlistStore()
	svc := NewWaitlistService(store, zap.NewNop())

	for _, email := range []string{"", "   ", "ana", "ana@", "ana@example", "@example.com", "ana lee@example.com", "ana@@example.com"} {
		_, err := svc.Join(context.Background(), email)
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
	assert.Empty(t, store.entries)
}

func TestWaitlistService_RaceOnInsertIsConflict(t *testing.T) {
	store := newMemoryWaitlistStore()
	store.createErr = repository.ErrDuplicate
	svc := NewWaitlistService(store, zap.NewNop())

	_, err := svc.Join(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestWaitlistService_DatastoreErrorsSurface(t *testing.T) {
	store := newMemoryWaitlistStore()
	store.lookupErr = errors.New("lookup down")
	svc := NewWaitlistService(store, zap.NewNop())

	_, err := svc.Join(context.Background(), "ana@example.com")
	assert.EqualError(t, err, "lookup down")

	store.lookupErr = nil
	store.createErr = errors.New("insert down")
	_, err = svc.Join(context.Background(), "ana@example.com")
	assert.EqualError(t, err, "insert down")
}

func TestWaitlistService_NopStoreAlwaysSucceeds(t *testing.T) {
	svc := NewWaitlistService(NewNopWaitlistStore(zap.NewNop()), zap.NewNop())

	_, err := svc.Join(context.Background(), "ana@example.com")
	require.NoError(t, err)
	_, err = svc.Join(context.Background(), "ana@example.com")
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}
