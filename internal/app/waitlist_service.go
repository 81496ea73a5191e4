package app

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"punch/internal/model"
	"punch/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// WaitlistStore persists waitlist entries. GetByEmail returns nil, nil
// when no entry exists; Create returns repository.ErrDuplicate when the
// email is already taken.
type WaitlistStore interface {
	GetByEmail(ctx context.Context, email string) (*model.WaitlistEntry, error)
	Create(ctx context.Context, entry *model.WaitlistEntry) error
}

type WaitlistService struct {
	store  WaitlistStore
	logger *zap.Logger
}

func NewWaitlistService(store WaitlistStore, logger *zap.Logger) *WaitlistService {
	return &WaitlistService{store: store, logger: logger.Named("waitlist")}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail checks the local@domain.tld shape.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func (s *WaitlistService) Join(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	entry := &model.WaitlistEntry{Email: email, CreatedAt: time.Now()}
	if err := s.store.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	s.logger.Info("joined", zap.String("email", email))
	return entry, nil
}

// NopWaitlistStore accepts every signup without persisting it. It is
// selected when no datastore is configured.
type NopWaitlistStore struct {
	logger *zap.Logger
}

func NewNopWaitlistStore(logger *zap.Logger) *NopWaitlistStore {
	return &NopWaitlistStore{logger: logger.Named("waitlist_nop")}
}

func (s *NopWaitlistStore) GetByEmail(context.Context, string) (*model.WaitlistEntry, error) {
	return nil, nil
}

func (s *NopWaitlistStore) Create(_ context.Context, entry *model.WaitlistEntry) error {
	s.logger.Info("datastore not configured, signup not persisted", zap.String("email", entry.Email))
	return nil
}
