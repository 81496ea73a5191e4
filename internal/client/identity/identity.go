// Package identity signs users in and out of the punch client.
package identity

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"punch/internal/client/api"
	"punch/internal/client/model"
	"punch/internal/client/storage"
)

const MaxNameLength = 30

var (
	ErrEmptyName   = errors.New("whats your name tho")
	ErrNameTooLong = errors.New("name is too long")
	ErrNoIdentity  = errors.New("not signed in")
)

type Store interface {
	GetIdentity(ctx context.Context) (*model.Identity, error)
	SaveIdentity(ctx context.Context, identity *model.Identity) error
	DeleteIdentity(ctx context.Context) error
}

type Registrar interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
}

type Service struct {
	store     Store
	registrar Registrar
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, registrar Registrar, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		registrar: registrar,
		logger:    logger.Named("identity"),
		now:       time.Now,
	}
}

// NewUserID derives an id from the name slug and a base36 millisecond
// suffix, e.g. "Ana Lee" -> "ana_lee_mf3k2x1a". Two sign-ups with the
// same name in the same millisecond collide.
func NewUserID(name string, now time.Time) string {
	slug := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	return slug + "_" + strconv.FormatInt(now.UnixMilli(), 36)
}

// SignIn creates and stores a new identity. Registration with the backend
// is best effort; when it fails the locally built identity is used.
func (s *Service) SignIn(ctx context.Context, name string) (*model.Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}

	now := s.now()
	identity := &model.Identity{
		UserID:    NewUserID(name, now),
		Name:      name,
		CreatedAt: now,
	}

	resp, err := s.registrar.Register(ctx, api.RegisterRequest{UserID: identity.UserID, Name: name})
	if err != nil {
		s.logger.Warn("registration failed, continuing with local identity",
			zap.String("user_id", identity.UserID), zap.Error(err))
	} else {
		if resp.UserID != "" {
			identity.UserID = resp.UserID
		}
		identity.Token = resp.Token
	}

	if err := s.store.SaveIdentity(ctx, identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// RefreshToken registers who again under the same user id and stores the
// token it gets back. When the backend cannot issue one the token is
// dropped, so later requests go out unauthenticated instead of being
// rejected. The returned identity is what was stored.
func (s *Service) RefreshToken(ctx context.Context, who *model.Identity) (*model.Identity, error) {
	refreshed := *who
	refreshed.Token = ""

	resp, err := s.registrar.Register(ctx, api.RegisterRequest{UserID: who.UserID, Name: who.Name})
	if err != nil {
		s.logger.Warn("token refresh failed, dropping token",
			zap.String("user_id", who.UserID), zap.Error(err))
	} else {
		refreshed.Token = resp.Token
	}

	if err := s.store.SaveIdentity(ctx, &refreshed); err != nil {
		return nil, err
	}
	return &refreshed, nil
}

// Current returns ErrNoIdentity when nobody is signed in.
func (s *Service) Current(ctx context.Context) (*model.Identity, error) {
	identity, err := s.store.GetIdentity(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoIdentity
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// SignOut forgets the identity. Its transcript stays in storage.
func (s *Service) SignOut(ctx context.Context) error {
	return s.store.DeleteIdentity(ctx)
}
