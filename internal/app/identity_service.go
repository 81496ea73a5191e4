package app

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"punch/internal/model"
	"punch/internal/pkg/jwtutil"
)

type UserStore interface {
	GetByUserID(ctx context.Context, userID string) (*model.User, error)
	Upsert(ctx context.Context, user *model.User) error
}

type IdentityService struct {
	users         UserStore
	jwtSecret     string
	jwtExpiration time.Duration
	logger        *zap.Logger
}

type RegisterInput struct {
	UserID string
	Name   string
	Phone  string
}

type RegisterResult struct {
	UserID string
	Token  string
}

func NewIdentityService(users UserStore, jwtSecret string, jwtExpiration time.Duration, logger *zap.Logger) *IdentityService {
	return &IdentityService{
		users:         users,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		logger:        logger.Named("identity"),
	}
}

// Register records the client's identity and issues a bearer token for it.
// The client-proposed user_id is kept as the canonical id. Registering an
// existing user_id again only issues a fresh token, which is how clients
// recover from an expired one.
func (s *IdentityService) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	userID := strings.TrimSpace(input.UserID)
	name := strings.TrimSpace(input.Name)
	if userID == "" || name == "" {
		return nil, ErrInvalidInput
	}

	phone := strings.TrimSpace(input.Phone)

	existing, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Name != name || existing.Phone != phone {
		if err := s.users.Upsert(ctx, &model.User{UserID: userID, Name: name, Phone: phone}); err != nil {
			return nil, err
		}
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, userID, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info("registered", zap.String("user_id", userID), zap.Bool("returning", existing != nil))
	return &RegisterResult{UserID: userID, Token: token}, nil
}

type NopUserStore struct{}

func (NopUserStore) GetByUserID(context.Context, string) (*model.User, error) { return nil, nil }

func (NopUserStore) Upsert(context.Context, *model.User) error { return nil }
