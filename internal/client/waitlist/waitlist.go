// Package waitlist submits early-access signups from the terminal client.
package waitlist

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"punch/internal/client/api"
	"punch/internal/client/model"
)

type Outcome int

const (
	// OutcomeJoined means the site accepted the signup.
	OutcomeJoined Outcome = iota + 1
	// OutcomeSavedLocally means the site was unreachable and the email was
	// recorded in local storage instead.
	OutcomeSavedLocally
)

func (o Outcome) String() string {
	switch o {
	case OutcomeJoined:
		return "joined"
	case OutcomeSavedLocally:
		return "saved locally"
	default:
		return "unknown"
	}
}

var (
	ErrEmptyEmail        = errors.New("please enter your email")
	ErrAlreadyOnWaitlist = errors.New("you're already on the waitlist")
	ErrSubmitFailed      = errors.New("something went wrong, please try again")
)

type Joiner interface {
	JoinWaitlist(ctx context.Context, email string) error
}

type LocalStore interface {
	AddWaitlistEntry(ctx context.Context, entry model.WaitlistEntry) (bool, error)
}

type Submitter struct {
	joiner Joiner
	local  LocalStore
	logger *zap.Logger
	now    func() time.Time
}

func NewSubmitter(joiner Joiner, local LocalStore, logger *zap.Logger) *Submitter {
	return &Submitter{
		joiner: joiner,
		local:  local,
		logger: logger.Named("waitlist"),
		now:    time.Now,
	}
}

func (s *Submitter) Submit(ctx context.Context, email string) (Outcome, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return 0, ErrEmptyEmail
	}

	err := s.joiner.JoinWaitlist(ctx, email)
	switch {
	case err == nil:
		return OutcomeJoined, nil
	case api.HasStatus(err, http.StatusConflict):
		return 0, ErrAlreadyOnWaitlist
	}

	s.logger.Warn("waitlist submit failed, saving locally", zap.String("email", email), zap.Error(err))
	added, err := s.local.AddWaitlistEntry(ctx, model.WaitlistEntry{Email: email, CreatedAt: s.now()})
	if err != nil {
		s.logger.Error("save local waitlist entry failed", zap.Error(err))
		return 0, ErrSubmitFailed
	}
	if !added {
		return 0, ErrAlreadyOnWaitlist
	}
	return OutcomeSavedLocally, nil
}
