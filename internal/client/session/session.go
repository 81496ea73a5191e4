// Package session drives one chat conversation for the signed-in identity:
// it owns the transcript, sends messages to the chat backend and tells
// observers about every change.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"punch/internal/client/api"
	"punch/internal/client/identity"
	"punch/internal/client/model"
)

// FallbackReply is shown in place of a reply when the backend cannot be
// reached or answers with an error.
const FallbackReply = "yo my bad, im having connection issues rn. try again in a sec?"

const timestampLayout = "15:04"

var ErrNoIdentity = identity.ErrNoIdentity

type State int

const (
	StateIdle State = iota
	StateSending
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateAwaitingResponse:
		return "awaiting_response"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type IdentitySource interface {
	Current(ctx context.Context) (*model.Identity, error)
	RefreshToken(ctx context.Context, who *model.Identity) (*model.Identity, error)
	SignOut(ctx context.Context) error
}

type TranscriptStore interface {
	LoadTranscript(ctx context.Context, userID string) ([]model.Message, error)
	SaveTranscript(ctx context.Context, userID string, messages []model.Message) error
	DeleteTranscript(ctx context.Context, userID string) error
}

type ChatAPI interface {
	Chat(ctx context.Context, req api.ChatRequest, token string) (string, error)
}

type Deps struct {
	Identity    IdentitySource
	Transcripts TranscriptStore
	Chat        ChatAPI
	Logger      *zap.Logger

	// Replies are held back for a random duration in
	// [ReplyDelayMin, ReplyDelayMax).
	ReplyDelayMin time.Duration
	ReplyDelayMax time.Duration

	Now func() time.Time
}

// Snapshot is an immutable view handed to observers.
type Snapshot struct {
	Name     string
	Messages []model.Message
	State    State
}

func (s Snapshot) Typing() bool {
	return s.State == StateAwaitingResponse
}

type Controller struct {
	deps   Deps
	logger *zap.Logger

	mu        sync.Mutex
	identity  *model.Identity
	messages  []model.Message
	state     State
	observers []func(Snapshot)
}

// Start loads the signed-in identity and its transcript. Without an
// identity it returns ErrNoIdentity and no controller.
func Start(ctx context.Context, deps Deps) (*Controller, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	current, err := deps.Identity.Current(ctx)
	if err != nil {
		if errors.Is(err, identity.ErrNoIdentity) {
			return nil, ErrNoIdentity
		}
		return nil, fmt.Errorf("load identity failed: %w", err)
	}

	logger := deps.Logger.Named("session").With(zap.String("user_id", current.UserID))
	messages, err := deps.Transcripts.LoadTranscript(ctx, current.UserID)
	if err != nil {
		logger.Warn("load transcript failed, starting empty", zap.Error(err))
		messages = nil
	}

	return &Controller{
		deps:     deps,
		logger:   logger,
		identity: current,
		messages: messages,
		state:    StateIdle,
	}, nil
}

// OnChange registers fn to be called after every state or transcript
// change. fn runs on the goroutine that made the change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) Typing() bool {
	return c.Snapshot().Typing()
}

func (c *Controller) Identity() *model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.identity == nil {
		return nil
	}
	current := *c.identity
	return &current
}

// Submit sends input and blocks until a reply or the fallback message has
// been appended. It returns false without doing anything when input is
// blank, a send is already in flight, or nobody is signed in.
func (c *Controller) Submit(ctx context.Context, input string) bool {
	text := strings.TrimSpace(input)

	c.mu.Lock()
	if text == "" || c.state != StateIdle || c.identity == nil {
		c.mu.Unlock()
		return false
	}
	current := *c.identity
	c.appendLocked(ctx, model.RoleUser, text)
	c.state = StateSending
	c.unlockAndNotify()

	c.setState(StateAwaitingResponse)

	reply, err := c.chat(ctx, current, text)
	if err != nil {
		c.logger.Warn("chat request failed", zap.Error(err))
		reply = FallbackReply
	} else {
		c.wait(ctx)
	}

	c.mu.Lock()
	c.appendLocked(ctx, model.RoleAssistant, reply)
	c.state = StateIdle
	c.unlockAndNotify()
	return true
}

// Clear removes the transcript from memory and from storage.
func (c *Controller) Clear(ctx context.Context) {
	c.mu.Lock()
	c.messages = nil
	if c.identity != nil {
		if err := c.deps.Transcripts.DeleteTranscript(ctx, c.identity.UserID); err != nil {
			c.logger.Error("delete transcript failed", zap.Error(err))
		}
	}
	c.unlockAndNotify()
}

// SignOut forgets the identity. The stored transcript is kept so signing
// back in as the same user id would restore it.
func (c *Controller) SignOut(ctx context.Context) error {
	if err := c.deps.Identity.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out failed: %w", err)
	}
	c.mu.Lock()
	c.identity = nil
	c.unlockAndNotify()
	return nil
}

// chat sends one message. A rejected token is refreshed once and the
// message resent with whatever token the refresh produced.
func (c *Controller) chat(ctx context.Context, current model.Identity, text string) (string, error) {
	req := api.ChatRequest{UserID: current.UserID, Message: text}
	reply, err := c.deps.Chat.Chat(ctx, req, current.Token)
	if err == nil || current.Token == "" || !api.HasStatus(err, http.StatusUnauthorized) {
		return reply, err
	}

	c.logger.Info("token rejected, refreshing")
	refreshed, rerr := c.deps.Identity.RefreshToken(ctx, &current)
	if rerr != nil {
		c.logger.Warn("save refreshed identity failed", zap.Error(rerr))
		return "", err
	}

	c.mu.Lock()
	if c.identity != nil && c.identity.UserID == refreshed.UserID {
		c.identity = refreshed
	}
	c.mu.Unlock()

	return c.deps.Chat.Chat(ctx, req, refreshed.Token)
}

func (c *Controller) setState(state State) {
	c.mu.Lock()
	c.state = state
	c.unlockAndNotify()
}

func (c *Controller) appendLocked(ctx context.Context, role model.Role, content string) {
	c.messages = append(c.messages, model.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: c.deps.Now().Format(timestampLayout),
	})
	if c.identity == nil {
		return
	}
	if err := c.deps.Transcripts.SaveTranscript(ctx, c.identity.UserID, c.messages); err != nil {
		c.logger.Error("save transcript failed", zap.Error(err))
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Messages: append([]model.Message(nil), c.messages...),
		State:    c.state,
	}
	if c.identity != nil {
		s.Name = c.identity.Name
	}
	return s
}

// unlockAndNotify releases mu and calls observers with the state it held.
func (c *Controller) unlockAndNotify() {
	snap := c.snapshotLocked()
	observers := append([]func(Snapshot)(nil), c.observers...)
	c.mu.Unlock()
	for _, fn := range observers {
		fn(snap)
	}
}

func (c *Controller) wait(ctx context.Context) {
	d := c.replyDelay()
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (c *Controller) replyDelay() time.Duration {
	lo, hi := c.deps.ReplyDelayMin, c.deps.ReplyDelayMax
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}
