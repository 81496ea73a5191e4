package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"punch/internal/ai"
	"punch/internal/model"
)

const personaPrompt = "You are Punch, the user's new favorite friend. " +
	"Text like a close friend would: lowercase, short, warm, a little playful. " +
	"Never mention being an AI model unless asked directly."

const emptyReply = "hmm i blanked for a sec, say that again?"

type Completer interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

type MessageStore interface {
	Create(ctx context.Context, message *model.Message) error
	ListRecentByUserID(ctx context.Context, userID string, limit int) ([]model.Message, error)
}

type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, userID string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, userID string, messages []model.Message) error
	Invalidate(ctx context.Context, userID string) error
	IsDirty(ctx context.Context, userID string) (bool, error)
}

type ChatService struct {
	messages     MessageStore
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	llm          Completer
	llmConfig    ai.ChatConfig
	maxContext   int
	logger       *zap.Logger
}

// ChatServiceOptions wires the service. HistoryCache may be nil; a nil
// Publisher writes straight to Messages.
type ChatServiceOptions struct {
	Messages     MessageStore
	Publisher    AsyncMessagePublisher
	HistoryCache HistoryCache
	LLM          Completer
	LLMConfig    ai.ChatConfig
	MaxContext   int
	Logger       *zap.Logger
}

func NewChatService(opts ChatServiceOptions) *ChatService {
	if opts.MaxContext <= 0 {
		opts.MaxContext = 20
	}
	if opts.Messages == nil {
		opts.Messages = NopMessageStore{}
	}
	if opts.Publisher == nil {
		opts.Publisher = NewDirectPublisher(opts.Messages)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &ChatService{
		messages:     opts.Messages,
		publisher:    opts.Publisher,
		historyCache: opts.HistoryCache,
		llm:          opts.LLM,
		llmConfig:    opts.LLMConfig,
		maxContext:   opts.MaxContext,
		logger:       opts.Logger.Named("chat"),
	}
}

// Reply answers one user message. Persisting the exchange is best effort:
// failures are logged and never fail the reply.
func (s *ChatService) Reply(ctx context.Context, userID, content string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", ErrInvalidInput
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrMessageEmpty
	}
	if s.llm == nil || !s.llmConfig.Valid() {
		return "", ErrLLMConfig
	}

	prompt := s.buildPromptMessages(ctx, userID, content)

	userMessage := model.Message{
		UserID:    userID,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	s.record(ctx, userMessage)

	reply, err := s.llm.Complete(ctx, s.llmConfig, prompt)
	if err != nil {
		s.logger.Warn("llm completion failed", zap.String("user_id", userID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = emptyReply
	}

	s.record(ctx, model.Message{
		UserID:    userID,
		Role:      model.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	})
	return reply, nil
}

func (s *ChatService) record(ctx context.Context, msg model.Message) {
	if s.historyCache != nil {
		if err := s.historyCache.Invalidate(ctx, msg.UserID); err != nil {
			s.logger.Warn("invalidate history cache failed", zap.Error(err))
		}
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Error("enqueue message failed", zap.String("user_id", msg.UserID), zap.Error(err))
	}
}

func (s *ChatService) history(ctx context.Context, userID string) []model.Message {
	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return cached
			}
		}
	}

	recent, err := s.messages.ListRecentByUserID(ctx, userID, s.maxContext)
	if err != nil {
		s.logger.Warn("load history failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, userID, recent)
		}
	}
	return recent
}

func (s *ChatService) buildPromptMessages(ctx context.Context, userID, currentUserInput string) []ai.ChatMessage {
	recent := trimMessages(s.history(ctx, userID), s.maxContext)

	messages := make([]ai.ChatMessage, 0, len(recent)+2)
	messages = append(messages, ai.ChatMessage{Role: model.RoleSystem, Content: personaPrompt})
	for _, item := range recent {
		role := item.Role
		if role == "" {
			role = model.RoleUser
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: item.Content})
	}
	messages = append(messages, ai.ChatMessage{Role: model.RoleUser, Content: currentUserInput})
	return messages
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

// DirectPublisher writes messages straight to the store. It replaces the
// queue when RabbitMQ is not configured.
type DirectPublisher struct {
	store MessageStore
}

func NewDirectPublisher(store MessageStore) *DirectPublisher {
	return &DirectPublisher{store: store}
}

func (p *DirectPublisher) Publish(ctx context.Context, msg model.Message) error {
	return p.store.Create(ctx, &msg)
}

type NopMessageStore struct{}

func (NopMessageStore) Create(context.Context, *model.Message) error { return nil }

func (NopMessageStore) ListRecentByUserID(context.Context, string, int) ([]model.Message, error) {
	return nil, nil
}

