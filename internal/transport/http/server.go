package http

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"punch/internal/ai"
	appsvc "punch/internal/app"
	"punch/internal/bootstrap"
	"punch/internal/cache"
	"punch/internal/logging"
	"punch/internal/platform/rabbitmq"
	"punch/internal/repository"
	"punch/internal/transport/http/handler"
	"punch/internal/transport/http/middleware"
)

//go:embed web/index.html
var landingPage []byte

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(logging.GinLogger(app.Logger), gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", landingPage)
	})
	router.GET("/healthz", handler.NewHealthHandler(app).Check)

	var (
		waitlistStore appsvc.WaitlistStore = appsvc.NewNopWaitlistStore(app.Logger)
		userStore     appsvc.UserStore     = appsvc.NopUserStore{}
		messageStore  appsvc.MessageStore  = appsvc.NopMessageStore{}
		publisher     appsvc.AsyncMessagePublisher
		historyCache  appsvc.HistoryCache
	)
	if app.MySQL != nil {
		waitlistStore = repository.NewWaitlistRepository(app.MySQL)
		userStore = repository.NewUserRepository(app.MySQL)
		messageStore = repository.NewMessageRepository(app.MySQL)
	}
	if app.MQConn != nil {
		publisher = rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	}
	if app.Redis != nil {
		historyCache = cache.NewHistoryCache(
			app.Redis,
			time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
			time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
		)
	}

	waitlistService := appsvc.NewWaitlistService(waitlistStore, app.Logger)
	identityService := appsvc.NewIdentityService(
		userStore,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
		app.Logger,
	)
	chatService := appsvc.NewChatService(appsvc.ChatServiceOptions{
		Messages:     messageStore,
		Publisher:    publisher,
		HistoryCache: historyCache,
		LLM:          ai.NewOpenAICompatibleClient(time.Duration(app.Config.LLM.TimeoutSeconds) * time.Second),
		LLMConfig: ai.ChatConfig{
			BaseURL:     app.Config.LLM.BaseURL,
			APIKey:      app.Config.LLM.APIKey,
			Model:       app.Config.LLM.Model,
			Temperature: app.Config.LLM.Temperature,
			MaxTokens:   app.Config.LLM.MaxTokens,
		},
		MaxContext: app.Config.LLM.MaxContextMessage,
		Logger:     app.Logger,
	})

	waitlistHandler := handler.NewWaitlistHandler(waitlistService, app.Logger)
	identityHandler := handler.NewIdentityHandler(identityService, app.Logger)
	chatHandler := handler.NewChatHandler(chatService, app.Logger)

	router.POST("/api/waitlist", waitlistHandler.Join)
	router.POST("/register", identityHandler.Register)
	router.POST("/chat", middleware.OptionalAuthJWT(app.Config.Auth.JWTSecret), chatHandler.Chat)

	return router
}
