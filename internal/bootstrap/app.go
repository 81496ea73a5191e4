package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"punch/internal/config"
	"punch/internal/model"
	mysqlClient "punch/internal/platform/mysql"
	rabbitmqClient "punch/internal/platform/rabbitmq"
	redisClient "punch/internal/platform/redis"
	"punch/internal/repository"
	"punch/internal/worker"
)

// App holds process-wide resources. MySQL, Redis and MQConn are nil when
// the matching section of the config is left empty.
type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	MessageWorker *worker.MessagePersistWorker

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:    cfg,
		Logger:    logger,
		StartedAt: time.Now(),
	}

	if cfg.MySQLEnabled() {
		mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		a.MySQL = mysqlDB
		if err := mysqlDB.AutoMigrate(&model.WaitlistEntry{}, &model.User{}, &model.Message{}); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("auto migrate tables failed: %w", err)
		}
	} else {
		logger.Warn("mysql not configured, waitlist and chat history are not persisted")
	}

	if cfg.RedisEnabled() {
		redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Redis = redisCli
	}

	switch {
	case cfg.RabbitMQEnabled() && a.MySQL == nil:
		logger.Warn("rabbitmq configured without mysql, message queue disabled")
	case cfg.RabbitMQEnabled():
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.MessagePersistQueue)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.MQConn = mqConn

		messageRepo := repository.NewMessageRepository(a.MySQL)
		a.MessageWorker = worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue, logger)
		if err := a.MessageWorker.Start(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("start message worker failed: %w", err)
		}
	}

	return a, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
