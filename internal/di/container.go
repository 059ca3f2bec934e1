package di

import (
	"context"
	"fmt"

	"github.com/GoArmGo/UsersAPI/internal/adapter/storage/minio"
	"github.com/GoArmGo/UsersAPI/internal/app"
	"github.com/GoArmGo/UsersAPI/internal/config"
	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/database/client"
	"github.com/GoArmGo/UsersAPI/internal/database/postgres"
	"github.com/GoArmGo/UsersAPI/internal/database/storage"
	"github.com/GoArmGo/UsersAPI/internal/logger"
	"github.com/GoArmGo/UsersAPI/internal/rabbitmq"
	"github.com/GoArmGo/UsersAPI/internal/usecase"
)

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
// При ошибке уже открытые ресурсы закрываются.
func BuildApp(ctx context.Context) (_ *app.App, err error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// 2. Пул соединений PostgreSQL
	dbClient, err := client.NewClient(ctx, cfg, slogger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = dbClient.Close()
		}
	}()

	// 3. Миграции схемы и справочника ролей
	if cfg.MigrationsEnabled {
		if err = postgres.ApplyMigrations(cfg.DSN(), slogger); err != nil {
			return nil, err
		}
	}

	// 4. Хранилища: пользователи через sqlx, роли через gorm на том же пуле
	gormDB, err := postgres.NewGormDB(dbClient.DB.DB)
	if err != nil {
		return nil, fmt.Errorf("init gorm: %w", err)
	}
	userStorage := storage.NewUserStorage(dbClient.DB, slogger)
	roleStorage := postgres.NewGormRoleStorage(gormDB, slogger)

	// 5. RabbitMQ: publisher и consumer это один клиент
	var (
		publisher ports.UserEventPublisher
		consumer  ports.UserEventConsumer
	)
	if cfg.EventsEnabled() {
		rabbitMQClient, rmqErr := rabbitmq.NewClient(cfg, slogger)
		if rmqErr != nil {
			err = rmqErr
			return nil, err
		}
		defer func() {
			if err != nil {
				_ = rabbitMQClient.Close()
			}
		}()
		publisher, consumer = rabbitMQClient, rabbitMQClient
	} else {
		slogger.Warn("RABBITMQ_URL is not set, user events will only be logged")
		publisher = rabbitmq.NewLogPublisher(slogger)
	}

	// 6. Архив событий в MinIO
	var archive ports.EventArchive
	if cfg.ArchiveEnabled() {
		minioClient, minioErr := minio.NewMinioClient(ctx, cfg, slogger)
		if minioErr != nil {
			err = minioErr
			return nil, err
		}
		archive = minioClient
	}

	// 7. Бизнес-логика
	userUseCase := usecase.NewUserUseCase(userStorage, publisher, slogger)
	roleUseCase := usecase.NewRoleUseCase(roleStorage, userStorage)

	application := app.NewApp(cfg, slogger, app.Components{
		DB:          dbClient,
		Health:      userStorage,
		UserUseCase: userUseCase,
		RoleUseCase: roleUseCase,
		Publisher:   publisher,
		Consumer:    consumer,
		Archive:     archive,
	})

	slogger.Info("all dependencies initialized")
	return application, nil
}
