package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/GoArmGo/UsersAPI/internal/config"
	"github.com/GoArmGo/UsersAPI/internal/core/ports"
	"github.com/GoArmGo/UsersAPI/internal/handler"
	"github.com/GoArmGo/UsersAPI/internal/usecase"
)

const (
	ModeServer = "server"
	ModeWorker = "worker"
)

// Components зависимости, собранные в di.BuildApp
type Components struct {
	DB          io.Closer
	Health      handler.Pinger
	UserUseCase usecase.UserUseCase
	RoleUseCase usecase.RoleUseCase
	Publisher   ports.UserEventPublisher
	Consumer    ports.UserEventConsumer // nil, если RabbitMQ не настроен
	Archive     ports.EventArchive      // nil, если MinIO не настроен
}

type App struct {
	Config *config.Config
	logger *slog.Logger
	Components
}

func NewApp(cfg *config.Config, logger *slog.Logger, c Components) *App {
	return &App{Config: cfg, logger: logger, Components: c}
}

// LoggerIns возвращает основной логгер приложения
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает приложение в выбранном режиме и блокируется до SIGINT/SIGTERM.
// Ресурсы закрываются при любом исходе.
func (a *App) Run(ctx context.Context, mode string) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting application", "mode", mode)

	var err error
	switch mode {
	case ModeServer:
		err = a.runServer(ctx)
	case ModeWorker:
		err = a.runWorker(ctx)
	default:
		err = fmt.Errorf("unknown mode %q (use %q or %q)", mode, ModeServer, ModeWorker)
	}

	a.logger.Info("shutting down", "mode", mode)
	if closeErr := a.Shutdown(); closeErr != nil {
		a.logger.Error("shutdown finished with errors", "error", closeErr)
	}
	return err
}

// Shutdown закрывает пул соединений и клиенты очереди
func (a *App) Shutdown() error {
	var errs []error

	if closer, ok := a.Publisher.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	// publisher и consumer обычно один и тот же клиент RabbitMQ
	if closer, ok := a.Consumer.(io.Closer); ok && any(a.Consumer) != any(a.Publisher) {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
