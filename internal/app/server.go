package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/GoArmGo/UsersAPI/internal/handler"
)

// newRouter собирает HTTP-обработчики поверх usecase-слоя
func (a *App) newRouter() http.Handler {
	return handler.NewRouter(
		handler.NewUserHandler(a.UserUseCase, a.logger),
		handler.NewRoleHandler(a.RoleUseCase, a.logger),
		handler.NewHealthHandler(a.Health, a.logger),
		a.Config.RequestTimeout,
		a.logger,
	)
}

// runServer обслуживает HTTP до отмены ctx, затем выполняет graceful shutdown
func (a *App) runServer(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", a.Config.ServerPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           a.newRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutdown signal received, stopping http server", "timeout", a.Config.ShutdownTimeout)

	// ctx уже отменён, для shutdown нужен отдельный бюджет
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	a.logger.Info("http server stopped")
	return nil
}
