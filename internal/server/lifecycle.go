// Package server coordinates startup and shutdown of the long-running
// pieces of the backend with signal handling.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a named long-running component. Start blocks until the
// service exits or fails; Stop asks it to exit.
type Service struct {
	Name  string
	Start func() error
	Stop  func()
}

// Lifecycle runs a set of services and tears them down in reverse
// order on SIGINT, SIGTERM, or the first service failure.
type Lifecycle struct {
	logger   *zap.Logger
	services []Service
}

// NewLifecycle creates a Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a service. Services start in the order they are added
// and stop in reverse order.
//
// Precondition: svc.Name must be non-empty; Start and Stop must be non-nil.
func (l *Lifecycle) Add(svc Service) {
	l.services = append(l.services, svc)
}

// Run starts every registered service and blocks until a termination
// signal arrives, the context is cancelled, or a service fails.
//
// Postcondition: all services have been stopped when Run returns.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(l.services))
	for _, svc := range l.services {
		svc := svc
		go func() {
			l.logger.Info("starting service", zap.String("service", svc.Name))
			svcStart := time.Now()
			if err := svc.Start(); err != nil {
				l.logger.Error("service failed",
					zap.String("service", svc.Name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
				errCh <- fmt.Errorf("service %s: %w", svc.Name, err)
				cancel()
			}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(l.services)),
		zap.Duration("startup", time.Since(start)),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		l.logger.Info("received signal, shutting down",
			zap.String("signal", sig.String()),
		)
	case err := <-errCh:
		l.logger.Error("service error, shutting down", zap.Error(err))
		runErr = err
	case <-ctx.Done():
		l.logger.Info("context cancelled, shutting down")
	}

	l.shutdown()

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(start)),
	)
	return runErr
}

func (l *Lifecycle) shutdown() {
	shutdownStart := time.Now()
	for i := len(l.services) - 1; i >= 0; i-- {
		svc := l.services[i]
		svcStart := time.Now()
		l.logger.Info("stopping service", zap.String("service", svc.Name))
		svc.Stop()
		l.logger.Info("service stopped",
			zap.String("service", svc.Name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}
