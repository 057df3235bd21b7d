package observability

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownManager runs registered cleanup functions when the process
// receives SIGINT/SIGTERM, so a long-running build or fetch can still
// remove its staging directories instead of leaving partial state behind.
// There is no HTTP server to stop here — pygr is a foreground CLI tool.
type ShutdownManager struct {
	logger          *Logger
	shutdownFuncs   []ShutdownFunc
	shutdownTimeout time.Duration
	mu              sync.Mutex
}

// ShutdownFunc is a function to call during shutdown.
type ShutdownFunc func(context.Context) error

// NewShutdownManager creates a new shutdown manager.
func NewShutdownManager(logger *Logger, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		logger:          logger,
		shutdownFuncs:   make([]ShutdownFunc, 0),
		shutdownTimeout: timeout,
	}
}

// RegisterShutdownFunc registers a function to call during shutdown.
func (sm *ShutdownManager) RegisterShutdownFunc(fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.shutdownFuncs = append(sm.shutdownFuncs, fn)
}

// WaitForShutdown blocks until an interrupt signal is received, then runs
// every registered cleanup function concurrently with a bounded timeout.
func (sm *ShutdownManager) WaitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	sm.logger.Infof("received signal %s, cleaning up before exit", sig)

	ctx, cancel := context.WithTimeout(context.Background(), sm.shutdownTimeout)
	defer cancel()

	return sm.runCleanup(ctx)
}

func (sm *ShutdownManager) runCleanup(ctx context.Context) error {
	sm.mu.Lock()
	funcs := sm.shutdownFuncs
	sm.mu.Unlock()

	var wg sync.WaitGroup
	errChan := make(chan error, len(funcs))

	for i, fn := range funcs {
		wg.Add(1)
		go func(index int, shutdownFn ShutdownFunc) {
			defer wg.Done()
			if err := shutdownFn(ctx); err != nil {
				sm.logger.WithError(err).Errorf("cleanup function %d failed", index)
				errChan <- err
			}
		}(i, fn)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("cleanup timeout reached")
	}

	close(errChan)
	var count int
	for range errChan {
		count++
	}
	if count > 0 {
		return fmt.Errorf("cleanup completed with %d errors", count)
	}
	return nil
}

// RunInterruptible registers cleanupFuncs, starts an interrupt listener in
// the background, and runs work with a context that is cancelled the
// moment SIGINT/SIGTERM arrives. Cleanup funcs run once work returns; a
// signal only cancels work's context, so cleanup still waits for work.
func RunInterruptible(logger *Logger, work func(ctx context.Context) error, cleanupFuncs ...ShutdownFunc) error {
	manager := NewShutdownManager(logger, 30*time.Second)
	for _, fn := range cleanupFuncs {
		manager.RegisterShutdownFunc(fn)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workErr := work(ctx)

	cleanupCtx, cancel := context.WithTimeout(context.Background(), manager.shutdownTimeout)
	defer cancel()
	if err := manager.runCleanup(cleanupCtx); err != nil {
		logger.WithError(err).Warn("cleanup after run did not fully succeed")
	}

	return workErr
}
