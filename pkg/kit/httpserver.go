package kit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const readHeaderTimeout = 5 * time.Second

var shutdownTimeout = 10 * time.Second

// Listen binds addr, or fallback when addr is taken. The error is returned
// only when both binds fail.
func Listen(addr, fallback string, log *zap.Logger) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		return ln, nil
	}
	if fallback == "" || fallback == addr {
		return nil, err
	}

	log.Warn("primary address unavailable, trying fallback",
		zap.String("addr", addr),
		zap.String("fallback", fallback),
		zap.Error(err),
	)

	ln, ferr := net.Listen("tcp", fallback)
	if ferr != nil {
		return nil, fmt.Errorf("listen %s: %w; fallback %s: %w", addr, err, fallback, ferr)
	}
	return ln, nil
}

// RunHTTPServer serves h on ln until SIGINT/SIGTERM and then shuts down
// gracefully. A non-nil error after the signal means in-flight requests did
// not drain in time; the caller can still run its own shutdown work.
func RunHTTPServer(ln net.Listener, h http.Handler, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, ln, h, log)
}

func serve(ctx context.Context, ln net.Listener, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
