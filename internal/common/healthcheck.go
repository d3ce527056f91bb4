package common

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/khanghh/phishsoc/internal/metrics"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const readinessTimeout = 3 * time.Second

// ReadinessCheck reports whether a dependency is usable.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

func LogDirCheck(dir string) ReadinessCheck {
	return ReadinessCheck{
		Name: "logs",
		Check: func(ctx context.Context) error {
			f, err := os.CreateTemp(dir, ".readyz-*")
			if err != nil {
				return err
			}
			name := f.Name()
			f.Close()
			return os.Remove(name)
		},
	}
}

func RedisCheck(rdb redis.UniversalClient) ReadinessCheck {
	return ReadinessCheck{
		Name: "redis",
		Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	}
}

func DatabaseCheck(db *gorm.DB) ReadinessCheck {
	return ReadinessCheck{
		Name: "mysql",
		Check: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
}

func NewHealthCheckHandler(checks ...ReadinessCheck) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				slog.Warn("Readiness check failed", "check", c.Name, "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// StartHealthCheckServer serves handler on addr until ctx is done or the
// server fails, then closes done.
func StartHealthCheckServer(ctx context.Context, done chan struct{}, addr string, handler http.Handler) {
	defer close(done)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readinessTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
		defer cancel()
		server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		slog.Error("Health check server stopped", "addr", addr, "error", err)
	}
}
