// Package healthz serves the hosting platform's liveness probe.
package healthz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

const liveText = "Telegram AI bot is running."

// Server is a tiny HTTP server answering GET / with a fixed confirmation
// string. It shares no state with the bot; the probe only proves the
// process is alive.
type Server struct {
	server    *http.Server
	logger    *slog.Logger
	startedAt time.Time
}

// NewServer creates a health server listening on the given port.
func NewServer(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:    logger.With("component", "healthz"),
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("health server listening", "addr", s.server.Addr)
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	fmt.Fprintln(w, liveText)
}

// Stats returns human-readable process stats lines for the /stats command.
// Failures degrade to fewer lines rather than an error; stats are best
// effort.
func (s *Server) Stats() []string {
	lines := []string{
		fmt.Sprintf("Uptime: %s", time.Since(s.startedAt).Round(time.Second)),
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		s.logger.Debug("failed to inspect process", "error", err)
		return lines
	}
	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		lines = append(lines, fmt.Sprintf("Memory: %.1f MB", float64(mem.RSS)/(1024*1024)))
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		lines = append(lines, fmt.Sprintf("CPU: %.1f%%", cpu))
	}
	return lines
}
