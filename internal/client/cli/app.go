package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/avdeevsv/screenpad/internal/client/config"
	"github.com/avdeevsv/screenpad/internal/client/models"
	"github.com/avdeevsv/screenpad/internal/client/remote"
	"github.com/avdeevsv/screenpad/internal/client/services"
	"github.com/avdeevsv/screenpad/internal/client/session"
	"github.com/avdeevsv/screenpad/internal/client/storage"
	"github.com/avdeevsv/screenpad/internal/logging"
	"github.com/avdeevsv/screenpad/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	repos    *storage.Repositories
	store    remote.Store
	orch     *services.Orchestrator
	screens  *services.ScreenService
	identity *session.Identity
	Mode     Mode
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	repos, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	sinks := telemetry.NewSinks(logger)
	sinks.AttachStatus(&consoleSink{})
	sinks.AttachError(&consoleSink{})

	identity := session.FromAccessToken(c.AccessToken)
	if identity == nil && c.AccessToken != "" {
		log.Println("access token is invalid or expired, starting anonymous")
	}

	metrics := telemetry.NewMetrics(prometheus.NewRegistry())

	adapter := remote.NewAdapter(remote.Config{
		BaseURL: c.APIBaseURL,
		Retry: remote.RetryPolicy{
			MaxAttempts:   c.RetryMaxAttempts,
			BaseDelay:     c.RetryBaseDelay,
			JitterPercent: c.RetryJitterPercent,
		},
	}, logger, sinks)
	adapter.BindIdentity(identity)

	orch := services.NewOrchestrator(services.OrchestratorOptions{
		Store:               adapter,
		Screens:             repos.Screens,
		Outbox:              repos.Outbox,
		Identity:            identity,
		Sinks:               sinks,
		Metrics:             metrics,
		Log:                 logger,
		Debounce:            c.AutosaveDebounce,
		ReplayMaxAttempts:   c.ReplayMaxAttempts,
		ReplayBaseDelay:     c.RetryBaseDelay,
		ReplayJitterPercent: c.RetryJitterPercent,
	})

	screens := services.NewScreenService(adapter, repos.Screens, repos.Outbox, identity, orch, sinks, logger)

	return &App{
		config:   c,
		repos:    repos,
		store:    adapter,
		orch:     orch,
		screens:  screens,
		identity: identity,
		Mode:     ModeOffline,
		reader:   bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
		a.orch.SetNetStatus(ctx, models.NetStatus{Online: mode == ModeOnline})
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.repos.DB.Close()
	a.Root(ctx)
}

// StartOnlineStatusWatcher probes store reachability on a fixed interval and
// feeds the resulting online/offline transitions into the orchestrator.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.store.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// consoleSink surfaces sync transitions on the terminal.
type consoleSink struct{}

func (consoleSink) OnSyncStatus(st models.SyncStatus) {
	fmt.Printf("[%s] %s: %s\n", st.Class, st.State, st.Message)
}

func (consoleSink) OnSyncError(action string, err error) {
	fmt.Printf("[%s] error: %v\n", action, err)
}
