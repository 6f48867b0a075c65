package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/godbus/dbus/v5"

	"github.com/fennwick/murmur/internal/config"
	"github.com/fennwick/murmur/internal/cooldown"
	"github.com/fennwick/murmur/internal/engine"
	"github.com/fennwick/murmur/internal/feed"
	"github.com/fennwick/murmur/internal/history"
	"github.com/fennwick/murmur/internal/humanize"
	"github.com/fennwick/murmur/internal/ipc"
	"github.com/fennwick/murmur/internal/logging"
	"github.com/fennwick/murmur/internal/notify"
	"github.com/fennwick/murmur/internal/window"
)

func main() {
	logging.Init()

	// check for argument to determine config location
	argPath := "/etc/murmur/config.toml"
	if len(os.Args) > 1 {
		argPath = os.Args[1]
	}
	slog.Info("loading config", "path", argPath)

	cfg, err := config.LoadConfigFromFile(argPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid policy", "error", err)
		os.Exit(1)
	}

	win, err := window.FromConfig(cfg.Schedule)
	if err != nil {
		slog.Error("failed to build operating window", "error", err)
		os.Exit(1)
	}

	hist, err := history.Open(cfg.HistoryPath)
	if err != nil {
		slog.Error("failed to open history log", "error", err)
		os.Exit(1)
	}

	source, err := feed.OpenFileSource(cfg.Feed.Path)
	if err != nil {
		slog.Error("failed to open feed source", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	deps := engine.Deps{
		Source:    source,
		Responder: &feed.TemplateResponder{Templates: cfg.Feed.ResponseTemplates},
		Actor:     feed.NewOutboxActor(cfg.Feed.OutboxPath),
		Capturer:  &feed.FileCapturer{Dir: cfg.Feed.CaptureDir},
	}
	if cfg.Behavior.DryRun {
		deps.Actor = &feed.RecorderActor{}
	}

	human := humanize.NewFromClock()
	ctrl := engine.NewController(cfg, deps, human)
	cool := cooldown.New(cfg.Cooldown, win, human)

	var alerter engine.Alerter
	if notifier, err := notify.New(); err != nil {
		slog.Warn("desktop notifications unavailable", "error", err)
	} else {
		alerter = notifier
		defer notifier.Close()
	}

	runner := engine.NewRunner(ctrl, win, cool, hist, alerter)

	slog.Info("murmurd starting",
		"timezone", cfg.Schedule.Timezone,
		"active_hours", fmt.Sprintf("%s-%s", cfg.Schedule.ActiveHours.Start, cfg.Schedule.ActiveHours.End),
		"active_days", cfg.Schedule.ActiveDays,
		"max_items", cfg.Limits.MaxItems,
		"max_actions", cfg.Limits.MaxActions,
		"max_duration", cfg.Limits.MaxDuration.Std(),
		"dry_run", cfg.Behavior.DryRun,
		"sessions_recorded", hist.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("opening D-Bus control service")
		if err := serveControl(ctx, runner, hist); err != nil {
			slog.Error("control service error", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runner.Run(ctx); err != nil {
			slog.Error("runner error", "error", err)
			cancel()
		}
	}()

	wg.Wait()
	fmt.Println("Shutdown complete")
}

func serveControl(ctx context.Context, runner *engine.Runner, hist *history.Log) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	reply, err := conn.RequestName(ipc.ServiceName, dbus.NameFlagDoNotQueue)
	if err != nil || reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("failed to request name: %w", err)
	}

	control := &ipc.Control{Runner: runner, History: hist}
	if err := conn.Export(control, dbus.ObjectPath(ipc.ObjectPath), ipc.InterfaceName); err != nil {
		return fmt.Errorf("failed to export interface: %w", err)
	}

	<-ctx.Done()
	return nil
}
