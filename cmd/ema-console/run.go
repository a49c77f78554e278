package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	orchestration "github.com/koscakluka/ema-realtime/core"
	"github.com/koscakluka/ema-realtime/core/calendar/crm"
	"github.com/koscakluka/ema-realtime/core/channels/azure"
	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/scheduling"
	"github.com/koscakluka/ema-realtime/internal/config"
)

func runCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to the realtime runtime and relay typed messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, flags.configPath)
		},
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	channel, err := azure.Dial(ctx, cfg.Channel())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer channel.Close()

	opts := []orchestration.EngineOption{
		orchestration.WithChannel(channel),
		orchestration.WithAudioControl(consoleAudio{}),
		orchestration.WithMediaPlayer(&consoleMedia{}),
		orchestration.WithSessionConfig(cfg.Session.Engine()),
		orchestration.WithResendDelay(cfg.ResendDelay()),
		orchestration.WithSilenceTick(cfg.SilenceTick()),
		orchestration.WithDebugLogCapacity(cfg.Engine.DebugLogCapacity),
		orchestration.WithResponseCallback(func(segment string) { fmt.Print(segment) }),
		orchestration.WithResponseEndCallback(func() { fmt.Println() }),
		orchestration.WithStatusCallback(func(status string) { slog.Info("status", "status", status) }),
		orchestration.WithBusyCallback(func(busy bool) { slog.Debug("busy changed", "busy", busy) }),
		orchestration.WithHostSignalCallback(func(signal events.HostSignalName) { slog.Info("host signal", "signal", signal) }),
		orchestration.WithEventHandler(logEvent),
	}
	if cfg.CRM.BaseURL != "" {
		client, err := crm.NewClient(cfg.CRM.BaseURL,
			crm.WithWallet(cfg.CRM.Wallet),
			crm.WithAuthorization(cfg.CRM.Authorization),
			crm.WithRateLimit(float64(cfg.Engine.RequestsPerSecond), cfg.Engine.RequestsPerSecond),
		)
		if err != nil {
			return err
		}
		opts = append(opts,
			orchestration.WithCalendar(client, scheduling.WithLocation(cfg.Location())),
			orchestration.WithPromptSource(client),
		)
	} else {
		slog.Warn("no CRM base URL configured, scheduling tools are disabled")
	}

	engine := orchestration.NewEngine(opts...)
	defer engine.Close()

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, cfg)
		if err != nil {
			return err
		}
		watcher.OnChange(func(previous, current *config.Config) {
			if !config.SessionChanged(previous, current) {
				return
			}
			session := current.Session.Engine()
			if err := engine.UpdateSession(ctx, func(config *orchestration.SessionConfig) { *config = session }); err != nil {
				slog.Error("failed to apply session change", "error", err)
			}
		})
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	if err := engine.Open(ctx); err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	go readInput(ctx, engine)

	err = channel.Listen(ctx, func(ctx context.Context, data []byte) {
		if err := engine.HandleMessage(ctx, data); err != nil {
			slog.Debug("failed to handle message", "error", err)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// readInput relays typed lines. "/cancel" interrupts the current response
// and "/debug" prints the recent inbound events.
func readInput(ctx context.Context, engine *orchestration.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/cancel":
			if err := engine.CancelResponse(ctx); err != nil {
				slog.Error("failed to cancel response", "error", err)
			}
		case "/debug":
			for _, entry := range engine.DebugLog() {
				fmt.Printf("%s %s %s\n", entry.ReceivedAt.Format("15:04:05.000"), entry.Type, entry.Name)
			}
		case "/calls":
			for _, call := range engine.RecentCalls() {
				fmt.Printf("%s %-18s ok=%t %s\n", call.CompletedAt.Format("15:04:05"), call.Name, call.OK, call.Status)
			}
		default:
			if err := engine.SendText(ctx, line); errors.Is(err, orchestration.ErrSilenced) {
				slog.Info("agent is silenced, message not sent")
			} else if err != nil {
				slog.Error("failed to send message", "error", err)
			}
		}
	}
}
