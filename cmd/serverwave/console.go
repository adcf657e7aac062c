package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/serverwave/serverwave/console"
	"github.com/serverwave/serverwave/internal/appconfig"
	"github.com/serverwave/serverwave/internal/eventbus"
	"github.com/serverwave/serverwave/internal/logx"
	supervise "github.com/serverwave/serverwave/internal/supervise/containerd"
	"github.com/serverwave/serverwave/schema"
	"github.com/serverwave/serverwave/tui"
)

func newConsoleCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "console <server>",
		Short: "Attach an interactive console to a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			serverID := schema.ServerID(args[0])
			if err := schema.ValidateServerID(serverID); err != nil {
				return err
			}
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			logger := pslog.Ctx(ctx)
			if cfg.Logging.DisableDiagnostics {
				logger = pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured})
			}
			ctx = pslog.ContextWithLogger(ctx, logger)

			sup, err := newSupervisor(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = sup.Close() }()

			// One console attach is one session; every log line below carries
			// the server and session identifiers.
			sessionID := schema.NewSessionID()
			sessionLog := logx.WithServerSession(ctx, serverID, sessionID)
			ctx = logx.ContextWithServerLogger(ctx, sessionLog, serverID)
			ctx = logx.ContextWithSession(ctx, sessionID)

			session, err := console.NewSession(serverID, cfg.Console.ToConsoleConfig(), sup, sessionLog)
			if err != nil {
				return err
			}

			model := tui.New(tui.Options{
				Context:  ctx,
				Session:  session,
				Statuses: sup,
				Logger:   sessionLog,
			})
			program := tea.NewProgram(model, tea.WithContext(ctx), tea.WithMouseCellMotion())
			_, err = program.Run()
			return err
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	return cmd
}

// newSupervisor wires the containerd supervisor behind a fresh event bus.
func newSupervisor(ctx context.Context, cfg appconfig.Config) (*supervise.Supervisor, error) {
	bus := eventbus.New(pslog.Ctx(ctx))
	return supervise.New(ctx, supervise.Config{
		Address:   cfg.Runtime.Containerd.Address,
		Namespace: cfg.Runtime.Containerd.Namespace,
		TailBytes: cfg.Runtime.TailBytes,
	}, bus)
}
