package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/serverwave/serverwave/internal/appconfig"
	supervise "github.com/serverwave/serverwave/internal/supervise/containerd"
	"github.com/serverwave/serverwave/schema"
)

func newStartCmd() *cobra.Command {
	var cfgPath string
	var image string
	var game string
	var installing bool
	var env []string
	cmd := &cobra.Command{
		Use:   "start <server>",
		Short: "Create and start a game server container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverID := schema.ServerID(args[0])
			if err := schema.ValidateServerID(serverID); err != nil {
				return err
			}
			if strings.TrimSpace(image) == "" {
				return fmt.Errorf("--image is required")
			}
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			sup, err := newSupervisor(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = sup.Close() }()

			spec := supervise.ServerSpec{
				ID:         serverID,
				Image:      image,
				GameType:   schema.GameType(game),
				Env:        parseEnv(env),
				DataDir:    filepath.Join(cfg.DataDir, "servers", string(serverID)),
				Installing: installing,
			}
			if err := sup.StartServer(cmd.Context(), spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %s\n", serverID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&image, "image", "", "container image for the server")
	cmd.Flags().StringVar(&game, "game", "", "game type label")
	cmd.Flags().BoolVar(&installing, "installing", false, "mark the run as an install phase")
	cmd.Flags().StringArrayVar(&env, "env", nil, "environment variable KEY=VALUE (repeatable)")
	return cmd
}

func newStopCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "stop <server>",
		Short: "Stop a running game server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverID := schema.ServerID(args[0])
			if err := schema.ValidateServerID(serverID); err != nil {
				return err
			}
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			sup, err := newSupervisor(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = sup.Close() }()
			if err := sup.StopServer(cmd.Context(), serverID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stopped %s\n", serverID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "remove <server>",
		Short: "Remove a stopped game server container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverID := schema.ServerID(args[0])
			if err := schema.ValidateServerID(serverID); err != nil {
				return err
			}
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			sup, err := newSupervisor(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() { _ = sup.Close() }()
			if err := sup.RemoveServer(cmd.Context(), serverID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", serverID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	return cmd
}

func parseEnv(entries []string) map[string]string {
	if len(entries) == 0 {
		return nil
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		out[parts[0]] = parts[1]
	}
	return out
}
