package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	Long: `Show the settings Airth is running with. Edit the config file to change them;
any value can also be overridden with an AIRTH_ environment variable,
e.g. AIRTH_POMODORO_WORK_DURATION=50m.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			var err error
			if path, err = config.GetConfigPath(); err != nil {
				return err
			}
		}

		cfg := app.config
		notifStatus := "off"
		if cfg.Notifications.Enabled {
			notifStatus = "on"
			if cfg.Notifications.Sound {
				notifStatus = "on (with sound)"
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "  Config file:           %s\n", path)
		fmt.Fprintf(out, "  User:                  %s\n", cfg.UserID)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Work:                  %s\n", formatMinutes(time.Duration(cfg.Pomodoro.WorkDuration)))
		fmt.Fprintf(out, "  Short break:           %s\n", formatMinutes(time.Duration(cfg.Pomodoro.ShortBreak)))
		fmt.Fprintf(out, "  Long break:            %s\n", formatMinutes(time.Duration(cfg.Pomodoro.LongBreak)))
		fmt.Fprintf(out, "  Long break every:      %d pomodoros\n", cfg.Pomodoro.LongBreakInterval)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Storage:               %s (%s)\n", cfg.Storage.Backend, cfg.Storage.DataDir)
		fmt.Fprintf(out, "  Notifications:         %s\n", notifStatus)
		fmt.Fprintf(out, "  HTTP API:              %s\n", cfg.Server.Addr)
		return nil
	},
}

// formatMinutes formats a duration as a human-friendly string like "25m" or "1h30m".
func formatMinutes(d time.Duration) string {
	if d >= time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if d%time.Minute != 0 {
		return d.String()
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
