package cmd

import (
	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/adapters/tui"
	"github.com/xvierd/tec-office/internal/services"
)

// watchCmd opens the full-screen watch view.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch and control timers in a live view",
	Long: `Open a full-screen view of the pomodoro and countdown.

Keys: s start, p pause/resume, r resume, n skip to next phase,
c cancel pomodoro, x cancel countdown, q quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch()
	},
}

func runWatch() error {
	user := currentUser()
	watch := tui.NewWatch(app.timers, user, app.config.ToPomodoroDomainConfig(), &app.config.Theme)
	app.timers.OnCompletion(func(c services.Completion) {
		if c.UserID == user {
			watch.Announce(c.Message)
		}
	})
	return watch.Run(setupSignalHandler())
}
