package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/domain"
)

var askWait bool

// askCmd runs a plain-English timer request.
var askCmd = &cobra.Command{
	Use:   "ask <request>",
	Short: "Ask Airth to handle a timer request",
	Long: `Interpret a plain-English timer request and answer in Airth's voice.

Examples:
  airth ask "set a timer for 10 minutes called Tea"
  airth ask "start a 50 minute pomodoro"
  airth ask "what's the status of my timers?"
  airth ask "pause pomodoro"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := setupSignalHandler()
		user := currentUser()
		result := app.timers.Respond(ctx, user, strings.Join(args, " "))
		if err := printResult(cmd, result); err != nil {
			return err
		}

		startedCountdown := result.TimerType == domain.TimerTypeCountdown && result.Countdown != nil && result.Countdown.Active
		if askWait && startedCountdown {
			return waitForCountdown(ctx, cmd, user, result.Countdown.Name)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().BoolVarP(&askWait, "wait", "w", false, "Wait for a countdown started by the request")
}
