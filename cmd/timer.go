package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/domain"
)

var (
	timerName string
	timerWait bool
)

// timerCmd groups the countdown commands.
var timerCmd = &cobra.Command{
	Use:     "timer",
	Aliases: []string{"t"},
	Short:   "Set, cancel or inspect countdown timers",
}

var timerSetCmd = &cobra.Command{
	Use:   "set <minutes>",
	Short: "Start a countdown",
	Long: `Start a countdown of the given length. Fractional minutes are allowed.

Countdowns live in this process, so by default the command waits until
the countdown finishes. Use --wait=false to only start and report it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid minutes %q: %w", args[0], err)
		}

		ctx := setupSignalHandler()
		user := currentUser()
		result := app.timers.SetTimer(ctx, user, minutes, string(domain.TimerTypeCountdown), timerName)
		if err := printResult(cmd, result); err != nil {
			return err
		}
		if !timerWait {
			return nil
		}
		return waitForCountdown(ctx, cmd, user, result.Countdown.Name)
	},
}

var timerCancelCmd = &cobra.Command{
	Use:       "cancel [countdown|pomodoro|all]",
	Short:     "Cancel timers",
	Long:      `Cancel the countdown, the pomodoro, or both. Without an argument every timer is cancelled.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"countdown", "pomodoro", "all"},
	RunE: func(cmd *cobra.Command, args []string) error {
		timerType := string(domain.TimerTypeAll)
		if len(args) == 1 {
			timerType = args[0]
		}
		return printResult(cmd, app.timers.CancelTimer(context.Background(), currentUser(), timerType))
	},
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List active timers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(cmd, app.timers.TimerStatus(context.Background(), currentUser()))
	},
}

func init() {
	timerSetCmd.Flags().StringVarP(&timerName, "name", "n", "", "Name of the countdown")
	timerSetCmd.Flags().BoolVarP(&timerWait, "wait", "w", true, "Block until the countdown finishes")

	timerCmd.AddCommand(timerSetCmd)
	timerCmd.AddCommand(timerCancelCmd)
	timerCmd.AddCommand(timerStatusCmd)
}

// waitForCountdown blocks until the user's countdown ends and reports how.
func waitForCountdown(ctx context.Context, cmd *cobra.Command, user, name string) error {
	if app.timers.WaitForCountdown(ctx, user) {
		fmt.Fprintln(cmd.OutOrStdout(), app.persona.Announce(name))
		return nil
	}
	if ctx.Err() != nil {
		app.timers.CancelTimer(context.Background(), user, string(domain.TimerTypeCountdown))
		fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted; countdown cancelled.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s was cancelled.\n", name)
	return nil
}
