package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/command"
)

var watchAfterStart bool

// pomodoroCmd groups the pomodoro controls.
var pomodoroCmd = &cobra.Command{
	Use:     "pomodoro",
	Aliases: []string{"pomo", "p"},
	Short:   "Control the pomodoro timer",
	Long: `Start, pause, resume, skip or cancel the pomodoro timer.

A finished phase never starts the next one by itself: the next phase
waits until you run "airth pomodoro start" or "resume".`,
}

var pomodoroStartCmd = &cobra.Command{
	Use:       "start [work|short_break|long_break]",
	Short:     "Start a pomodoro phase",
	Long:      `Start the pending phase, or the named phase. Without a phase a work session starts.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"work", "short_break", "long_break"},
	RunE: func(cmd *cobra.Command, args []string) error {
		phase := ""
		if len(args) == 1 {
			phase = args[0]
		}
		ctx := context.Background()
		if err := printResult(cmd, app.timers.StartPhase(ctx, currentUser(), phase)); err != nil {
			return err
		}
		if watchAfterStart {
			return runWatch()
		}
		return nil
	},
}

func init() {
	pomodoroStartCmd.Flags().BoolVarP(&watchAfterStart, "watch", "w", false, "Open the watch view after starting")

	pomodoroCmd.AddCommand(pomodoroStartCmd)
	pomodoroCmd.AddCommand(newPomodoroActionCmd(command.ActionPause, "Pause the running phase"))
	pomodoroCmd.AddCommand(newPomodoroActionCmd(command.ActionResume, "Resume a paused or pending phase"))
	pomodoroCmd.AddCommand(newPomodoroActionCmd(command.ActionSkip, "Skip to the next phase"))
	pomodoroCmd.AddCommand(newPomodoroActionCmd(command.ActionCancel, "Cancel the pomodoro, keeping the completed count"))
	pomodoroCmd.AddCommand(newPomodoroActionCmd(command.ActionStatus, "Show the pomodoro status"))
}

// newPomodoroActionCmd builds a subcommand that applies one control action.
func newPomodoroActionCmd(action command.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result := app.timers.ControlPomodoro(context.Background(), currentUser(), string(action))
			return printResult(cmd, result)
		},
	}
}
