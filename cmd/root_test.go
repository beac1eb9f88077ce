package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/tec-office/internal/domain"
)

// executeCmd is a helper to execute a cobra command in tests
func executeCmd(cmd *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	bufOut := new(bytes.Buffer)
	bufErr := new(bytes.Buffer)

	cmd.SetOut(bufOut)
	cmd.SetErr(bufErr)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return bufOut.String(), bufErr.String(), err
}

// testEnv writes a config file into a temp dir and returns the global
// flags that point every command at it.
func testEnv(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()

	cfg := fmt.Sprintf(`user_id = "tester"

[storage]
backend = "sqlite"
data_dir = %q

[notifications]
enabled = false

[log]
level = "error"
`, dir)
	cfgPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	resetFlags()
	t.Cleanup(func() {
		_ = cleanupServices()
		resetFlags()
	})
	return []string{"--config", cfgPath, "--db", filepath.Join(dir, "airth.db")}
}

// run executes one command line against env and releases services afterwards,
// the way a separate process invocation would.
func run(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	stdout, _, err := executeCmd(rootCmd, append(env, args...)...)
	_ = cleanupServices()
	return stdout, err
}

func resetFlags() {
	dbPath = ""
	configPath = ""
	userFlag = ""
	jsonOutput = false
	timerName = ""
	timerWait = true
	askWait = false
	watchAfterStart = false
	serveAddr = ""
}

func decodeResult(t *testing.T, out string) domain.Result {
	t.Helper()
	var result domain.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not a JSON result: %q (%v)", out, err)
	}
	return result
}

func TestRootCmd(t *testing.T) {
	if rootCmd.Use != "airth" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "airth")
	}

	for _, name := range []string{"db", "json", "config", "user"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag should be registered", name)
		}
	}
}

// TestRootCmd_Help tests the --help flag
func TestRootCmd_Help(t *testing.T) {
	resetFlags()
	stdout, _, err := executeCmd(rootCmd, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	for _, want := range []string{"airth", "pomodoro", "timer", "ask"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestPomodoroCmd_PersistsAcrossInvocations(t *testing.T) {
	env := testEnv(t)

	out, err := run(t, env, "--json", "pomodoro", "start")
	if err != nil {
		t.Fatalf("pomodoro start failed: %v", err)
	}
	started := decodeResult(t, out)
	if !started.Success || started.Pomodoro.Phase != domain.PhaseWork {
		t.Fatalf("unexpected start result: %+v", started)
	}

	out, err = run(t, env, "--json", "pomodoro", "status")
	if err != nil {
		t.Fatalf("pomodoro status failed: %v", err)
	}
	status := decodeResult(t, out)
	if !status.Pomodoro.Active || status.Pomodoro.Phase != domain.PhaseWork {
		t.Errorf("work phase should survive a restart, got %+v", status.Pomodoro)
	}

	if _, err := run(t, env, "pomodoro", "pause"); err != nil {
		t.Fatalf("pomodoro pause failed: %v", err)
	}
	_, err = run(t, env, "pomodoro", "pause")
	if err == nil || !isResultError(err) {
		t.Errorf("second pause should fail with a printed result, got %v", err)
	}
}

func TestPomodoroCmd_StartPhase(t *testing.T) {
	env := testEnv(t)

	out, err := run(t, env, "--json", "pomodoro", "start", "short_break")
	if err != nil {
		t.Fatalf("pomodoro start short_break failed: %v", err)
	}
	if phase := decodeResult(t, out).Pomodoro.Phase; phase != domain.PhaseShortBreak {
		t.Errorf("phase = %s, want short_break", phase)
	}

	if _, err := run(t, env, "pomodoro", "start", "nap"); err == nil {
		t.Error("unknown phase should fail")
	}
}

func TestPomodoroCmd_UserFlagIsolates(t *testing.T) {
	env := testEnv(t)

	if _, err := run(t, env, "--user", "alice", "pomodoro", "start"); err != nil {
		t.Fatalf("pomodoro start failed: %v", err)
	}
	out, err := run(t, env, "--json", "--user", "bob", "pomodoro", "status")
	if err != nil {
		t.Fatalf("pomodoro status failed: %v", err)
	}
	if decodeResult(t, out).Pomodoro.Active {
		t.Error("bob should not see alice's pomodoro")
	}
}

func TestTimerCmd_SetAndWait(t *testing.T) {
	env := testEnv(t)

	start := time.Now()
	out, err := run(t, env, "timer", "set", "0.01")
	if err != nil {
		t.Fatalf("timer set failed: %v", err)
	}
	if !strings.Contains(out, "Countdown timer 'Timer for 0.01 minutes' started") {
		t.Errorf("unexpected output: %q", out)
	}
	if lines := strings.Count(strings.TrimSpace(out), "\n"); lines < 1 {
		t.Errorf("expected a completion announcement after the start line, got %q", out)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("timer set --wait took far longer than the countdown")
	}
}

func TestTimerCmd_SetNoWait(t *testing.T) {
	env := testEnv(t)

	out, err := run(t, env, "--json", "timer", "set", "5", "--name", "Tea", "--wait=false")
	if err != nil {
		t.Fatalf("timer set failed: %v", err)
	}
	result := decodeResult(t, out)
	if result.Countdown == nil || result.Countdown.Name != "Tea" {
		t.Errorf("unexpected countdown: %+v", result.Countdown)
	}
}

func TestTimerCmd_InvalidMinutes(t *testing.T) {
	env := testEnv(t)

	if _, err := run(t, env, "timer", "set", "soon"); err == nil {
		t.Error("non-numeric minutes should fail")
	}
	if _, err := run(t, env, "timer", "set", "0", "--wait=false"); err == nil {
		t.Error("zero minutes should fail")
	}
}

func TestTimerCmd_CancelNothing(t *testing.T) {
	env := testEnv(t)

	out, err := run(t, env, "timer", "cancel")
	if err == nil {
		t.Error("cancel with nothing running should fail")
	}
	if !strings.Contains(out, "No active timers to cancel.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestAskCmd(t *testing.T) {
	env := testEnv(t)

	out, err := run(t, env, "--json", "ask", "set a timer for 5 minutes called Tea")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	result := decodeResult(t, out)
	if result.AirthResponse == "" {
		t.Error("ask should include Airth's response")
	}
	if result.Countdown == nil || result.Countdown.Name != "Tea" {
		t.Errorf("unexpected countdown: %+v", result.Countdown)
	}

	out, err = run(t, env, "--json", "ask", "do", "something", "with", "my", "timer")
	if err == nil {
		t.Error("unrecognized request should fail")
	}
	if decodeResult(t, out).Action != "unrecognized" {
		t.Errorf("unexpected result: %q", out)
	}
}

func TestConfigCmd(t *testing.T) {
	env := testEnv(t)

	out, err := run(t, env, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"Config file:", "tester", "25m", "sqlite"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

// TestFormatMinutes tests the formatMinutes helper function
func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"25 minutes", 25 * time.Minute, "25m"},
		{"60 minutes", 60 * time.Minute, "1h"},
		{"90 minutes", 90 * time.Minute, "1h30m"},
		{"120 minutes", 120 * time.Minute, "2h"},
		{"90 seconds", 90 * time.Second, "1m30s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMinutes(tt.duration)
			if got != tt.want {
				t.Errorf("formatMinutes(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}
