// Package command turns natural-language timer requests into timer operations.
package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/xvierd/tec-office/internal/domain"
)

// Action is a timer operation requested by a command.
type Action string

const (
	ActionSet    Action = "set"
	ActionStart  Action = "start"
	ActionPause  Action = "pause"
	ActionResume Action = "resume"
	ActionSkip   Action = "skip"
	ActionCancel Action = "cancel"
	ActionStatus Action = "status"
)

// PomodoroActions lists the control actions accepted for a pomodoro timer.
var PomodoroActions = []string{
	string(ActionStart),
	string(ActionPause),
	string(ActionResume),
	string(ActionSkip),
	string(ActionCancel),
	string(ActionStatus),
}

// Command is a parsed timer request.
type Command struct {
	Action Action
	Target domain.TimerType
	// Minutes is zero when the request names no duration.
	Minutes float64
	Name    string
}

var (
	nameClause = regexp.MustCompile(`(?i)\s+(?:called|named|labell?ed)\s+["']?(.+?)["']?[.!?]*\s*$`)
	durationRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*-?\s*(hours?|hrs?|h|minutes?|mins?|m)\b`)

	cancelRe = regexp.MustCompile(`\b(cancel|stop|clear|abort|kill)\b`)
	pauseRe  = regexp.MustCompile(`\b(pause|hold)\b`)
	resumeRe = regexp.MustCompile(`\b(resume|continue|unpause)\b`)
	skipRe   = regexp.MustCompile(`\bskip\b`)
	statusRe = regexp.MustCompile(`\b(status|remaining|left|check)\b|how (much|long)`)
	startRe  = regexp.MustCompile(`\b(start|begin|set|run|launch)\b`)

	pomodoroRe  = regexp.MustCompile(`\bpomodoros?\b|\bfocus session\b|\bwork session\b`)
	countdownRe = regexp.MustCompile(`\bcountdown\b`)
	timerRe     = regexp.MustCompile(`\btimers?\b|\balarm\b|\breminder\b`)
)

// Parse interprets text. Unknown requests return ErrUnrecognizedCommand.
func Parse(text string) (Command, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Command{}, fmt.Errorf("%w: empty command", domain.ErrUnrecognizedCommand)
	}

	var name string
	if m := nameClause.FindStringSubmatchIndex(raw); m != nil {
		name = strings.TrimSpace(raw[m[2]:m[3]])
		raw = raw[:m[0]]
	}
	body := strings.ToLower(raw)

	target := targetOf(body)

	switch {
	case cancelRe.MatchString(body):
		return Command{Action: ActionCancel, Target: target}, nil
	case pauseRe.MatchString(body):
		return Command{Action: ActionPause, Target: domain.TimerTypePomodoro}, nil
	case resumeRe.MatchString(body):
		return Command{Action: ActionResume, Target: domain.TimerTypePomodoro}, nil
	case skipRe.MatchString(body) && target != domain.TimerTypeCountdown:
		return Command{Action: ActionSkip, Target: domain.TimerTypePomodoro}, nil
	case statusRe.MatchString(body):
		return Command{Action: ActionStatus, Target: target}, nil
	}

	minutes, hasDuration := parseMinutes(body)

	if target == domain.TimerTypePomodoro && (startRe.MatchString(body) || hasDuration) {
		return Command{Action: ActionStart, Target: domain.TimerTypePomodoro, Minutes: minutes, Name: name}, nil
	}
	if hasDuration && (startRe.MatchString(body) || timerRe.MatchString(body) || target == domain.TimerTypeCountdown) {
		return Command{Action: ActionSet, Target: domain.TimerTypeCountdown, Minutes: minutes, Name: name}, nil
	}

	return Command{}, fmt.Errorf("%w: %q", domain.ErrUnrecognizedCommand, strings.TrimSpace(text))
}

func targetOf(body string) domain.TimerType {
	switch {
	case pomodoroRe.MatchString(body):
		return domain.TimerTypePomodoro
	case countdownRe.MatchString(body):
		return domain.TimerTypeCountdown
	default:
		return domain.TimerTypeAll
	}
}

// parseMinutes finds the first duration in body and converts it to minutes.
func parseMinutes(body string) (float64, bool) {
	m := durationRe.FindStringSubmatch(body)
	if m == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	if strings.HasPrefix(m[2], "h") {
		value *= 60
	}
	return value, true
}

// SuggestAction returns the known pomodoro action closest to word.
func SuggestAction(word string) (string, bool) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "", false
	}
	matches := fuzzy.Find(word, PomodoroActions)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Str, true
}
