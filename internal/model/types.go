// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a single game.
type State int

// Game states. Finished is terminal.
const (
	WaitingToStart State = iota
	InTransition
	InProgress
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case WaitingToStart:
		return "WAITING_TO_START"
	case InTransition:
		return "IN_TRANSITION"
	case InProgress:
		return "IN_PROGRESS"
	case Paused:
		return "PAUSED"
	case Finished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// StateChange is delivered to state listeners on every transition.
type StateChange struct {
	From State
	To   State
}

// Config defines game settings. Durations are counted in ticks.
type Config struct {
	TickInterval    time.Duration
	TransitionDelay int
	GameDuration    int
	TextFile        string
	LogLevel        string
}

// DefaultConfig returns the built-in game settings.
func DefaultConfig() Config {
	return Config{
		TickInterval:    time.Second,
		TransitionDelay: 3,
		GameDuration:    60,
		LogLevel:        "info",
	}
}

// Scoreboard is the live score shown while playing. Remaining counts
// ticks; RemainingTime is the same value as a duration.
type Scoreboard struct {
	Errors        int
	WPM           float64
	Accuracy      float64
	Remaining     int
	RemainingTime time.Duration
}

// FinishReason tells why a game ended.
type FinishReason int

// Finish reasons.
const (
	FinishNone FinishReason = iota
	FinishClockExpired
	FinishPassageCompleted
)

func (r FinishReason) String() string {
	switch r {
	case FinishClockExpired:
		return "time is up"
	case FinishPassageCompleted:
		return "passage completed"
	default:
		return "not finished"
	}
}

// Result captures a game after it finished.
type Result struct {
	GameID         uuid.UUID
	Reason         FinishReason
	WordsCompleted int
	TotalWords     int
	Correct        int
	Errors         int
	Elapsed        time.Duration
	WPMSamples     []float64
}
