package interview

import (
	"time"

	"github.com/abhisek/prepwise/internal/evaluation"
)

// questionChosenMsg is sent when a built-in question is picked, or with
// Custom set when the user wants to type their own.
type questionChosenMsg struct {
	Question string
	Custom   bool
}

// handoffLoadedMsg carries the last saved question and answer.
type handoffLoadedMsg struct {
	Request evaluation.Request
	OK      bool
}

// evaluationDoneMsg is sent when the orchestrated run returns.
type evaluationDoneMsg struct {
	RunID  string
	Result *evaluation.Result
	Err    error
}

// spinnerTickMsg animates the waiting indicator.
type spinnerTickMsg time.Time
