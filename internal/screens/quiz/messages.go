package quiz

import (
	"time"

	qz "github.com/abhisek/prepwise/internal/quiz"
)

// startQuizMsg is sent when a category is picked from the menu.
type startQuizMsg struct {
	Category qz.Category
}

// timerTickMsg is sent every second to update the elapsed time.
type timerTickMsg time.Time
