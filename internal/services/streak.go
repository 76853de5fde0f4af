package services

import "habitflow/internal/models"

// StreakState is the streak bookkeeping carried by a habit.
type StreakState struct {
	Current       int
	Longest       int
	LastCompleted *models.Date
}

// StateOf extracts the streak state of h.
func StateOf(h models.Habit) StreakState {
	s := StreakState{Current: h.CurrentStreak, Longest: h.LongestStreak}
	if h.LastCompletedDate != nil {
		d := *h.LastCompletedDate
		s.LastCompleted = &d
	}
	return s
}

// ApplyTo writes s back onto h.
func (s StreakState) ApplyTo(h *models.Habit) {
	h.CurrentStreak = s.Current
	h.LongestStreak = s.Longest
	h.LastCompletedDate = nil
	if s.LastCompleted != nil {
		d := *s.LastCompleted
		h.LastCompletedDate = &d
	}
}

// RecordCompletion returns the state after a completion on day. A second completion on the
// last completed day changes nothing, the next day extends the run and any larger gap starts
// a new run of one. A day before the last completion is rejected with *models.OutOfOrderEventError.
func RecordCompletion(state StreakState, day models.Date) (StreakState, error) {
	next := state

	if state.LastCompleted == nil {
		next.Current = 1
	} else {
		switch gap := day.DaysSince(*state.LastCompleted); {
		case gap < 0:
			return state, &models.OutOfOrderEventError{LastCompleted: *state.LastCompleted, EventDay: day}
		case gap == 0:
			return state, nil
		case gap == 1:
			next.Current = state.Current + 1
		default:
			next.Current = 1
		}
	}

	if next.Current > next.Longest {
		next.Longest = next.Current
	}
	d := day
	next.LastCompleted = &d
	return next, nil
}
