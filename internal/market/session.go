package market

import (
	"time"

	"marketdesk/internal/config"
	"marketdesk/internal/models"
)

// preOpenLead is how long before the open the session reports PRE_OPEN.
const preOpenLead = 15 * time.Minute

// Session maps wall-clock time to the simulated trading session.
type Session struct {
	open  config.Clock
	close config.Clock
}

// NewSession creates a session from open and close clock times.
func NewSession(open, close config.Clock) *Session {
	return &Session{open: open, close: close}
}

// Status returns the session state at the given time. Weekends are closed.
func (s *Session) Status(now time.Time) models.MarketStatus {
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return models.MarketClosed
	}

	open := time.Date(now.Year(), now.Month(), now.Day(), s.open.Hour, s.open.Minute, 0, 0, now.Location())
	close := time.Date(now.Year(), now.Month(), now.Day(), s.close.Hour, s.close.Minute, 0, 0, now.Location())

	switch {
	case !now.Before(open) && now.Before(close):
		return models.MarketOpen
	case !now.Before(open.Add(-preOpenLead)) && now.Before(open):
		return models.MarketPreOpen
	default:
		return models.MarketClosed
	}
}

// IsOpen reports whether the session is open at the given time.
func (s *Session) IsOpen(now time.Time) bool {
	return s.Status(now) == models.MarketOpen
}

// NextOpen returns the next session open strictly after now.
func (s *Session) NextOpen(now time.Time) time.Time {
	next := s.open.Next(now)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
