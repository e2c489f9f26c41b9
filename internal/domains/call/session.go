// Package call tracks the per-panel voice call session. One session exists
// at a time; its lifecycle is idle, ringing while the connect delay runs,
// connected, briefly ended, then back to idle.
package call

import (
	"time"

	"craftlink/go-backend/internal/domains/contracts"
	"craftlink/go-backend/pkg/models"
)

// Session holds the panel's single call slot. The zero value is idle.
type Session struct {
	current models.CallSession
}

func NewSession() *Session {
	return &Session{current: models.CallSession{State: models.CallIdle}}
}

// Snapshot returns the session as it stands.
func (s *Session) Snapshot() models.CallSession {
	return s.current
}

func (s *Session) State() models.CallState {
	if s.current.State == "" {
		return models.CallIdle
	}
	return s.current.State
}

// Active reports whether a call is ringing or connected. An active call
// owns the panel's pane.
func (s *Session) Active() bool {
	st := s.State()
	return st == models.CallRinging || st == models.CallConnected
}

// Initiate moves an idle session to ringing against the given conversation.
// Only an idle slot can ring: an ended call holds the slot until its review
// flow resets it, and a ringing or connected call is already in progress.
func (s *Session) Initiate(sessionID, conversationID string) (models.CallSession, error) {
	switch s.State() {
	case models.CallIdle:
	case models.CallEnded:
		return s.current, contracts.InvalidState("previous call awaits its review")
	default:
		return s.current, contracts.InvalidState("call already in progress")
	}
	s.current = models.CallSession{
		SessionID:      sessionID,
		ConversationID: conversationID,
		State:          models.CallRinging,
	}
	return s.current, nil
}

// Connect completes the ring phase. It runs from the delay scheduler, so a
// session that was torn down in the meantime is left untouched.
func (s *Session) Connect(sessionID string, now time.Time) (models.CallSession, error) {
	if s.current.SessionID != sessionID || s.State() != models.CallRinging {
		return s.current, contracts.InvalidState("call is not ringing")
	}
	s.current.State = models.CallConnected
	s.current.StartedAt = now.UTC()
	return s.current, nil
}

// End hangs up a connected call. A ringing call cannot be ended, only
// abandoned by switching conversations, which resets the slot.
func (s *Session) End(now time.Time) (models.CallSession, error) {
	if s.State() != models.CallConnected {
		return s.current, contracts.InvalidState("no connected call to end")
	}
	s.current.State = models.CallEnded
	s.current.EndedAt = now.UTC()
	return s.current, nil
}

// Duration reports how long the call was connected. Zero for calls that
// never left the ring phase.
func (s *Session) Duration() time.Duration {
	if s.current.StartedAt.IsZero() || s.current.EndedAt.IsZero() {
		return 0
	}
	return s.current.EndedAt.Sub(s.current.StartedAt)
}

// Reset clears the slot back to idle. Used when the ended call's review
// flow finishes, and when the panel switches conversations mid-call.
func (s *Session) Reset() {
	s.current = models.CallSession{State: models.CallIdle}
}
