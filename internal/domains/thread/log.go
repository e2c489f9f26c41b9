// Package thread owns the per-conversation message logs: append-only,
// immutable once written, ordered by send time. It also carries the send
// flow with its simulated counterparty reply and the payment-request marker
// handling.
package thread

import (
	"craftlink/go-backend/pkg/models"
)

// LogState maps conversation IDs to their ordered message sequences. Logs
// are preserved across selection changes; nothing here ever deletes or
// rewrites a message.
type LogState struct {
	logs map[string][]models.Message
}

func NewLogState() *LogState {
	return &LogState{logs: make(map[string][]models.Message)}
}

// Append stores msg at the tail of its conversation's log. Send times are
// clamped to stay monotonic within the conversation; the stored message is
// returned.
func (l *LogState) Append(msg models.Message) models.Message {
	if last, ok := l.Last(msg.ConversationID); ok && msg.SentAt.Before(last.SentAt) {
		msg.SentAt = last.SentAt
	}
	l.logs[msg.ConversationID] = append(l.logs[msg.ConversationID], msg)
	return msg
}

// Messages returns a copy of the conversation's log in insertion order.
func (l *LogState) Messages(conversationID string) []models.Message {
	log := l.logs[conversationID]
	out := make([]models.Message, len(log))
	copy(out, log)
	return out
}

func (l *LogState) Count(conversationID string) int {
	return len(l.logs[conversationID])
}

func (l *LogState) Last(conversationID string) (models.Message, bool) {
	log := l.logs[conversationID]
	if len(log) == 0 {
		return models.Message{}, false
	}
	return log[len(log)-1], true
}

func (l *LogState) Get(conversationID, messageID string) (models.Message, bool) {
	for _, msg := range l.logs[conversationID] {
		if msg.ID == messageID {
			return msg, true
		}
	}
	return models.Message{}, false
}
