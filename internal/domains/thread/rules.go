package thread

import (
	"strings"
	"time"

	"craftlink/go-backend/pkg/models"
)

// ValidateSendBody trims the composer buffer. A false return means the body
// was empty or whitespace-only; per the composer contract that is a silent
// UI guard, not a reportable failure.
func ValidateSendBody(body string) (string, bool) {
	body = strings.TrimSpace(body)
	return body, body != ""
}

func NewOutboundMessage(messageID, conversationID, body string, now time.Time) models.Message {
	return models.Message{
		ID:             messageID,
		ConversationID: conversationID,
		Author:         models.AuthorSelf,
		Body:           body,
		SentAt:         now.UTC(),
		Own:            true,
	}
}

func NewCounterpartyMessage(messageID, conversationID, body string, now time.Time) models.Message {
	return models.Message{
		ID:             messageID,
		ConversationID: conversationID,
		Author:         models.AuthorCounterparty,
		Body:           body,
		SentAt:         now.UTC(),
	}
}

// NewSystemMessage builds the own-side system-flavored messages appended by
// the payment flow.
func NewSystemMessage(messageID, conversationID, body string, now time.Time) models.Message {
	return models.Message{
		ID:             messageID,
		ConversationID: conversationID,
		Author:         models.AuthorSystem,
		Body:           body,
		SentAt:         now.UTC(),
		Own:            true,
	}
}
