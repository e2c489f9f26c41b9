package thread

import (
	"time"

	"craftlink/go-backend/internal/domains/contracts"
	"craftlink/go-backend/pkg/models"
)

type Deps struct {
	Logs       *LogState
	GenerateID func(prefix string) string
	Now        func() time.Time

	// ScheduleReply registers fn on the delay scheduler under the
	// conversation's timer scope, keyed by the triggering message so
	// rapid sends each keep their own pending reply. Selecting another
	// conversation revokes the whole scope.
	ScheduleReply func(conversationID, replyID string, fn func())
	ComposeReply  func(conversationID, inbound string) string
	Ingest        func(conversationID, preview string, at time.Time, fromCounterparty bool)
	Notify        func(method string, payload any)
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// Send appends an own message immediately and schedules the simulated
// counterparty reply. An empty or whitespace-only body is a silent no-op
// (sent=false, nil error); an unknown conversation is reported as not found.
func (s *Service) Send(conversationID, body string) (models.Message, bool, error) {
	if conversationID == "" {
		return models.Message{}, false, contracts.NotFound("no conversation selected")
	}
	body, ok := ValidateSendBody(body)
	if !ok {
		return models.Message{}, false, nil
	}

	msg := s.deps.Logs.Append(NewOutboundMessage(
		s.deps.GenerateID("msg"), conversationID, body, s.deps.Now(),
	))
	s.deps.Ingest(conversationID, msg.Body, msg.SentAt, false)
	s.notify("notify.message.new", msg)

	reply := s.deps.ComposeReply(conversationID, body)
	s.scheduleCounterparty(conversationID, msg.ID, reply)
	return msg, true, nil
}

// AppendSettlement records a payment summary in the originating
// conversation's log and schedules the acknowledgment reply, exactly as a
// sent message would.
func (s *Service) AppendSettlement(conversationID, body string) models.Message {
	msg := s.deps.Logs.Append(NewSystemMessage(
		s.deps.GenerateID("msg"), conversationID, body, s.deps.Now(),
	))
	s.deps.Ingest(conversationID, msg.Body, msg.SentAt, false)
	s.notify("notify.message.new", msg)

	s.scheduleCounterparty(conversationID, msg.ID, SettlementAck)
	return msg
}

// SeedCounterparty backfills a counterparty message, used when constructing
// the demo roster. SentAt is taken as given, subject to the log's
// monotonicity clamp.
func (s *Service) SeedCounterparty(conversationID, body string, sentAt time.Time) models.Message {
	return s.deps.Logs.Append(NewCounterpartyMessage(
		s.deps.GenerateID("msg"), conversationID, body, sentAt,
	))
}

func (s *Service) SeedOwn(conversationID, body string, sentAt time.Time) models.Message {
	return s.deps.Logs.Append(NewOutboundMessage(
		s.deps.GenerateID("msg"), conversationID, body, sentAt,
	))
}

// History returns a copy of the conversation's message log.
func (s *Service) History(conversationID string) []models.Message {
	return s.deps.Logs.Messages(conversationID)
}

// Message looks up a single message in the conversation's log.
func (s *Service) Message(conversationID, messageID string) (models.Message, bool) {
	return s.deps.Logs.Get(conversationID, messageID)
}

func (s *Service) scheduleCounterparty(conversationID, replyID, body string) {
	s.deps.ScheduleReply(conversationID, replyID, func() {
		s.deliverReply(conversationID, body)
	})
}

// deliverReply runs from the delay scheduler. It only ever touches the
// conversation it was scheduled for; landing on whichever conversation is
// currently selected is exactly the leak the keyed cancellation prevents.
func (s *Service) deliverReply(conversationID, body string) {
	msg := s.deps.Logs.Append(NewCounterpartyMessage(
		s.deps.GenerateID("msg"), conversationID, body, s.deps.Now(),
	))
	s.deps.Ingest(conversationID, msg.Body, msg.SentAt, true)
	s.notify("notify.message.new", msg)
}

func (s *Service) notify(method string, msg models.Message) {
	if s.deps.Notify == nil {
		return
	}
	s.deps.Notify(method, map[string]any{
		"conversation_id": msg.ConversationID,
		"message":         msg,
	})
}
